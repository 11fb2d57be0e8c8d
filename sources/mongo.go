package sources

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/goccy/go-json"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/khushi6simplex/js2analytics-sub000/models"
)

// MongoSource reads feature documents from a Mongo database. Documents are
// flattened one level: top-level fields become properties and a geometry
// field becomes the geotag.
type MongoSource struct {
	db *mongo.Database
}

func NewMongoSource(db *mongo.Database) *MongoSource {
	return &MongoSource{db: db}
}

// MongoFilter builds the equality filter for q.
func MongoFilter(q Query) bson.M {
	if q.Filter == nil {
		return bson.M{}
	}
	return bson.M{q.Filter.Property: q.Filter.Value}
}

func (s *MongoSource) Fetch(ctx context.Context, q Query) ([]models.Feature, error) {
	coll := s.db.Collection(q.Collection)
	cursor, err := coll.Find(ctx, MongoFilter(q), options.Find().SetBatchSize(1000))
	if err != nil {
		return nil, fmt.Errorf("error querying %s: %w", q.Collection, err)
	}
	defer cursor.Close(ctx)

	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("error decoding %s: %w", q.Collection, err)
	}

	features := make([]models.Feature, 0, len(docs))
	for _, doc := range docs {
		features = append(features, documentFeature(doc))
	}
	log.Printf("MongoSource: fetched %d documents from %s", len(features), q)
	return features, nil
}

func documentFeature(doc bson.M) models.Feature {
	var f models.Feature
	props := make(map[string]any, len(doc))
	for k, v := range doc {
		switch k {
		case "_id":
			f.ID = fmt.Sprint(bsonValue(v))
			continue
		case "geometry", "geom", "location":
			if v != nil {
				if b, err := json.Marshal(v); err == nil {
					f.Geometry = b
				}
			}
			continue
		case "properties":
			// GeoJSON-shaped documents keep their bag under properties
			if nested, ok := v.(bson.M); ok {
				for nk, nv := range nested {
					props[nk] = bsonValue(nv)
				}
				continue
			}
		}
		props[k] = bsonValue(v)
	}
	f.Properties = props
	return f
}

func bsonValue(v any) any {
	switch t := v.(type) {
	case primitive.ObjectID:
		return t.Hex()
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339)
	case primitive.Decimal128:
		return t.String()
	case int32:
		return float64(t)
	case int64:
		return float64(t)
	case primitive.Null, primitive.Undefined:
		return nil
	}
	return v
}
