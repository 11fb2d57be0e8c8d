package sources

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/khushi6simplex/js2analytics-sub000/models"
)

// ErrUnknownSource is returned when a binding or query names a collection
// nothing is registered for.
var ErrUnknownSource = errors.New("sources: unknown source")

// Source fetches one collection of features. Implementations must not
// retain or mutate the returned slice after Fetch returns.
type Source interface {
	Fetch(ctx context.Context, q Query) ([]models.Feature, error)
}

// BoolFilter restricts a fetch to features whose property equals Value.
type BoolFilter struct {
	Property string `yaml:"property" json:"property"`
	Value    bool   `yaml:"value" json:"value"`
}

// Query names the collection (WFS typeName, table or Mongo collection).
// CRS is handed to the backend untouched.
type Query struct {
	Collection string
	Filter     *BoolFilter
	CRS        string
}

func (q Query) String() string {
	var b strings.Builder
	b.WriteString(q.Collection)
	if q.Filter != nil {
		fmt.Fprintf(&b, "[%s=%t]", q.Filter.Property, q.Filter.Value)
	}
	if q.CRS != "" {
		b.WriteString("@" + q.CRS)
	}
	return b.String()
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, q Query) ([]models.Feature, error)

func (f SourceFunc) Fetch(ctx context.Context, q Query) ([]models.Feature, error) {
	return f(ctx, q)
}

// Static serves fixed feature sets keyed by collection name.
type Static map[string][]models.Feature

func (s Static) Fetch(_ context.Context, q Query) ([]models.Feature, error) {
	features, ok := s[q.Collection]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, q.Collection)
	}
	if q.Filter != nil {
		return filterBool(features, *q.Filter), nil
	}
	return append([]models.Feature(nil), features...), nil
}

// boolLiteral renders a filter value for query languages that spell
// booleans as lowercase words.
func boolLiteral(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
