package sources

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestWFSFetch(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("expected bearer token, got %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"type":"FeatureCollection","totalFeatures":2,"features":[
			{"id":"works.1","properties":{"district":"Pune","estimatedcost":1200.5},"geometry":{"type":"Point","coordinates":[73.8,18.5]}},
			{"id":"works.2","properties":{"district":"Satara"},"geometry":null}
		]}`))
	}))
	defer srv.Close()

	src := NewWFSSource(srv.URL+"/geoserver/wfs", "secret", srv.Client())
	features, err := src.Fetch(context.Background(), Query{
		Collection: "jalyukt:works",
		Filter:     &BoolFilter{Property: "isdeleted", Value: false},
		CRS:        "EPSG:4326",
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	checks := map[string]string{
		"service":      "WFS",
		"version":      "1.0.0",
		"request":      "GetFeature",
		"typeName":     "jalyukt:works",
		"outputFormat": "application/json",
		"srsName":      "EPSG:4326",
		"CQL_FILTER":   "isdeleted=false",
	}
	for k, want := range checks {
		if got.Get(k) != want {
			t.Errorf("param %s: expected %q, got %q", k, want, got.Get(k))
		}
	}

	if len(features) != 2 {
		t.Fatalf("expected 2 features, got %d", len(features))
	}
	if features[0].ID != "works.1" || features[0].Number("estimatedcost") != 1200.5 {
		t.Errorf("unexpected first feature %+v", features[0])
	}
	if !features[0].Geotagged() || features[1].Geotagged() {
		t.Error("expected only the first feature to be geotagged")
	}
}

func TestWFSFetchError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "layer not found", http.StatusNotFound)
	}))
	defer srv.Close()

	src := NewWFSSource(srv.URL, "", srv.Client())
	if _, err := src.Fetch(context.Background(), Query{Collection: "missing"}); err == nil {
		t.Error("expected an error for a 404 response")
	}
}

func TestDecodeFeatures(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"collection", `{"type":"FeatureCollection","features":[{"properties":{"a":1}}]}`, 1},
		{"array", `[{"district":"Pune"},{"district":"Nashik"}]`, 2},
		{"empty", ``, 0},
		{"null", `null`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			features, err := DecodeFeatures([]byte(tt.body))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(features) != tt.want {
				t.Errorf("expected %d features, got %d", tt.want, len(features))
			}
		})
	}

	features, _ := DecodeFeatures([]byte(`[{"district":"Pune"}]`))
	if features[0].Text("district") != "Pune" {
		t.Errorf("expected array objects to become property bags, got %+v", features[0])
	}
	if _, err := DecodeFeatures([]byte(`{broken`)); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}

func TestAPIFetchAppliesFilter(t *testing.T) {
	var path, query string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path, query = r.URL.Path, r.URL.RawQuery
		w.Write([]byte(`[{"workid":"W1","isapproved":true},{"workid":"W2","isapproved":false}]`))
	}))
	defer srv.Close()

	src := NewAPISource(srv.URL+"/api/", "", srv.Client())
	features, err := src.Fetch(context.Background(), Query{
		Collection: "works",
		Filter:     &BoolFilter{Property: "isapproved", Value: true},
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if path != "/api/works" || query != "isapproved=true" {
		t.Errorf("unexpected request %s?%s", path, query)
	}
	if len(features) != 1 || features[0].Text("workid") != "W1" {
		t.Errorf("expected only the approved work, got %+v", features)
	}
}

func TestSQLSourceSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")
	rw, err := sql.Open(DriverSQLite, path)
	if err != nil {
		t.Fatal(err)
	}
	stmts := []string{
		`CREATE TABLE works (id INTEGER, district TEXT, estimatedcost REAL, isdeleted INTEGER, geom TEXT)`,
		`INSERT INTO works VALUES (1, 'Pune', 100.25, 0, '{"type":"Point","coordinates":[73.8,18.5]}')`,
		`INSERT INTO works VALUES (2, 'Satara', 50, 0, NULL)`,
		`INSERT INTO works VALUES (3, 'Sangli', 75, 1, NULL)`,
	}
	for _, s := range stmts {
		if _, err := rw.Exec(s); err != nil {
			t.Fatalf("%s: %v", s, err)
		}
	}
	rw.Close()

	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	src := NewSQLSource(db, DriverSQLite)
	features, err := src.Fetch(context.Background(), Query{
		Collection: "works",
		Filter:     &BoolFilter{Property: "isdeleted", Value: false},
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(features) != 2 {
		t.Fatalf("expected 2 live works, got %d", len(features))
	}
	if features[0].Text("district") != "Pune" || features[0].Number("estimatedcost") != 100.25 {
		t.Errorf("unexpected first row %+v", features[0].Properties)
	}
	if !features[0].Geotagged() || features[1].Geotagged() {
		t.Error("expected geometry column to drive the geotag")
	}
	if _, ok := features[0].Properties["geom"]; ok {
		t.Error("geometry column should not be a property")
	}
	if features[0].ID != "1" {
		t.Errorf("expected id 1, got %q", features[0].ID)
	}
}

func TestSQLStatement(t *testing.T) {
	pg := NewSQLSource(nil, DriverPostgres)
	stmt, args := pg.Statement(Query{Collection: "public.works", Filter: &BoolFilter{Property: "iscompleted", Value: true}})
	if stmt != `SELECT * FROM "public"."works" WHERE "iscompleted" = $1` {
		t.Errorf("unexpected statement %s", stmt)
	}
	if len(args) != 1 || args[0] != true {
		t.Errorf("unexpected args %v", args)
	}

	stmt, args = pg.Statement(Query{Collection: `works"; DROP TABLE x; --`})
	if stmt != `SELECT * FROM "works""; DROP TABLE x; --"` || args != nil {
		t.Errorf("expected quoted identifier, got %s", stmt)
	}
}

func TestMongoDocuments(t *testing.T) {
	oid := primitive.NewObjectID()
	doc := bson.M{
		"_id":      oid,
		"district": "Nashik",
		"count":    int32(4),
		"geometry": bson.M{"type": "Point", "coordinates": bson.A{73.7, 20.0}},
		"updated":  primitive.NewDateTimeFromTime(time.Date(2023, 4, 1, 10, 0, 0, 0, time.UTC)),
	}
	f := documentFeature(doc)
	if f.ID != oid.Hex() {
		t.Errorf("expected id %s, got %s", oid.Hex(), f.ID)
	}
	if f.Text("district") != "Nashik" || f.Number("count") != 4 {
		t.Errorf("unexpected properties %+v", f.Properties)
	}
	if !f.Geotagged() {
		t.Error("expected geometry to be kept")
	}
	if f.Text("updated") != "2023-04-01T10:00:00Z" {
		t.Errorf("unexpected date %q", f.Text("updated"))
	}

	nested := documentFeature(bson.M{"properties": bson.M{"taluka": "Sinnar"}})
	if nested.Text("taluka") != "Sinnar" {
		t.Errorf("expected GeoJSON properties to be lifted, got %+v", nested.Properties)
	}

	if got := MongoFilter(Query{Collection: "works", Filter: &BoolFilter{Property: "isdeleted", Value: false}}); got["isdeleted"] != false {
		t.Errorf("unexpected filter %v", got)
	}
	if got := MongoFilter(Query{Collection: "works"}); len(got) != 0 {
		t.Errorf("expected empty filter, got %v", got)
	}
}
