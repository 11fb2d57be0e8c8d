package sources

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/khushi6simplex/js2analytics-sub000/models"
)

// Supported SQL drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Columns that carry geometry instead of a property.
var geometryColumns = map[string]bool{
	"geom":         true,
	"the_geom":     true,
	"geometry":     true,
	"wkb_geometry": true,
}

// SQLSource reads feature tables from PostGIS or from an offline SQLite
// snapshot. Every column except the geometry column becomes a property.
type SQLSource struct {
	db     *sql.DB
	driver string
}

func NewSQLSource(db *sql.DB, driver string) *SQLSource {
	return &SQLSource{db: db, driver: driver}
}

// OpenSQLite opens a snapshot file read-only.
func OpenSQLite(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open(DriverSQLite, dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open snapshot %s: %w", path, err)
	}
	return db, nil
}

// Statement builds the SELECT for q along with its arguments.
func (s *SQLSource) Statement(q Query) (string, []any) {
	stmt := "SELECT * FROM " + quoteTable(q.Collection)
	if q.Filter == nil {
		return stmt, nil
	}
	column := pq.QuoteIdentifier(q.Filter.Property)
	if s.driver == DriverSQLite {
		v := 0
		if q.Filter.Value {
			v = 1
		}
		return stmt + " WHERE " + column + " = ?", []any{v}
	}
	return stmt + " WHERE " + column + " = $1", []any{q.Filter.Value}
}

func (s *SQLSource) Fetch(ctx context.Context, q Query) ([]models.Feature, error) {
	stmt, args := s.Statement(q)
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying %s: %w", q.Collection, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("error reading columns of %s: %w", q.Collection, err)
	}

	var features []models.Feature
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", q.Collection, err)
		}
		features = append(features, rowFeature(columns, values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", q.Collection, err)
	}
	log.Printf("SQLSource: fetched %d rows from %s (%s)", len(features), q, s.driver)
	return features, nil
}

func rowFeature(columns []string, values []any) models.Feature {
	props := make(map[string]any, len(columns))
	var f models.Feature
	for i, name := range columns {
		v := sqlValue(values[i])
		key := strings.ToLower(name)
		if geometryColumns[key] {
			if v != nil {
				f.Geometry = geometryJSON(v)
			}
			continue
		}
		if key == "id" || key == "fid" {
			f.ID = fmt.Sprint(v)
		}
		props[key] = v
	}
	f.Properties = props
	return f
}

func sqlValue(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case time.Time:
		return t.Format(time.RFC3339)
	}
	return v
}

func geometryJSON(v any) []byte {
	if s, ok := v.(string); ok && strings.HasPrefix(strings.TrimSpace(s), "{") {
		return []byte(s)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return b
}

// quoteTable quotes a possibly schema-qualified table name.
func quoteTable(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pq.QuoteIdentifier(p)
	}
	return strings.Join(parts, ".")
}
