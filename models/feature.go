package models

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/khushi6simplex/js2analytics-sub000/utils"
)

// Feature is one record of a WFS/GeoJSON feature collection. Properties are
// read-only once fetched; joins build new features with With.
type Feature struct {
	ID         string          `json:"id,omitempty"`
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry,omitempty"`
}

// FeatureCollection is the GeoJSON envelope returned by GeoServer.
type FeatureCollection struct {
	Type          string    `json:"type"`
	Features      []Feature `json:"features"`
	TotalFeatures int       `json:"totalFeatures,omitempty"`
}

// NewFeature builds a feature from a property bag without geometry.
func NewFeature(props map[string]any) Feature {
	return Feature{Properties: props}
}

// Raw returns the property value as stored, or nil.
func (f Feature) Raw(key string) any {
	if f.Properties == nil {
		return nil
	}
	return f.Properties[key]
}

// Text returns the property as a trimmed string. Missing or empty values are
// replaced by the schema placeholder for key.
func (f Feature) Text(key string) string {
	if s := scalarString(f.Raw(key)); s != "" {
		return s
	}
	return Schema.Placeholder(key)
}

// Plain returns the property as a trimmed string without placeholder
// substitution.
func (f Feature) Plain(key string) string {
	return scalarString(f.Raw(key))
}

// Number returns the property as a float. Numeric strings are parsed,
// including grouped and unit-suffixed ones; anything else counts as 0.
func (f Feature) Number(key string) float64 {
	switch v := f.Raw(key).(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		n, err := v.Float64()
		if err != nil {
			return 0
		}
		return n
	case string:
		n, _ := utils.ParseNumber(v)
		return n
	case bool:
		if v {
			return 1
		}
	}
	return 0
}

// Truthy reports whether the property holds a value that counts as "done":
// non-empty strings, non-zero numbers and true.
func (f Feature) Truthy(key string) bool {
	switch v := f.Raw(key).(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case float64:
		return v != 0
	case float32:
		return v != 0
	case int:
		return v != 0
	case int32:
		return v != 0
	case int64:
		return v != 0
	case json.Number:
		n, err := v.Float64()
		return err == nil && n != 0
	}
	return true
}

// Geotagged reports whether the feature carries a non-null geometry.
func (f Feature) Geotagged() bool {
	g := strings.TrimSpace(string(f.Geometry))
	return g != "" && g != "null"
}

// With returns a copy of f whose property bag is overlaid with extra.
// The receiver's map is left untouched.
func (f Feature) With(extra map[string]any) Feature {
	props := make(map[string]any, len(f.Properties)+len(extra))
	for k, v := range f.Properties {
		props[k] = v
	}
	for k, v := range extra {
		props[k] = v
	}
	return Feature{ID: f.ID, Properties: props, Geometry: f.Geometry}
}

// Has reports whether key is present with a non-empty value.
func (f Feature) Has(key string) bool {
	return scalarString(f.Raw(key)) != ""
}

func scalarString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int32:
		return strconv.FormatInt(int64(s), 10)
	case int64:
		return strconv.FormatInt(s, 10)
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}
