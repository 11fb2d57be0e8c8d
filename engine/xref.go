package engine

import (
	"github.com/khushi6simplex/js2analytics-sub000/models"
)

// ============================================================================
// CROSS-REFERENCE RESOLVER
// ============================================================================
// Collections without a direct foreign key path are joined through per-load
// id→id and id→value maps. Maps are built once per data load and discarded
// after the aggregation pass that uses them.
// ============================================================================

// XRef is a key→value lookup built from one feature collection.
type XRef map[string]string

// BuildMap maps each feature's keyProp to its valueProp. The first feature
// seen for a key wins; later duplicates (stale rows) are ignored. Features
// without a key are skipped.
func BuildMap(features []models.Feature, keyProp, valueProp string) XRef {
	m := make(XRef, len(features))
	for _, f := range features {
		key := f.Plain(keyProp)
		if key == "" {
			continue
		}
		if _, exists := m[key]; exists {
			continue
		}
		m[key] = f.Plain(valueProp)
	}
	return m
}

// Lookup returns the value for key and whether it was present with a
// non-empty value.
func (x XRef) Lookup(key string) (string, bool) {
	v, ok := x[key]
	return v, ok && v != ""
}

// Chained resolves a through two maps: second[first[a]].
type Chained struct {
	First  XRef
	Second XRef
}

// Chain composes two maps.
func Chain(first, second XRef) Chained {
	return Chained{First: first, Second: second}
}

// Resolve returns second[first[a]], or placeholder when either hop misses.
func (c Chained) Resolve(a, placeholder string) string {
	mid, ok := c.First.Lookup(a)
	if !ok {
		return placeholder
	}
	v, ok := c.Second.Lookup(mid)
	if !ok {
		return placeholder
	}
	return v
}

// Join enriches a feature collection from related collections.
//
// With Via empty the lookup is direct: Lookup is keyed by Key and each
// feature's Key property picks the row to copy from. With Via set the
// feature's Key property is first mapped through Via (Key → ViaValue), and
// the result keys into Lookup by LookupKey.
type Join struct {
	Source    string   `json:"source"`
	Key       string   `json:"key"`
	Via       string   `json:"via,omitempty"`
	ViaValue  string   `json:"viaValue,omitempty"`
	Lookup    string   `json:"lookup"`
	LookupKey string   `json:"lookupKey"`
	Copy      []string `json:"copy"`
}

// Apply returns new features with the Copy properties filled in from the
// related collections. Properties already present on a feature are kept.
// sets maps source names to loaded collections; missing collections leave
// features unchanged apart from placeholders applied at read time.
func (j Join) Apply(features []models.Feature, sets map[string][]models.Feature) []models.Feature {
	var hop XRef
	if j.Via != "" {
		hop = BuildMap(sets[j.Via], j.Key, j.ViaValue)
	}
	lookupKey := j.LookupKey
	if lookupKey == "" {
		lookupKey = j.Key
	}
	values := make(map[string]XRef, len(j.Copy))
	for _, prop := range j.Copy {
		values[prop] = BuildMap(sets[j.Lookup], lookupKey, prop)
	}

	out := make([]models.Feature, 0, len(features))
	for _, f := range features {
		key := f.Plain(j.Key)
		if key == "" {
			out = append(out, f)
			continue
		}
		extra := make(map[string]any, len(j.Copy))
		for _, prop := range j.Copy {
			if f.Has(prop) {
				continue
			}
			var v string
			var ok bool
			if hop != nil {
				v = Chain(hop, values[prop]).Resolve(key, "")
				ok = v != ""
			} else {
				v, ok = values[prop].Lookup(key)
			}
			if ok {
				extra[prop] = v
			}
		}
		if len(extra) == 0 {
			out = append(out, f)
			continue
		}
		out = append(out, f.With(extra))
	}
	return out
}
