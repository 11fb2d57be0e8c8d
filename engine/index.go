package engine

import (
	"strings"

	"github.com/khushi6simplex/js2analytics-sub000/models"
)

// ============================================================================
// JURISDICTION INDEX
// ============================================================================
// Divisions and districts come from the static reference table. Talukas and
// villages only exist in fetched data and are derived per request.
// ============================================================================

// Index answers hierarchy lookups over a reference table. It is read-only
// after construction and safe for concurrent use.
type Index struct {
	divisions  []string
	districts  map[string][]string
	divisionOf map[string]string
}

// NewIndex builds an index. When a district is listed under more than one
// division the first listing wins.
func NewIndex(table models.ReferenceTable) *Index {
	idx := &Index{
		districts:  make(map[string][]string, len(table.Divisions)),
		divisionOf: make(map[string]string),
	}
	for _, div := range table.Divisions {
		name := strings.TrimSpace(div.Name)
		if name == "" {
			continue
		}
		if _, seen := idx.districts[name]; !seen {
			idx.divisions = append(idx.divisions, name)
		}
		for _, d := range div.Districts {
			d = strings.TrimSpace(d)
			if d == "" {
				continue
			}
			idx.districts[name] = append(idx.districts[name], d)
			key := normalize(d)
			if _, ok := idx.divisionOf[key]; !ok {
				idx.divisionOf[key] = name
			}
		}
	}
	return idx
}

// Divisions returns division names in reference order.
func (idx *Index) Divisions() []string {
	return append([]string(nil), idx.divisions...)
}

// DistrictsOf returns the districts of a division in reference order, or an
// empty list for an empty or unknown division.
func (idx *Index) DistrictsOf(division string) []string {
	if division == "" {
		return []string{}
	}
	return append([]string{}, idx.districts[strings.TrimSpace(division)]...)
}

// DivisionOf returns the division that lists district, or
// models.UnknownDivision.
func (idx *Index) DivisionOf(district string) string {
	if div, ok := idx.divisionOf[normalize(district)]; ok {
		return div
	}
	return models.UnknownDivision
}

// DistinctValues lists the distinct values of level's property among the
// features that match scope, in order of first appearance. Missing values
// are reported under the level's placeholder rather than dropped.
func DistinctValues(features []models.Feature, level models.Level, scope models.Selection) []string {
	prop := level.Property()
	seen := make(map[string]bool)
	values := make([]string, 0)
	for _, f := range features {
		if !inScope(f, scope) {
			continue
		}
		v := f.Text(prop)
		key := normalize(v)
		if seen[key] {
			continue
		}
		seen[key] = true
		values = append(values, v)
	}
	return values
}

// Options builds the picker lists for a selection. Districts come from the
// reference table; talukas and villages from the observed features.
func (idx *Index) Options(features []models.Feature, sel models.Selection, scope models.Scope) models.LocationHierarchy {
	opts := models.LocationHierarchy{
		Divisions: idx.Divisions(),
		Districts: idx.DistrictsOf(sel.Division),
		Talukas:   []string{},
		Villages:  []string{},
		Selected:  sel,
		Editable:  scope.Editable,
	}
	if opts.Editable == nil {
		opts.Editable = []models.Level{}
	}
	if sel.District != "" {
		opts.Talukas = DistinctValues(features, models.LevelTaluka, models.Selection{District: sel.District})
	}
	if sel.Taluka != "" {
		opts.Villages = DistinctValues(features, models.LevelVillage, models.Selection{District: sel.District, Taluka: sel.Taluka})
	}
	return opts
}

// inScope reports whether a feature matches every level set in scope. The
// division is checked against the feature's district, since features carry
// no reliable division property.
func inScope(f models.Feature, scope models.Selection) bool {
	if scope.District != "" && !sameName(f.Text(models.PropDistrict), scope.District) {
		return false
	}
	if scope.Taluka != "" && !sameName(f.Text(models.PropTaluka), scope.Taluka) {
		return false
	}
	return true
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func sameName(a, b string) bool {
	return normalize(a) == normalize(b)
}
