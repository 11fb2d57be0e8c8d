package engine

import (
	"github.com/khushi6simplex/js2analytics-sub000/models"
)

// Reducer names how a metric folds a feature subset into one number.
type Reducer string

const (
	ReduceCount     Reducer = "count"
	ReduceTruthy    Reducer = "truthy"
	ReduceUntruthy  Reducer = "untruthy"
	ReduceSum       Reducer = "sum"
	ReduceDistinct  Reducer = "distinct"
	ReduceGeotagged Reducer = "geotagged"
)

// Metric is one declared column of a report.
//
// Match restricts the subset to features whose properties equal the given
// values before reducing. ReduceUntruthy is always computed as
// count(subset) - truthy(subset) so that a completed/incomplete pair sums
// to the subset count exactly.
type Metric struct {
	Name     string            `json:"name"`
	Reducer  Reducer           `json:"reducer"`
	Property string            `json:"property,omitempty"`
	Match    map[string]string `json:"match,omitempty"`
}

// Derived is a percentage computed after reduction. Derived values are
// recomputed on subtotal and total rows from their summed operands.
type Derived struct {
	Name        string `json:"name"`
	Numerator   string `json:"numerator"`
	Denominator string `json:"denominator"`
}

// Count counts the features, optionally restricted by match.
func Count(name string, match map[string]string) Metric {
	return Metric{Name: name, Reducer: ReduceCount, Match: match}
}

// Sum sums a numeric property, missing values counting as 0.
func Sum(name, property string) Metric {
	return Metric{Name: name, Reducer: ReduceSum, Property: property}
}

// Truthy counts features whose property is set.
func Truthy(name, property string) Metric {
	return Metric{Name: name, Reducer: ReduceTruthy, Property: property}
}

// Distinct counts distinct values of a property.
func Distinct(name, property string) Metric {
	return Metric{Name: name, Reducer: ReduceDistinct, Property: property}
}

// Geotagged counts features that carry a geometry.
func Geotagged(name string) Metric {
	return Metric{Name: name, Reducer: ReduceGeotagged}
}

// Pair declares the "<name>Total", "<name>Completed" and "<name>Incomplete"
// metrics for a completion property.
func Pair(name, property string, match map[string]string) []Metric {
	return []Metric{
		{Name: name + "Total", Reducer: ReduceCount, Match: match},
		{Name: name + "Completed", Reducer: ReduceTruthy, Property: property, Match: match},
		{Name: name + "Incomplete", Reducer: ReduceUntruthy, Property: property, Match: match},
	}
}

// Reduce evaluates m over features.
func (m Metric) Reduce(features []models.Feature) float64 {
	var (
		count  int
		truthy int
		sum    float64
		geo    int
		seen   map[string]bool
	)
	if m.Reducer == ReduceDistinct {
		seen = make(map[string]bool)
	}
	for _, f := range features {
		if !matches(f, m.Match) {
			continue
		}
		count++
		switch m.Reducer {
		case ReduceTruthy, ReduceUntruthy:
			if f.Truthy(m.Property) {
				truthy++
			}
		case ReduceSum:
			sum += f.Number(m.Property)
		case ReduceDistinct:
			if v := f.Plain(m.Property); v != "" {
				seen[normalize(v)] = true
			}
		case ReduceGeotagged:
			if f.Geotagged() {
				geo++
			}
		}
	}

	switch m.Reducer {
	case ReduceTruthy:
		return float64(truthy)
	case ReduceUntruthy:
		return float64(count - truthy)
	case ReduceSum:
		return sum
	case ReduceDistinct:
		return float64(len(seen))
	case ReduceGeotagged:
		return float64(geo)
	}
	return float64(count)
}

// Percent returns 100*num/den, 0 when den is 0.
func (d Derived) Percent(values map[string]float64) float64 {
	den := values[d.Denominator]
	if den == 0 {
		return 0
	}
	return values[d.Numerator] * 100 / den
}

func matches(f models.Feature, match map[string]string) bool {
	for prop, want := range match {
		if !sameName(f.Plain(prop), want) {
			return false
		}
	}
	return true
}
