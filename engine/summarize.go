package engine

import (
	"github.com/khushi6simplex/js2analytics-sub000/models"
)

// ============================================================================
// AGGREGATION ENGINE
// ============================================================================
// One generic pass for every report: pick the target granularity from the
// selection, slice the working set per unit, reduce each metric, then attach
// subtotal and grand total rows. Pure and synchronous; never fetches.
// ============================================================================

// Mode decides what an empty selection produces.
type Mode string

const (
	// ModeDrilldown reports show nothing until a division or district is
	// picked.
	ModeDrilldown Mode = "drilldown"
	// ModeStatewide reports list every district grouped by division with a
	// subtotal row after each division.
	ModeStatewide Mode = "statewide"
)

// Spec is the metric and granularity configuration of one report.
type Spec struct {
	Metrics []Metric  `json:"metrics"`
	Derived []Derived `json:"derived,omitempty"`
	Mode    Mode      `json:"mode"`
}

// MetricNames lists reduced and derived metric names in declaration order.
func (s Spec) MetricNames() []string {
	names := make([]string, 0, len(s.Metrics)+len(s.Derived))
	for _, m := range s.Metrics {
		names = append(names, m.Name)
	}
	for _, d := range s.Derived {
		names = append(names, d.Name)
	}
	return names
}

// Summarize aggregates features for sel. Rows come back in display order;
// the grand total is returned separately in Result.Total and covers data
// rows only.
func Summarize(idx *Index, features []models.Feature, sel models.Selection, spec Spec) models.Result {
	res := models.Result{Selection: sel, Rows: []models.SummaryRow{}}
	byDistrict := groupBy(features, models.PropDistrict)

	switch sel.Deepest() {
	case models.LevelTaluka:
		res.Granularity = models.GranularitySingle
		subset := filterTaluka(byDistrict[normalize(sel.District)], sel.Taluka)
		res.Rows = append(res.Rows, spec.row(talukaKey(sel.District, sel.Taluka), sel.Taluka, models.SummaryRow{
			Division: divisionLabel(idx, sel),
			District: sel.District,
			Taluka:   sel.Taluka,
		}, subset))

	case models.LevelDistrict:
		res.Granularity = models.GranularityDistrict
		inDistrict := byDistrict[normalize(sel.District)]
		byTaluka := groupBy(inDistrict, models.PropTaluka)
		for _, taluka := range DistinctValues(inDistrict, models.LevelTaluka, models.Selection{}) {
			res.Rows = append(res.Rows, spec.row(talukaKey(sel.District, taluka), taluka, models.SummaryRow{
				Division: divisionLabel(idx, sel),
				District: sel.District,
				Taluka:   taluka,
			}, byTaluka[normalize(taluka)]))
		}

	case models.LevelDivision:
		res.Granularity = models.GranularityDivision
		for _, district := range districtsFor(idx, features, sel.Division) {
			res.Rows = append(res.Rows, spec.districtRow(sel.Division, district, byDistrict))
		}

	default:
		if spec.Mode != ModeStatewide {
			res.Granularity = models.GranularityNone
			return res
		}
		res.Granularity = models.GranularityState
		divisions := idx.Divisions()
		if len(unknownDistricts(idx, features)) > 0 {
			divisions = append(divisions, models.UnknownDivision)
		}
		for _, division := range divisions {
			group := make([]models.SummaryRow, 0)
			for _, district := range districtsFor(idx, features, division) {
				// a district listed under two divisions is only counted once
				if division != models.UnknownDivision && idx.DivisionOf(district) != division {
					continue
				}
				group = append(group, spec.districtRow(division, district, byDistrict))
			}
			if len(group) == 0 {
				continue
			}
			res.Rows = append(res.Rows, group...)
			sub := spec.reduceRows("subtotal:"+division, division+" Total", models.RowSubtotal, group)
			sub.Division = division
			res.Rows = append(res.Rows, sub)
		}
	}

	total := spec.reduceRows(models.TotalKey, "Grand Total", models.RowTotal, res.DataRows())
	res.Total = &total
	return res
}

// Totals reduces any row slice into a totals row, skipping subtotal and
// total rows so nothing is counted twice.
func (s Spec) Totals(rows []models.SummaryRow) models.SummaryRow {
	data := make([]models.SummaryRow, 0, len(rows))
	for _, r := range rows {
		if r.Kind == models.RowData {
			data = append(data, r)
		}
	}
	return s.reduceRows(models.TotalKey, "Total", models.RowTotal, data)
}

func (s Spec) row(key, label string, base models.SummaryRow, subset []models.Feature) models.SummaryRow {
	base.Key = key
	base.Kind = models.RowData
	base.Label = label
	base.Values = make(map[string]float64, len(s.Metrics)+len(s.Derived))
	for _, m := range s.Metrics {
		base.Values[m.Name] = m.Reduce(subset)
	}
	s.derive(base.Values)
	return base
}

func (s Spec) districtRow(division, district string, byDistrict map[string][]models.Feature) models.SummaryRow {
	return s.row(districtKey(division, district), district, models.SummaryRow{
		Division: division,
		District: district,
	}, byDistrict[normalize(district)])
}

func (s Spec) reduceRows(key, label string, kind models.RowKind, rows []models.SummaryRow) models.SummaryRow {
	out := models.SummaryRow{
		Key:    key,
		Kind:   kind,
		Label:  label,
		Values: make(map[string]float64, len(s.Metrics)+len(s.Derived)),
	}
	for _, m := range s.Metrics {
		var sum float64
		for _, r := range rows {
			sum += r.Values[m.Name]
		}
		out.Values[m.Name] = sum
	}
	s.derive(out.Values)
	return out
}

func (s Spec) derive(values map[string]float64) {
	for _, d := range s.Derived {
		values[d.Name] = d.Percent(values)
	}
}

// districtsFor lists the districts to enumerate for a division: the
// reference list, or for the unknown division every observed district the
// table does not place.
func districtsFor(idx *Index, features []models.Feature, division string) []string {
	if division == models.UnknownDivision {
		return unknownDistricts(idx, features)
	}
	return idx.DistrictsOf(division)
}

func unknownDistricts(idx *Index, features []models.Feature) []string {
	out := make([]string, 0)
	for _, d := range DistinctValues(features, models.LevelDistrict, models.Selection{}) {
		if idx.DivisionOf(d) == models.UnknownDivision {
			out = append(out, d)
		}
	}
	return out
}

func divisionLabel(idx *Index, sel models.Selection) string {
	if sel.Division != "" {
		return sel.Division
	}
	return idx.DivisionOf(sel.District)
}

func groupBy(features []models.Feature, prop string) map[string][]models.Feature {
	out := make(map[string][]models.Feature)
	for _, f := range features {
		key := normalize(f.Text(prop))
		out[key] = append(out[key], f)
	}
	return out
}

func filterTaluka(features []models.Feature, taluka string) []models.Feature {
	out := make([]models.Feature, 0, len(features))
	for _, f := range features {
		if sameName(f.Text(models.PropTaluka), taluka) {
			out = append(out, f)
		}
	}
	return out
}

func districtKey(division, district string) string {
	return "district:" + division + "/" + district
}

func talukaKey(district, taluka string) string {
	return "taluka:" + district + "/" + taluka
}
