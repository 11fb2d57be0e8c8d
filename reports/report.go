package reports

import (
	"github.com/khushi6simplex/js2analytics-sub000/engine"
	"github.com/khushi6simplex/js2analytics-sub000/export"
	"github.com/khushi6simplex/js2analytics-sub000/models"
	"github.com/khushi6simplex/js2analytics-sub000/sources"
)

// Report is one dashboard view expressed as configuration: which feature
// sets it loads, how secondary sets are joined onto the primary one, and
// which metrics and columns it shows.
type Report struct {
	Name    string          `json:"name"`
	Title   string          `json:"title"`
	Sources []string        `json:"sources"`
	Primary string          `json:"primary"`
	Joins   []engine.Join   `json:"joins,omitempty"`
	Spec    engine.Spec     `json:"spec"`
	Columns []export.Column `json:"columns"`
	Chart   []string        `json:"chart,omitempty"`
}

// Features returns the primary set of ws with every join applied in order.
func (r Report) Features(ws *sources.WorkingSet) []models.Feature {
	if ws == nil {
		return nil
	}
	features := ws.Features(r.Primary)
	for _, j := range r.Joins {
		features = j.Apply(features, ws.Sets)
	}
	return features
}

// Run aggregates the working set for sel.
func (r Report) Run(idx *engine.Index, ws *sources.WorkingSet, sel models.Selection) models.Result {
	return engine.Summarize(idx, r.Features(ws), sel, r.Spec)
}

// Layout prefixes the metric columns with the serial number and the
// jurisdiction columns that label rows at granularity g.
func (r Report) Layout(g models.Granularity) []export.Column {
	cols := []export.Column{{Title: "Sr. No.", DataKey: export.KeySerial, Format: export.FormatInteger}}
	switch g {
	case models.GranularityState, models.GranularityDivision:
		cols = append(cols,
			export.Column{Title: "Division", DataKey: models.PropDivision},
			export.Column{Title: "District", DataKey: models.PropDistrict},
		)
	case models.GranularityDistrict, models.GranularitySingle:
		cols = append(cols,
			export.Column{Title: "District", DataKey: models.PropDistrict},
			export.Column{Title: "Taluka", DataKey: models.PropTaluka},
		)
	default:
		cols = append(cols, export.Column{Title: "Name", DataKey: export.KeyLabel})
	}
	return append(cols, r.Columns...)
}

// ChartMetrics returns the metrics plotted when the caller names none.
func (r Report) ChartMetrics() []string {
	if len(r.Chart) > 0 {
		return r.Chart
	}
	return r.Spec.MetricNames()
}

// Display formats the metric values of row for the summary cards shown
// above the table, keyed by metric name.
func (r Report) Display(row models.SummaryRow) map[string]string {
	out := make(map[string]string)
	for _, c := range export.Leaves(r.Columns) {
		if c.Format == "" || c.Format == export.FormatText {
			continue
		}
		out[c.DataKey] = c.Display(row.Value(c.DataKey))
	}
	return out
}
