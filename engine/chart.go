package engine

import (
	"github.com/khushi6simplex/js2analytics-sub000/models"
)

var chartColors = []string{
	"#1F77B4", "#2CA02C", "#FF7F0E", "#D62728", "#9467BD",
	"#8C564B", "#E377C2", "#7F7F7F", "#BCBD22", "#17BECF",
}

// ChartConfig is a render-ready bar chart over the data rows of a result.
type ChartConfig struct {
	ChartType string        `json:"chartType"`
	Title     string        `json:"title"`
	XAxis     string        `json:"xAxis"`
	Labels    []string      `json:"labels"`
	Series    []ChartSeries `json:"series"`
}

type ChartSeries struct {
	Name   string    `json:"name"`
	Color  string    `json:"color"`
	Values []float64 `json:"values"`
}

// BuildChart produces one series per metric, one point per data row.
// Values are passed through unrounded.
func BuildChart(res models.Result, metrics []string, title string) ChartConfig {
	rows := res.DataRows()
	cfg := ChartConfig{
		ChartType: "bar",
		Title:     title,
		XAxis:     axisLabel(res.Granularity),
		Labels:    make([]string, 0, len(rows)),
		Series:    make([]ChartSeries, 0, len(metrics)),
	}
	for _, r := range rows {
		cfg.Labels = append(cfg.Labels, r.Label)
	}
	for i, name := range metrics {
		s := ChartSeries{
			Name:   name,
			Color:  chartColors[i%len(chartColors)],
			Values: make([]float64, 0, len(rows)),
		}
		for _, r := range rows {
			s.Values = append(s.Values, r.Value(name))
		}
		cfg.Series = append(cfg.Series, s)
	}
	return cfg
}

func axisLabel(g models.Granularity) string {
	switch g {
	case models.GranularityDistrict, models.GranularitySingle:
		return "Taluka"
	case models.GranularityNone:
		return ""
	}
	return "District"
}
