package models

// TotalKey identifies the grand totals row. It never collides with data row
// keys, which always carry a level prefix.
const TotalKey = "__total__"

type RowKind string

const (
	RowData     RowKind = "data"
	RowSubtotal RowKind = "subtotal"
	RowTotal    RowKind = "total"
)

// SummaryRow is one aggregated unit. Values hold exact, unrounded metrics.
type SummaryRow struct {
	Key      string             `json:"key"`
	Kind     RowKind            `json:"kind"`
	Label    string             `json:"label"`
	Division string             `json:"division,omitempty"`
	District string             `json:"district,omitempty"`
	Taluka   string             `json:"taluka,omitempty"`
	Village  string             `json:"village,omitempty"`
	Values   map[string]float64 `json:"values"`
}

// Value returns the metric, 0 when absent.
func (r SummaryRow) Value(name string) float64 {
	return r.Values[name]
}

// Field returns a jurisdiction label or a metric rendered as its raw value.
// The second return is false for numeric fields.
func (r SummaryRow) Field(key string) (string, bool) {
	switch key {
	case PropDivision:
		return r.Division, true
	case PropDistrict:
		return r.District, true
	case PropTaluka:
		return r.Taluka, true
	case PropVillage:
		return r.Village, true
	case "label":
		return r.Label, true
	}
	return "", false
}

type Granularity string

const (
	GranularityNone     Granularity = "none"
	GranularityState    Granularity = "districts_by_division"
	GranularityDivision Granularity = "districts_in_division"
	GranularityDistrict Granularity = "talukas_in_district"
	GranularitySingle   Granularity = "single_taluka"
)

type DataStatus string

const (
	StatusLoading DataStatus = "loading"
	StatusNoData  DataStatus = "no_data"
	StatusReady   DataStatus = "ready"
)

// Result is the output of one aggregation pass.
type Result struct {
	Granularity Granularity  `json:"granularity"`
	Selection   Selection    `json:"selection"`
	Rows        []SummaryRow `json:"rows"`
	Total       *SummaryRow  `json:"total,omitempty"`
}

// DataRows returns the rows that are neither subtotals nor totals.
func (r Result) DataRows() []SummaryRow {
	out := make([]SummaryRow, 0, len(r.Rows))
	for _, row := range r.Rows {
		if row.Kind == RowData {
			out = append(out, row)
		}
	}
	return out
}
