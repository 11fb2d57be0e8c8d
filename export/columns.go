package export

import "github.com/khushi6simplex/js2analytics-sub000/utils"

// Format is the display format applied to a numeric column in the workbook.
// Cell content stays exact; formats only affect how Excel renders it.
type Format string

const (
	FormatText    Format = "text"
	FormatInteger Format = "integer"
	FormatAmount  Format = "amount"
	FormatArea    Format = "area"
	FormatVolume  Format = "volume"
	FormatPercent Format = "percent"
)

// Special data keys understood by the serializer besides jurisdiction
// labels and metric names.
const (
	KeySerial = "serial"
	KeyLabel  = "label"
)

// Column is one header cell. A column with Children is a group header that
// spans its children; only leaf columns carry data. Children must be leaves:
// Serialize rejects deeper nesting with ErrHeaderDepth.
type Column struct {
	Title    string   `json:"title"`
	DataKey  string   `json:"dataKey,omitempty"`
	Format   Format   `json:"format,omitempty"`
	Children []Column `json:"children,omitempty"`
}

// Group builds a parent header spanning children.
func Group(title string, children ...Column) Column {
	return Column{Title: title, Children: children}
}

// Leaves flattens columns into data-bearing leaf columns, left to right.
func Leaves(columns []Column) []Column {
	out := make([]Column, 0, len(columns))
	for _, c := range columns {
		if len(c.Children) > 0 {
			out = append(out, Leaves(c.Children)...)
			continue
		}
		out = append(out, c)
	}
	return out
}

// HeaderDepth is 2 when any column is grouped, 1 otherwise.
func HeaderDepth(columns []Column) int {
	for _, c := range columns {
		if len(c.Children) > 0 {
			return 2
		}
	}
	return 1
}

func span(c Column) int {
	if len(c.Children) == 0 {
		return 1
	}
	n := 0
	for _, child := range c.Children {
		n += span(child)
	}
	return n
}

func (c Column) isText() bool {
	return c.Format == "" || c.Format == FormatText
}

// Display renders v the way the column's format shows it on screen.
func (c Column) Display(v float64) string {
	switch c.Format {
	case FormatAmount:
		return utils.FormatAmount(v)
	case FormatArea:
		return utils.FormatArea(v)
	case FormatVolume:
		return utils.FormatVolume(v)
	case FormatPercent:
		return utils.FormatPercent(v)
	case FormatInteger:
		return utils.FormatInteger(v)
	}
	return utils.GroupIndian(v, 2)
}
