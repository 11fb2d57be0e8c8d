package export

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/khushi6simplex/js2analytics-sub000/models"
)

// ErrNoRows is returned when there is nothing to export. Callers surface it
// as a warning rather than producing an empty workbook.
var ErrNoRows = errors.New("export: no rows to export")

// ErrHeaderDepth is returned for column groups nested inside other groups;
// the sheet has at most two header rows.
var ErrHeaderDepth = errors.New("export: column groups nest at most one level")

// RowRole tags a grid row for styling.
type RowRole string

const (
	RoleBanner   RowRole = "banner"
	RoleHeader   RowRole = "header"
	RoleData     RowRole = "data"
	RoleSubtotal RowRole = "subtotal"
	RoleTotal    RowRole = "total"
)

// Merge is a merged cell range in A1 notation.
type Merge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Grid is the serialized sheet: plain cell values plus merge and role
// metadata. It depends only on its inputs, so serializing the same rows
// twice yields identical grids.
type Grid struct {
	Sheet   string    `json:"sheet"`
	Columns []Column  `json:"columns"`
	Cells   [][]any   `json:"cells"`
	Roles   []RowRole `json:"roles"`
	Merges  []Merge   `json:"merges"`
}

// Serialize lays out a report table: an optional banner row with title, one
// or two header rows, the rows as given (subtotals stay interleaved), and a
// final totals row when totals is non-nil.
func Serialize(title string, rows []models.SummaryRow, columns []Column, totals *models.SummaryRow) (*Grid, error) {
	if len(rows) == 0 {
		return nil, ErrNoRows
	}
	leaves := Leaves(columns)
	if len(leaves) == 0 {
		return nil, fmt.Errorf("export: no columns")
	}
	for _, c := range columns {
		for _, child := range c.Children {
			if len(child.Children) > 0 {
				return nil, fmt.Errorf("%w: %s / %s", ErrHeaderDepth, c.Title, child.Title)
			}
		}
	}

	g := &Grid{Sheet: sheetName(title), Columns: columns}
	width := len(leaves)

	if title != "" {
		banner := make([]any, width)
		banner[0] = title
		g.add(RoleBanner, banner)
		if width > 1 {
			g.merge(1, g.rowCount(), width, g.rowCount())
		}
	}

	g.headers(columns, width)

	serial := 0
	for _, r := range rows {
		role := RoleData
		switch r.Kind {
		case models.RowSubtotal:
			role = RoleSubtotal
		case models.RowTotal:
			role = RoleTotal
		default:
			serial++
		}
		g.add(role, rowCells(r, leaves, serial))
	}
	if totals != nil {
		g.add(RoleTotal, rowCells(*totals, leaves, 0))
	}
	return g, nil
}

func (g *Grid) headers(columns []Column, width int) {
	depth := HeaderDepth(columns)
	top := make([]any, width)
	var second []any
	if depth == 2 {
		second = make([]any, width)
	}
	topRow := g.rowCount() + 1

	col := 1
	for _, c := range columns {
		n := span(c)
		top[col-1] = c.Title
		switch {
		case len(c.Children) > 0:
			for i, child := range Leaves(c.Children) {
				second[col-1+i] = child.Title
			}
			if n > 1 {
				g.merge(col, topRow, col+n-1, topRow)
			}
		case depth == 2:
			g.merge(col, topRow, col, topRow+1)
		}
		col += n
	}
	g.add(RoleHeader, top)
	if depth == 2 {
		g.add(RoleHeader, second)
	}
}

func rowCells(r models.SummaryRow, leaves []Column, serial int) []any {
	cells := make([]any, len(leaves))
	labelled := false
	for i, c := range leaves {
		switch {
		case c.DataKey == KeySerial:
			if r.Kind == models.RowData {
				cells[i] = serial
			} else {
				cells[i] = ""
			}
		case c.isText():
			v, _ := r.Field(c.DataKey)
			if r.Kind != models.RowData {
				// totals rows show their label in the first text column
				v = ""
				if !labelled {
					v = r.Label
					labelled = true
				}
			}
			cells[i] = v
		default:
			cells[i] = r.Value(c.DataKey)
		}
	}
	return cells
}

func (g *Grid) add(role RowRole, cells []any) {
	g.Cells = append(g.Cells, cells)
	g.Roles = append(g.Roles, role)
}

func (g *Grid) rowCount() int {
	return len(g.Cells)
}

func (g *Grid) merge(c1, r1, c2, r2 int) {
	from, _ := excelize.CoordinatesToCellName(c1, r1)
	to, _ := excelize.CoordinatesToCellName(c2, r2)
	g.Merges = append(g.Merges, Merge{From: from, To: to})
}

var unsafeSheetChars = regexp.MustCompile(`[\\/?*\[\]:]`)

// sheetName fits title into Excel's 31-character sheet name limit.
func sheetName(title string) string {
	name := strings.TrimSpace(unsafeSheetChars.ReplaceAllString(title, " "))
	if name == "" {
		return "Report"
	}
	if r := []rune(name); len(r) > 31 {
		name = strings.TrimSpace(string(r[:31]))
	}
	return name
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// FileName builds the download name. The timestamp only ever appears here,
// never inside cell content.
func FileName(report string, at time.Time) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(report), "_"), "_")
	if slug == "" {
		slug = "report"
	}
	return slug + "_" + at.Format("20060102_150405") + ".xlsx"
}
