package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// Display formats: fixed two decimals with the unit as prefix or suffix.
var numberFormats = []struct {
	format Format
	code   string
}{
	{FormatAmount, `"₹" #,##0.00`},
	{FormatArea, `#,##0.00 "sq.m."`},
	{FormatVolume, `#,##0.00 "TCM"`},
	{FormatPercent, `0.00"%"`},
}

// styleSet holds one style per row role and column format. Subtotal and
// totals rows combine their fill with the column's number format.
type styleSet struct {
	banner int
	header int
	rows   map[RowRole]map[Format]int
}

// cell returns the style for a body cell, 0 when the cell stays unstyled.
func (s styleSet) cell(role RowRole, format Format) int {
	byFormat := s.rows[role]
	if id, ok := byFormat[format]; ok {
		return id
	}
	return byFormat[FormatText]
}

// Workbook renders the grid into an excelize file with merged headers,
// bold header and totals rows, and per-column number formats.
func (g *Grid) Workbook() (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", g.Sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("error naming sheet: %w", err)
	}

	styles, err := newStyleSet(f)
	if err != nil {
		f.Close()
		return nil, err
	}

	leaves := Leaves(g.Columns)
	for i, row := range g.Cells {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		values := row
		if err := f.SetSheetRow(g.Sheet, cell, &values); err != nil {
			f.Close()
			return nil, fmt.Errorf("error writing row %d: %w", i+1, err)
		}
		if err := g.styleRow(f, styles, leaves, i); err != nil {
			f.Close()
			return nil, err
		}
	}

	for _, m := range g.Merges {
		if err := f.MergeCell(g.Sheet, m.From, m.To); err != nil {
			f.Close()
			return nil, fmt.Errorf("error merging %s:%s: %w", m.From, m.To, err)
		}
	}

	for i, c := range leaves {
		name, _ := excelize.ColumnNumberToName(i + 1)
		width := 14.0
		if c.isText() {
			width = 22
		}
		if c.DataKey == KeySerial {
			width = 8
		}
		if err := f.SetColWidth(g.Sheet, name, name, width); err != nil {
			f.Close()
			return nil, fmt.Errorf("error sizing column %s: %w", name, err)
		}
	}
	return f, nil
}

// Write streams the workbook as .xlsx bytes.
func (g *Grid) Write(w io.Writer) error {
	f, err := g.Workbook()
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("error writing workbook: %w", err)
	}
	return nil
}

func (g *Grid) styleRow(f *excelize.File, styles styleSet, leaves []Column, i int) error {
	row := i + 1
	role := g.Roles[i]

	if role == RoleBanner || role == RoleHeader {
		id := styles.header
		if role == RoleBanner {
			id = styles.banner
		}
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(len(leaves), row)
		if err := f.SetCellStyle(g.Sheet, first, last, id); err != nil {
			return fmt.Errorf("error styling row %d: %w", row, err)
		}
		return nil
	}

	for c, col := range leaves {
		id := styles.cell(role, col.Format)
		if id == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(c+1, row)
		if err := f.SetCellStyle(g.Sheet, cell, cell, id); err != nil {
			return fmt.Errorf("error formatting %s: %w", cell, err)
		}
	}
	return nil
}

func newStyleSet(f *excelize.File) (styleSet, error) {
	border := []excelize.Border{
		{Type: "left", Color: "#9E9E9E", Style: 1},
		{Type: "right", Color: "#9E9E9E", Style: 1},
		{Type: "top", Color: "#9E9E9E", Style: 1},
		{Type: "bottom", Color: "#9E9E9E", Style: 1},
	}
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}

	var s styleSet
	var err error
	if s.banner, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: center,
	}); err != nil {
		return s, fmt.Errorf("error creating banner style: %w", err)
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Border:    border,
		Alignment: center,
	}); err != nil {
		return s, fmt.Errorf("error creating header style: %w", err)
	}

	bases := map[RowRole]excelize.Style{
		RoleData: {Border: border},
		RoleSubtotal: {
			Font:   &excelize.Font{Bold: true, Italic: true},
			Fill:   excelize.Fill{Type: "pattern", Color: []string{"#F2F2F2"}, Pattern: 1},
			Border: border,
		},
		RoleTotal: {
			Font:   &excelize.Font{Bold: true},
			Fill:   excelize.Fill{Type: "pattern", Color: []string{"#FFE699"}, Pattern: 1},
			Border: border,
		},
	}
	s.rows = make(map[RowRole]map[Format]int, len(bases))
	for _, role := range []RowRole{RoleData, RoleSubtotal, RoleTotal} {
		base := bases[role]
		byFormat := make(map[Format]int)
		if role != RoleData {
			// text cells and unformatted numbers on summary rows
			plain := base
			plain.NumFmt = 4
			if byFormat[FormatText], err = f.NewStyle(&plain); err != nil {
				return s, fmt.Errorf("error creating %s style: %w", role, err)
			}
		}
		integer := base
		integer.NumFmt = 3
		if byFormat[FormatInteger], err = f.NewStyle(&integer); err != nil {
			return s, fmt.Errorf("error creating %s integer style: %w", role, err)
		}
		for _, nf := range numberFormats {
			st := base
			code := nf.code
			st.CustomNumFmt = &code
			id, err := f.NewStyle(&st)
			if err != nil {
				return s, fmt.Errorf("error creating %s %s style: %w", role, nf.format, err)
			}
			byFormat[nf.format] = id
		}
		s.rows[role] = byFormat
	}
	return s, nil
}
