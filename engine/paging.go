package engine

import (
	"github.com/khushi6simplex/js2analytics-sub000/models"
)

// Page is one screen of a result with the running totals shown under the
// table: a total for the visible rows and the grand total for all of them.
type Page struct {
	Number     int                 `json:"page"`
	Size       int                 `json:"size"`
	TotalRows  int                 `json:"totalRows"`
	Rows       []models.SummaryRow `json:"rows"`
	PageTotal  models.SummaryRow   `json:"pageTotal"`
	GrandTotal models.SummaryRow   `json:"grandTotal"`
}

// Paginate slices res.Rows into pages of size rows (size <= 0 means one
// page). Page numbers start at 1 and are clamped into range.
func Paginate(res models.Result, spec Spec, number, size int) Page {
	n := len(res.Rows)
	if size <= 0 {
		size = n
	}
	if number < 1 {
		number = 1
	}
	start, end := 0, n
	if size > 0 {
		last := (n + size - 1) / size
		if last == 0 {
			last = 1
		}
		if number > last {
			number = last
		}
		start = (number - 1) * size
		end = start + size
		if end > n {
			end = n
		}
	}

	rows := res.Rows[start:end]
	pageTotal := spec.Totals(rows)
	pageTotal.Key = "__page_total__"
	pageTotal.Label = "Page Total"

	grand := spec.Totals(res.Rows)
	if res.Total != nil {
		grand = *res.Total
	}
	return Page{
		Number:     number,
		Size:       size,
		TotalRows:  n,
		Rows:       rows,
		PageTotal:  pageTotal,
		GrandTotal: grand,
	}
}
