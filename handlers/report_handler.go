package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/khushi6simplex/js2analytics-sub000/engine"
	"github.com/khushi6simplex/js2analytics-sub000/export"
	"github.com/khushi6simplex/js2analytics-sub000/middleware"
	"github.com/khushi6simplex/js2analytics-sub000/models"
	"github.com/khushi6simplex/js2analytics-sub000/reports"
	"github.com/khushi6simplex/js2analytics-sub000/sources"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportHandler serves the report catalogue. Each report keeps its own
// working set; selection changes only re-run the aggregation over it.
type ReportHandler struct {
	catalogue *reports.Catalogue
	index     *engine.Index
	store     *sources.Store
	trackers  map[string]*sources.Tracker
	pageSize  int
	now       func() time.Time
}

func NewReportHandler(catalogue *reports.Catalogue, index *engine.Index, store *sources.Store, pageSize int) *ReportHandler {
	h := &ReportHandler{
		catalogue: catalogue,
		index:     index,
		store:     store,
		trackers:  make(map[string]*sources.Tracker),
		pageSize:  pageSize,
		now:       time.Now,
	}
	for _, r := range catalogue.List() {
		h.trackers[r.Name] = &sources.Tracker{}
	}
	return h
}

// Register mounts the report routes on the /api/v1 subrouter.
func (h *ReportHandler) Register(api *mux.Router) {
	api.HandleFunc("/reports", h.ListReports).Methods("GET")
	api.HandleFunc("/reports/{report}", h.GetReport).Methods("GET")
	api.HandleFunc("/reports/{report}/chart", h.GetChart).Methods("GET")
	api.HandleFunc("/reports/{report}/export", h.ExportReport).Methods("GET")
	api.HandleFunc("/reports/{report}/refresh", h.RefreshReport).Methods("POST")
	api.HandleFunc("/jurisdictions", h.GetJurisdictions).Methods("GET")
}

type ReportInfo struct {
	Name    string      `json:"name"`
	Title   string      `json:"title"`
	Mode    engine.Mode `json:"mode"`
	Sources []string    `json:"sources"`
	Metrics []string    `json:"metrics"`
	Status  string      `json:"status"`
}

type ReportResponse struct {
	Report      string             `json:"report"`
	Title       string             `json:"title"`
	Status      models.DataStatus  `json:"status"`
	Failed      []string           `json:"failedSources,omitempty"`
	Granularity models.Granularity `json:"granularity"`
	Selection   models.Selection   `json:"selection"`
	Scope       models.Scope       `json:"scope"`
	Columns     []export.Column    `json:"columns"`
	Page        engine.Page        `json:"page"`
	Totals      map[string]string  `json:"totalsDisplay"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Report  string `json:"report,omitempty"`
}

func (h *ReportHandler) ListReports(w http.ResponseWriter, r *http.Request) {
	list := h.catalogue.List()
	out := make([]ReportInfo, 0, len(list))
	for _, rep := range list {
		out = append(out, ReportInfo{
			Name:    rep.Name,
			Title:   rep.Title,
			Mode:    rep.Spec.Mode,
			Sources: rep.Sources,
			Metrics: rep.Spec.MetricNames(),
			Status:  string(h.trackers[rep.Name].Status()),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ReportHandler) GetReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.lookup(w, r)
	if !ok {
		return
	}
	ws, err := h.workingSet(r.Context(), rep)
	if err != nil {
		log.Printf("GetReport: error loading %s: %v", rep.Name, err)
		http.Error(w, "Error loading report data", http.StatusServiceUnavailable)
		return
	}

	scope, sel := h.selection(r)
	res := rep.Run(h.index, ws, sel)
	number, size := h.paging(r)
	page := engine.Paginate(res, rep.Spec, number, size)

	log.Printf("GetReport: %s selection=%+v granularity=%s rows=%d", rep.Name, sel, res.Granularity, len(res.Rows))
	writeJSON(w, http.StatusOK, ReportResponse{
		Report:      rep.Name,
		Title:       rep.Title,
		Status:      ws.Status,
		Failed:      ws.Failed,
		Granularity: res.Granularity,
		Selection:   sel,
		Scope:       scope,
		Columns:     rep.Layout(res.Granularity),
		Page:        page,
		Totals:      rep.Display(page.GrandTotal),
	})
}

func (h *ReportHandler) GetChart(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.lookup(w, r)
	if !ok {
		return
	}
	ws, err := h.workingSet(r.Context(), rep)
	if err != nil {
		log.Printf("GetChart: error loading %s: %v", rep.Name, err)
		http.Error(w, "Error loading report data", http.StatusServiceUnavailable)
		return
	}

	metrics := rep.ChartMetrics()
	if raw := r.URL.Query().Get("metrics"); raw != "" {
		known := make(map[string]bool)
		for _, m := range rep.Spec.MetricNames() {
			known[m] = true
		}
		metrics = metrics[:0:0]
		for _, m := range strings.Split(raw, ",") {
			m = strings.TrimSpace(m)
			if !known[m] {
				http.Error(w, "Unknown metric: "+m, http.StatusBadRequest)
				return
			}
			metrics = append(metrics, m)
		}
	}

	_, sel := h.selection(r)
	res := rep.Run(h.index, ws, sel)
	writeJSON(w, http.StatusOK, engine.BuildChart(res, metrics, rep.Title))
}

func (h *ReportHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.lookup(w, r)
	if !ok {
		return
	}
	ws, err := h.workingSet(r.Context(), rep)
	if err != nil {
		log.Printf("ExportReport: error loading %s: %v", rep.Name, err)
		http.Error(w, "Error loading report data", http.StatusServiceUnavailable)
		return
	}

	_, sel := h.selection(r)
	res := rep.Run(h.index, ws, sel)
	grid, err := export.Serialize(rep.Title, res.Rows, rep.Layout(res.Granularity), res.Total)
	if errors.Is(err, export.ErrNoRows) {
		log.Printf("ExportReport: nothing to export for %s selection=%+v", rep.Name, sel)
		writeJSON(w, http.StatusOK, StatusResponse{Status: "warning", Message: "No rows to export", Report: rep.Name})
		return
	}
	if err != nil {
		log.Printf("ExportReport: error serializing %s: %v", rep.Name, err)
		http.Error(w, "Error building workbook", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.FileName(rep.Name, h.now())+`"`)
	if err := grid.Write(w); err != nil {
		log.Printf("ExportReport: error writing workbook for %s: %v", rep.Name, err)
	}
}

// RefreshReport is the reset signal: cached sets are dropped, the report
// reloads and the new working set replaces the old one.
func (h *ReportHandler) RefreshReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.lookup(w, r)
	if !ok {
		return
	}
	h.store.Invalidate(rep.Sources...)
	ws, err := h.load(r.Context(), rep)
	if err != nil {
		log.Printf("RefreshReport: error reloading %s: %v", rep.Name, err)
		http.Error(w, "Error reloading report data", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: string(ws.Status), Report: rep.Name})
}

// GetJurisdictions returns the picker lists. Talukas and villages are taken
// from the features of the report named by ?report=, the first report by
// default.
func (h *ReportHandler) GetJurisdictions(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("report")
	if name == "" {
		if list := h.catalogue.List(); len(list) > 0 {
			name = list[0].Name
		}
	}
	rep, ok := h.catalogue.Get(name)
	if !ok {
		http.Error(w, "Unknown report: "+name, http.StatusNotFound)
		return
	}
	ws, err := h.workingSet(r.Context(), rep)
	if err != nil {
		log.Printf("GetJurisdictions: error loading %s: %v", rep.Name, err)
		http.Error(w, "Error loading report data", http.StatusServiceUnavailable)
		return
	}
	scope, sel := h.selection(r)
	writeJSON(w, http.StatusOK, h.index.Options(rep.Features(ws), sel, scope))
}

// Statuses reports the data state of every report.
func (h *ReportHandler) Statuses() map[string]models.DataStatus {
	out := make(map[string]models.DataStatus, len(h.trackers))
	for name, t := range h.trackers {
		out[name] = t.Status()
	}
	return out
}

func (h *ReportHandler) lookup(w http.ResponseWriter, r *http.Request) (reports.Report, bool) {
	name := mux.Vars(r)["report"]
	rep, ok := h.catalogue.Get(name)
	if !ok {
		http.Error(w, "Unknown report: "+name, http.StatusNotFound)
	}
	return rep, ok
}

func (h *ReportHandler) workingSet(ctx context.Context, rep reports.Report) (*sources.WorkingSet, error) {
	if ws := h.trackers[rep.Name].Current(); ws != nil {
		return ws, nil
	}
	return h.load(ctx, rep)
}

func (h *ReportHandler) load(ctx context.Context, rep reports.Report) (*sources.WorkingSet, error) {
	tracker := h.trackers[rep.Name]
	gen := tracker.Begin()
	ws, _, err := h.store.Load(ctx, rep.Sources)
	if err != nil {
		return nil, err
	}
	if !tracker.Commit(gen, ws) {
		log.Printf("load: discarded stale working set for %s (generation %d)", rep.Name, gen)
		if current := tracker.Current(); current != nil {
			return current, nil
		}
	}
	return ws, nil
}

// selection resolves the caller's scope and applies it to the requested
// picker state.
func (h *ReportHandler) selection(r *http.Request) (models.Scope, models.Selection) {
	id := middleware.IdentityFrom(r.Context())
	scope := engine.ResolveScope(h.index, id.Role, id.Constraints)

	q := r.URL.Query()
	var requested models.Selection
	if v := strings.TrimSpace(q.Get("division")); v != "" {
		requested.SelectDivision(v)
	}
	if v := strings.TrimSpace(q.Get("district")); v != "" {
		requested.SelectDistrict(v)
	}
	if v := strings.TrimSpace(q.Get("taluka")); v != "" {
		requested.SelectTaluka(v)
	}
	return scope, scope.Apply(requested)
}

func (h *ReportHandler) paging(r *http.Request) (int, int) {
	number, size := 1, h.pageSize
	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		number = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("size")); err == nil && v >= 0 {
		size = v
	}
	return number, size
}
