package handlers

import (
	"context"
	"log"
	"net/http"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/khushi6simplex/js2analytics-sub000/models"
)

// HealthChecker pings backing connections by name.
type HealthChecker interface {
	Health(ctx context.Context) map[string]error
}

// StatusSource exposes per-report data status.
type StatusSource interface {
	Statuses() map[string]models.DataStatus
}

type HealthResponse struct {
	Status      string                       `json:"status"`
	Uptime      string                       `json:"uptime"`
	Connections []ConnectionStatus           `json:"connections,omitempty"`
	Reports     map[string]models.DataStatus `json:"reports,omitempty"`
}

type ConnectionStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type HealthHandler struct {
	checker HealthChecker
	reports StatusSource
	started time.Time
}

func NewHealthHandler(checker HealthChecker, reports StatusSource) *HealthHandler {
	return &HealthHandler{checker: checker, reports: reports, started: time.Now()}
}

func (h *HealthHandler) Register(api *mux.Router) {
	api.HandleFunc("/health", h.Health).Methods("GET")
	api.HandleFunc("/health/detailed", h.Detailed).Methods("GET")
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Detailed pings every configured database and lists report data states.
// Any failing connection marks the service degraded.
func (h *HealthHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status: "ok",
		Uptime: time.Since(h.started).Round(time.Second).String(),
	}

	if h.checker != nil {
		results := h.checker.Health(r.Context())
		names := make([]string, 0, len(results))
		for name := range results {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			cs := ConnectionStatus{Name: name, Status: "connected"}
			if err := results[name]; err != nil {
				log.Printf("HealthHandler: %s: %v", name, err)
				cs.Status = "connection_error"
				cs.Error = err.Error()
				response.Status = "degraded"
			}
			response.Connections = append(response.Connections, cs)
		}
	}
	if h.reports != nil {
		response.Reports = h.reports.Statuses()
	}

	status := http.StatusOK
	if response.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("writeJSON: error encoding response: %v", err)
	}
}
