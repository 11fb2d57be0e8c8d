package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"github.com/goccy/go-json"
)

type errorBody struct {
	Error     string `json:"error"`
	Code      int    `json:"code"`
	RequestID string `json:"requestId,omitempty"`
}

// RecoveryMiddleware turns a panic into a 500 whose body carries the
// request id logged with the stack trace.
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				id := RequestID(r.Context())
				log.Printf("Panic recovered id=%s %s %s: %v\nStack trace:\n%s", id, r.Method, r.URL.Path, err, debug.Stack())

				body, _ := json.Marshal(errorBody{Error: "Internal server error", Code: http.StatusInternalServerError, RequestID: id})
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write(body)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
