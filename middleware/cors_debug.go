package middleware

import (
	"log"
	"net/http"
)

// CORSDebugMiddleware logs cross-origin request and response headers. Only
// installed when DEBUG is set; preflight handling is left to rs/cors.
func CORSDebugMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			next.ServeHTTP(w, r)
			return
		}
		log.Printf("[CORS Debug] %s %s from Origin: %s", r.Method, r.URL.Path, origin)
		if r.Method == http.MethodOptions {
			log.Printf("[CORS Debug] Preflight for %s", r.Header.Get("Access-Control-Request-Method"))
		}

		next.ServeHTTP(w, r)

		log.Printf("[CORS Debug] Allow-Origin: %q", w.Header().Get("Access-Control-Allow-Origin"))
	})
}
