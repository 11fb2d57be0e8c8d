package middleware

import (
	"net/http"

	"github.com/gorilla/handlers"
)

// CompressHandler gzips or deflates responses for clients that accept it.
// Install it outside RecoveryMiddleware so a recovered 500 is written
// through the compressor.
func CompressHandler(next http.Handler) http.Handler {
	return handlers.CompressHandler(next)
}
