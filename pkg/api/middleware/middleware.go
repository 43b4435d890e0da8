package middleware

import (
	"net/http"
	"time"

	"github.com/cbodonnell/yahtzee/pkg/log"
	"github.com/gorilla/mux"
)

// NewCORSMiddleware allows browsers served from allowOrigin to call the API.
// Preflight requests are answered directly.
func NewCORSMiddleware(allowOrigin string) mux.MiddlewareFunc {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			if allowOrigin != "*" {
				w.Header().Add("Vary", "Origin")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware logs every request at trace level.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Trace("%s %s from %s took %s", r.Method, r.URL.Path, r.RemoteAddr, time.Since(start))
	})
}
