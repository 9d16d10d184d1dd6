package middleware

import (
	"net/http"
	"slices"
	"strings"
)

// CORSConfig controls cross-origin access. An empty Origins list, or one
// containing "*", allows every origin.
type CORSConfig struct {
	Origins []string
	Methods []string
	Headers []string
}

// NewCORSConfig allows origins for the gateway's methods and request headers.
func NewCORSConfig(origins []string) CORSConfig {
	return CORSConfig{
		Origins: origins,
		Methods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		Headers: []string{"Content-Type", "Authorization", DefaultAuthHeader, "Last-Event-ID", RequestIDHeader},
	}
}

func (c CORSConfig) allowAll() bool {
	return len(c.Origins) == 0 || slices.Contains(c.Origins, "*")
}

func (c CORSConfig) allows(origin string) bool {
	return c.allowAll() || slices.Contains(c.Origins, origin)
}

// CORS sets the access-control headers and answers preflight requests
// with 204.
func CORS(cfg CORSConfig) func(http.Handler) http.Handler {
	methods := strings.Join(cfg.Methods, ", ")
	headers := strings.Join(cfg.Headers, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			origin := r.Header.Get("Origin")

			switch {
			case cfg.allowAll():
				h.Set("Access-Control-Allow-Origin", "*")
			case origin != "" && cfg.allows(origin):
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			}
			h.Set("Access-Control-Allow-Methods", methods)
			h.Set("Access-Control-Allow-Headers", headers)
			h.Set("Access-Control-Max-Age", "86400")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// OriginChecker is the WebSocket upgrade check matching cfg. Requests
// without an Origin header come from non-browser clients and pass.
func OriginChecker(cfg CORSConfig) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || cfg.allows(origin)
	}
}
