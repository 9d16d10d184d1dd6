package middleware

import (
	"crypto/subtle"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/synapseflow/gateway/internal/server/response"
)

// DefaultAuthHeader carries the API key unless configured otherwise.
const DefaultAuthHeader = "X-API-Key"

// PublicPaths are served without a key. Browser EventSource clients cannot
// set headers, so the stream endpoints are among them.
var PublicPaths = []string{"/health", "/ready", "/stream", "/ws"}

// AuthConfig protects every non-public path with a static API key.
type AuthConfig struct {
	APIKey string
	Header string
	Public []string
}

// Auth rejects requests that do not present cfg.APIKey, either in
// cfg.Header or as an Authorization bearer token.
func Auth(cfg AuthConfig, logger *zerolog.Logger) func(http.Handler) http.Handler {
	header := cfg.Header
	if header == "" {
		header = DefaultAuthHeader
	}
	want := []byte(cfg.APIKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions || slices.Contains(cfg.Public, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			key := presentedKey(r, header)
			if key != "" && subtle.ConstantTimeCompare([]byte(key), want) == 1 {
				next.ServeHTTP(w, r)
				return
			}

			logger.Warn().
				Str("path", r.URL.Path).
				Str("remote_addr", r.RemoteAddr).
				Bool("key_provided", key != "").
				Msg("Authentication failed")
			response.Unauthorized(w, header)
		})
	}
}

func presentedKey(r *http.Request, header string) string {
	if key := r.Header.Get(header); key != "" {
		return key
	}
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}
