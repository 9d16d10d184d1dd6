package server

import (
	"net/http"

	"github.com/synapseflow/gateway/internal/server/handlers"
	"github.com/synapseflow/gateway/internal/server/middleware"
	"github.com/synapseflow/gateway/internal/server/response"
	"github.com/synapseflow/gateway/internal/server/sse"
	ws "github.com/synapseflow/gateway/internal/server/websocket"
)

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	corsConfig := middleware.NewCORSConfig(s.config.CORSOrigins)
	wsTiming := ws.Timing{Keepalive: s.config.KeepaliveInterval, WriteTimeout: s.config.WriteTimeout}

	h := handlers.New(handlers.Deps{
		Capabilities: s.caps,
		Hub:          s.hub,
		Runner:       s.runner,
		Cache:        s.cache,
		LoadTimeout:  s.config.UpstreamTimeout,
		Stream:       sse.NewHandler(s.hub, s.config.WriteTimeout, s.logger),
		WebSocket:    ws.NewHandler(s.hub, middleware.OriginChecker(corsConfig), wsTiming, s.logger),
		Protocols:    handlers.Protocols{Push: true, Interactive: s.config.Interactive},
		Version:      s.config.Version,
		StartTime:    s.startTime,
		Logger:       s.logger,
	})

	s.registerRoutes(mux, h)

	return s.applyMiddleware(mux, corsConfig)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	// Favicon handler (return 204 No Content to avoid 404 logs)
	mux.HandleFunc("/favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("/health", method(http.MethodGet, h.HandleHealth))
	mux.HandleFunc("/ready", method(http.MethodGet, h.HandleReady))
	mux.HandleFunc("/tools", method(http.MethodGet, h.HandleListTools))
	mux.HandleFunc("/tools/{name}", method(http.MethodGet, h.HandleGetTool))
	mux.HandleFunc("/stats", method(http.MethodGet, h.HandleStats))
	mux.HandleFunc("/research", method(http.MethodPost, h.HandleResearch))

	// Real-time endpoints
	mux.HandleFunc("/stream", method(http.MethodGet, h.HandleStream))
	mux.HandleFunc("/ws", method(http.MethodGet, h.HandleWebSocket))

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found", r.URL.Path)
	})
}

// method restricts a handler to a single HTTP method.
func method(m string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != m {
			w.Header().Set("Allow", m)
			response.MethodNotAllowed(w, r.Method)
			return
		}
		next(w, r)
	}
}

// applyMiddleware wraps handler with middleware chain.
func (s *Server) applyMiddleware(handler http.Handler, corsConfig middleware.CORSConfig) http.Handler {
	cfg := s.config

	// Rate limiting (if enabled)
	if cfg.RateLimit > 0 {
		rateLimiter := middleware.NewRateLimiter(s.ctx, cfg.RateLimit, s.logger)
		handler = middleware.RateLimit(rateLimiter)(handler)
	}

	// Authentication (if enabled)
	if cfg.AuthEnabled {
		handler = middleware.Auth(middleware.AuthConfig{
			APIKey: cfg.APIKey,
			Header: cfg.AuthHeader,
			Public: middleware.PublicPaths,
		}, s.logger)(handler)
	}

	return middleware.Chain(
		middleware.Recovery(s.logger),
		middleware.RequestID(),
		middleware.Logger(s.logger),
		middleware.CORS(corsConfig),
	)(handler)
}
