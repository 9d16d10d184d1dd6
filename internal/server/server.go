package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/synapseflow/gateway/internal/gateway"
	"github.com/synapseflow/gateway/internal/server/cache"
	"github.com/synapseflow/gateway/internal/server/events"
	"github.com/synapseflow/gateway/internal/server/narration"
	"github.com/synapseflow/gateway/pkg/errors"
	"github.com/synapseflow/gateway/pkg/logging"
)

// Server holds the HTTP server state and dependencies.
type Server struct {
	caps   gateway.Capabilities
	config Config
	hub    *events.Hub
	mirror *events.RedisMirror
	runner *narration.Runner
	cache  *cache.Cache
	logger *zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	httpServer *http.Server
	listener   net.Listener
	startTime  time.Time

	shutdownOnce sync.Once
	shutdownErr  error
}

// Option configures a Server.
type Option func(*Server)

// WithMirror republishes every hub event to a Redis channel.
func WithMirror(m *events.RedisMirror) Option {
	return func(s *Server) {
		s.mirror = m
	}
}

// New creates a new server instance with the given configuration.
func New(caps gateway.Capabilities, cfg Config, logger *zerolog.Logger, opts ...Option) (*Server, error) {
	if caps == nil {
		return nil, errors.NewConfigError("server", "gateway capabilities are required", nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	logger = logging.Component(logger, "server")

	s := &Server{
		caps:      caps,
		config:    cfg,
		logger:    logger,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}

	hubOpts := []events.HubOption{events.WithKeepaliveInterval(cfg.KeepaliveInterval)}
	if cfg.Greeting != "" {
		hubOpts = append(hubOpts, events.WithGreeting(cfg.Greeting))
	}
	if s.mirror != nil {
		hubOpts = append(hubOpts, events.WithMirror(s.mirror))
	}
	s.hub = events.NewHub(logger, hubOpts...)

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.runner = narration.NewRunner(s.ctx, caps, narration.NewGlobalBroadcast(s.hub), narration.Simulated(cfg.NarrationPace), logger)
	s.cache = cache.New(cfg.StatsCacheTTL, 2*cfg.StatsCacheTTL)

	s.httpServer = &http.Server{
		Handler:           s.setupRouter(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		// WriteTimeout stays zero: streams are long-lived and each write
		// carries its own deadline.
	}

	logger.Debug().Str("addr", cfg.Addr()).Msg("Server instance created")
	return s, nil
}

// Start starts background services (hub keepalive, event mirror).
func (s *Server) Start() {
	go s.hub.Run(s.ctx)
	if s.mirror != nil {
		go s.mirror.Run(s.ctx)
	}
	s.logger.Debug().Msg("Background services started")
}

// Listen binds the configured address. A bind failure is returned as is and
// is fatal to the caller.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return err
	}
	s.listener = ln
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Push-stream server listening")
	return nil
}

// Addr returns the bound address, or the configured one before Listen.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Addr()
}

// Serve accepts connections until Shutdown. It returns nil after a clean
// shutdown.
func (s *Server) Serve() error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}
	err := s.httpServer.Serve(s.listener)
	if stderrors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Handler returns the configured http.Handler with middleware chain applied.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Shutdown announces the shutdown to every listener, stops in-flight
// narrations and drains HTTP connections. Calling it again returns the
// first result.
func (s *Server) Shutdown(ctx context.Context) error {
	s.shutdownOnce.Do(func() {
		s.logger.Info().Int("listeners", s.hub.ListenerCount()).Msg("Shutting down server")

		s.hub.Shutdown()
		s.cancel()

		done := make(chan struct{})
		go func() {
			s.runner.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-ctx.Done():
			s.logger.Warn().Msg("Narrations did not stop before shutdown deadline")
		}

		if s.listener != nil {
			s.shutdownErr = s.httpServer.Shutdown(ctx)
		}
		if s.mirror != nil {
			if err := s.mirror.Close(); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to close event mirror")
			}
		}
	})
	return s.shutdownErr
}

// Hub returns the event hub.
func (s *Server) Hub() *events.Hub {
	return s.hub
}
