package app

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/synapseflow/gateway/internal/gateway"
	"github.com/synapseflow/gateway/internal/server"
	"github.com/synapseflow/gateway/internal/server/events"
	"github.com/synapseflow/gateway/internal/session"
	"github.com/synapseflow/gateway/pkg/constants"
)

// NewServeCommand creates the serve command.
func (a *App) NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the enabled gateway transports",
		Long: `Serve runs the push-stream HTTP server, the interactive session, or
both. The process exits when a signal arrives or, with the interactive
session enabled, when the session ends.

Endpoints:
  GET  /health    liveness with protocol summary
  GET  /ready     upstream readiness
  GET  /tools     tool catalog (source, category, name_contains, limit, offset)
  GET  /stats     upstream statistics (cached)
  POST /research  submit a query; progress arrives on /stream and /ws
  GET  /stream    Server-Sent Events
  GET  /ws        WebSocket`,
		Example: `  # Push-stream server on the default port 3001
  synapse serve

  # Interactive session only
  synapse serve --push=false --interactive

  # Both transports, custom backend
  synapse serve --interactive --backend-url http://research:4000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.applyServeFlags(cmd)
			return a.runServe(cmd.Context())
		},
	}

	cmd.Flags().Int("port", constants.DefaultPort, "push-stream server port")
	cmd.Flags().String("host", constants.DefaultHost, "bind address")
	cmd.Flags().Bool("push", true, "enable the push-stream HTTP transport")
	cmd.Flags().Bool("interactive", false, "enable the interactive session on stdin/stdout")
	cmd.Flags().String("backend-url", constants.DefaultBackendURL, "upstream research service URL")
	cmd.Flags().StringSlice("cors-origins", nil, "allowed CORS origins (comma-separated)")
	cmd.Flags().Int("rate-limit", 0, "requests per minute per IP (0 to disable)")
	cmd.Flags().String("redis-url", "", "mirror every event to this Redis server")

	return cmd
}

// applyServeFlags overrides configuration with flags set on the command line.
func (a *App) applyServeFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	c := a.config

	if flags.Changed("port") {
		c.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("host") {
		c.Host, _ = flags.GetString("host")
	}
	if flags.Changed("push") {
		c.PushEnabled, _ = flags.GetBool("push")
	}
	if flags.Changed("interactive") {
		c.InteractiveEnabled, _ = flags.GetBool("interactive")
	}
	if flags.Changed("backend-url") {
		c.BackendURL, _ = flags.GetString("backend-url")
	}
	if flags.Changed("cors-origins") {
		c.CORSOrigins, _ = flags.GetStringSlice("cors-origins")
	}
	if flags.Changed("rate-limit") {
		c.RateLimit, _ = flags.GetInt("rate-limit")
	}
	if flags.Changed("redis-url") {
		c.RedisURL, _ = flags.GetString("redis-url")
	}
}

// serverConfig maps application configuration onto the push-stream server.
func (a *App) serverConfig() server.Config {
	c := a.config
	cfg := server.DefaultConfig()
	cfg.Host = c.Host
	cfg.Port = c.Port
	cfg.CORSOrigins = c.CORSOrigins
	cfg.AuthEnabled = c.APIKey != ""
	cfg.APIKey = c.APIKey
	cfg.RateLimit = c.RateLimit
	cfg.KeepaliveInterval = c.KeepaliveInterval
	cfg.NarrationPace = c.NarrationPace
	cfg.StatsCacheTTL = c.StatsCacheTTL
	cfg.UpstreamTimeout = c.UpstreamTimeout
	cfg.Version = constants.Version
	cfg.Interactive = c.InteractiveEnabled
	return cfg
}

// runServe starts every enabled transport and blocks until ctx is done, the
// HTTP server fails, or the interactive session ends.
func (a *App) runServe(ctx context.Context) error {
	if err := a.config.Validate(); err != nil {
		return err
	}

	core, err := a.Gateway()
	if err != nil {
		return err
	}

	printBanner(a.stderr, a.version, a.config, core.Catalog().Count())

	var srv *server.Server
	if a.config.PushEnabled {
		srv, err = a.newServer(ctx, core)
		if err != nil {
			return err
		}
		if err := srv.Listen(); err != nil {
			return fmt.Errorf("binding push-stream listener on %s: %w", srv.Addr(), err)
		}
		srv.Start()
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)
	if srv != nil {
		go func() { serveErr <- srv.Serve() }()
	}

	var sessionDone chan struct{}
	if a.config.InteractiveEnabled {
		sessionDone = make(chan struct{})
		sess := session.New(core, a.stdin, a.stdout, a.logger, session.WithVersion(constants.Version))
		go func() {
			defer close(sessionDone)
			_ = sess.Run(ctx)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info().Msg("Shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			runErr = fmt.Errorf("push-stream server failed: %w", err)
		}
	case <-sessionDone:
		a.logger.Info().Msg("Interactive session ended")
	}

	cancel()
	if srv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warn().Err(err).Msg("Push-stream server shutdown had issues")
		}
	}
	if sessionDone != nil {
		select {
		case <-sessionDone:
		case <-time.After(time.Second):
		}
	}

	return runErr
}

func (a *App) newServer(ctx context.Context, core gateway.Capabilities) (*server.Server, error) {
	var opts []server.Option

	if a.config.RedisURL != "" {
		mirror, err := events.NewRedisMirrorFromURL(a.config.RedisURL, a.config.RedisChannel, a.logger)
		if err != nil {
			return nil, err
		}
		pingCtx, cancel := context.WithTimeout(ctx, constants.MirrorTimeout)
		defer cancel()
		if err := mirror.Ping(pingCtx); err != nil {
			a.logger.Warn().Err(err).Str("channel", mirror.Channel()).Msg("Event mirror unreachable, publishing best effort")
		}
		opts = append(opts, server.WithMirror(mirror))
	}

	return server.New(core, a.serverConfig(), a.logger, opts...)
}
