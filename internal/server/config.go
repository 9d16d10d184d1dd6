package server

import (
	"fmt"
	"time"

	"github.com/synapseflow/gateway/pkg/constants"
	"github.com/synapseflow/gateway/pkg/errors"
)

// Config holds server configuration.
type Config struct {
	// Server settings
	Host string
	Port int

	// CORS settings
	CORSOrigins []string

	// Authentication settings
	AuthEnabled bool
	APIKey      string
	AuthHeader  string

	// Performance settings
	RateLimit       int // Requests per minute per IP (0 to disable)
	StatsCacheTTL   time.Duration
	UpstreamTimeout time.Duration // bounds a shared cache load

	// Streaming
	WriteTimeout      time.Duration
	KeepaliveInterval time.Duration
	NarrationPace     time.Duration
	Greeting          string

	// HTTP timeouts
	ReadHeaderTimeout time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration

	// Reported by /health
	Version     string
	Interactive bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Host:              constants.DefaultHost,
		Port:              constants.DefaultPort,
		CORSOrigins:       []string{constants.DefaultCORSOrigin},
		AuthHeader:        "X-API-Key",
		RateLimit:         0,
		StatsCacheTTL:     constants.StatsCacheTTL,
		UpstreamTimeout:   constants.UpstreamTimeout,
		WriteTimeout:      constants.WriteTimeout,
		KeepaliveInterval: constants.KeepaliveInterval,
		NarrationPace:     constants.NarrationPace,
		ReadHeaderTimeout: constants.ReadHeaderTimeout,
		IdleTimeout:       constants.IdleTimeout,
		ShutdownTimeout:   constants.ShutdownTimeout,
		Version:           constants.Version,
	}
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks the configuration before the server binds.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.NewConfigError("server", fmt.Sprintf("port %d out of range", c.Port), nil)
	}
	if c.AuthEnabled && c.APIKey == "" {
		return errors.NewConfigError("server", "authentication enabled without an API key", nil)
	}
	if c.RateLimit < 0 {
		return errors.NewConfigError("server", "rate limit must not be negative", nil)
	}
	return nil
}
