// Package constants provides shared constants used throughout the gateway.
// This includes timeouts, limits, and defaults that must stay consistent
// between the push-stream and interactive transports.
package constants

import "time"

// Version is the protocol version reported by /health and the interactive welcome.
const Version = "1.0.0"

// Timeout constants define various timeout durations used in the application
const (
	// UpstreamTimeout is the upper bound on a single upstream call
	UpstreamTimeout = 120 * time.Second

	// KeepaliveInterval is the period of the hub liveness tick
	KeepaliveInterval = 30 * time.Second

	// NarrationPace is the delay between two scripted narration events
	NarrationPace = 1 * time.Second

	// WriteTimeout bounds a single write to a push-stream listener
	WriteTimeout = 10 * time.Second

	// ShutdownTimeout is the grace period for draining HTTP connections
	ShutdownTimeout = 5 * time.Second

	// ReadHeaderTimeout protects the HTTP listener against slow clients
	ReadHeaderTimeout = 10 * time.Second

	// IdleTimeout is the keep-alive idle timeout for HTTP connections
	IdleTimeout = 120 * time.Second

	// StatsCacheTTL is how long upstream stats are served from cache
	StatsCacheTTL = 10 * time.Second

	// MirrorTimeout bounds a single publish to the event mirror
	MirrorTimeout = 2 * time.Second
)

// Limit constants define various limits and capacities
const (
	// MaxRequestBodySize caps the size of a submitted research query (1 MB)
	MaxRequestBodySize = 1 << 20

	// MaxSessionLineSize caps a single interactive input line (1 MB)
	MaxSessionLineSize = 1 << 20

	// SessionPaperLimit is the number of result items echoed by the interactive session
	SessionPaperLimit = 5

	// ListenerBufferSize is the outbound queue size of a WebSocket listener
	ListenerBufferSize = 256
)

// Default values
const (
	// DefaultPort is the default HTTP port for the push-stream transport
	DefaultPort = 3001

	// DefaultHost is the default bind address
	DefaultHost = "0.0.0.0"

	// DefaultBackendURL is the default upstream service URL
	DefaultBackendURL = "http://localhost:4000"

	// DefaultCORSOrigin is the default allowed browser origin
	DefaultCORSOrigin = "http://localhost:3000"

	// DefaultRedisChannel is the pub/sub channel used by the event mirror
	DefaultRedisChannel = "synapse:events"
)

// File permission constants define standard Unix file permissions
const (
	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)
