// Package handlers provides HTTP request handlers for the gateway's
// push-stream binding.
package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/synapseflow/gateway/internal/gateway"
	"github.com/synapseflow/gateway/internal/server/cache"
	"github.com/synapseflow/gateway/internal/server/events"
	"github.com/synapseflow/gateway/internal/server/narration"
	"github.com/synapseflow/gateway/pkg/constants"
)

// Protocols reports which transport bindings the process runs.
type Protocols struct {
	Push        bool `json:"push"`
	Interactive bool `json:"interactive"`
}

// Deps are the collaborators of the HTTP handlers.
type Deps struct {
	Capabilities gateway.Capabilities
	Hub          *events.Hub
	Runner       *narration.Runner
	Cache        *cache.Cache
	LoadTimeout  time.Duration // bounds a shared cache load; 0 means the upstream default
	Stream       http.Handler
	WebSocket    http.Handler
	Protocols    Protocols
	Version      string
	StartTime    time.Time
	Logger       *zerolog.Logger
}

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	caps      gateway.Capabilities
	hub       *events.Hub
	runner    *narration.Runner
	cache     *cache.Cache
	loadLimit time.Duration
	stream    http.Handler
	websocket http.Handler
	protocols Protocols
	version   string
	started   time.Time
	logger    *zerolog.Logger
	now       func() time.Time
}

// New creates a new Handlers instance.
func New(deps Deps) *Handlers {
	h := &Handlers{
		caps:      deps.Capabilities,
		hub:       deps.Hub,
		runner:    deps.Runner,
		cache:     deps.Cache,
		loadLimit: deps.LoadTimeout,
		stream:    deps.Stream,
		websocket: deps.WebSocket,
		protocols: deps.Protocols,
		version:   deps.Version,
		started:   deps.StartTime,
		logger:    deps.Logger,
		now:       time.Now,
	}
	if h.started.IsZero() {
		h.started = h.now()
	}
	if h.loadLimit <= 0 {
		h.loadLimit = constants.UpstreamTimeout
	}
	return h
}
