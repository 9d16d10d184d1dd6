// Package gateway defines the capability set shared by the transport
// bindings: submit a query, read upstream stats, list the tool catalog.
package gateway

import (
	"context"

	"github.com/synapseflow/gateway/pkg/research"
	"github.com/synapseflow/gateway/pkg/tools"
)

// Capabilities is what a transport binding needs from the gateway core.
type Capabilities interface {
	Submit(ctx context.Context, q research.Query) (*research.Result, error)
	Stats(ctx context.Context) (research.Stats, error)
	Health(ctx context.Context) (research.Health, error)
	Catalog() *tools.Catalog
}

// Upstream is the subset of the upstream client the gateway uses.
type Upstream interface {
	Submit(ctx context.Context, q research.Query) (*research.Result, error)
	Stats(ctx context.Context) (research.Stats, error)
	Health(ctx context.Context) (research.Health, error)
}

// Core implements Capabilities over an upstream client and a catalog.
type Core struct {
	upstream Upstream
	catalog  *tools.Catalog
}

// New creates the gateway core.
func New(upstream Upstream, catalog *tools.Catalog) *Core {
	return &Core{upstream: upstream, catalog: catalog}
}

// Submit validates q and forwards it upstream. Invalid queries never leave
// the process.
func (c *Core) Submit(ctx context.Context, q research.Query) (*research.Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return c.upstream.Submit(ctx, q)
}

// Stats forwards to the upstream.
func (c *Core) Stats(ctx context.Context) (research.Stats, error) {
	return c.upstream.Stats(ctx)
}

// Health forwards to the upstream.
func (c *Core) Health(ctx context.Context) (research.Health, error) {
	return c.upstream.Health(ctx)
}

// Catalog returns the tool catalog.
func (c *Core) Catalog() *tools.Catalog {
	return c.catalog
}
