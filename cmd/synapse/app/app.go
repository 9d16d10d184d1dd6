// Package app wires configuration, logging and the gateway components into
// the synapse command line.
package app

import (
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"github.com/synapseflow/gateway/internal/gateway"
	"github.com/synapseflow/gateway/internal/upstream"
	"github.com/synapseflow/gateway/pkg/errors"
	"github.com/synapseflow/gateway/pkg/tools"
)

// App holds the process-wide dependencies of the synapse command.
type App struct {
	version string
	commit  string
	date    string
	builtBy string

	config *Config
	logger *zerolog.Logger

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	mu      sync.Mutex
	catalog *tools.Catalog
	core    *gateway.Core
}

// New creates a new App with configuration loaded from the environment.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// Catalog builds the tool catalog once, from CATALOG_FILE when set or the
// embedded declaration otherwise.
func (a *App) Catalog() (*tools.Catalog, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.catalog != nil {
		return a.catalog, nil
	}

	var (
		decl *tools.Declaration
		err  error
	)
	if a.config.CatalogFile != "" {
		decl, err = tools.LoadDeclaration(a.config.CatalogFile)
	} else {
		decl, err = tools.DefaultDeclaration()
	}
	if err != nil {
		return nil, err
	}

	catalog, err := tools.Build(decl)
	if err != nil {
		return nil, err
	}
	a.catalog = catalog
	return catalog, nil
}

// Gateway returns the shared gateway core over the upstream client.
func (a *App) Gateway() (*gateway.Core, error) {
	catalog, err := a.Catalog()
	if err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.core != nil {
		return a.core, nil
	}

	client, err := upstream.New(a.config.BackendURL,
		upstream.WithTimeout(a.config.UpstreamTimeout),
		upstream.WithAPIKey(a.config.BackendAPIKey),
		upstream.WithLogger(a.logger),
	)
	if err != nil {
		return nil, errors.WrapConfig("upstream", err)
	}

	a.core = gateway.New(client, catalog)
	return a.core, nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithIO replaces the standard streams, for tests and embedding.
func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(a *App) error {
		a.stdin = in
		a.stdout = out
		a.stderr = errOut
		return nil
	}
}
