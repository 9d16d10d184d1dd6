// Package logging provides structured logging for the synapse gateway using zerolog.
// Logs go to stderr unless configured otherwise: the interactive session
// owns stdout for its JSON responses.
//
// Example usage:
//
//	log := logging.NewLoggerFromConfig(&logging.Config{Level: "debug"})
//	hubLog := logging.Component(&log, "hub")
//	hubLog.Info().Int("listeners", 3).Msg("Broadcast delivered")
//
//	ctx := logging.WithLogger(context.Background(), &log)
//	logging.FromContext(ctx).Debug().Msg("Using logger from context")
package logging

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// defaultLogger backs FromContext when no logger was stored. Components
// otherwise receive their logger through constructors.
var defaultLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Default returns the fallback logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the fallback logger and zerolog's global one.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
	log.Logger = logger
}

// Component returns a child logger tagged with a component name.
func Component(logger *zerolog.Logger, name string) *zerolog.Logger {
	if logger == nil {
		logger = Default()
	}
	child := logger.With().Str("component", name).Logger()
	return &child
}

// Listener returns a child logger tagged with a listener id and its
// transport ("sse", "websocket").
func Listener(logger *zerolog.Logger, id, transport string) *zerolog.Logger {
	if logger == nil {
		logger = Default()
	}
	child := logger.With().Str("listener_id", id).Str("transport", transport).Logger()
	return &child
}
