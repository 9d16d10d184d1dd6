package app

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/synapseflow/gateway/pkg/logging"
)

// NewLogger builds the process logger from config. The level comes from
// --log-level or LOG_LEVEL when set, then -v (debug) or -q (warn), else
// info. Output stays off stdout unless LOG_OUTPUT says otherwise, since the
// interactive session writes its responses there.
func NewLogger(config *Config) zerolog.Logger {
	level, warning := determineLogLevel(config)

	logger := logging.NewLoggerFromConfig(&logging.Config{
		Level:     level,
		Format:    config.LogFormat,
		Output:    config.LogOutput,
		NoColor:   config.NoColor,
		AddCaller: level == "debug" || level == "trace",
	})
	if warning != "" {
		logger.Warn().Str("level", level).Msg(warning)
	}
	return logger
}

// determineLogLevel resolves the effective level and, when the inputs were
// contradictory or invalid, a warning describing the choice made.
func determineLogLevel(config *Config) (level, warning string) {
	switch {
	case config.LogLevel != "" && !logging.ValidLevel(config.LogLevel):
		return "info", "Unknown log level " + config.LogLevel + ", falling back to info"
	case config.LogLevel != "":
		return strings.ToLower(config.LogLevel), ""
	case config.Verbose && config.Quiet:
		return "warn", "Both --verbose and --quiet given, --quiet wins"
	case config.Verbose:
		return "debug", ""
	case config.Quiet:
		return "warn", ""
	}
	return "info", ""
}
