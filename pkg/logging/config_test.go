package logging_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapseflow/gateway/pkg/logging"
)

func TestNewLoggerFromConfig(t *testing.T) {
	prev := zerolog.GlobalLevel()
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	t.Run("file output honours level", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gateway.log")

		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "warn",
			Format: "json",
			Output: path,
		})
		logger.Info().Msg("listener registered")
		logger.Warn().Msg("listener dropped")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.NotContains(t, string(content), "listener registered")
		assert.Contains(t, string(content), `"message":"listener dropped"`)
		assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
	})

	t.Run("caller", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gateway.log")

		logger := logging.NewLoggerFromConfig(&logging.Config{Level: "debug", Format: "json", Output: path, AddCaller: true})
		logger.Debug().Msg("with caller")

		content, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(content), `"caller":`)
	})

	t.Run("nil config", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(nil)
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})
}

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"trace":   zerolog.TraceLevel,
		"DEBUG":   zerolog.DebugLevel,
		"":        zerolog.InfoLevel,
		"info":    zerolog.InfoLevel,
		"warning": zerolog.WarnLevel,
		"error":   zerolog.ErrorLevel,
		"off":     zerolog.Disabled,
		"bogus":   zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, logging.ParseLevel(in), "level %q", in)
	}

	assert.True(t, logging.ValidLevel("WARN"))
	assert.False(t, logging.ValidLevel("verbose"))
	assert.False(t, logging.ValidLevel(""))
}
