package errors_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/synapseflow/gateway/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Field:   "query",
			Message: "cannot be empty",
		}
		assert.Equal(t, "validation failed for field query: cannot be empty", err.Error())
		assert.True(t, errors.Is(err, pkgerrors.ErrInvalidInput))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{
			Message: "unknown command",
		}
		assert.Equal(t, "validation failed: unknown command", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
	})

	t.Run("wrap", func(t *testing.T) {
		assert.Nil(t, pkgerrors.WrapValidation("query", nil))
		err := pkgerrors.WrapValidation("query", pkgerrors.New("too short"))
		assert.True(t, pkgerrors.IsValidationError(err))
	})
}

func TestConfigError(t *testing.T) {
	base := pkgerrors.New("negative quota")
	err := pkgerrors.NewConfigError("catalog", "quota must be >= 0", base)

	assert.Equal(t, "configuration error in catalog: quota must be >= 0", err.Error())
	assert.True(t, pkgerrors.IsConfigError(err))
	assert.ErrorIs(t, err, base)

	wrapped := fmt.Errorf("startup: %w", err)
	var cfgErr *pkgerrors.ConfigError
	require.True(t, errors.As(wrapped, &cfgErr))
	assert.Equal(t, "catalog", cfgErr.Component)

	assert.Equal(t, "configuration error: bad", (&pkgerrors.ConfigError{Message: "bad"}).Error())
}

func TestUpstreamErrors(t *testing.T) {
	t.Run("status error", func(t *testing.T) {
		err := pkgerrors.NewUpstreamError("/api/research", 502, "bad gateway")
		assert.Equal(t, "upstream error from /api/research (status 502): bad gateway", err.Error())
		assert.True(t, pkgerrors.IsUpstreamUnavailable(err))
		assert.False(t, pkgerrors.IsTimeout(err))
	})

	t.Run("client status is not unavailability", func(t *testing.T) {
		err := pkgerrors.NewUpstreamError("/api/research", 400, "bad query")
		assert.False(t, pkgerrors.IsUpstreamUnavailable(err))
	})

	t.Run("unavailable", func(t *testing.T) {
		base := pkgerrors.New("connection refused")
		err := pkgerrors.NewUpstreamUnavailableError("/api/stats", base)
		assert.True(t, pkgerrors.IsUpstreamUnavailable(err))
		assert.ErrorIs(t, err, base)
	})

	t.Run("timeout", func(t *testing.T) {
		err := pkgerrors.NewUpstreamTimeoutError("/api/research", "2m0s", context.DeadlineExceeded)
		assert.Equal(t, "upstream /api/research timed out after 2m0s", err.Error())
		assert.True(t, pkgerrors.IsTimeout(err))
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.False(t, pkgerrors.IsUpstreamUnavailable(err))
	})

	t.Run("malformed result", func(t *testing.T) {
		err := &pkgerrors.UpstreamError{Endpoint: "/api/research", StatusCode: 200, Message: "missing papers", Err: pkgerrors.ErrMalformedResult}
		assert.ErrorIs(t, err, pkgerrors.ErrMalformedResult)
	})
}

func TestTransportWriteError(t *testing.T) {
	err := pkgerrors.NewTransportWriteError("abc", "sse", pkgerrors.New("broken pipe"))
	assert.Equal(t, "sse write to listener abc failed: broken pipe", err.Error())
	assert.True(t, pkgerrors.IsTransportClosed(err))
}

func TestParseError(t *testing.T) {
	err := pkgerrors.WrapParse("yaml", "catalog.yaml", pkgerrors.New("line 3: unexpected key"))
	assert.Equal(t, "parse error in yaml file catalog.yaml: line 3: unexpected key", err.Error())
	assert.Nil(t, pkgerrors.WrapParse("yaml", "", nil))
}
