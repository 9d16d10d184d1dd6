package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/synapseflow/gateway/pkg/constants"
	"github.com/synapseflow/gateway/pkg/errors"
)

// clearEnv blanks every bound variable; viper treats empty as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SYNAPSE_CONFIG", "")
	for _, env := range envBindings {
		t.Setenv(env, "")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	clearEnv(t)
	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, constants.DefaultPort, config.Port)
	assert.Equal(t, constants.DefaultHost, config.Host)
	assert.Equal(t, []string{constants.DefaultCORSOrigin}, config.CORSOrigins)
	assert.Equal(t, constants.DefaultBackendURL, config.BackendURL)
	assert.True(t, config.PushEnabled)
	assert.False(t, config.InteractiveEnabled)
	assert.Equal(t, 120*time.Second, config.UpstreamTimeout)
	assert.Equal(t, 30*time.Second, config.KeepaliveInterval)
	assert.Equal(t, time.Second, config.NarrationPace)
	assert.Equal(t, constants.DefaultRedisChannel, config.RedisChannel)
	assert.Equal(t, "stderr", config.LogOutput)
	require.NoError(t, config.Validate())
}

func TestLoadConfigEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("MCP_SERVER_PORT", "4100")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("BACKEND_URL", "http://research:4000")
	t.Setenv("BACKEND_API_KEY", "upstream-secret")
	t.Setenv("API_KEY", "gateway-secret")
	t.Setenv("MCP_SSE_ENABLED", "false")
	t.Setenv("MCP_STDIO_ENABLED", "true")
	t.Setenv("UPSTREAM_TIMEOUT", "5s")
	t.Setenv("NARRATION_PACE", "250ms")
	t.Setenv("RATE_LIMIT", "60")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	config, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 4100, config.Port)
	assert.Equal(t, "127.0.0.1", config.Host)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, config.CORSOrigins)
	assert.Equal(t, "http://research:4000", config.BackendURL)
	assert.Equal(t, "upstream-secret", config.BackendAPIKey)
	assert.Equal(t, "gateway-secret", config.APIKey)
	assert.False(t, config.PushEnabled)
	assert.True(t, config.InteractiveEnabled)
	assert.Equal(t, 5*time.Second, config.UpstreamTimeout)
	assert.Equal(t, 250*time.Millisecond, config.NarrationPace)
	assert.Equal(t, 60, config.RateLimit)
	assert.Equal(t, "redis://localhost:6379/0", config.RedisURL)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			PushEnabled:       true,
			Port:              3001,
			BackendURL:        "http://localhost:4000",
			UpstreamTimeout:   time.Second,
			KeepaliveInterval: time.Second,
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no transport", func(c *Config) { c.PushEnabled = false }},
		{"port out of range", func(c *Config) { c.Port = 70000 }},
		{"empty backend", func(c *Config) { c.BackendURL = " " }},
		{"zero upstream timeout", func(c *Config) { c.UpstreamTimeout = 0 }},
		{"zero keepalive", func(c *Config) { c.KeepaliveInterval = 0 }},
		{"negative pace", func(c *Config) { c.NarrationPace = -time.Second }},
		{"negative rate limit", func(c *Config) { c.RateLimit = -1 }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.IsConfigError(err))
		})
	}

	interactiveOnly := valid()
	interactiveOnly.PushEnabled = false
	interactiveOnly.InteractiveEnabled = true
	interactiveOnly.Port = -5
	assert.NoError(t, interactiveOnly.Validate())
}

func TestUpdateFromFlags(t *testing.T) {
	c := &Config{Format: "json", LogLevel: "warn"}
	c.UpdateFromFlags(true, false, true, "", "")
	assert.True(t, c.Verbose)
	assert.True(t, c.NoColor)
	assert.Equal(t, "json", c.Format)
	assert.Equal(t, "warn", c.LogLevel)

	c.UpdateFromFlags(false, false, false, "yaml", "debug")
	assert.Equal(t, "yaml", c.Format)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a,b", " c ", ""}))
	assert.Nil(t, splitList(nil))
}
