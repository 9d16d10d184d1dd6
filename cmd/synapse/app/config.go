package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/synapseflow/gateway/pkg/constants"
	"github.com/synapseflow/gateway/pkg/errors"
)

// Config holds the application configuration loaded from flags, environment
// variables, .env files and an optional config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	ConfigFile string

	// Transports
	PushEnabled        bool
	InteractiveEnabled bool

	// Push-stream server
	Host              string
	Port              int
	CORSOrigins       []string
	APIKey            string
	RateLimit         int
	KeepaliveInterval time.Duration
	NarrationPace     time.Duration
	StatsCacheTTL     time.Duration

	// Upstream
	BackendURL      string
	BackendAPIKey   string
	UpstreamTimeout time.Duration

	// Catalog declaration file; empty uses the embedded one
	CatalogFile string

	// Event mirror; empty disables it
	RedisURL     string
	RedisChannel string

	// Logging configuration
	LogLevel  string
	LogFormat string
	LogOutput string
}

// envBindings maps config keys to the environment variables that set them.
var envBindings = map[string]string{
	"port":               "MCP_SERVER_PORT",
	"host":               "HOST",
	"cors_origins":       "CORS_ORIGINS",
	"backend_url":        "BACKEND_URL",
	"backend_api_key":    "BACKEND_API_KEY",
	"api_key":            "API_KEY",
	"push_enabled":       "MCP_SSE_ENABLED",
	"interactive":        "MCP_STDIO_ENABLED",
	"upstream_timeout":   "UPSTREAM_TIMEOUT",
	"keepalive_interval": "KEEPALIVE_INTERVAL",
	"narration_pace":     "NARRATION_PACE",
	"rate_limit":         "RATE_LIMIT",
	"stats_cache_ttl":    "STATS_CACHE_TTL",
	"catalog_file":       "CATALOG_FILE",
	"redis_url":          "REDIS_URL",
	"redis_channel":      "REDIS_CHANNEL",
	"log_level":          "LOG_LEVEL",
	"log_format":         "LOG_FORMAT",
	"log_output":         "LOG_OUTPUT",
	"verbose":            "VERBOSE",
	"quiet":              "QUIET",
	"no_color":           "NO_COLOR",
	"format":             "FORMAT",
}

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by UpdateFromFlags)
// 2. Environment variables
// 3. .env files
// 4. Config file (.synapse.yaml in the working or home directory)
// 5. Defaults
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.NewConfigError("config", "binding "+env, err)
		}
	}

	if configFile := os.Getenv("SYNAPSE_CONFIG"); configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(".synapse")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, errors.NewConfigError("config", "reading config file", err)
		}
	}

	return &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		PushEnabled:        v.GetBool("push_enabled"),
		InteractiveEnabled: v.GetBool("interactive"),

		Host:              v.GetString("host"),
		Port:              v.GetInt("port"),
		CORSOrigins:       splitList(v.GetStringSlice("cors_origins")),
		APIKey:            v.GetString("api_key"),
		RateLimit:         v.GetInt("rate_limit"),
		KeepaliveInterval: v.GetDuration("keepalive_interval"),
		NarrationPace:     v.GetDuration("narration_pace"),
		StatsCacheTTL:     v.GetDuration("stats_cache_ttl"),

		BackendURL:      v.GetString("backend_url"),
		BackendAPIKey:   v.GetString("backend_api_key"),
		UpstreamTimeout: v.GetDuration("upstream_timeout"),

		CatalogFile: v.GetString("catalog_file"),

		RedisURL:     v.GetString("redis_url"),
		RedisChannel: v.GetString("redis_channel"),

		LogLevel:  v.GetString("log_level"),
		LogFormat: v.GetString("log_format"),
		LogOutput: v.GetString("log_output"),
	}, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", constants.DefaultPort)
	v.SetDefault("host", constants.DefaultHost)
	v.SetDefault("cors_origins", []string{constants.DefaultCORSOrigin})
	v.SetDefault("backend_url", constants.DefaultBackendURL)
	v.SetDefault("push_enabled", true)
	v.SetDefault("interactive", false)
	v.SetDefault("upstream_timeout", constants.UpstreamTimeout)
	v.SetDefault("keepalive_interval", constants.KeepaliveInterval)
	v.SetDefault("narration_pace", constants.NarrationPace)
	v.SetDefault("rate_limit", 0)
	v.SetDefault("stats_cache_ttl", constants.StatsCacheTTL)
	v.SetDefault("redis_channel", constants.DefaultRedisChannel)
	v.SetDefault("log_format", "auto")
	v.SetDefault("log_output", "stderr")
}

// UpdateFromFlags applies parsed command flags so they take precedence
// over config file and environment.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// Validate reports configuration that prevents the gateway from starting.
func (c *Config) Validate() error {
	if !c.PushEnabled && !c.InteractiveEnabled {
		return errors.NewConfigError("config", "no transport enabled: set MCP_SSE_ENABLED or MCP_STDIO_ENABLED", nil)
	}
	if c.PushEnabled && (c.Port < 0 || c.Port > 65535) {
		return errors.NewConfigError("config", fmt.Sprintf("port %d out of range", c.Port), nil)
	}
	if strings.TrimSpace(c.BackendURL) == "" {
		return errors.NewConfigError("config", "BACKEND_URL is empty", nil)
	}
	if c.UpstreamTimeout <= 0 {
		return errors.NewConfigError("config", "upstream timeout must be positive", nil)
	}
	if c.KeepaliveInterval <= 0 {
		return errors.NewConfigError("config", "keepalive interval must be positive", nil)
	}
	if c.NarrationPace < 0 {
		return errors.NewConfigError("config", "narration pace must not be negative", nil)
	}
	if c.RateLimit < 0 {
		return errors.NewConfigError("config", "rate limit must not be negative", nil)
	}
	return nil
}

// loadEnvFiles loads environment variables from .env files. Variables
// already set in the environment win.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// splitList flattens comma-separated entries, since CORS_ORIGINS arrives as
// one string from the environment.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
