package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/shllg/mcp-agents/internal/constants"
)

// Config stores environment-driven settings for the server.
type Config struct {
	// Provider selects the active backend when no -provider flag is given.
	Provider string `env:"MCP_AGENTS_PROVIDER" envDefault:"claude"`
	// BackendsFile is an optional YAML file declaring additional backends.
	BackendsFile string `env:"MCP_AGENTS_BACKENDS_FILE"`
	// LogLevel sets the logger level.
	LogLevel string `env:"MCP_AGENTS_LOG_LEVEL" envDefault:"info"`
	// Transport selects "stdio" or "http".
	Transport string `env:"MCP_AGENTS_TRANSPORT" envDefault:"stdio"`
	// HTTP configures the streamable HTTP transport.
	HTTP HTTPConfig
	// ShutdownTimeout controls graceful shutdown duration.
	ShutdownTimeout time.Duration `env:"MCP_AGENTS_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	// DefaultTimeoutMS is used when a call has no valid timeout_ms.
	DefaultTimeoutMS int `env:"MCP_AGENTS_DEFAULT_TIMEOUT_MS" envDefault:"120000"`
	// MaxOutputBytes caps combined stdout and stderr of one invocation.
	MaxOutputBytes int64 `env:"MCP_AGENTS_MAX_OUTPUT_BYTES" envDefault:"10485760"`
	// Keepalive is the lifecycle guard period.
	Keepalive time.Duration `env:"MCP_AGENTS_KEEPALIVE" envDefault:"60s"`
	// MaxConcurrent limits parallel invocations; 0 disables the limit.
	MaxConcurrent int `env:"MCP_AGENTS_MAX_CONCURRENT" envDefault:"0"`
	// RatePerMinute limits invocations per minute; 0 disables the limit.
	RatePerMinute int `env:"MCP_AGENTS_RATE_PER_MINUTE" envDefault:"0"`
	// Preflight runs "<command> --version" once at startup.
	Preflight bool `env:"MCP_AGENTS_PREFLIGHT" envDefault:"false"`
}

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	// Listen is the HTTP listen address.
	Listen string `env:"MCP_AGENTS_HTTP_LISTEN" envDefault:"127.0.0.1:8080"`
	// Path is the MCP HTTP endpoint path.
	Path string `env:"MCP_AGENTS_HTTP_PATH" envDefault:"/mcp"`
	// Stateless disables session tracking.
	Stateless bool `env:"MCP_AGENTS_HTTP_STATELESS" envDefault:"false"`
}

// Load reads an optional .env file and parses environment variables into Config.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks value ranges that env tags cannot express.
func (c Config) Validate() error {
	switch c.Transport {
	case constants.TransportStdio, constants.TransportHTTP:
	default:
		return fmt.Errorf("MCP_AGENTS_TRANSPORT must be stdio or http, got %q", c.Transport)
	}
	if c.DefaultTimeoutMS < 1 {
		return fmt.Errorf("MCP_AGENTS_DEFAULT_TIMEOUT_MS must be >= 1")
	}
	if c.MaxOutputBytes < 1 {
		return fmt.Errorf("MCP_AGENTS_MAX_OUTPUT_BYTES must be >= 1")
	}
	if c.Keepalive <= 0 {
		return fmt.Errorf("MCP_AGENTS_KEEPALIVE must be positive")
	}
	if c.MaxConcurrent < 0 || c.RatePerMinute < 0 {
		return fmt.Errorf("MCP_AGENTS_MAX_CONCURRENT and MCP_AGENTS_RATE_PER_MINUTE must be >= 0")
	}
	return nil
}

// DefaultTimeout returns DefaultTimeoutMS as a duration.
func (c Config) DefaultTimeout() time.Duration {
	return time.Duration(c.DefaultTimeoutMS) * time.Millisecond
}
