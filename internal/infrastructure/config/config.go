package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all workbench configuration.
type Config struct {
	Server    ServerConfig
	Engine    EngineConfig
	Dispatch  DispatchConfig
	Data      DataConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8090"`
	Host string `envconfig:"HOST" default:"0.0.0.0"`
}

// Address returns the host:port the server binds to.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

// EngineConfig holds engine lifecycle configuration.
type EngineConfig struct {
	Debug bool `envconfig:"ENGINE_DEBUG" default:"false"`
}

// DispatchConfig holds asynchronous dispatcher configuration.
type DispatchConfig struct {
	QueueSize int `envconfig:"DISPATCH_QUEUE_SIZE" default:"256"`
	TapBuffer int `envconfig:"DISPATCH_TAP_BUFFER" default:"64"`
}

// DataConfig holds data manifest loading configuration.
type DataConfig struct {
	Path string `envconfig:"DATA_PATH" default:""`
	Glob string `envconfig:"DATA_GLOB" default:""`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// CORSConfig holds cross-origin configuration for the inspector API.
type CORSConfig struct {
	Origins []string `envconfig:"CORS_ORIGINS" default:"*"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8090",
			Host: "0.0.0.0",
		},
		Engine: EngineConfig{
			Debug: false,
		},
		Dispatch: DispatchConfig{
			QueueSize: 256,
			TapBuffer: 64,
		},
		Data: DataConfig{},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		CORS: CORSConfig{
			Origins: []string{"*"},
		},
	}
}

// Validate checks that numeric knobs are usable.
func (c *Config) Validate() error {
	if c.Dispatch.QueueSize < 1 {
		return fmt.Errorf("dispatch queue size must be positive, got %d", c.Dispatch.QueueSize)
	}
	if c.Dispatch.TapBuffer < 1 {
		return fmt.Errorf("dispatch tap buffer must be positive, got %d", c.Dispatch.TapBuffer)
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSecond < 1 {
		return fmt.Errorf("rate limit rps must be positive, got %d", c.RateLimit.RequestsPerSecond)
	}
	return nil
}
