package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
)

// Prefix is prepended to every environment variable, e.g. QA_SERVER_PORT.
const Prefix = "QA"

// Config holds all service configuration.
type Config struct {
	Server    ServerConfig
	Logging   LogConfig
	Pipeline  PipelineConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `default:"0.0.0.0"`
	Port            int           `default:"8000"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `default:"info"`
	Development bool   `default:"false"`
}

// PipelineConfig shapes the pipeline served over HTTP.
type PipelineConfig struct {
	Name    string        `default:"QueueAutomator"`
	Workers int           `default:"7"`
	Delay   time.Duration `default:"1s"`
}

// RateLimitConfig holds submission rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond float64 `split_words:"true" default:"100"`
	Burst             int     `default:"200"`
	Enabled           bool    `default:"true"`
}

type MetricsConfig struct {
	Enabled bool   `default:"true"`
	Path    string `default:"/metrics"`
}

// Load reads configuration from QA_* environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
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
			Host:            "0.0.0.0",
			Port:            8000,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Pipeline: PipelineConfig{
			Name:    "QueueAutomator",
			Workers: 7,
			Delay:   time.Second,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	if c.Server.ShutdownTimeout < 0 {
		err = multierr.Append(err, errors.New("server shutdown timeout must not be negative"))
	}

	var level zapcore.Level
	if lerr := level.UnmarshalText([]byte(c.Logging.Level)); lerr != nil {
		err = multierr.Append(err, fmt.Errorf("logging level: %w", lerr))
	}

	if strings.TrimSpace(c.Pipeline.Name) == "" {
		err = multierr.Append(err, errors.New("pipeline name must not be empty"))
	}
	if c.Pipeline.Workers < 1 {
		err = multierr.Append(err, fmt.Errorf("pipeline workers must be positive, got %d", c.Pipeline.Workers))
	}
	if c.Pipeline.Delay < 0 {
		err = multierr.Append(err, errors.New("pipeline delay must not be negative"))
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			err = multierr.Append(err, errors.New("rate limit requests per second must be positive"))
		}
		if c.RateLimit.Burst < 1 {
			err = multierr.Append(err, errors.New("rate limit burst must be at least 1"))
		}
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		err = multierr.Append(err, fmt.Errorf("metrics path %q must start with /", c.Metrics.Path))
	}

	return err
}
