// Package config loads schemaforge settings from YAML files and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/schemaforge/schema"
)

// Environment variables that override file settings.
const (
	EnvStoragePath = "SCHEMAFORGE_STORAGE_PATH"
	EnvAddr        = "SCHEMAFORGE_ADDR"
	EnvLogLevel    = "SCHEMAFORGE_LOG_LEVEL"
)

// Transport names accepted by server.transport.
const (
	TransportStdio     = "stdio"
	TransportHTTP      = "http"
	TransportWebSocket = "websocket"
)

// Config is the complete schemaforge configuration.
type Config struct {
	Storage    Storage    `yaml:"storage"`
	Validation Validation `yaml:"validation"`
	Server     Server     `yaml:"server"`
	Logging    Logging    `yaml:"logging"`
}

// Storage locates the schema directory.
type Storage struct {
	Path string `yaml:"path"`
}

// Validation tunes the validation engine.
type Validation struct {
	// MaxDepth bounds schema nesting during validation. 0 means unlimited.
	MaxDepth int `yaml:"max_depth"`
	// PatternCache is the number of compiled patterns kept in memory.
	PatternCache int `yaml:"pattern_cache"`
	// Formats switches individual format validators on or off. Formats not listed keep
	// their default.
	Formats map[string]bool `yaml:"formats"`
}

// Server configures the registry service.
type Server struct {
	Transport       string        `yaml:"transport"`
	Addr            string        `yaml:"addr"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxRequestBytes int64         `yaml:"max_request_bytes"`
	RateLimit       RateLimit     `yaml:"rate_limit"`
	APIKeys         []string      `yaml:"api_keys"`
	CORSOrigins     []string      `yaml:"cors_origins"`
}

// RateLimit configures the per-schema token bucket. A zero rate disables limiting.
type RateLimit struct {
	Rate  int `yaml:"rate"`
	Burst int `yaml:"burst"`
}

// Logging selects the log level and encoding.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: Storage{Path: "schemas"},
		Validation: Validation{
			MaxDepth:     64,
			PatternCache: schema.DefaultPatternCacheSize,
		},
		Server: Server{
			Transport:       TransportHTTP,
			Addr:            ":8080",
			Timeout:         30 * time.Second,
			MaxRequestBytes: 1 << 20,
		},
		Logging: Logging{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load reads the YAML file at path over the defaults and applies environment overrides.
// An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvStoragePath); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Storage.Path == "" {
		errs = append(errs, errors.New("storage.path is required"))
	}
	switch c.Server.Transport {
	case TransportStdio, TransportHTTP, TransportWebSocket:
	default:
		errs = append(errs, fmt.Errorf("server.transport: unknown transport %q", c.Server.Transport))
	}
	if c.Validation.MaxDepth < 0 {
		errs = append(errs, errors.New("validation.max_depth must not be negative"))
	}
	if c.Validation.PatternCache < 0 {
		errs = append(errs, errors.New("validation.pattern_cache must not be negative"))
	}
	if c.Server.Timeout < 0 {
		errs = append(errs, errors.New("server.timeout must not be negative"))
	}
	if c.Server.MaxRequestBytes < 0 {
		errs = append(errs, errors.New("server.max_request_bytes must not be negative"))
	}
	if c.Server.RateLimit.Rate < 0 || c.Server.RateLimit.Burst < 0 {
		errs = append(errs, errors.New("server.rate_limit must not be negative"))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ValidatorOptions converts the validation section into validator options.
func (c *Config) ValidatorOptions() []schema.ValidatorOption {
	opts := []schema.ValidatorOption{schema.WithMaxDepth(c.Validation.MaxDepth)}
	if c.Validation.PatternCache > 0 {
		opts = append(opts, schema.WithPatternCacheSize(c.Validation.PatternCache))
	}
	defaults := schema.DefaultFormats()
	for name, enabled := range c.Validation.Formats {
		if !enabled {
			opts = append(opts, schema.WithoutFormat(name))
			continue
		}
		if fn, ok := defaults[name]; ok {
			opts = append(opts, schema.WithFormat(name, fn))
		}
	}
	return opts
}
