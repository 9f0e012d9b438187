package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix namespaces every environment variable, e.g. LP_SERVER_PORT.
const envPrefix = "LP"

// configSearchPaths are tried in order; the first existing file wins.
var configSearchPaths = []string{
	"config.yaml",
	"configs/config.yaml",
	"../configs/config.yaml",
}

// Config is the complete application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Dataset  DatasetConfig  `yaml:"dataset" envconfig:"DATASET"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Charts   ChartsConfig   `yaml:"charts" envconfig:"CHARTS"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s" validate:"gt=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s" validate:"gt=0"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s" validate:"gt=0"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s" validate:"gt=0"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"60s" validate:"gt=0"`
}

// DatasetConfig locates the source CSV.
type DatasetConfig struct {
	Path string `yaml:"path" envconfig:"PATH" default:"data/unemployment.csv" validate:"required"`
}

// SecurityConfig groups CORS and rate-limit settings.
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080" validate:"min=1"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig configures the process-wide token bucket.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig configures the slog setup. Format is always JSON; Output is
// one of console, file, or both.
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output      string `yaml:"output" envconfig:"OUTPUT" default:"both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT" default:"false"`
}

// ChartsConfig controls rendered chart dimensions in inches.
type ChartsConfig struct {
	Width  float64 `yaml:"width" envconfig:"WIDTH" default:"10" validate:"gt=0"`
	Height float64 `yaml:"height" envconfig:"HEIGHT" default:"5" validate:"gt=0"`
}

// Load builds the configuration from the environment and, when present, a
// YAML file. A set environment variable beats the file for the same field.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	for _, path := range configSearchPaths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		fileCfg, err := loadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileCfg, cfg)
		break
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeConfigs fills env's zero-valued fields from the file config. Only the
// fields the YAML file is expected to carry are merged; booleans stay with
// the env layer because a zero bool is indistinguishable from unset.
func mergeConfigs(fileCfg, envCfg Config) Config {
	merged := envCfg

	if merged.Server.Port == 0 {
		merged.Server.Port = fileCfg.Server.Port
	}
	if merged.Server.ReadTimeout == 0 {
		merged.Server.ReadTimeout = fileCfg.Server.ReadTimeout
	}
	if merged.Server.WriteTimeout == 0 {
		merged.Server.WriteTimeout = fileCfg.Server.WriteTimeout
	}
	if merged.Dataset.Path == "" {
		merged.Dataset.Path = fileCfg.Dataset.Path
	}
	if merged.Logging.Level == "" {
		merged.Logging.Level = fileCfg.Logging.Level
	}
	if len(merged.Security.AllowedOrigins) == 0 {
		merged.Security.AllowedOrigins = fileCfg.Security.AllowedOrigins
	}

	return merged
}

// normalize coerces logging settings to supported values instead of failing.
func (c *Config) normalize() {
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}
	switch c.Logging.Output {
	case "console", "file", "both":
	default:
		c.Logging.Output = "both"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}
}

// Validate checks the struct tags, reporting the first offending field.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fmt.Errorf("invalid config field %s: failed %q", fe.Namespace(), fe.Tag())
	}
	return err
}

// Default returns the built-in configuration, matching the struct tag
// defaults. Used by cmd/report when no environment is set up.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Dataset: DatasetConfig{
			Path: "data/unemployment.csv",
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Charts: ChartsConfig{
			Width:  10,
			Height: 5,
		},
	}
}
