// Package config loads padup settings from ~/.padup/config.yaml, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/padup/padup/internal/errors"
)

// Environment variables read by ApplyEnv.
const (
	EnvHome       = "PADUP_HOME"
	EnvMode       = "PADUP_MODE"
	EnvAPIBaseURL = "PADUP_API_BASE_URL"
)

const (
	configFileName  = "config.yaml"
	storageFileName = "storage.json"
)

// Config is the padup configuration file.
type Config struct {
	Mode      Mode            `yaml:"mode,omitempty" json:"mode,omitempty"`
	API       APIConfig       `yaml:"api,omitempty" json:"api,omitempty"`
	Defaults  CommandDefaults `yaml:"defaults,omitempty" json:"defaults,omitempty"`
	Logging   LoggingConfig   `yaml:"logging,omitempty" json:"logging,omitempty"`
	Telemetry TelemetryConfig `yaml:"telemetry,omitempty" json:"telemetry,omitempty"`
	Metrics   MetricsConfig   `yaml:"metrics,omitempty" json:"metrics,omitempty"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url,omitempty" json:"base_url,omitempty"`
	Timeout time.Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
}

type CommandDefaults struct {
	Format  string `yaml:"format,omitempty" json:"format,omitempty"` // "text", "json", "yaml"
	NoColor bool   `yaml:"no_color,omitempty" json:"no_color,omitempty"`
}

type LoggingConfig struct {
	Level  string `yaml:"level,omitempty" json:"level,omitempty"`   // "debug", "info", "warn", "error"
	Format string `yaml:"format,omitempty" json:"format,omitempty"` // "text", "json"
}

type TelemetryConfig struct {
	Enabled    bool    `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Endpoint   string  `yaml:"endpoint,omitempty" json:"endpoint,omitempty"`
	SampleRate float64 `yaml:"sample_rate,omitempty" json:"sample_rate,omitempty"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty" json:"textfile,omitempty"` // node-exporter textfile path
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Mode: ModeProduction,
		API: APIConfig{
			Timeout: 30 * time.Second,
		},
		Defaults: CommandDefaults{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
		},
		Telemetry: TelemetryConfig{
			SampleRate: 1.0,
		},
	}
}

// Home returns the padup state directory: $PADUP_HOME, else ~/.padup.
func Home() (string, error) {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeConfigInvalid, "failed to get home directory", err)
	}
	return filepath.Join(home, ".padup"), nil
}

// Path returns the config file path inside home.
func Path(home string) string {
	return filepath.Join(home, configFileName)
}

// StoragePath returns the client storage document path inside home.
func StoragePath(home string) string {
	return filepath.Join(home, storageFileName)
}

// Load reads the config file at path. A missing file yields Default().
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("failed to read %s", path), err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewFileUnmarshalError(path, "YAML", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path, creating the directory if needed.
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "failed to marshal config", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "failed to create config directory", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.Wrap(errors.ErrCodeConfigInvalid, "failed to write config", err)
	}
	return nil
}

// ApplyEnv overlays environment variables onto cfg.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvMode); v != "" {
		m, err := ParseMode(v)
		if err != nil {
			return err
		}
		c.Mode = m
	}
	if v := getenv(EnvAPIBaseURL); v != "" {
		c.API.BaseURL = v
	}
	return nil
}

// Validate checks enumerated fields.
func (c *Config) Validate() error {
	if c.Mode != "" {
		if _, err := ParseMode(string(c.Mode)); err != nil {
			return err
		}
	}
	switch c.Defaults.Format {
	case "", "text", "json", "yaml":
	default:
		return errors.New(errors.ErrCodeConfigInvalid, "unknown output format: "+c.Defaults.Format).
			WithSuggestion("Use one of: text, json, yaml")
	}
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		return errors.New(errors.ErrCodeConfigInvalid, "telemetry.sample_rate must be between 0 and 1")
	}
	return nil
}

// Get returns a value by dotted key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "mode":
		return string(c.Mode), nil
	case "api.base_url":
		return c.API.BaseURL, nil
	case "api.timeout":
		return c.API.Timeout.String(), nil
	case "defaults.format":
		return c.Defaults.Format, nil
	case "defaults.no_color":
		return strconv.FormatBool(c.Defaults.NoColor), nil
	case "logging.level":
		return c.Logging.Level, nil
	case "logging.format":
		return c.Logging.Format, nil
	case "telemetry.enabled":
		return strconv.FormatBool(c.Telemetry.Enabled), nil
	case "telemetry.endpoint":
		return c.Telemetry.Endpoint, nil
	case "telemetry.sample_rate":
		return strconv.FormatFloat(c.Telemetry.SampleRate, 'f', -1, 64), nil
	case "metrics.textfile":
		return c.Metrics.Textfile, nil
	default:
		return "", unknownKey(key)
	}
}

// Set assigns a value by dotted key.
func (c *Config) Set(key, value string) error {
	switch key {
	case "mode":
		m, err := ParseMode(value)
		if err != nil {
			return err
		}
		c.Mode = m
	case "api.base_url":
		c.API.BaseURL = value
	case "api.timeout":
		d, err := time.ParseDuration(value)
		if err != nil {
			return invalidValue(key, value, err)
		}
		c.API.Timeout = d
	case "defaults.format":
		c.Defaults.Format = value
	case "defaults.no_color":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return invalidValue(key, value, err)
		}
		c.Defaults.NoColor = b
	case "logging.level":
		c.Logging.Level = strings.ToLower(value)
	case "logging.format":
		c.Logging.Format = strings.ToLower(value)
	case "telemetry.enabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return invalidValue(key, value, err)
		}
		c.Telemetry.Enabled = b
	case "telemetry.endpoint":
		c.Telemetry.Endpoint = value
	case "telemetry.sample_rate":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return invalidValue(key, value, err)
		}
		c.Telemetry.SampleRate = f
	case "metrics.textfile":
		c.Metrics.Textfile = value
	default:
		return unknownKey(key)
	}
	return c.Validate()
}

func unknownKey(key string) error {
	return errors.New(errors.ErrCodeConfigNotFound, "unknown configuration key: "+key).
		WithSuggestion("Run 'padup config view' to list available keys")
}

func invalidValue(key, value string, err error) error {
	return errors.Wrap(errors.ErrCodeConfigInvalid, fmt.Sprintf("invalid value %q for %s", value, key), err)
}
