// If you are AI: This file defines the configuration structure for animage.
// It uses strict YAML or TOML decoding and explicit defaults.

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"animage/internal/svc/director"
)

// Config holds the complete server configuration.
// All fields must have explicit defaults or be required.
type Config struct {
	Server   ServerConfig      `yaml:"server" toml:"server"`
	Playback PlaybackConfig    `yaml:"playback" toml:"playback"`
	Fetch    FetchConfig       `yaml:"fetch" toml:"fetch"`
	Settings director.Settings `yaml:"settings" toml:"settings"`
	Logging  LoggingConfig     `yaml:"logging" toml:"logging"`
}

// ServerConfig defines HTTP server settings.
type ServerConfig struct {
	Bind     string `yaml:"bind" toml:"bind"`                               // Listen address; "0.0.0.0" exposes every interface
	HTTPPort int    `yaml:"http_port" toml:"http_port"`                     // Port for API, viewer and health endpoints
	LockPath string `yaml:"lock_path,omitempty" toml:"lock_path,omitempty"` // Single-instance lock file; empty disables locking
}

// PlaybackConfig defines the slot pool and frame clock.
type PlaybackConfig struct {
	PoolSize  int `yaml:"pool_size" toml:"pool_size"`   // Number of playback slots
	RefreshHz int `yaml:"refresh_hz" toml:"refresh_hz"` // Frame callback rate of the event loop
}

// FetchConfig defines how image bytes are retrieved.
type FetchConfig struct {
	Timeout    Duration `yaml:"timeout" toml:"timeout"`
	MaxBytes   int64    `yaml:"max_bytes" toml:"max_bytes"`
	UserAgent  string   `yaml:"user_agent" toml:"user_agent"`
	AllowLocal bool     `yaml:"allow_local" toml:"allow_local"` // Let focus requests read file: URLs and bare paths
}

// LoggingConfig defines log output.
type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`   // debug, info, warn, error
	Format string `yaml:"format" toml:"format"` // console or json
}

// Duration is a time.Duration written as a Go duration string ("10s").
type Duration time.Duration

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// MarshalText renders the duration string.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// String renders the duration string.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads configuration from a YAML or TOML file.
// Files ending in .toml are decoded as TOML, everything else as YAML.
// Returns an error if the file cannot be read or decoded.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		decoder := toml.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	} else {
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true) // Reject unknown fields
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}

	// Apply defaults
	cfg.setDefaults()

	return &cfg, nil
}

// setDefaults applies explicit default values to unset fields.
func (c *Config) setDefaults() {
	if c.Server.Bind == "" {
		c.Server.Bind = "127.0.0.1"
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 8420
	}
	if c.Playback.PoolSize == 0 {
		c.Playback.PoolSize = 2
	}
	if c.Playback.RefreshHz == 0 {
		c.Playback.RefreshHz = 60
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = Duration(10 * time.Second)
	}
	if c.Fetch.MaxBytes == 0 {
		c.Fetch.MaxBytes = 32 << 20
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = "animage/1.0"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}
