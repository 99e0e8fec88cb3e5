// If you are AI: This file validates configuration values and returns descriptive errors.

package config

import (
	"fmt"
	"net"
	"strings"
)

// Validate checks that all configuration values are within acceptable ranges.
// Returns an error describing the first validation failure found.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Playback.Validate(); err != nil {
		return fmt.Errorf("playback config: %w", err)
	}
	if err := c.Fetch.Validate(); err != nil {
		return fmt.Errorf("fetch config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

// Validate checks server configuration values.
func (s *ServerConfig) Validate() error {
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("http_port must be between 1 and 65535, got %d", s.HTTPPort)
	}
	if s.Bind != "localhost" && net.ParseIP(s.Bind) == nil {
		return fmt.Errorf("bind must be an IP address or localhost, got %q", s.Bind)
	}
	return nil
}

// Validate checks playback configuration values.
func (p *PlaybackConfig) Validate() error {
	if p.PoolSize < 1 {
		return fmt.Errorf("pool_size must be at least 1, got %d", p.PoolSize)
	}
	if p.RefreshHz < 1 || p.RefreshHz > 480 {
		return fmt.Errorf("refresh_hz must be between 1 and 480, got %d", p.RefreshHz)
	}
	return nil
}

// Validate checks fetch configuration values.
func (f *FetchConfig) Validate() error {
	if f.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", f.Timeout.String())
	}
	if f.MaxBytes <= 0 {
		return fmt.Errorf("max_bytes must be positive, got %d", f.MaxBytes)
	}
	return nil
}

// Validate checks logging configuration values.
func (l *LoggingConfig) Validate() error {
	switch strings.ToLower(l.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("format must be console or json, got %q", l.Format)
	}
	switch strings.ToLower(l.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("level must be debug, info, warn or error, got %q", l.Level)
	}
	return nil
}
