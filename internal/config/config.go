// Package config provides file, environment and flag configuration for
// imapctl and other programs embedding the IMAP client.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	imap "github.com/BrianLeishman/imapsock"
)

// FileConfig is the top-level wrapper for the configuration file.
type FileConfig struct {
	IMAP Config `toml:"imap"`
}

// Config holds the client configuration. A zero Port means the IMAP default
// for the SSL setting.
type Config struct {
	Host          string         `toml:"host"`
	Port          int            `toml:"port"`
	SSL           bool           `toml:"ssl"`
	TLSSkipVerify bool           `toml:"tls_skip_verify"`
	OAuth         bool           `toml:"oauth"`
	Username      string         `toml:"username"`
	Password      string         `toml:"password"`
	AccessToken   string         `toml:"access_token"`
	LogLevel      string         `toml:"log_level"`
	Debug         bool           `toml:"debug"`
	Timeouts      TimeoutsConfig `toml:"timeouts"`
	Metrics       MetricsConfig  `toml:"metrics"`
}

// TimeoutsConfig defines timeout durations.
type TimeoutsConfig struct {
	Dial    string `toml:"dial"`
	Command string `toml:"command"`
}

// MetricsConfig holds configuration for Prometheus metrics.
type MetricsConfig struct {
	Enabled bool   `toml:"enabled"`
	Address string `toml:"address"`
	Path    string `toml:"path"`
}

// Default returns a Config with sensible default values.
func Default() Config {
	return Config{
		SSL:      true,
		LogLevel: "info",
		Timeouts: TimeoutsConfig{
			Dial:    "10s",
			Command: "1m",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Address: ":9102",
			Path:    "/metrics",
		},
	}
}

// Validate checks that the configuration is valid and returns an error if not.
// Credentials are not checked here: they may still come from the keyring or
// a prompt.
func (c *Config) Validate() error {
	if c.Host == "" {
		return errors.New("host is required")
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	if c.Username == "" {
		return errors.New("username is required")
	}

	if c.Timeouts.Dial != "" {
		if _, err := time.ParseDuration(c.Timeouts.Dial); err != nil {
			return fmt.Errorf("invalid dial timeout: %w", err)
		}
	}

	if c.Timeouts.Command != "" {
		if _, err := time.ParseDuration(c.Timeouts.Command); err != nil {
			return fmt.Errorf("invalid command timeout: %w", err)
		}
	}

	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; c.LogLevel != "" && !ok {
		return fmt.Errorf("invalid log_level %q (valid: debug, info, warn, error)", c.LogLevel)
	}

	if c.Metrics.Enabled {
		if c.Metrics.Address == "" {
			return errors.New("metrics address is required when metrics are enabled")
		}
		if c.Metrics.Path == "" {
			return errors.New("metrics path is required when metrics are enabled")
		}
	}

	return nil
}

// Secret returns the credential the configured auth method uses.
func (c *Config) Secret() string {
	if c.OAuth {
		return c.AccessToken
	}
	return c.Password
}

// SetSecret stores s as the credential of the configured auth method.
func (c *Config) SetSecret(s string) {
	if c.OAuth {
		c.AccessToken = s
	} else {
		c.Password = s
	}
}

// DialTimeout returns the dial timeout as a time.Duration.
// Returns 10 seconds if not configured or invalid.
func (c *TimeoutsConfig) DialTimeout() time.Duration {
	return parseDuration(c.Dial, 10*time.Second)
}

// CommandTimeout returns the command timeout as a time.Duration.
// Returns 1 minute if not configured or invalid.
func (c *TimeoutsConfig) CommandTimeout() time.Duration {
	return parseDuration(c.Command, time.Minute)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel returns the slog level for LogLevel, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	if l, ok := logLevels[strings.ToLower(c.LogLevel)]; ok {
		return l
	}
	return slog.LevelInfo
}

// DialPort returns the configured port, or 143/993 depending on SSL when
// none is set.
func (c *Config) DialPort() int {
	switch {
	case c.Port != 0:
		return c.Port
	case c.SSL:
		return imap.DefaultTLSPort
	}
	return imap.DefaultPort
}

// ClientConfig converts the file configuration into an imap.Config.
func (c *Config) ClientConfig() imap.Config {
	return imap.Config{
		Host:           c.Host,
		Port:           c.DialPort(),
		SSL:            c.SSL,
		TLSSkipVerify:  c.TLSSkipVerify,
		OAuth:          c.OAuth,
		Username:       c.Username,
		Password:       c.Password,
		AccessToken:    c.AccessToken,
		DialTimeout:    c.Timeouts.DialTimeout(),
		CommandTimeout: c.Timeouts.CommandTimeout(),
		Debug:          c.Debug,
	}
}
