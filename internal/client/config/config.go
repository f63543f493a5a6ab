package config

import (
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// Environment variable names.
const (
	EnvServer     = "INVTRACKER_SERVER"
	EnvDB         = "INVTRACKER_DB"
	EnvPassphrase = "INVTRACKER_PASSPHRASE"
	EnvLogLevel   = "INVTRACKER_LOG_LEVEL"
	EnvConfig     = "INVTRACKER_CONFIG"
)

// Config holds runtime settings for the CLI.
type Config struct {
	ServerURL      string
	DBPath         string
	PassphraseFile string
	// Passphrase comes from the environment only; it is never read from
	// the JSON file or flags.
	Passphrase     string
	LogLevel       string
	RequestTimeout time.Duration
	RefreshTimeout time.Duration
	CacheResponses bool
	// Ephemeral keeps tokens in memory only.
	Ephemeral bool
}

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		ServerURL:      "http://localhost:8080",
		DBPath:         "invtracker-client.db",
		LogLevel:       "warn",
		RequestTimeout: 30 * time.Second,
		RefreshTimeout: 15 * time.Second,
		CacheResponses: true,
	}
}

// applyEnv overlays values from the environment.
func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv(EnvServer); v != "" {
		c.ServerURL = v
	}
	if v := getenv(EnvDB); v != "" {
		c.DBPath = v
	}
	if v := getenv(EnvPassphrase); v != "" {
		c.Passphrase = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// Validate checks that c is usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("invalid server url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server url %q: want http(s)://host[:port]", c.ServerURL)
	}
	if c.DBPath == "" && !c.Ephemeral {
		return fmt.Errorf("db path is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive")
	}
	if c.RefreshTimeout <= 0 {
		return fmt.Errorf("refresh timeout must be positive")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
