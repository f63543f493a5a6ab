// Package config handles configuration for the development backend:
// defaults, then INVTRACKER_SERVER_* environment variables, then flags.
package config

import (
	"flag"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/iudanet/invtracker/internal/crypto"
)

// Environment variable names.
const (
	EnvAddr       = "INVTRACKER_SERVER_ADDR"
	EnvDB         = "INVTRACKER_SERVER_DB"
	EnvJWTSecret  = "INVTRACKER_SERVER_JWT_SECRET"
	EnvAccessTTL  = "INVTRACKER_SERVER_ACCESS_TTL"
	EnvRefreshTTL = "INVTRACKER_SERVER_REFRESH_TTL"
	EnvLogLevel   = "INVTRACKER_SERVER_LOG_LEVEL"
	EnvLogFormat  = "INVTRACKER_SERVER_LOG_FORMAT"
	EnvDev        = "INVTRACKER_SERVER_DEV"
)

// MinJWTSecretLen is the shortest HMAC secret accepted outside dev mode.
const MinJWTSecretLen = 32

// Config holds runtime settings for the server.
//
// Fields:
//   - ListenAddr: HTTP bind address.
//   - DBPath: SQLite database file, ":memory:" for a throwaway database.
//   - JWTSecret: HMAC secret for signing access tokens (HS256).
//   - AccessTokenTTL / RefreshTokenTTL: token lifetimes.
//   - LoginRateLimit / LoginRateWindow: attempts per client address on
//     /auth/login, /auth/signup and /auth/refresh.
//   - TrustProxy: take the client address from X-Forwarded-For.
//   - Dev: allow a missing JWT secret (a random one is generated per run).
type Config struct {
	ListenAddr           string
	DBPath               string
	JWTSecret            string
	LogLevel             string
	LogFormat            string
	AccessTokenTTL       time.Duration
	RefreshTokenTTL      time.Duration
	LoginRateWindow      time.Duration
	TokenCleanupInterval time.Duration
	ShutdownTimeout      time.Duration
	LoginRateLimit       int
	TrustProxy           bool
	Dev                  bool
	ShowVersion          bool
	// GeneratedSecret is set when JWTSecret was generated for a dev run.
	GeneratedSecret bool
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.ListenAddr = ":8080"
	c.DBPath = "invtracker.db"
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.AccessTokenTTL = 15 * time.Minute
	c.RefreshTokenTTL = 7 * 24 * time.Hour
	c.LoginRateLimit = 10
	c.LoginRateWindow = time.Minute
	c.TokenCleanupInterval = time.Hour
	c.ShutdownTimeout = 10 * time.Second
}

// Load builds a Config from defaults, the environment and args (without
// the program name).
func Load(args []string, getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := cfg.applyEnv(getenv); err != nil {
		return nil, err
	}

	fs := flag.NewFlagSet("invtracker-server", flag.ContinueOnError)
	cfg.bindFlags(fs)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.ShowVersion {
		return cfg, nil
	}

	if err := cfg.finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(EnvAddr); v != "" {
		c.ListenAddr = v
	}
	if v := getenv(EnvDB); v != "" {
		c.DBPath = v
	}
	if v := getenv(EnvJWTSecret); v != "" {
		c.JWTSecret = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	if v := getenv(EnvLogFormat); v != "" {
		c.LogFormat = v
	}

	var err error
	if v := getenv(EnvAccessTTL); v != "" {
		if c.AccessTokenTTL, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvAccessTTL, err)
		}
	}
	if v := getenv(EnvRefreshTTL); v != "" {
		if c.RefreshTokenTTL, err = time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvRefreshTTL, err)
		}
	}
	if v := getenv(EnvDev); v != "" {
		if c.Dev, err = strconv.ParseBool(v); err != nil {
			return fmt.Errorf("invalid %s: %w", EnvDev, err)
		}
	}
	return nil
}

func (c *Config) bindFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.ListenAddr, "addr", c.ListenAddr, "HTTP listen address (env "+EnvAddr+")")
	fs.StringVar(&c.DBPath, "db", c.DBPath, "SQLite database path (env "+EnvDB+")")
	fs.StringVar(&c.JWTSecret, "jwt-secret", c.JWTSecret, "HMAC secret for access tokens (env "+EnvJWTSecret+")")
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, "debug, info, warn or error (env "+EnvLogLevel+")")
	fs.StringVar(&c.LogFormat, "log-format", c.LogFormat, "text or json (env "+EnvLogFormat+")")
	fs.DurationVar(&c.AccessTokenTTL, "access-ttl", c.AccessTokenTTL, "access token lifetime (env "+EnvAccessTTL+")")
	fs.DurationVar(&c.RefreshTokenTTL, "refresh-ttl", c.RefreshTokenTTL, "refresh token lifetime (env "+EnvRefreshTTL+")")
	fs.IntVar(&c.LoginRateLimit, "login-rate", c.LoginRateLimit, "auth attempts per client per window")
	fs.DurationVar(&c.LoginRateWindow, "login-window", c.LoginRateWindow, "auth rate limit window")
	fs.DurationVar(&c.TokenCleanupInterval, "cleanup-interval", c.TokenCleanupInterval, "expired refresh token sweep interval")
	fs.DurationVar(&c.ShutdownTimeout, "shutdown-timeout", c.ShutdownTimeout, "graceful shutdown timeout")
	fs.BoolVar(&c.TrustProxy, "trust-proxy", c.TrustProxy, "use X-Forwarded-For for rate limiting")
	fs.BoolVar(&c.ShowVersion, "version", false, "show version information")
	fs.BoolVar(&c.Dev, "dev", c.Dev, "development mode: generate a JWT secret when none is set (env "+EnvDev+")")
}

// finalize validates the config and fills in a dev secret if needed.
func (c *Config) finalize() error {
	if c.JWTSecret == "" && c.Dev {
		secret, err := crypto.GenerateToken(MinJWTSecretLen)
		if err != nil {
			return err
		}
		c.JWTSecret = secret
		c.GeneratedSecret = true
	}
	return c.Validate()
}

// Validate checks that c is usable.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("listen address is required")
	}
	if c.DBPath == "" {
		return fmt.Errorf("db path is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required (set %s or run with -dev)", EnvJWTSecret)
	}
	if !c.Dev && len(c.JWTSecret) < MinJWTSecretLen {
		return fmt.Errorf("jwt secret must be at least %d bytes", MinJWTSecretLen)
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if c.AccessTokenTTL >= c.RefreshTokenTTL {
		return fmt.Errorf("access token lifetime must be shorter than refresh token lifetime")
	}
	if c.LoginRateLimit <= 0 || c.LoginRateWindow <= 0 {
		return fmt.Errorf("login rate limit and window must be positive")
	}
	if c.TokenCleanupInterval <= 0 || c.ShutdownTimeout <= 0 {
		return fmt.Errorf("cleanup interval and shutdown timeout must be positive")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log format %q: want text or json", c.LogFormat)
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
