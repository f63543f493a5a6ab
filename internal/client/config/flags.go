package config

import (
	"flag"
	"time"
)

// Flags binds the global CLI flags. Values only override lower layers when
// the flag was actually given.
type Flags struct {
	fs             *flag.FlagSet
	configPath     string
	serverURL      string
	dbPath         string
	passphraseFile string
	logLevel       string
	requestTimeout time.Duration
	refreshTimeout time.Duration
	cache          bool
	ephemeral      bool
}

// RegisterFlags defines the global flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	d := Default()
	f := &Flags{fs: fs}

	fs.StringVar(&f.configPath, "config", "", "path to JSON config file (env "+EnvConfig+")")
	fs.StringVar(&f.serverURL, "server", d.ServerURL, "backend base URL (env "+EnvServer+")")
	fs.StringVar(&f.dbPath, "db", d.DBPath, "path to local token database (env "+EnvDB+")")
	fs.StringVar(&f.passphraseFile, "passphrase-file", "", "file holding the token store passphrase")
	fs.StringVar(&f.logLevel, "log-level", d.LogLevel, "debug, info, warn or error (env "+EnvLogLevel+")")
	fs.DurationVar(&f.requestTimeout, "timeout", d.RequestTimeout, "per-request timeout")
	fs.DurationVar(&f.refreshTimeout, "refresh-timeout", d.RefreshTimeout, "token refresh timeout")
	fs.BoolVar(&f.cache, "cache", d.CacheResponses, "revalidate cached GET responses with ETags")
	fs.BoolVar(&f.ephemeral, "ephemeral", false, "keep tokens in memory only")

	return f
}

// Load resolves the configuration: defaults, JSON file, environment, then
// the flags that were set. fs must already be parsed.
func (f *Flags) Load(getenv func(string) string) (Config, error) {
	cfg := Default()

	path := f.configPath
	if path == "" {
		path = getenv(EnvConfig)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return cfg, err
		}
	}

	cfg.applyEnv(getenv)

	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "server":
			cfg.ServerURL = f.serverURL
		case "db":
			cfg.DBPath = f.dbPath
		case "passphrase-file":
			cfg.PassphraseFile = f.passphraseFile
		case "log-level":
			cfg.LogLevel = f.logLevel
		case "timeout":
			cfg.RequestTimeout = f.requestTimeout
		case "refresh-timeout":
			cfg.RefreshTimeout = f.refreshTimeout
		case "cache":
			cfg.CacheResponses = f.cache
		case "ephemeral":
			cfg.Ephemeral = f.ephemeral
		}
	})

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
