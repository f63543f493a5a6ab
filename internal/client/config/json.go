package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Duration is a time.Duration that unmarshals from "15s" or integer seconds.
type Duration time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}

	secs, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid duration %s: want a string like \"15s\" or integer seconds", b)
	}
	*d = Duration(time.Duration(secs) * time.Second)
	return nil
}

// jsonConfig is the on-disk shape. Pointers tell absent keys from zero values.
type jsonConfig struct {
	ServerURL      *string   `json:"server_url"`
	DBPath         *string   `json:"db_path"`
	PassphraseFile *string   `json:"passphrase_file"`
	LogLevel       *string   `json:"log_level"`
	RequestTimeout *Duration `json:"request_timeout"`
	RefreshTimeout *Duration `json:"refresh_timeout"`
	CacheResponses *bool     `json:"cache_responses"`
}

// loadFile overlays c with values from the JSON file at path.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if jc.ServerURL != nil {
		c.ServerURL = *jc.ServerURL
	}
	if jc.DBPath != nil {
		c.DBPath = *jc.DBPath
	}
	if jc.PassphraseFile != nil {
		c.PassphraseFile = *jc.PassphraseFile
	}
	if jc.LogLevel != nil {
		c.LogLevel = *jc.LogLevel
	}
	if jc.RequestTimeout != nil {
		c.RequestTimeout = time.Duration(*jc.RequestTimeout)
	}
	if jc.RefreshTimeout != nil {
		c.RefreshTimeout = time.Duration(*jc.RefreshTimeout)
	}
	if jc.CacheResponses != nil {
		c.CacheResponses = *jc.CacheResponses
	}
	return nil
}
