// Package syncconfig stores the per-checkout app configuration at
// <baseDir>/.marmots/config.json: the acting member's profile, the
// selected household, and sync tuning.
package syncconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/evanklingensmith/hungrymarmots/internal/models"
)

const configFile = ".marmots/config.json"

// Defaults for sync tuning.
const (
	DefaultDebounce     = 600 * time.Millisecond
	DefaultWriteTimeout = 15 * time.Second
)

// SyncTuning holds coordinator timing knobs as duration strings.
type SyncTuning struct {
	Debounce     string `json:"debounce,omitempty"`      // default "600ms"
	WriteTimeout string `json:"write_timeout,omitempty"` // default "15s"
}

// Config is the app configuration.
type Config struct {
	Profile   models.User `json:"profile"`
	Household string      `json:"household,omitempty"` // selected household id
	Sync      SyncTuning  `json:"sync"`
}

// DebounceInterval returns the configured debounce, or the default when
// unset or unparseable.
func (c *Config) DebounceInterval() time.Duration {
	return parseDuration(c.Sync.Debounce, DefaultDebounce)
}

// WriteTimeout returns the configured write timeout, or the default
// when unset or unparseable.
func (c *Config) WriteTimeout() time.Duration {
	return parseDuration(c.Sync.WriteTimeout, DefaultWriteTimeout)
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// Load reads the config from disk. A missing file yields a zero config.
func Load(baseDir string) (*Config, error) {
	data, err := os.ReadFile(filepath.Join(baseDir, configFile))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config atomically (temp file + rename).
func Save(baseDir string, cfg *Config) error {
	configPath := filepath.Join(baseDir, configFile)
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "config-*.json.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, configPath)
}
