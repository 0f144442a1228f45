// Package config provides configuration helpers and TOML parsing.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Storage backends.
const (
	StorageSQLite = "sqlite"
	StorageJSON   = "json"
)

// Environment overrides, applied after the file.
const (
	EnvUser     = "REPTRACK_USER"
	EnvDB       = "REPTRACK_DB"
	EnvLogLevel = "REPTRACK_LOG_LEVEL"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Tracker TrackerConfig `toml:"tracker"`
	Profile ProfileConfig `toml:"profile"`
	Log     LogConfig     `toml:"log"`
}

// TrackerConfig selects the user and the storage backend.
type TrackerConfig struct {
	User        *string `toml:"user"`
	Storage     *string `toml:"storage"`
	DBPath      *string `toml:"db-path"`
	JSONPath    *string `toml:"json-path"`
	SaveTimeout *string `toml:"save-timeout"`
}

// ProfileConfig holds the preferences new profiles start with.
type ProfileConfig struct {
	Timezone  *string `toml:"timezone"`
	Morning   *string `toml:"morning"`
	Evening   *string `toml:"evening"`
	Reminders *bool   `toml:"reminders"`
}

// LogConfig maps logging settings.
type LogConfig struct {
	Level *string `toml:"level"`
	File  *string `toml:"file"`
	JSON  *bool   `toml:"json"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return FileConfig{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be checked by decoding alone.
func (c FileConfig) Validate() error {
	if s := c.Tracker.Storage; s != nil && *s != StorageSQLite && *s != StorageJSON {
		return fmt.Errorf("tracker.storage must be %q or %q, got %q", StorageSQLite, StorageJSON, *s)
	}
	if _, err := c.SaveTimeout(); err != nil {
		return err
	}
	return nil
}

// SaveTimeout parses tracker.save-timeout. Zero means unset.
func (c FileConfig) SaveTimeout() (time.Duration, error) {
	if c.Tracker.SaveTimeout == nil {
		return 0, nil
	}
	d, err := time.ParseDuration(*c.Tracker.SaveTimeout)
	if err != nil {
		return 0, fmt.Errorf("tracker.save-timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("tracker.save-timeout must be positive, got %s", d)
	}
	return d, nil
}

// LoadEnv reads a dotenv file into the process environment without
// overriding variables that are already set. Missing file is not an error.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides file values with REPTRACK_* environment variables.
func (c *FileConfig) ApplyEnv() {
	if v, ok := os.LookupEnv(EnvUser); ok && v != "" {
		c.Tracker.User = &v
	}
	if v, ok := os.LookupEnv(EnvDB); ok && v != "" {
		c.Tracker.DBPath = &v
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok && v != "" {
		c.Log.Level = &v
	}
}
