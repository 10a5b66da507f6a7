package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. TASKSYNC_SYNC_MAX_RETRIES.
const EnvPrefix = "TASKSYNC"

// Settings are user-tunable values.
type Settings struct {
	Database      string       `mapstructure:"database"`
	LogFile       string       `mapstructure:"log_file"`
	LogMaxSizeMB  int          `mapstructure:"log_max_size_mb"`
	LogMaxBackups int          `mapstructure:"log_max_backups"`
	Sync          SyncSettings `mapstructure:"sync"`
}

// SyncSettings tune the remote client and the sync command.
type SyncSettings struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxRetries        int           `mapstructure:"max_retries"`
	InitialBackoff    time.Duration `mapstructure:"initial_backoff"`
	Concurrency       int           `mapstructure:"concurrency"`
	NewListTitle      string        `mapstructure:"new_list_title"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		LogMaxSizeMB:  10,
		LogMaxBackups: 3,
		Sync: SyncSettings{
			RequestsPerSecond: 5,
			Burst:             5,
			MaxRetries:        3,
			InitialBackoff:    500 * time.Millisecond,
			Concurrency:       2,
			NewListTitle:      "My Tasks",
		},
	}
}

// LoadSettings reads <dir>/config.toml if it exists and applies
// TASKSYNC_* environment overrides on top of the defaults.
func LoadSettings(dir string) (Settings, error) {
	def := DefaultSettings()

	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("database", def.Database)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("log_max_size_mb", def.LogMaxSizeMB)
	v.SetDefault("log_max_backups", def.LogMaxBackups)
	v.SetDefault("sync.requests_per_second", def.Sync.RequestsPerSecond)
	v.SetDefault("sync.burst", def.Sync.Burst)
	v.SetDefault("sync.max_retries", def.Sync.MaxRetries)
	v.SetDefault("sync.initial_backoff", def.Sync.InitialBackoff)
	v.SetDefault("sync.concurrency", def.Sync.Concurrency)
	v.SetDefault("sync.new_list_title", def.Sync.NewListTitle)

	path := filepath.Join(dir, SettingsFile)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return def, fmt.Errorf("invalid %s: %w", SettingsFile, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return def, fmt.Errorf("failed to stat %s: %w", SettingsFile, err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return def, fmt.Errorf("invalid settings: %w", err)
	}

	if s.Sync.Concurrency < 1 {
		s.Sync.Concurrency = 1
	}
	if strings.TrimSpace(s.Sync.NewListTitle) == "" {
		s.Sync.NewListTitle = def.Sync.NewListTitle
	}
	return s, nil
}
