/*
Package config handles loading and saving intent-rank configuration.

Configuration is layered with koanf: built-in defaults, then the YAML file
(~/.intent-rank.yaml unless overridden), then INTENT_RANK_* environment
variables.

Schema:

	storage:
	  backend: sqlite        # sqlite | badger | redis | memory | disabled
	  path: ~/.intent-rank/behavior.db
	  badger_dir: ~/.intent-rank/badger
	  redis:
	    addr: localhost:6379
	    db: 0
	    key_prefix: intent-rank
	    ttl: 720h
	    timeout: 3s
	tracking:
	  enabled: true
	  namespace: ""
	  queue_size: 1000
	recommend:
	  default_limit: 10
	  recent_window: 10
	catalog:
	  path: ""
	logging:
	  level: info
	  format: console
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "INTENT_RANK_CONFIG"

// EnvPrefix is the prefix for environment overrides (INTENT_RANK_STORAGE_BACKEND, ...).
const EnvPrefix = "INTENT_RANK_"

// Config represents the root configuration structure.
type Config struct {
	Storage   StorageConfig   `koanf:"storage"`
	Tracking  TrackingConfig  `koanf:"tracking"`
	Recommend RecommendConfig `koanf:"recommend"`
	Catalog   CatalogConfig   `koanf:"catalog"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// StorageConfig selects and configures the behavior persistence backend.
type StorageConfig struct {
	// Backend is one of sqlite, badger, redis, memory or disabled.
	Backend string `koanf:"backend" validate:"oneof=sqlite badger redis memory disabled"`

	// Path is the SQLite database file.
	Path string `koanf:"path"`

	// BadgerDir is the BadgerDB directory. Empty means in-memory.
	BadgerDir string `koanf:"badger_dir"`

	Redis RedisConfig `koanf:"redis"`
}

// RedisConfig configures the redis backend.
type RedisConfig struct {
	Addr      string        `koanf:"addr" validate:"required_if=Enabled true"`
	Password  string        `koanf:"password"`
	DB        int           `koanf:"db" validate:"gte=0"`
	KeyPrefix string        `koanf:"key_prefix"`
	TTL       time.Duration `koanf:"ttl" validate:"gte=0"`
	Timeout   time.Duration `koanf:"timeout" validate:"gte=0"`

	// Enabled is derived from Storage.Backend during validation.
	Enabled bool `koanf:"-"`
}

// TrackingConfig controls behavior tracking.
type TrackingConfig struct {
	Enabled bool `koanf:"enabled"`

	// Namespace prefixes persisted keys so one backend can hold several clients.
	Namespace string `koanf:"namespace"`

	// QueueSize is the async tracker buffer.
	QueueSize int `koanf:"queue_size" validate:"gte=1"`
}

// RecommendConfig tunes the recommendation scorer.
type RecommendConfig struct {
	DefaultLimit int `koanf:"default_limit" validate:"gte=1,lte=500"`
	RecentWindow int `koanf:"recent_window" validate:"gte=1,lte=100"`
}

// CatalogConfig points at the candidate catalog file.
type CatalogConfig struct {
	Path string `koanf:"path"`
}

// LoggingConfig configures zerolog output.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
}

// NewConfig returns a configuration populated with defaults.
func NewConfig() *Config {
	dataDir := defaultDataDir()

	return &Config{
		Storage: StorageConfig{
			Backend:   "sqlite",
			Path:      filepath.Join(dataDir, "behavior.db"),
			BadgerDir: filepath.Join(dataDir, "badger"),
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "intent-rank",
				TTL:       30 * 24 * time.Hour,
				Timeout:   3 * time.Second,
			},
		},
		Tracking: TrackingConfig{
			Enabled:   true,
			QueueSize: 1000,
		},
		Recommend: RecommendConfig{
			DefaultLimit: 10,
			RecentWindow: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// GetDefaultConfigPath returns the path to ~/.intent-rank.yaml
func GetDefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".intent-rank.yaml"), nil
}

// defaultDataDir is ~/.intent-rank, or a relative directory when $HOME is unknown.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".intent-rank"
	}
	return filepath.Join(home, ".intent-rank")
}
