package config

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// envMappings maps INTENT_RANK_* variable names (prefix stripped, lowercased)
// to koanf paths. Unknown variables are ignored.
var envMappings = map[string]string{
	"storage_backend":         "storage.backend",
	"storage_path":            "storage.path",
	"storage_badger_dir":      "storage.badger_dir",
	"redis_addr":              "storage.redis.addr",
	"redis_password":          "storage.redis.password",
	"redis_db":                "storage.redis.db",
	"redis_key_prefix":        "storage.redis.key_prefix",
	"redis_ttl":               "storage.redis.ttl",
	"redis_timeout":           "storage.redis.timeout",
	"tracking_enabled":        "tracking.enabled",
	"tracking_namespace":      "tracking.namespace",
	"tracking_queue_size":     "tracking.queue_size",
	"recommend_default_limit": "recommend.default_limit",
	"recommend_recent_window": "recommend.recent_window",
	"catalog_path":            "catalog.path",
	"log_level":               "logging.level",
	"log_format":              "logging.format",
}

// Load reads the configuration from INTENT_RANK_CONFIG or the default path.
// A missing default file is not an error: defaults and env vars still apply.
func Load() (*Config, error) {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		return LoadFrom(path)
	}

	path, err := GetDefaultConfigPath()
	if err != nil {
		return load("")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return load("")
		}
	}
	return LoadFrom(path)
}

// LoadFrom reads config from an explicit path with enhanced error handling.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &ConfigNotFoundError{
				Path: path,
				Hint: "Run 'intent-rank config init' to create configuration",
			}
		}
		return nil, fmt.Errorf("failed to access config: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsPermission(err) {
			return nil, &PermissionError{
				Path:    path,
				Op:      "read",
				Fix:     getReadPermissionFix(path),
				Details: getPermissionDetails(path),
			}
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	f.Close()

	return load(path)
}

// load layers defaults, the optional file at path and the environment.
func load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(NewConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, &InvalidConfigError{
				Path:    path,
				Message: fmt.Sprintf("YAML parse error: %v", err),
				Hint:    "Restore from .bak file if available",
			}
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, &InvalidConfigError{
			Path:    path,
			Message: fmt.Sprintf("decode error: %v", err),
			Hint:    "Check value types (durations like 3s, integers, booleans)",
		}
	}

	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Storage.BadgerDir = expandHome(cfg.Storage.BadgerDir)
	cfg.Catalog.Path = expandHome(cfg.Catalog.Path)

	if err := cfg.Validate(); err != nil {
		return nil, &InvalidConfigError{
			Path:    path,
			Message: err.Error(),
			Hint:    "Fix the listed fields or run 'intent-rank config init --force'",
		}
	}

	return cfg, nil
}

// envTransform maps INTENT_RANK_STORAGE_BACKEND -> storage.backend.
func envTransform(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return envMappings[key]
}

// expandHome resolves a leading ~/ against the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}

// getReadPermissionFix returns platform-specific fix command
func getReadPermissionFix(path string) string {
	switch runtime.GOOS {
	case "windows":
		return fmt.Sprintf("Right-click %s → Properties → Security → Edit permissions", path)
	default:
		return fmt.Sprintf("Run: chmod 644 %s", path)
	}
}

// getPermissionDetails checks file ownership and permissions
func getPermissionDetails(path string) string {
	if runtime.GOOS == "windows" {
		return ""
	}

	info, err := os.Stat(path)
	if err != nil {
		return ""
	}

	return fmt.Sprintf("Current permissions: %04o", info.Mode().Perm())
}
