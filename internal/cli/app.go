package cli

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"

	"github.com/khanglvm/intent-rank/internal/behavior"
	"github.com/khanglvm/intent-rank/internal/catalog"
	"github.com/khanglvm/intent-rank/internal/config"
	"github.com/khanglvm/intent-rank/internal/logging"
	"github.com/khanglvm/intent-rank/internal/recommend"
	"github.com/khanglvm/intent-rank/internal/storage"
)

// app holds the collaborators a command needs.
type app struct {
	cfg     *config.Config
	backend storage.Backend
	store   *behavior.Store
	catalog *catalog.Catalog
}

// loadConfig honours --config before the default lookup.
func loadConfig() (*config.Config, error) {
	if flags.configPath != "" {
		return config.LoadFrom(flags.configPath)
	}
	return config.Load()
}

// openApp loads config, configures logging to stderr and opens storage.
// catalogPath overrides catalog.path; the catalog stays nil when neither
// is set.
func openApp(stderr io.Writer, catalogPath string) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if flags.verbose {
		level = "debug"
	}
	logging.Init(logging.Config{Level: level, Format: cfg.Logging.Format, Output: stderr})

	backend, err := storage.Open(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	a := &app{
		cfg:     cfg,
		backend: backend,
		store: behavior.New(backend,
			behavior.WithNamespace(cfg.Tracking.Namespace),
			behavior.WithLogger(logging.Component("behavior")),
		),
	}

	if catalogPath == "" {
		catalogPath = cfg.Catalog.Path
	}
	if catalogPath != "" {
		c, err := catalog.Load(catalogPath)
		if err != nil {
			backend.Close()
			return nil, err
		}
		a.catalog = c
	}

	return a, nil
}

// scorer builds a scorer tuned by the recommend config section.
func (a *app) scorer() *recommend.Scorer {
	opts := []recommend.Option{
		recommend.WithDefaultLimit(a.cfg.Recommend.DefaultLimit),
		recommend.WithRecentWindow(a.cfg.Recommend.RecentWindow),
	}
	if a.catalog != nil {
		opts = append(opts, recommend.WithCategoryLookup(a.catalog.CategoryOf))
	}
	return recommend.NewScorer(a.store, opts...)
}

// categoryLookup resolves product categories through the catalog, if any.
func (a *app) categoryLookup() behavior.CategoryLookup {
	if a.catalog == nil {
		return nil
	}
	return a.catalog.CategoryOf
}

func (a *app) requireCatalog() error {
	if a.catalog == nil {
		return fmt.Errorf("no catalog: pass --catalog or set catalog.path in the config")
	}
	return nil
}

func (a *app) Close() {
	if a.catalog != nil {
		a.catalog.Close()
	}
	a.backend.Close()
}

// writeJSON pretty-prints v.
func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
