package app

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/danielpatrickdp/dailycard/go-controller/internal/catalog"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/config"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/logging"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/metrics"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/pipeline"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/profile"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/recency"
	"github.com/danielpatrickdp/dailycard/go-controller/internal/state"
)

// App holds the opened stores and the draw pipeline for one process.
type App struct {
	Config   *config.Config
	Store    *state.Store
	Catalog  *catalog.Store
	History  *recency.History
	Profiles *profile.Store
	Pipeline *pipeline.Pipeline

	badger *badger.DB
}

// Open opens every store named by cfg, loads the catalog and wires the pipeline.
// A catalog that fails to load is fatal.
func Open(cfg *config.Config) (*App, error) {
	log := logging.Component("app")

	store, err := state.NewStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	a := &App{Config: cfg, Store: store}

	if err := a.openRecency(); err != nil {
		a.Close()
		return nil, err
	}

	a.Profiles, err = profile.NewStore(store.DB())
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("open profile store: %w", err)
	}

	a.Catalog = catalog.NewStore(cfg.Catalog.Path)
	cards, err := a.Catalog.Load()
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	metrics.SetCatalogSize(len(cards))

	a.Pipeline, err = pipeline.New(pipeline.Deps{
		Catalog:    a.Catalog,
		History:    a.History,
		Share:      store,
		Profiles:   a.Profiles,
		Provenance: store.DB(),
	}, cfg.PipelineConfig())
	if err != nil {
		a.Close()
		return nil, err
	}

	log.Info().
		Str("db", cfg.Database.Path).
		Str("recency", cfg.Database.RecencyBackend).
		Int("cards", len(cards)).
		Msg("app ready")
	return a, nil
}

func (a *App) openRecency() error {
	cfg := a.Config
	var rs recency.Store
	switch cfg.Database.RecencyBackend {
	case "badger":
		db, err := recency.OpenBadger(cfg.Database.BadgerDir)
		if err != nil {
			return fmt.Errorf("open badger recency: %w", err)
		}
		a.badger = db
		rs = recency.NewBadgerStore(db)
	case "memory":
		rs = recency.NewMemoryStore()
	default:
		s, err := recency.NewSQLiteStore(a.Store.DB())
		if err != nil {
			return fmt.Errorf("open sqlite recency: %w", err)
		}
		rs = s
	}
	a.History = recency.NewHistory(rs, cfg.RecencyConfig())
	return nil
}

// Close releases every store.
func (a *App) Close() error {
	var errs []error
	if a.badger != nil {
		errs = append(errs, a.badger.Close())
	}
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}
