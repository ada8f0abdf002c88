// Package app wires configuration into a ready engine: storage backends,
// run locks, LLM collaborators and tracing.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/agenthands/flowalign/internal/config"
	"github.com/agenthands/flowalign/internal/core"
	"github.com/agenthands/flowalign/internal/core/align"
	"github.com/agenthands/flowalign/internal/core/extraction"
	"github.com/agenthands/flowalign/internal/core/summary"
	"github.com/agenthands/flowalign/internal/driver"
	"github.com/agenthands/flowalign/internal/llm"
	"github.com/agenthands/flowalign/internal/lock"
	"github.com/agenthands/flowalign/internal/logger"
	"github.com/agenthands/flowalign/internal/observability"
	"github.com/agenthands/flowalign/internal/store"
	"github.com/agenthands/flowalign/internal/store/memory"
	"github.com/agenthands/flowalign/internal/store/sqlstore"
)

type App struct {
	Config *config.Config
	Log    *logger.Logger
	Engine *core.Engine
	// Extractor is nil when no LLM provider is configured.
	Extractor *extraction.FlowExtractor

	closers []func(context.Context) error
}

// New builds every collaborator named by cfg. datasetPath seeds the memory
// backend and is ignored by the others.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, datasetPath string) (*App, error) {
	if log == nil {
		log = logger.Nop()
	}
	a := &App{Config: cfg, Log: log}

	shutdown, err := observability.InitTracing(ctx, log, "flowalign", cfg.Observability.Tracing)
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}
	a.closers = append(a.closers, shutdown)

	stores, err := a.openStores(ctx, datasetPath)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	locker, err := a.openLocker(ctx)
	if err != nil {
		a.Close(ctx)
		return nil, err
	}

	a.Engine = core.NewEngine(stores, locker, align.FromConfig(cfg.Alignment), log)

	client, err := llm.NewClient(ctx, cfg.LLM)
	switch {
	case errors.Is(err, llm.ErrNoProvider):
		log.Info("no llm provider configured, extraction and phase naming disabled")
	case err != nil:
		a.Close(ctx)
		return nil, fmt.Errorf("failed to initialize LLM client: %w", err)
	default:
		a.Extractor = extraction.NewFlowExtractor(client, cfg.Extraction)
		a.Engine.Namer = summary.NewPhaseNamer(client, cfg.Summary)
		if c, ok := client.(interface{ Close() error }); ok {
			a.closers = append(a.closers, func(context.Context) error { return c.Close() })
		}
		log.Info("llm client ready", "provider", cfg.LLM.Provider, "model", cfg.LLM.Model)
	}

	return a, nil
}

func (a *App) openStores(ctx context.Context, datasetPath string) (store.Stores, error) {
	cfg := a.Config.Store
	var backend store.Backend

	switch cfg.Backend {
	case "memory":
		if datasetPath == "" {
			datasetPath = cfg.Dataset
		}
		if datasetPath == "" {
			backend = memory.New()
			break
		}
		mem, err := memory.LoadDataset(datasetPath)
		if err != nil {
			return store.Stores{}, err
		}
		a.Log.Info("memory store seeded", "dataset", datasetPath)
		backend = mem

	case "sqlite", "postgres":
		var (
			sql *sqlstore.Store
			err error
		)
		if cfg.Backend == "sqlite" {
			sql, err = sqlstore.OpenSQLite(cfg.SQLitePath, a.Log)
		} else {
			sql, err = sqlstore.OpenPostgres(cfg.PostgresDSN, a.Log)
		}
		if err != nil {
			return store.Stores{}, err
		}
		a.closers = append(a.closers, func(context.Context) error { return sql.Close() })
		if err := sql.AutoMigrate(); err != nil {
			return store.Stores{}, err
		}
		backend = sql

	default:
		return store.Stores{}, fmt.Errorf("unsupported store backend: %s", cfg.Backend)
	}

	stores := store.FromBackend(backend)

	if cfg.CanonicalBackend == "memgraph" {
		mg := a.Config.Memgraph
		d, err := driver.NewMemgraphDriver(ctx, mg.URI, mg.User, mg.Password, a.Log)
		if err != nil {
			return store.Stores{}, fmt.Errorf("failed to connect to Memgraph: %w", err)
		}
		a.closers = append(a.closers, d.Close)
		if err := d.BuildIndices(ctx); err != nil {
			return store.Stores{}, err
		}
		graph := driver.NewGraphStore(d)
		stores.Canonical = graph
		stores.Alignments = graph
	}

	a.Log.Info("stores ready", "backend", cfg.Backend, "canonical_backend", cfg.CanonicalBackend)
	return stores, nil
}

func (a *App) openLocker(ctx context.Context) (lock.Locker, error) {
	cfg := a.Config.Lock
	switch cfg.Backend {
	case "redis":
		rdb, err := lock.DialRedis(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
		return lock.NewRedis(rdb, cfg.TTL.Duration, cfg.Wait.Duration, a.Log), nil
	default:
		return lock.NewLocal(cfg.Wait.Duration), nil
	}
}

// Close releases collaborators in reverse order of creation.
func (a *App) Close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.Log.Warn("failed to close collaborator", "error", err)
		}
	}
	a.closers = nil
}
