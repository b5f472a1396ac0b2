package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ncobase/feedsync/auth"
	"github.com/ncobase/feedsync/concurrency/worker"
	"github.com/ncobase/feedsync/config"
	"github.com/ncobase/feedsync/data"
	"github.com/ncobase/feedsync/data/cache"
	"github.com/ncobase/feedsync/data/meili"
	redisdata "github.com/ncobase/feedsync/data/redis"
	"github.com/ncobase/feedsync/history"
	"github.com/ncobase/feedsync/logging/logger"
	"github.com/ncobase/feedsync/logging/observes"
	"github.com/ncobase/feedsync/social"
	"github.com/ncobase/feedsync/structs"
	"github.com/ncobase/feedsync/version"

	// drivers
	_ "github.com/ncobase/feedsync/data/memory"
	_ "github.com/ncobase/feedsync/data/mongodb"
	_ "github.com/ncobase/feedsync/data/sqlite"
)

const authorCacheKey = "feedsync:authors"

// App holds the wired client.
type App struct {
	Config  *config.Config
	Store   *data.Guard
	Slot    data.Slot
	Session *auth.SessionContext
	Social  *social.Service

	cleanups []func(ctx context.Context) error
}

// NewApp wires logging, tracing, the store, the local slot and the
// services from cfg, and restores the persisted session.
func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}
	if err := a.init(ctx); err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}
	return a, nil
}

func (a *App) init(ctx context.Context) error {
	cfg := a.Config

	logCleanup, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("failed to init logger: %w", err)
	}
	a.onClose(func(context.Context) error {
		logCleanup()
		return nil
	})

	vi := version.GetVersionInfo()
	flush, err := observes.NewSentry(&observes.SentryOptions{
		Dsn:         cfg.Observes.Sentry.Endpoint,
		Name:        cfg.AppName,
		Release:     vi.Version,
		Environment: cfg.RunMode,
		SampleRate:  cfg.Observes.Sentry.SampleRate,
	})
	if err != nil {
		return fmt.Errorf("failed to init sentry: %w", err)
	}
	a.onClose(func(context.Context) error {
		flush()
		return nil
	})

	shutdown, err := observes.NewTracer(&observes.TracerOption{
		URL:                cfg.Observes.Tracer.Endpoint,
		Name:               cfg.AppName,
		Version:            vi.Version,
		Branch:             vi.Branch,
		Revision:           vi.Revision,
		Environment:        cfg.RunMode,
		SamplingRate:       cfg.Observes.Tracer.SamplingRate,
		BatchTimeout:       cfg.Observes.Tracer.BatchTimeout,
		ExportTimeout:      cfg.Observes.Tracer.ExportTimeout,
		MaxExportBatchSize: cfg.Observes.Tracer.MaxExportBatchSize,
	})
	if err != nil {
		return fmt.Errorf("failed to init tracer: %w", err)
	}
	a.onClose(shutdown)

	store, err := data.Open(ctx, cfg.Data)
	if err != nil {
		return fmt.Errorf("failed to open %s store: %w", cfg.Data.Driver, err)
	}
	a.Store = data.NewGuard(store, cfg.Breaker, cfg.Data.Timeout)
	a.onClose(a.Store.Close)

	a.Slot, err = data.OpenSlot(ctx, cfg.Data)
	if err != nil {
		return fmt.Errorf("failed to open %s slot: %w", cfg.Data.Local.Backend, err)
	}
	a.onClose(func(context.Context) error { return a.Slot.Close() })

	provider, err := auth.NewLocalProvider(ctx, a.Store, a.Slot, cfg.Auth)
	if err != nil {
		return err
	}
	a.Session = auth.NewSessionContext(provider)
	if _, err := a.Session.Load(ctx); err != nil {
		logger.Warn(ctx, "failed to restore session", logger.ErrorKey, err)
	}

	authors, err := a.authorCache(ctx)
	if err != nil {
		return err
	}

	pool, err := worker.NewPool(&worker.Config{
		MaxWorkers:  max(cfg.Feed.AuthorWorkers, 1),
		QueueSize:   64,
		TaskTimeout: cfg.Feed.FetchTimeout,
	})
	if err != nil {
		return err
	}
	a.onClose(func(ctx context.Context) error {
		pool.Stop(ctx)
		return nil
	})

	a.Social, err = social.New(social.Deps{
		Store:   a.Store,
		Session: a.Session,
		Tx:      a.Store.Transactor(),
		Index:   meili.NewUserIndex(cfg.Data.Meilisearch),
		History: history.New(a.Slot, cfg.Feed.HistorySize),
		Authors: authors,
		Pool:    pool,
		Feed:    cfg.Feed,
	})
	if err != nil {
		return err
	}
	return nil
}

// authorCache shares profiles through redis when configured.
func (a *App) authorCache(ctx context.Context) (cache.ICache[structs.Profile], error) {
	if rcfg := a.Config.Data.Redis; rcfg != nil && rcfg.Addr != "" {
		rc, err := redisdata.NewClient(ctx, rcfg)
		if err == nil {
			a.onClose(func(context.Context) error { return rc.Close() })
			return cache.NewCache[structs.Profile](rc, authorCacheKey), nil
		}
		logger.Warn(ctx, "redis unavailable, caching authors in process", logger.ErrorKey, err)
	}
	lru, err := cache.NewLRU[structs.Profile](512)
	if err != nil {
		return nil, err
	}
	return lru, nil
}

// watchConfig applies logger and feed settings from the config file each
// time it changes, until ctx is done. onFeed may be nil.
func watchConfig(ctx context.Context, onFeed func(*config.Feed)) {
	err := config.Watch(func(cfg *config.Config) {
		if ctx.Err() != nil {
			return
		}
		applyConfig(ctx, cfg, onFeed)
	})
	if err != nil {
		logger.Debug(ctx, "config file not watched", logger.ErrorKey, err)
	}
}

func applyConfig(ctx context.Context, cfg *config.Config, onFeed func(*config.Feed)) {
	logger.StdLogger().Reconfigure(cfg.Logger)
	if onFeed != nil && cfg.Feed != nil {
		onFeed(cfg.Feed)
	}
	logger.Info(ctx, "configuration reloaded")
}

func (a *App) onClose(fn func(ctx context.Context) error) {
	a.cleanups = append(a.cleanups, fn)
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	var errs []error
	for i := len(a.cleanups) - 1; i >= 0; i-- {
		if err := a.cleanups[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.cleanups = nil
	return errors.Join(errs...)
}
