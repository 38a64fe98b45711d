package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/schemastore/internal/data/aggregates"
	"github.com/yungbote/schemastore/internal/data/db"
	"github.com/yungbote/schemastore/internal/observability"
	"github.com/yungbote/schemastore/internal/pkg/logger"
)

// Version is stamped at build time.
var Version = "dev"

type App struct {
	Log     *logger.Logger
	DB      *gorm.DB
	Cfg     *Config
	Repos   Repos
	Metrics *observability.Metrics

	dbService    *db.Service
	cache        *cacheStack
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

// New connects storage and wires repositories. Nothing runs in the
// background until Start.
func New(ctx context.Context, cfg *Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config required")
	}
	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, cfg.Otel.otelConfig(Version))
	metrics := observability.Init(log, cfg.Metrics.Enabled, cfg.Metrics.ScrapeInterval)

	svc, err := db.Open(cfg.Database.dbConfig(), log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := svc.AutoMigrateAll(); err != nil {
			_ = svc.Close()
			log.Sync()
			return nil, fmt.Errorf("automigrate: %w", err)
		}
	}

	cs, err := wireCache(cfg.Cache, log)
	if err != nil {
		_ = svc.Close()
		log.Sync()
		return nil, err
	}

	hooks := aggregates.NewObservabilityHooks(metrics)
	reposet := wireRepos(svc.DB(), log, hooks, cs.store, cfg.Cache.TTL)

	return &App{
		Log:          log,
		DB:           svc.DB(),
		Cfg:          cfg,
		Repos:        reposet,
		Metrics:      metrics,
		dbService:    svc,
		cache:        cs,
		otelShutdown: otelShutdown,
	}, nil
}

// Migrate creates or updates every table and index.
func (a *App) Migrate() error {
	if a == nil || a.dbService == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.dbService.AutoMigrateAll()
}

// Start launches the invalidation listener and metric collectors.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if err := a.cache.start(ctx); err != nil {
		return fmt.Errorf("start cache invalidation: %w", err)
	}
	if a.Metrics != nil {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.Metrics.Addr)
		a.Metrics.StartDBCollector(ctx, a.Log, a.DB)
		if a.cache.redis != nil {
			a.Metrics.StartRedisCollector(ctx, a.Log, a.cache.redis)
		}
	}
	return nil
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.cache != nil {
		a.cache.close()
	}
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = a.otelShutdown(ctx)
		cancel()
	}
	if a.dbService != nil {
		if err := a.dbService.Close(); err != nil && a.Log != nil {
			a.Log.Warn("close database failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
