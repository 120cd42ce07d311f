package cmd

import (
	"context"
	"fmt"
	"time"

	"world-sync/core/config"
	"world-sync/core/crawler"
	"world-sync/core/database"
	"world-sync/core/logger"
	"world-sync/core/scheduler"
	"world-sync/core/session"
	"world-sync/core/snapshot"
	"world-sync/core/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app holds the components shared by the commands.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *gorm.DB
	store     *snapshot.Store
	storage   storage.Client
	scheduler *scheduler.Scheduler
}

// bootstrap loads the configuration and wires logger, database, snapshot
// store and scheduler.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logg)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	var (
		client storage.Client
		mirror *snapshot.Mirror
	)
	if cfg.Storage.Enabled {
		client, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		mirror = snapshot.NewMirror(client, cfg.Storage.Bucket, cfg.Storage.Region, logg)

		pctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := mirror.Prepare(pctx); err != nil {
			return nil, err
		}
		logg.Info("Snapshot mirror enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	store := snapshot.NewStore(cfg.Snapshot, mirror, logg)
	sched := scheduler.New(db, cfg.Sync, scheduler.Options{
		Dialer:  session.NewWebsocketDialer(cfg.Session),
		Session: cfg.Session,
		Crawl:   crawler.DefaultOptions(),
		Store:   store,
		Logger:  logg,
	})

	return &app{cfg: cfg, logger: logg, db: db, store: store, storage: client, scheduler: sched}, nil
}

func (a *app) close() {
	a.scheduler.Close()
	_ = a.logger.Sync()
}
