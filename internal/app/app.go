package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/skillquest-backend/internal/data/db"
	"github.com/yungbote/skillquest-backend/internal/http"
	"github.com/yungbote/skillquest-backend/internal/jobs"
	"github.com/yungbote/skillquest-backend/internal/platform/logger"
	"github.com/yungbote/skillquest-backend/internal/realtime"
)

type App struct {
	Log       *logger.Logger
	DB        *gorm.DB
	Cfg       Config
	Repos     Repos
	Clients   Clients
	Services  Services
	SSEHub    *realtime.SSEHub
	Server    *http.Server
	Scheduler *jobs.Scheduler

	store *db.PostgresService
}

// OpenDB connects to the configured store and migrates the schema.
func OpenDB(log *logger.Logger, cfg Config) (*db.PostgresService, error) {
	store, err := db.NewPostgresService(cfg.DB, log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(store.DB()); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return store, nil
}

func New(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	store, err := OpenDB(log, cfg)
	if err != nil {
		return nil, err
	}
	theDB := store.DB()

	clients, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	hub := realtime.NewSSEHub(log)
	reposet := wireRepos(theDB, log)

	serviceset, err := wireServices(theDB, log, cfg, reposet, clients, hub)
	if err != nil {
		_ = clients.Close(context.Background())
		_ = store.Close()
		return nil, err
	}

	handlerset := wireHandlers(theDB, log, serviceset, clients.Bucket, hub)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, clients, handlerset, middleware)

	scheduler := jobs.NewScheduler(log, time.UTC)
	if err := jobs.RegisterTokenSweep(scheduler, cfg.TokenSweepCron, serviceset.TokenSweeper); err != nil {
		_ = clients.Close(context.Background())
		_ = store.Close()
		return nil, fmt.Errorf("schedule token sweep: %w", err)
	}

	return &App{
		Log:       log,
		DB:        theDB,
		Cfg:       cfg,
		Repos:     reposet,
		Clients:   clients,
		Services:  serviceset,
		SSEHub:    hub,
		Server:    server,
		Scheduler: scheduler,
		store:     store,
	}, nil
}

// Run serves HTTP and runs background work until ctx is cancelled or one of
// them fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return errors.New("app not initialized")
	}
	g, ctx := errgroup.WithContext(ctx)

	if a.Clients.Bus != nil {
		if err := a.Clients.Bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			return fmt.Errorf("start realtime forwarder: %w", err)
		}
	}
	if a.Clients.Leaderboard != nil {
		if err := a.Services.Leaderboard.Rebuild(ctx); err != nil {
			a.Log.Warn("Leaderboard rebuild failed; serving from the users table until XP changes", "error", err)
		}
	}

	g.Go(func() error { return a.Scheduler.Start(ctx) })
	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.Addr())
		return a.Server.Run(ctx)
	})
	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.Clients.Close(ctx); err != nil {
		a.Log.Warn("Closing clients failed", "error", err)
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.Log.Warn("Closing database failed", "error", err)
		}
	}
}
