package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"activityPlanner/internal/backup"
	"activityPlanner/internal/config"
	"activityPlanner/internal/handlers"
	"activityPlanner/internal/logger"
	"activityPlanner/internal/middleware"
	"activityPlanner/internal/reminder"
	"activityPlanner/internal/repository/activity/inmemory"
	"activityPlanner/internal/repository/activity/postgres"
	"activityPlanner/internal/repository/activity/sqlite"
	"activityPlanner/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config     *config.Config
	server     *http.Server
	router     *chi.Mux
	repository service.ActivityRepository
	service    *service.ActivityService
	worker     *reminder.Worker
	inbox      *reminder.Inbox
	shutdowns  []func() // run in reverse order on stop
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: flushing logs")
		logger.Sync()
	})

	repoType, err := a.initRepository(ctx)
	if err != nil {
		a.Shutdown()
		return err
	}

	svc := service.NewActivityService(a.repository, repoType)
	a.service = &svc

	a.inbox = reminder.NewInbox(0)
	interval := a.config.Reminder.Interval
	a.worker = reminder.NewWorker(
		a.service,
		reminder.NewEngine(a.config.Reminder.Threshold),
		reminder.Fanout{reminder.LogNotifier{}, a.inbox},
		&interval,
	)

	a.initRouter()
	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           a.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("App: initialized",
		zap.String("repository", string(repoType)),
		zap.String("addr", a.server.Addr))
	return nil
}

func (a *App) initRepository(ctx context.Context) (service.RepoType, error) {
	switch service.RepoType(a.config.Repository.Type) {
	case service.SQLiteType:
		var opts []sqlite.Option
		if a.config.SQLite.BackupEnabled {
			opts = append(opts, sqlite.WithBackup(backup.NewFileCopy(a.config.SQLite.Path, a.config.SQLite.BackupPath)))
		}
		store, err := sqlite.New(ctx, a.config.SQLite.Path, opts...)
		if err != nil {
			return "", fmt.Errorf("open sqlite store: %w", err)
		}
		a.repository = store
		a.shutdowns = append(a.shutdowns, func() {
			if err := store.Close(); err != nil {
				logger.Error("App: failed to close sqlite store", err)
			}
		})
		return service.SQLiteType, nil

	case service.PostgresType:
		db := a.config.Database
		store, err := postgres.New(ctx, db.URL, postgres.PoolConfig{
			MaxConns:    int32(db.MaxConnections),
			MinConns:    int32(db.MinConnections),
			IdleTimeout: db.IdleTimeout,
		})
		if err != nil {
			return "", fmt.Errorf("open postgres store: %w", err)
		}
		a.shutdowns = append(a.shutdowns, store.Close)
		if err := store.Migrate(ctx); err != nil {
			return "", fmt.Errorf("migrate postgres store: %w", err)
		}
		a.repository = store
		return service.PostgresType, nil

	case service.InMemoryType:
		a.repository = inmemory.NewActivityStorage()
		return service.InMemoryType, nil

	default:
		return "", fmt.Errorf("unknown repository type %q", a.config.Repository.Type)
	}
}

func (a *App) initRouter() {
	h := handlers.NewActivityHandler(a.service, a.inbox, a.config.Pagination.PageSize)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recover)
	r.Use(middleware.Logging)
	r.Use(middleware.RateLimit(a.config.Server.RateLimit))
	h.Routes(r)

	a.router = r
}

// Handler exposes the router, mainly for tests.
func (a *App) Handler() http.Handler {
	return a.router
}

// Run serves HTTP and runs the reminder worker until ctx is cancelled, then
// shuts both down.
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorker := context.WithCancel(ctx)
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		a.worker.Start(workerCtx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("App: server started", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("App: shutdown requested")
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("serve: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: server shutdown failed", err)
	}

	stopWorker()
	<-workerDone

	a.Shutdown()
	return runErr
}

func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
