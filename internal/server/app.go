// Package server initializes and runs the identity server: it opens the
// database, runs migrations, wires the auth service, and starts the HTTP
// endpoint with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/matoscout/api/internal/logging"
	"github.com/matoscout/api/internal/server/config"
	"github.com/matoscout/api/internal/server/httpapi"
	"github.com/matoscout/api/internal/server/password"
	"github.com/matoscout/api/internal/server/repositories/repomanager"
	"github.com/matoscout/api/internal/server/services"
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	authSvc    *services.AuthService
	httpServer *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	verifier, err := password.NewVerifier(cfg.PasswordParams(), 0, logger)
	if err != nil {
		return nil, fmt.Errorf("password verifier init error: %w", err)
	}

	authSvc := services.NewAuthService(db, m, verifier, cfg)
	httpServer := httpapi.NewServer(cfg.EndpointAddrHTTP, logger, authSvc)

	return &App{
		config:     cfg,
		logger:     logger,
		db:         db,
		authSvc:    authSvc,
		httpServer: httpServer,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err.Error())
	}
}
