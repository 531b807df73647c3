package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nkiryanov/moneytracker/internal/db"
	"github.com/nkiryanov/moneytracker/internal/handlers"
	"github.com/nkiryanov/moneytracker/internal/logger"
	"github.com/nkiryanov/moneytracker/internal/repository/postgres"
	"github.com/nkiryanov/moneytracker/internal/service/auth"
	"github.com/nkiryanov/moneytracker/internal/service/auth/tokenmanager"
	"github.com/nkiryanov/moneytracker/internal/service/record"
	"github.com/nkiryanov/moneytracker/internal/service/user"
)

const shutdownTimeout = 5 * time.Second

type ServerApp struct {
	ListenAddr string
	Handler    http.Handler

	logger logger.Logger
	pool   *pgxpool.Pool
}

func NewServerApp(ctx context.Context, c Config) (*ServerApp, error) {
	// Initialize logger
	logger, err := logger.New(c.Environment, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("error while initializing logger: %w", err)
	}

	// Wait for the database, then run migrations
	pool, err := db.WaitAndMigrate(ctx, c.DatabaseDSN, db.WaitOptions{
		Attempts: c.DBConnectAttempts,
		Interval: c.DBConnectInterval,
		OnRetry: func(attempt int, err error) {
			logger.Warn("database is not ready yet", "attempt", attempt, "of", c.DBConnectAttempts, "error", err)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error while connecting to db. Err: %w", err)
	}

	// Initialize repositories
	storage := postgres.NewStorage(pool)

	// Initialize services
	tokenManager, err := tokenmanager.New(tokenmanager.Config{SecretKey: c.SecretKey, AccessTTL: c.TokenTTL})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating token manager. Err: %w", err)
	}
	userService, err := user.NewService(auth.DefaultHasher, storage)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating user service. Err: %w", err)
	}
	authService, err := auth.NewService(auth.Config{}, tokenManager, userService)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("error while creating auth service. Err: %w", err)
	}
	recordService := record.NewService(storage)

	router := handlers.NewRouter(authService, recordService, storage, logger)

	return &ServerApp{
		ListenAddr: c.ListenAddr,
		Handler:    router,
		logger:     logger,
		pool:       pool,
	}, nil
}

// Run starts http server and closes gracefully on context cancellation
// Database pool is closed when server stopped
func (s *ServerApp) Run(ctx context.Context) error {
	defer s.pool.Close()

	httpServer := &http.Server{
		Addr:              s.ListenAddr,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	srvCtx, srvCtxCancel := context.WithCancel(ctx)
	defer srvCtxCancel()

	go func() {
		<-srvCtx.Done()

		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := httpServer.Shutdown(timeoutCtx); errors.Is(err, context.DeadlineExceeded) {
			s.logger.Error("HTTP server shutdown timeout exceeded, forcing shutdown...")
		}
		s.logger.Info("HTTP server stopped")
		close(idleConnsClosed)
	}()

	// Listen and serve until context is cancelled; then close gracefully connections
	s.logger.Info("Starting server", "address", s.ListenAddr)
	err := httpServer.ListenAndServe()
	srvCtxCancel()
	<-idleConnsClosed

	return err
}
