package handlers

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nkiryanov/moneytracker/internal/handlers/middleware"
	"github.com/nkiryanov/moneytracker/internal/logger"
	"github.com/nkiryanov/moneytracker/internal/models"
	"github.com/nkiryanov/moneytracker/internal/service/record"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	recordService recordService,
	pinger pinger,
	logger logger.Logger,
) http.Handler {
	withAuth := middleware.AuthMiddleware(authService, logger)

	mux := http.NewServeMux()

	mux.Handle("GET /health", handleHealth(pinger, logger))
	mux.Handle("GET /{$}", handleRoot())
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("POST /register", handleRegister(authService, logger))
	mux.Handle("OPTIONS /register", handleOptions())
	mux.Handle("POST /login", handleLogin(authService, logger))
	mux.Handle("OPTIONS /login", handleOptions())

	mux.Handle("GET /records", withAuth(handleListRecords(recordService, logger)))
	mux.Handle("POST /record", withAuth(handleCreateRecord(recordService, logger)))
	mux.Handle("DELETE /record/{id}", withAuth(handleDeleteRecord(recordService, logger)))

	// Pre-flight goes without token
	mux.Handle("OPTIONS /records", handleOptions())
	mux.Handle("OPTIONS /record", handleOptions())
	mux.Handle("OPTIONS /record/{id}", handleOptions())

	handler := chain(mux,
		middleware.MetricsMiddleware(),
		middleware.LoggerMiddleware(logger),
		middleware.GateMiddleware(middleware.GateConfig{ExemptPaths: []string{"/", "/health"}}, logger),
	)

	return handler
}

type authService interface {
	// Register user with username and password
	// Has to return apperrors.ErrUserAlreadyExists if user already exists
	Register(ctx context.Context, username string, password string) (models.User, error)

	// Login user with username and password
	// Has to return apperrors.ErrInvalidCredentials if user not found or password not match
	Login(ctx context.Context, username string, password string) (models.IssuedToken, error)

	// Get request and return user if it authenticated or error
	Authenticate(ctx context.Context, r *http.Request) (models.User, error)
}

type recordService interface {
	List(ctx context.Context, user models.User) ([]models.Record, error)
	Create(ctx context.Context, user models.User, r record.NewRecord) (models.Record, error)
	Delete(ctx context.Context, user models.User, recordID int64) error
}

type pinger interface {
	Ping(ctx context.Context) error
}
