package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/nkiryanov/moneytracker/internal/apperrors"
	"github.com/nkiryanov/moneytracker/internal/handlers/render"
	"github.com/nkiryanov/moneytracker/internal/handlers/userctx"
	"github.com/nkiryanov/moneytracker/internal/models"
)

type authService interface {
	// Has to return apperrors.ErrMissingToken or apperrors.ErrInvalidToken if request not authenticated
	Authenticate(ctx context.Context, r *http.Request) (models.User, error)
}

type errorLogger interface {
	Error(msg string, args ...any)
}

// Authenticate request and put the user to request context
// Wrapped handler is called only with authenticated user
func AuthMiddleware(as authService, l errorLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := as.Authenticate(r.Context(), r)

			switch {
			case err == nil:
				ctx := userctx.New(r.Context(), user)
				next.ServeHTTP(w, r.WithContext(ctx))
			case errors.Is(err, apperrors.ErrMissingToken):
				render.ServiceError(w, "Token is missing!", http.StatusUnauthorized)
			case errors.Is(err, apperrors.ErrInvalidToken):
				render.ServiceError(w, "Token is invalid!", http.StatusUnauthorized)
			default:
				l.Error("can't authenticate request", "uri", r.RequestURI, "error", err)
				render.ServiceError(w, err.Error(), http.StatusInternalServerError)
			}
		})
	}
}
