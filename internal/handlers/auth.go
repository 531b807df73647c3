package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/nkiryanov/moneytracker/internal/apperrors"
	"github.com/nkiryanov/moneytracker/internal/handlers/render"
	"github.com/nkiryanov/moneytracker/internal/logger"
	"github.com/nkiryanov/moneytracker/internal/service/user"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func handleRegister(authService authService, logger logger.Logger) http.Handler {
	type response struct {
		Message string `json:"message"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[credentialsRequest](w, r)
		if err != nil {
			return
		}

		_, err = authService.Register(r.Context(), data.Username, data.Password)
		switch {
		case err == nil:
			render.JSON(w, response{Message: "User registered successfully"})
		case errors.Is(err, apperrors.ErrMissingFields):
			render.ServiceError(w, "Username and password are required", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrUsernameTooLong):
			render.ServiceError(w, fmt.Sprintf("Username is too long (maximum %d characters)", user.MaxUsernameLength), http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, "Username already exists", http.StatusBadRequest)
		default:
			logger.Error("failed to register user", "username", data.Username, "error", err)
			render.ServiceError(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

func handleLogin(authService authService, logger logger.Logger) http.Handler {
	type response struct {
		Token string `json:"token"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[credentialsRequest](w, r)
		if err != nil {
			return
		}

		token, err := authService.Login(r.Context(), data.Username, data.Password)
		switch {
		case err == nil:
			render.JSON(w, response{Token: token.Value})
		case errors.Is(err, apperrors.ErrMissingFields):
			render.ServiceError(w, "Username and password are required", http.StatusBadRequest)
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, "Invalid username or password", http.StatusUnauthorized)
		default:
			logger.Error("failed to login user", "username", data.Username, "error", err)
			render.ServiceError(w, err.Error(), http.StatusInternalServerError)
		}
	})
}

// Pre-flight requests are answered with empty success
func handleOptions() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}
