package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/nkiryanov/moneytracker/internal/handlers/render"
	"github.com/nkiryanov/moneytracker/internal/logger"
)

const healthTimeout = 2 * time.Second

func handleHealth(pinger pinger, logger logger.Logger) http.Handler {
	type response struct {
		Status   string `json:"status"`
		Message  string `json:"message"`
		Database string `json:"database"`
		Error    string `json:"error,omitempty"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := pinger.Ping(ctx); err != nil {
			logger.Warn("database is not reachable", "error", err)
			render.JSONWithStatus(w, response{
				Status:   "unhealthy",
				Message:  "Backend is running",
				Database: "disconnected",
				Error:    err.Error(),
			}, http.StatusInternalServerError)
			return
		}

		render.JSON(w, response{Status: "healthy", Message: "Backend is running", Database: "connected"})
	})
}

func handleRoot() http.Handler {
	type response struct {
		Message   string   `json:"message"`
		Endpoints []string `json:"endpoints"`
	}

	endpoints := []string{"/health", "/register", "/login", "/records", "/record", "/record/{id} (DELETE)"}

	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		render.JSON(w, response{Message: "Money tracker backend is running", Endpoints: endpoints})
	})
}
