package middleware

import (
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/nkiryanov/moneytracker/internal/handlers/render"
)

const DefaultMaxBodyBytes int64 = 1 << 20

type warnLogger interface {
	Warn(msg string, args ...any)
}

type GateConfig struct {
	// Paths that accept any body (probes)
	ExemptPaths []string

	// Requests with larger body are rejected
	// If not set than DefaultMaxBodyBytes is used
	MaxBodyBytes int64
}

// Reject state changing requests that are not JSON or too large
// OPTIONS requests pass through untouched
func GateMiddleware(cfg GateConfig, l warnLogger) func(http.Handler) http.Handler {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	exempt := make(map[string]struct{}, len(cfg.ExemptPaths))
	for _, p := range cfg.ExemptPaths {
		exempt[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !hasBody(r) {
				next.ServeHTTP(w, r)
				return
			}

			if _, ok := exempt[r.URL.Path]; !ok && !isJSON(r.Header.Get("Content-Type")) {
				l.Warn("request is not JSON", "path", r.URL.Path, "content_type", r.Header.Get("Content-Type"), "remote_addr", r.RemoteAddr)
				render.ServiceError(w, "Request body has to be JSON", http.StatusBadRequest)
				return
			}

			if r.ContentLength > cfg.MaxBodyBytes {
				l.Warn("request is too large", "path", r.URL.Path, "size", r.ContentLength, "remote_addr", r.RemoteAddr)
				render.ServiceError(w, fmt.Sprintf("Request body is too large (maximum %d bytes)", cfg.MaxBodyBytes), http.StatusRequestEntityTooLarge)
				return
			}

			// Declared size may be absent (chunked), so limit reading as well
			r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxBodyBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// POST, PUT and PATCH are checked always, DELETE only when it carries a body
func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	case http.MethodDelete:
		return r.ContentLength != 0
	default:
		return false
	}
}

// application/json and application/*+json
func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == "application/json" ||
		(strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"))
}
