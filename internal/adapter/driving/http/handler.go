// Package httphandler is the HTTP driving adapter that exposes the
// configuration actions as a JSON API.
package httphandler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/ericfisherdev/liveconfig/internal/application"
)

// Handler is the HTTP driving adapter that serves the REST API.
type Handler struct {
	svc    *application.ConfigService
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(svc *application.ConfigService, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
	}
}

// RegisterAPIRoutes registers all /api/v1 routes on mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/health", h.Health)

	mux.HandleFunc("GET /api/v1/config", h.GetConfig)
	mux.HandleFunc("PUT /api/v1/config/gemini-key", h.SetGeminiKey)
	mux.HandleFunc("POST /api/v1/config/gemini-key/verify", h.VerifyGeminiKey)

	mux.HandleFunc("GET /api/v1/profiles", h.ListProfiles)
	mux.HandleFunc("POST /api/v1/profiles", h.UpsertProfile)
	mux.HandleFunc("GET /api/v1/profiles/name-availability", h.CheckProfileName)
	mux.HandleFunc("GET /api/v1/profiles/{id}", h.GetProfile)
	mux.HandleFunc("DELETE /api/v1/profiles/{id}", h.DeleteProfile)

	mux.HandleFunc("POST /api/v1/services/{service}", h.CallService)
}

// ApplyMiddleware wraps next with caller identity, panic recovery and
// request logging.
func ApplyMiddleware(next http.Handler, logger *slog.Logger) http.Handler {
	// Recovery innermost so panics are caught before logging.
	wrapped := actorMiddleware(next)
	wrapped = recoveryMiddleware(logger, wrapped)
	wrapped = loggingMiddleware(logger, wrapped)
	return wrapped
}

// NewServeMux creates an http.Handler with the API routes registered and
// wrapped with the standard middleware.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// Health reports liveness and whether storage is reachable. An unreachable
// store turns the response into a 503 with status "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Storage: "ok",
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	status := http.StatusOK

	if err := h.svc.CheckStorage(r.Context()); err != nil {
		h.logger.Error("storage health check failed", "error", err)
		resp.Status = "degraded"
		resp.Storage = "unavailable"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, resp)
}

// writeServiceError maps ConfigService errors onto HTTP status codes.
// Unexpected errors are logged and reported as 500.
func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, application.ErrProfileNameRequired),
		errors.Is(err, application.ErrNoAPIKey):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, application.ErrProfileNameTaken),
		errors.Is(err, application.ErrAlreadyConfigured):
		writeError(w, http.StatusConflict, err.Error())
	default:
		h.logger.Error("failed to "+op, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeOptionalJSON decodes the request body into v. An empty body leaves v
// untouched.
func decodeOptionalJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
