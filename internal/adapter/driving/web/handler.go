// Package web implements the HTML GUI driving adapter using templ components.
package web

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/a-h/templ"

	"github.com/ericfisherdev/liveconfig/internal/adapter/driving/web/templates"
	"github.com/ericfisherdev/liveconfig/internal/adapter/driving/web/templates/pages"
	vm "github.com/ericfisherdev/liveconfig/internal/adapter/driving/web/viewmodel"
	"github.com/ericfisherdev/liveconfig/internal/application"
)

// Handler is the web GUI driving adapter that serves HTML via templ components.
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

// Dashboard renders the key status and profile list.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	data := toDashboardViewModel(h.svc.GetConfig(ctx), h.svc.SetupEntry(ctx))
	h.render(w, r, http.StatusOK, "dashboard", pages.Dashboard(data))
}

// SetupPage renders the setup confirmation form, or the already-configured
// notice once setup has run.
func (h *Handler) SetupPage(w http.ResponseWriter, r *http.Request) {
	data := vm.SetupViewModel{
		Title:     application.SetupTitle,
		CSRFField: csrfFormField,
		CSRFToken: csrfToken(w, r),
	}
	if entry := h.svc.SetupEntry(r.Context()); entry != nil {
		data.Configured = true
		data.CreatedAt = entry.CreatedAt.UTC().Format(displayTimeLayout)
	}
	h.render(w, r, http.StatusOK, "setup page", pages.Setup(data))
}

// SetupConfirm completes setup and redirects to the dashboard.
func (h *Handler) SetupConfirm(w http.ResponseWriter, r *http.Request) {
	if !validateCSRF(r) {
		h.render(w, r, http.StatusForbidden, "csrf error", pages.Message("Forbidden", "Invalid or missing CSRF token."))
		return
	}

	_, err := h.svc.CompleteSetup(r.Context())
	if errors.Is(err, application.ErrAlreadyConfigured) {
		h.render(w, r, http.StatusConflict, "setup abort", pages.Message("Setup aborted", application.ErrAlreadyConfigured.Error()))
		return
	}
	if err != nil {
		h.logger.Error("failed to complete setup", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ProfilePreview renders one profile with its instructions as HTML.
func (h *Handler) ProfilePreview(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.svc.GetProfile(r.Context(), r.PathValue("id"))
	if !ok {
		h.render(w, r, http.StatusNotFound, "not found", pages.Message("Not found", "No profile with that ID."))
		return
	}
	h.render(w, r, http.StatusOK, "profile preview", pages.Profile(toProfileDetailViewModel(profile)))
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, what string, page templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.Layout(application.SetupTitle, page).Render(r.Context(), w); err != nil {
		h.logger.Error("failed to render "+what, "error", err)
	}
}
