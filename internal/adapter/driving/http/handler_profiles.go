package httphandler

import (
	"net/http"

	"github.com/ericfisherdev/liveconfig/internal/domain/model"
)

// ListProfiles returns all profiles in stored order.
func (h *Handler) ListProfiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toConfigResponse(h.svc.GetConfig(r.Context())).Profiles)
}

// GetProfile returns a single profile by ID.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.svc.GetProfile(r.Context(), r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// UpsertProfile creates or replaces a profile and returns its ID. New
// profiles answer 201, updates 200.
func (h *Handler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	var req UpsertProfileRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.UpsertProfile(r.Context(), req.profile())
	if err != nil {
		h.writeServiceError(w, "upsert profile", err)
		return
	}

	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, UpsertProfileResponse{ID: res.ID})
}

// DeleteProfile removes a profile. Deleting an unknown ID also answers 204.
func (h *Handler) DeleteProfile(w http.ResponseWriter, r *http.Request) {
	if _, err := h.svc.DeleteProfile(r.Context(), r.PathValue("id")); err != nil {
		h.writeServiceError(w, "delete profile", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// CheckProfileName reports whether ?name= is free, ignoring ?exclude_id=.
func (h *Handler) CheckProfileName(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	available := h.svc.CheckProfileName(r.Context(), q.Get("name"), q.Get("exclude_id"))

	writeJSON(w, http.StatusOK, CheckProfileNameResponse{Available: available})
}

func (req UpsertProfileRequest) profile() model.Profile {
	if req.Profile == nil {
		return model.Profile{}
	}
	return *req.Profile
}
