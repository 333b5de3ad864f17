package httphandler

import (
	"net/http"
)

// GetConfig returns the shared API key and all profiles.
func (h *Handler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, toConfigResponse(h.svc.GetConfig(r.Context())))
}

// SetGeminiKey stores or clears the shared Gemini API key.
func (h *Handler) SetGeminiKey(w http.ResponseWriter, r *http.Request) {
	var req SetGeminiKeyRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.svc.SetGeminiKey(r.Context(), req.APIKey); err != nil {
		h.writeServiceError(w, "set gemini key", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// VerifyGeminiKey checks the supplied key, or the stored one, against the Gemini API.
func (h *Handler) VerifyGeminiKey(w http.ResponseWriter, r *http.Request) {
	var req VerifyGeminiKeyRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	valid, err := h.svc.VerifyGeminiKey(r.Context(), req.APIKey)
	if err != nil {
		h.writeServiceError(w, "verify gemini key", err)
		return
	}

	writeJSON(w, http.StatusOK, VerifyGeminiKeyResponse{Valid: valid})
}
