package httphandler

import (
	"net/http"
)

// Service names accepted by CallService. They match the action names the
// host platform registers for this integration.
const (
	serviceGetConfig        = "get_config"
	serviceSetGeminiKey     = "set_gemini_key"
	serviceUpsertProfile    = "upsert_profile"
	serviceDeleteProfile    = "delete_profile"
	serviceCheckProfileName = "check_profile_name"
	serviceVerifyGeminiKey  = "verify_gemini_key"
)

// CallService dispatches a host service call by name. The body is the call
// data object. Services with a response answer 200 with it; the others 204.
func (h *Handler) CallService(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("service")
	ctx := r.Context()

	var data ServiceCallData
	if err := decodeOptionalJSON(r, &data); err != nil {
		writeError(w, http.StatusBadRequest, "invalid service data")
		return
	}

	switch name {
	case serviceGetConfig:
		writeJSON(w, http.StatusOK, toConfigResponse(h.svc.GetConfig(ctx)))

	case serviceSetGeminiKey:
		if err := h.svc.SetGeminiKey(ctx, data.APIKey); err != nil {
			h.writeServiceError(w, name, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case serviceUpsertProfile:
		res, err := h.svc.UpsertProfile(ctx, UpsertProfileRequest{Profile: data.Profile}.profile())
		if err != nil {
			h.writeServiceError(w, name, err)
			return
		}
		writeJSON(w, http.StatusOK, UpsertProfileResponse{ID: res.ID})

	case serviceDeleteProfile:
		if _, err := h.svc.DeleteProfile(ctx, data.ProfileID); err != nil {
			h.writeServiceError(w, name, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)

	case serviceCheckProfileName:
		available := h.svc.CheckProfileName(ctx, data.Name, data.ExcludeID)
		writeJSON(w, http.StatusOK, CheckProfileNameResponse{Available: available})

	case serviceVerifyGeminiKey:
		key := ""
		if data.APIKey != nil {
			key = *data.APIKey
		}
		valid, err := h.svc.VerifyGeminiKey(ctx, key)
		if err != nil {
			h.writeServiceError(w, name, err)
			return
		}
		writeJSON(w, http.StatusOK, VerifyGeminiKeyResponse{Valid: valid})

	default:
		writeError(w, http.StatusNotFound, "service not found")
	}
}
