package httphandler

import (
	"encoding/json"
	"net/http"

	"github.com/ericfisherdev/liveconfig/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the JSON representation of the health check.
type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
	Time    string `json:"time"`
}

// ConfigResponse is the JSON representation of get_config.
type ConfigResponse struct {
	GeminiAPIKey *string         `json:"gemini_api_key"`
	Profiles     []model.Profile `json:"profiles"`
}

// SetGeminiKeyRequest is the body of PUT /api/v1/config/gemini-key.
// A null, missing or empty api_key clears the stored key.
type SetGeminiKeyRequest struct {
	APIKey *string `json:"api_key"`
}

// VerifyGeminiKeyRequest is the optional body of the verify endpoint.
type VerifyGeminiKeyRequest struct {
	APIKey string `json:"api_key"`
}

// VerifyGeminiKeyResponse reports whether the key was accepted.
type VerifyGeminiKeyResponse struct {
	Valid bool `json:"valid"`
}

// UpsertProfileRequest is the body of POST /api/v1/profiles.
type UpsertProfileRequest struct {
	Profile *model.Profile `json:"profile"`
}

// UpsertProfileResponse carries the ID of the stored profile.
type UpsertProfileResponse struct {
	ID string `json:"id"`
}

// CheckProfileNameResponse reports whether a profile name is free.
type CheckProfileNameResponse struct {
	Available bool `json:"available"`
}

// ServiceCallData is the union of call data fields accepted by CallService.
type ServiceCallData struct {
	APIKey    *string        `json:"api_key"`
	Profile   *model.Profile `json:"profile"`
	ProfileID string         `json:"profile_id"`
	Name      string         `json:"name"`
	ExcludeID string         `json:"exclude_id"`
}

func toConfigResponse(cfg model.SharedConfig) ConfigResponse {
	profiles := cfg.Profiles
	if profiles == nil {
		profiles = []model.Profile{}
	}
	return ConfigResponse{
		GeminiAPIKey: cfg.GeminiAPIKey,
		Profiles:     profiles,
	}
}
