package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httphandler "github.com/ericfisherdev/liveconfig/internal/adapter/driving/http"
	"github.com/ericfisherdev/liveconfig/internal/application"
	"github.com/ericfisherdev/liveconfig/internal/domain/model"
	"github.com/ericfisherdev/liveconfig/internal/domain/port/driven"
)

// --- Mock implementations ---

type mockDocumentStore struct {
	doc     *model.Document
	loadErr error
	saveErr error
}

func (m *mockDocumentStore) Load(_ context.Context) (*model.Document, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.doc == nil {
		return nil, nil
	}
	doc := m.doc.Clone()
	return &doc, nil
}

func (m *mockDocumentStore) Save(_ context.Context, doc model.Document) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	saved := doc.Clone()
	m.doc = &saved
	return nil
}

type mockKeyVerifier struct {
	err error
}

func (m *mockKeyVerifier) Verify(_ context.Context, _ string) error {
	return m.err
}

// --- Test helpers ---

var testTime = time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC)

func strPtr(s string) *string { return &s }

func seededStore(profiles ...model.Profile) *mockDocumentStore {
	doc := model.NewDocument()
	doc.GeminiAPIKey = strPtr("AIzaSeeded")
	doc.Profiles = profiles
	return &mockDocumentStore{doc: &doc}
}

func setupMux(t *testing.T, store *mockDocumentStore, opts ...application.Option) http.Handler {
	t.Helper()
	base := []application.Option{
		application.WithClock(func() time.Time { return testTime }),
		application.WithIDGenerator(func() string { return "new-id" }),
	}
	svc, err := application.NewConfigService(context.Background(), store, slog.Default(), append(base, opts...)...)
	require.NoError(t, err)
	return httphandler.NewServeMux(httphandler.NewHandler(svc, slog.Default()), slog.Default())
}

func do(t *testing.T, mux http.Handler, method, target, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	err := json.NewDecoder(rec.Body).Decode(v)
	require.NoError(t, err)
}

// --- Tests ---

func TestHealth(t *testing.T) {
	mux := setupMux(t, &mockDocumentStore{})
	rec := do(t, mux, http.MethodGet, "/api/v1/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "ok", resp["storage"])
	assert.NotEmpty(t, resp["time"])
}

func TestHealth_StorageUnavailable(t *testing.T) {
	store := &mockDocumentStore{}
	mux := setupMux(t, store)
	store.loadErr = errors.New("disk gone")

	rec := do(t, mux, http.MethodGet, "/api/v1/health", "")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp map[string]any
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "degraded", resp["status"])
	assert.Equal(t, "unavailable", resp["storage"])
}

func TestGetConfig(t *testing.T) {
	t.Run("empty store", func(t *testing.T) {
		mux := setupMux(t, &mockDocumentStore{})
		rec := do(t, mux, http.MethodGet, "/api/v1/config", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"gemini_api_key": null, "profiles": []}`, rec.Body.String())
	})

	t.Run("seeded", func(t *testing.T) {
		mux := setupMux(t, seededStore(model.Profile{
			ID:            "p1",
			Name:          "Kitchen",
			LastModified:  testTime,
			SchemaVersion: 1,
			Extra:         map[string]json.RawMessage{"voice": json.RawMessage(`"Puck"`)},
		}))
		rec := do(t, mux, http.MethodGet, "/api/v1/config", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{
			"gemini_api_key": "AIzaSeeded",
			"profiles": [{
				"id": "p1",
				"name": "Kitchen",
				"last_modified": "2026-10-16T08:30:00+00:00",
				"schema_version": 1,
				"modified_by": null,
				"voice": "Puck"
			}]
		}`, rec.Body.String())
	})
}

func TestSetGeminiKey(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantKey    *string
	}{
		{name: "set", body: `{"api_key": "AIzaNew"}`, wantStatus: http.StatusNoContent, wantKey: strPtr("AIzaNew")},
		{name: "empty clears", body: `{"api_key": ""}`, wantStatus: http.StatusNoContent},
		{name: "null clears", body: `{"api_key": null}`, wantStatus: http.StatusNoContent},
		{name: "missing clears", body: `{}`, wantStatus: http.StatusNoContent},
		{name: "no body clears", body: "", wantStatus: http.StatusNoContent},
		{name: "invalid JSON", body: `nope`, wantStatus: http.StatusBadRequest, wantKey: strPtr("AIzaSeeded")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore()
			mux := setupMux(t, store)

			rec := do(t, mux, http.MethodPut, "/api/v1/config/gemini-key", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantKey, store.doc.GeminiAPIKey)
		})
	}
}

func TestUpsertProfile(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantID     string
		wantError  string
	}{
		{
			name:       "create",
			body:       `{"profile": {"name": "Office", "voice": "Kore"}}`,
			wantStatus: http.StatusCreated,
			wantID:     "new-id",
		},
		{
			name:       "update",
			body:       `{"profile": {"id": "p1", "name": "Kitchen v2"}}`,
			wantStatus: http.StatusOK,
			wantID:     "p1",
		},
		{
			name:       "missing name",
			body:       `{"profile": {"voice": "Kore"}}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Profile must have a name",
		},
		{
			name:       "missing profile",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "Profile must have a name",
		},
		{
			name:       "duplicate name",
			body:       `{"profile": {"name": "KITCHEN"}}`,
			wantStatus: http.StatusConflict,
			wantError:  "A profile named 'KITCHEN' already exists",
		},
		{
			name:       "non-string name",
			body:       `{"profile": {"name": 42}}`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
		{
			name:       "invalid JSON",
			body:       `not json`,
			wantStatus: http.StatusBadRequest,
			wantError:  "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := setupMux(t, seededStore(model.Profile{ID: "p1", Name: "Kitchen"}))

			rec := do(t, mux, http.MethodPost, "/api/v1/profiles", tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp map[string]any
			decodeJSON(t, rec, &resp)
			if tt.wantID != "" {
				assert.Equal(t, tt.wantID, resp["id"])
			}
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, resp["error"])
			}
		})
	}
}

func TestUpsertProfile_StampsModifiedByFromHeaders(t *testing.T) {
	store := &mockDocumentStore{}
	mux := setupMux(t, store)

	rec := do(t, mux, http.MethodPost, "/api/v1/profiles", `{"profile": {"name": "Office"}}`,
		"X-Remote-User-Id", "u-1", "X-Remote-User-Name", "Dana")
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, mux, http.MethodGet, "/api/v1/profiles/new-id", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "Dana", resp["modified_by"])
	assert.Equal(t, "2026-10-16T08:30:00+00:00", resp["last_modified"])
	assert.Equal(t, float64(model.ProfileSchemaVersion), resp["schema_version"])
}

func TestUpsertProfile_SaveFailure(t *testing.T) {
	store := &mockDocumentStore{saveErr: errors.New("disk full")}
	mux := setupMux(t, store)

	rec := do(t, mux, http.MethodPost, "/api/v1/profiles", `{"profile": {"name": "Office"}}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp map[string]any
	decodeJSON(t, rec, &resp)
	assert.Equal(t, "internal server error", resp["error"])
}

func TestListAndGetProfiles(t *testing.T) {
	mux := setupMux(t, seededStore(
		model.Profile{ID: "p1", Name: "Kitchen"},
		model.Profile{ID: "p2", Name: "Office"},
	))

	rec := do(t, mux, http.MethodGet, "/api/v1/profiles", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var list []map[string]any
	decodeJSON(t, rec, &list)
	require.Len(t, list, 2)
	assert.Equal(t, "Kitchen", list[0]["name"])
	assert.Equal(t, "Office", list[1]["name"])

	rec = do(t, mux, http.MethodGet, "/api/v1/profiles/p2", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	var one map[string]any
	decodeJSON(t, rec, &one)
	assert.Equal(t, "p2", one["id"])

	rec = do(t, mux, http.MethodGet, "/api/v1/profiles/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteProfile(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantLen int
	}{
		{name: "existing", id: "p1", wantLen: 0},
		{name: "unknown is not an error", id: "nope", wantLen: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := seededStore(model.Profile{ID: "p1", Name: "Kitchen"})
			mux := setupMux(t, store)

			rec := do(t, mux, http.MethodDelete, "/api/v1/profiles/"+tt.id, "")

			assert.Equal(t, http.StatusNoContent, rec.Code)
			assert.Empty(t, rec.Body.String())
			assert.Len(t, store.doc.Profiles, tt.wantLen)
		})
	}
}

func TestCheckProfileName(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  bool
	}{
		{name: "free", query: "?name=Office", want: true},
		{name: "taken", query: "?name=kitchen", want: false},
		{name: "excluded", query: "?name=kitchen&exclude_id=p1", want: true},
		{name: "no params", query: "", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := setupMux(t, seededStore(model.Profile{ID: "p1", Name: "Kitchen"}))

			rec := do(t, mux, http.MethodGet, "/api/v1/profiles/name-availability"+tt.query, "")

			assert.Equal(t, http.StatusOK, rec.Code)
			var resp map[string]any
			decodeJSON(t, rec, &resp)
			assert.Equal(t, tt.want, resp["available"])
		})
	}
}

func TestVerifyGeminiKey(t *testing.T) {
	t.Run("valid stored key", func(t *testing.T) {
		mux := setupMux(t, seededStore(), application.WithKeyVerifier(&mockKeyVerifier{}))
		rec := do(t, mux, http.MethodPost, "/api/v1/config/gemini-key/verify", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"valid": true}`, rec.Body.String())
	})

	t.Run("rejected key", func(t *testing.T) {
		mux := setupMux(t, seededStore(), application.WithKeyVerifier(&mockKeyVerifier{err: driven.ErrInvalidAPIKey}))
		rec := do(t, mux, http.MethodPost, "/api/v1/config/gemini-key/verify", `{"api_key": "AIzaBad"}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"valid": false}`, rec.Body.String())
	})

	t.Run("no key anywhere", func(t *testing.T) {
		mux := setupMux(t, &mockDocumentStore{}, application.WithKeyVerifier(&mockKeyVerifier{}))
		rec := do(t, mux, http.MethodPost, "/api/v1/config/gemini-key/verify", "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCallService(t *testing.T) {
	tests := []struct {
		name       string
		service    string
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "get_config",
			service:    "get_config",
			wantStatus: http.StatusOK,
			wantBody: `{"gemini_api_key": "AIzaSeeded", "profiles": [
				{"id": "p1", "name": "Kitchen", "modified_by": null}
			]}`,
		},
		{
			name:       "set_gemini_key",
			service:    "set_gemini_key",
			body:       `{"api_key": "AIzaOther"}`,
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "upsert_profile",
			service:    "upsert_profile",
			body:       `{"profile": {"name": "Office"}}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"id": "new-id"}`,
		},
		{
			name:       "upsert_profile collision",
			service:    "upsert_profile",
			body:       `{"profile": {"name": "kitchen"}}`,
			wantStatus: http.StatusConflict,
			wantBody:   `{"error": "A profile named 'kitchen' already exists"}`,
		},
		{
			name:       "delete_profile",
			service:    "delete_profile",
			body:       `{"profile_id": "p1"}`,
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "check_profile_name",
			service:    "check_profile_name",
			body:       `{"name": "KITCHEN", "exclude_id": "other"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"available": false}`,
		},
		{
			name:       "verify_gemini_key",
			service:    "verify_gemini_key",
			wantStatus: http.StatusOK,
			wantBody:   `{"valid": true}`,
		},
		{
			name:       "unknown service",
			service:    "reboot",
			wantStatus: http.StatusNotFound,
			wantBody:   `{"error": "service not found"}`,
		},
		{
			name:       "bad data",
			service:    "get_config",
			body:       `[1, 2]`,
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error": "invalid service data"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := setupMux(t, seededStore(model.Profile{ID: "p1", Name: "Kitchen"}),
				application.WithKeyVerifier(&mockKeyVerifier{}))

			rec := do(t, mux, http.MethodPost, "/api/v1/services/"+tt.service, tt.body)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
			} else {
				assert.Empty(t, rec.Body.String())
			}
		})
	}
}
