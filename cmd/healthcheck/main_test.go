package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheck(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "healthy", status: http.StatusOK, body: `{"status": "ok", "storage": "ok", "time": "2026-10-16T08:30:00Z"}`},
		{name: "storage down", status: http.StatusServiceUnavailable, body: `{"status": "degraded", "storage": "unavailable"}`, wantErr: `server status "degraded" (HTTP 503)`},
		{name: "storage missing from body", status: http.StatusOK, body: `{"status": "ok"}`, wantErr: `storage ""`},
		{name: "not json", status: http.StatusOK, body: `ok`, wantErr: "decode health response (HTTP 200)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/v1/health", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			err := check(context.Background(), srv.Client(), srv.URL+"/api/v1/health")
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestCheck_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/api/v1/health"
	srv.Close()

	assert.Error(t, check(context.Background(), http.DefaultClient, url))
}

func TestNormalizeAddr(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "127.0.0.1:8080"},
		{in: ":9000", want: "127.0.0.1:9000"},
		{in: "0.0.0.0:8123", want: "127.0.0.1:8123"},
		{in: "[::]:8123", want: "127.0.0.1:8123"},
		{in: "10.0.0.5:8080", want: "10.0.0.5:8080"},
		{in: "no-port", want: "127.0.0.1:8080"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeAddr(tt.in))
		})
	}
}
