// Package gemini implements the KeyVerifier port against the Gemini REST API.
package gemini

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/ericfisherdev/liveconfig/internal/domain/port/driven"
)

// DefaultBaseURL is the public Gemini API endpoint.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// Compile-time interface satisfaction check.
var _ driven.KeyVerifier = (*Verifier)(nil)

// Verifier checks API keys by listing a single model. Responses go through an
// in-memory httpcache transport, so repeated checks of the same key within
// the API's cache lifetime do not hit the network.
type Verifier struct {
	http    *http.Client
	baseURL string
}

// NewVerifier creates a Verifier with an httpcache-backed client.
func NewVerifier(baseURL string, timeout time.Duration) *Verifier {
	client := &http.Client{
		Transport: httpcache.NewMemoryCacheTransport(),
		Timeout:   timeout,
	}
	return NewVerifierWithHTTPClient(client, baseURL)
}

// NewVerifierWithHTTPClient creates a Verifier with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
// An empty baseURL selects DefaultBaseURL.
func NewVerifierWithHTTPClient(client *http.Client, baseURL string) *Verifier {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Verifier{
		http:    client,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Verify returns nil when the API accepts apiKey and driven.ErrInvalidAPIKey
// when it answers 400, 401 or 403.
func (v *Verifier) Verify(ctx context.Context, apiKey string) error {
	q := url.Values{}
	q.Set("key", apiKey)
	q.Set("pageSize", "1")
	endpoint := v.baseURL + "/v1beta/models?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := v.http.Do(req)
	if err != nil {
		return fmt.Errorf("verify request: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusBadRequest,
		resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden:
		return driven.ErrInvalidAPIKey
	default:
		return fmt.Errorf("verify request: unexpected status %d", resp.StatusCode)
	}
}
