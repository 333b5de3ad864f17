package driven

import (
	"context"
	"errors"
)

// ErrInvalidAPIKey is returned by KeyVerifier when the remote API rejects the key.
var ErrInvalidAPIKey = errors.New("api key rejected")

// KeyVerifier checks an API key against the remote model provider.
type KeyVerifier interface {
	// Verify returns nil when the key is accepted, ErrInvalidAPIKey when it
	// is rejected, and any other error when the check itself failed.
	Verify(ctx context.Context, apiKey string) error
}
