// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/liveconfig/internal/domain/model"
)

// ErrEncryptionKeyNotSet is returned when a stored API key is encrypted but
// LIVECONFIG_SECRET_KEY has not been configured.
var ErrEncryptionKeyNotSet = errors.New("encryption key not configured: set LIVECONFIG_SECRET_KEY")

// ErrUnsupportedVersion is returned when the stored document was written by a
// newer storage version than this binary understands.
var ErrUnsupportedVersion = errors.New("unsupported storage version")

// DocumentStore defines the driven port for persisting the configuration
// document as a whole.
type DocumentStore interface {
	// Load returns the stored document, or (nil, nil) when nothing has been
	// saved yet. Callers should fall back to model.NewDocument.
	Load(ctx context.Context) (*model.Document, error)

	// Save replaces the stored document with doc.
	Save(ctx context.Context, doc model.Document) error
}

// Pinger is implemented by stores that can check their backing storage
// without reading the whole document.
type Pinger interface {
	Ping(ctx context.Context) error
}
