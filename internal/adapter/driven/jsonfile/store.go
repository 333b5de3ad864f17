// Package jsonfile implements the DocumentStore port as a single JSON file
// laid out like a home-automation ".storage" entry:
//
//	{"version": 1, "minor_version": 1, "key": "live_config", "data": {...}}
//
// Writes go through a temp file and rename so readers never see a torn file.
package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/natefinch/atomic"

	"github.com/ericfisherdev/liveconfig/internal/domain/model"
	"github.com/ericfisherdev/liveconfig/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.DocumentStore = (*Store)(nil)

const minorVersion = 1

// envelope is the on-disk wrapper around the document.
type envelope struct {
	Version      int             `json:"version"`
	MinorVersion int             `json:"minor_version"`
	Key          string          `json:"key"`
	Data         json.RawMessage `json:"data"`
}

// Store persists the document to a single JSON file.
type Store struct {
	path string

	mu          sync.Mutex
	lastWritten []byte // contents of our most recent Save, to skip our own watch events
}

// NewStore creates a Store writing to path. The parent directory is created
// on the first Save.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Load reads the document. Returns (nil, nil) when the file does not exist.
func (s *Store) Load(_ context.Context) (*model.Document, error) {
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	return decode(raw)
}

func decode(raw []byte) (*model.Document, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode storage envelope: %w", err)
	}
	if env.Version > model.StorageVersion {
		return nil, fmt.Errorf("%w: file version %d, supported %d", driven.ErrUnsupportedVersion, env.Version, model.StorageVersion)
	}
	if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil, nil
	}

	var doc model.Document
	if err := json.Unmarshal(env.Data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// Save writes doc atomically, replacing any previous file.
func (s *Store) Save(_ context.Context, doc model.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	raw, err := json.MarshalIndent(envelope{
		Version:      model.StorageVersion,
		MinorVersion: minorVersion,
		Key:          model.StorageKey,
		Data:         data,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage envelope: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := atomic.WriteFile(s.path, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("write %s: %w", s.path, err)
	}
	s.lastWritten = raw
	return nil
}

// isOwnWrite reports whether raw equals what the last Save wrote.
func (s *Store) isOwnWrite(raw []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastWritten != nil && bytes.Equal(s.lastWritten, raw)
}
