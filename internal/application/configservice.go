package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/liveconfig/internal/domain/model"
	"github.com/ericfisherdev/liveconfig/internal/domain/port/driven"
)

// geminiKeyPrefix is the prefix every Gemini API key issued by Google carries.
const geminiKeyPrefix = "AIza"

// Sentinel errors returned by ConfigService.
var (
	// ErrProfileNameRequired indicates an upsert without a profile name. The
	// text is returned to API callers verbatim.
	ErrProfileNameRequired = errors.New("Profile must have a name") //nolint:staticcheck // user-facing wording

	// ErrProfileNameTaken indicates another profile already uses the name,
	// compared case-insensitively.
	ErrProfileNameTaken = errors.New("profile name already exists")

	// ErrNoAPIKey indicates a verification request with no key supplied and
	// none stored.
	ErrNoAPIKey = errors.New("no api key configured")
)

// NameTakenError reports the conflicting name. It matches ErrProfileNameTaken
// with errors.Is.
type NameTakenError struct {
	Name string
}

func (e *NameTakenError) Error() string {
	return fmt.Sprintf("A profile named '%s' already exists", e.Name)
}

// Is reports whether target is ErrProfileNameTaken.
func (e *NameTakenError) Is(target error) bool {
	return target == ErrProfileNameTaken
}

// UpsertResult is returned by UpsertProfile.
type UpsertResult struct {
	ID      string `json:"id"`
	Created bool   `json:"-"`
}

// ConfigService owns the in-memory mirror of the configuration document and
// implements the profile and API key actions on top of a DocumentStore.
//
// Every mutation is applied to a clone of the document, saved, and only then
// swapped into the mirror, so a failed save leaves the served state untouched.
type ConfigService struct {
	mu       sync.RWMutex
	doc      model.Document
	store    driven.DocumentStore
	verifier driven.KeyVerifier
	logger   *slog.Logger

	now   func() time.Time
	newID func() string

	reloadBeforeWrite bool
}

// Option customizes a ConfigService.
type Option func(*ConfigService)

// WithClock overrides the clock used to stamp last_modified.
func WithClock(now func() time.Time) Option {
	return func(s *ConfigService) { s.now = now }
}

// WithIDGenerator overrides the generator used for new profile IDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *ConfigService) { s.newID = newID }
}

// WithKeyVerifier enables VerifyGeminiKey.
func WithKeyVerifier(v driven.KeyVerifier) Option {
	return func(s *ConfigService) { s.verifier = v }
}

// WithReloadBeforeWrite makes every mutation start from the stored document
// instead of the mirror, so writes made by other processes sharing the store
// are not overwritten.
func WithReloadBeforeWrite() Option {
	return func(s *ConfigService) { s.reloadBeforeWrite = true }
}

// NewConfigService loads the document from store and returns a ready service.
// An empty store yields model.NewDocument.
func NewConfigService(ctx context.Context, store driven.DocumentStore, logger *slog.Logger, opts ...Option) (*ConfigService, error) {
	s := &ConfigService{
		store:  store,
		logger: logger,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}

	doc, err := loadDocument(ctx, store)
	if err != nil {
		return nil, err
	}
	s.doc = doc

	return s, nil
}

func loadDocument(ctx context.Context, store driven.DocumentStore) (model.Document, error) {
	stored, err := store.Load(ctx)
	if err != nil {
		return model.Document{}, fmt.Errorf("load config document: %w", err)
	}
	if stored == nil {
		return model.NewDocument(), nil
	}
	doc := *stored
	if doc.Profiles == nil {
		doc.Profiles = []model.Profile{}
	}
	return doc, nil
}

// Reload replaces the in-memory mirror with the stored document. It is called
// when the document changed outside this process.
// The write lock is held across the load so a mutation cannot commit between
// the read and the swap.
func (s *ConfigService) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := loadDocument(ctx, s.store)
	if err != nil {
		return err
	}
	s.doc = doc

	s.logger.Info("config document reloaded", "profiles", len(doc.Profiles))
	return nil
}

// CheckStorage reports whether the backing store is reachable. Stores that
// implement driven.Pinger are pinged; others are read.
func (s *ConfigService) CheckStorage(ctx context.Context) error {
	if p, ok := s.store.(driven.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("ping storage: %w", err)
		}
		return nil
	}
	if _, err := s.store.Load(ctx); err != nil {
		return fmt.Errorf("read storage: %w", err)
	}
	return nil
}

// GetConfig returns the shared API key and all profiles.
func (s *ConfigService) GetConfig(_ context.Context) model.SharedConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.doc.Clone()
	return model.SharedConfig{
		GeminiAPIKey: snapshot.GeminiAPIKey,
		Profiles:     snapshot.Profiles,
	}
}

// GetProfile returns the profile with the given ID.
func (s *ConfigService) GetProfile(_ context.Context, id string) (model.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.doc.Profiles {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return model.Profile{}, false
}

// SetGeminiKey stores the shared Gemini API key. A nil or empty key clears it.
// Keys without the usual Gemini prefix are stored but logged as suspicious.
func (s *ConfigService) SetGeminiKey(ctx context.Context, apiKey *string) error {
	if apiKey != nil && *apiKey != "" && !strings.HasPrefix(*apiKey, geminiKeyPrefix) {
		s.logger.Warn("api key does not look like a valid gemini key")
	}

	var value *string
	if apiKey != nil && *apiKey != "" {
		key := *apiKey
		value = &key
	}

	err := s.mutate(ctx, func(doc *model.Document) (bool, error) {
		doc.GeminiAPIKey = value
		return true, nil
	})
	if err != nil {
		return err
	}

	if value != nil {
		s.logger.Info("gemini api key set")
	} else {
		s.logger.Info("gemini api key cleared")
	}
	return nil
}

// UpsertProfile creates or replaces a profile. The name must be non-empty and
// unique case-insensitively among profiles with a different ID. A missing ID
// is generated. last_modified, schema_version and modified_by are stamped
// from the clock and the Actor carried by ctx.
func (s *ConfigService) UpsertProfile(ctx context.Context, profile model.Profile) (UpsertResult, error) {
	if profile.Name == "" {
		return UpsertResult{}, ErrProfileNameRequired
	}

	profile = profile.Clone()
	var result UpsertResult

	err := s.mutate(ctx, func(doc *model.Document) (bool, error) {
		if nameTaken(doc.Profiles, profile.Name, profile.ID) {
			return false, &NameTakenError{Name: profile.Name}
		}

		if profile.ID == "" {
			profile.ID = s.newID()
		}

		profile.ClearServerFields()
		profile.LastModified = s.now().UTC()
		profile.SchemaVersion = model.ProfileSchemaVersion
		profile.ModifiedBy = nil
		if actor, ok := ActorFrom(ctx); ok && actor.UserID != "" && actor.Name != "" {
			name := actor.Name
			profile.ModifiedBy = &name
		}

		idx := indexOfProfile(doc.Profiles, profile.ID)
		if idx >= 0 {
			doc.Profiles[idx] = profile
		} else {
			doc.Profiles = append(doc.Profiles, profile)
			result.Created = true
		}
		return true, nil
	})
	if err != nil {
		return UpsertResult{}, err
	}

	result.ID = profile.ID
	if result.Created {
		s.logger.Info("profile created", "name", profile.Name, "id", profile.ID)
	} else {
		s.logger.Info("profile updated", "name", profile.Name, "id", profile.ID)
	}
	return result, nil
}

// DeleteProfile removes every profile with the given ID. It reports whether
// anything was removed; deleting an unknown ID is not an error and does not
// touch storage.
func (s *ConfigService) DeleteProfile(ctx context.Context, id string) (bool, error) {
	var removed bool

	err := s.mutate(ctx, func(doc *model.Document) (bool, error) {
		kept := doc.Profiles[:0]
		for _, p := range doc.Profiles {
			if p.ID != id {
				kept = append(kept, p)
			}
		}
		removed = len(kept) < len(doc.Profiles)
		doc.Profiles = kept
		return removed, nil
	})
	if err != nil {
		return false, err
	}

	if removed {
		s.logger.Info("profile deleted", "id", id)
	} else {
		s.logger.Warn("profile not found for deletion", "id", id)
	}
	return removed, nil
}

// CheckProfileName reports whether name is free for a profile with ID
// excludeID. An empty excludeID checks against every profile.
func (s *ConfigService) CheckProfileName(_ context.Context, name, excludeID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return !nameTaken(s.doc.Profiles, name, excludeID)
}

// VerifyGeminiKey checks apiKey, or the stored key when apiKey is empty,
// against the Gemini API. It returns (false, nil) when the key is rejected.
func (s *ConfigService) VerifyGeminiKey(ctx context.Context, apiKey string) (bool, error) {
	if s.verifier == nil {
		return false, errors.New("key verification not configured")
	}

	if apiKey == "" {
		s.mu.RLock()
		if s.doc.GeminiAPIKey != nil {
			apiKey = *s.doc.GeminiAPIKey
		}
		s.mu.RUnlock()
	}
	if apiKey == "" {
		return false, ErrNoAPIKey
	}

	err := s.verifier.Verify(ctx, apiKey)
	if errors.Is(err, driven.ErrInvalidAPIKey) {
		s.logger.Warn("gemini api key rejected")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("verify gemini key: %w", err)
	}
	return true, nil
}

// mutate applies fn to a clone of the document under the write lock. When fn
// reports a change, the clone is saved and becomes the new mirror.
func (s *ConfigService) mutate(ctx context.Context, fn func(doc *model.Document) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reloadBeforeWrite {
		doc, err := loadDocument(ctx, s.store)
		if err != nil {
			return err
		}
		s.doc = doc
	}

	next := s.doc.Clone()
	changed, err := fn(&next)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if err := s.store.Save(ctx, next); err != nil {
		return fmt.Errorf("save config document: %w", err)
	}
	s.doc = next
	return nil
}

// nameTaken reports whether a profile other than excludeID uses name,
// compared case-insensitively.
func nameTaken(profiles []model.Profile, name, excludeID string) bool {
	key := model.NameKey(name)
	for _, p := range profiles {
		if p.NameKey() == key && p.ID != excludeID {
			return true
		}
	}
	return false
}

func indexOfProfile(profiles []model.Profile, id string) int {
	for i, p := range profiles {
		if p.ID == id {
			return i
		}
	}
	return -1
}
