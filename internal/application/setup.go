package application

import (
	"context"
	"errors"

	"github.com/ericfisherdev/liveconfig/internal/domain/model"
)

// SetupTitle is the title recorded on the setup entry.
const SetupTitle = "HA Live Config"

// ErrAlreadyConfigured is returned when the one-time setup has already run.
var ErrAlreadyConfigured = errors.New("already_configured")

// SetupEntry returns the recorded setup entry, or nil while setup is pending.
func (s *ConfigService) SetupEntry(_ context.Context) *model.SetupEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.doc.SetupEntry == nil {
		return nil
	}
	entry := *s.doc.SetupEntry
	return &entry
}

// CompleteSetup records the setup entry. Only a single entry may exist; a
// second call returns ErrAlreadyConfigured.
func (s *ConfigService) CompleteSetup(ctx context.Context) (model.SetupEntry, error) {
	var entry model.SetupEntry

	err := s.mutate(ctx, func(doc *model.Document) (bool, error) {
		if doc.SetupEntry != nil {
			return false, ErrAlreadyConfigured
		}
		entry = model.SetupEntry{
			Domain:    model.StorageKey,
			Title:     SetupTitle,
			CreatedAt: s.now().UTC(),
		}
		doc.SetupEntry = &entry
		return true, nil
	})
	if err != nil {
		return model.SetupEntry{}, err
	}

	s.logger.Info("setup completed", "title", entry.Title)
	return entry, nil
}
