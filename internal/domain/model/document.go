// Package model holds the domain types persisted and served by liveconfig.
package model

import "time"

// StorageKey names the persisted document, both as the JSON-file store key
// and as the setup entry domain.
const StorageKey = "live_config"

// StorageVersion is the version of the persisted document envelope.
const StorageVersion = 1

// Document is the single configuration document: the shared Gemini API key,
// the ordered profile list and the setup entry once the setup flow has run.
type Document struct {
	SchemaVersion int         `json:"schema_version"`
	GeminiAPIKey  *string     `json:"gemini_api_key"`
	Profiles      []Profile   `json:"profiles"`
	SetupEntry    *SetupEntry `json:"setup_entry,omitempty"`
}

// NewDocument returns the document used when storage holds nothing yet.
func NewDocument() Document {
	return Document{
		SchemaVersion: ProfileSchemaVersion,
		Profiles:      []Profile{},
	}
}

// Clone returns a deep copy of d so it can be mutated without touching d.
func (d Document) Clone() Document {
	out := Document{SchemaVersion: d.SchemaVersion}
	if d.GeminiAPIKey != nil {
		key := *d.GeminiAPIKey
		out.GeminiAPIKey = &key
	}
	out.Profiles = make([]Profile, 0, len(d.Profiles))
	for _, p := range d.Profiles {
		out.Profiles = append(out.Profiles, p.Clone())
	}
	if d.SetupEntry != nil {
		entry := *d.SetupEntry
		out.SetupEntry = &entry
	}
	return out
}

// SharedConfig is the read view returned by get_config.
type SharedConfig struct {
	GeminiAPIKey *string   `json:"gemini_api_key"`
	Profiles     []Profile `json:"profiles"`
}

// SetupEntry records that the one-time setup confirmation has completed.
type SetupEntry struct {
	Domain    string    `json:"domain"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}
