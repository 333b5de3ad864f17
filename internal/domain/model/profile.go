package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ProfileSchemaVersion is stamped onto every profile on upsert and onto the
// stored document.
const ProfileSchemaVersion = 1

// InstructionsField is the optional profile key holding markdown instructions
// for the voice assistant.
const InstructionsField = "instructions"

// Timestamp layouts for ISO-8601 with a numeric offset. The fraction is
// omitted when the microsecond component is zero.
const (
	timestampLayout         = "2006-01-02T15:04:05-07:00"
	timestampLayoutFraction = "2006-01-02T15:04:05.000000-07:00"
)

// Known profile keys. Everything else lives in Profile.Extra.
const (
	keyID            = "id"
	keyName          = "name"
	keyLastModified  = "last_modified"
	keySchemaVersion = "schema_version"
	keyModifiedBy    = "modified_by"
)

// Profile is a named voice-assistant profile. The server owns ID, the audit
// fields and SchemaVersion; every other key sent by a client is carried
// untouched in Extra.
type Profile struct {
	ID            string
	Name          string
	LastModified  time.Time
	SchemaVersion int
	ModifiedBy    *string
	Extra         map[string]json.RawMessage
}

// NameKey returns the case-folded name used for uniqueness checks.
func (p Profile) NameKey() string {
	return NameKey(p.Name)
}

// NameKey folds a profile name for case-insensitive comparison.
func NameKey(name string) string {
	return strings.ToLower(name)
}

// Instructions returns the markdown instructions string, or "" when the
// profile has none or the value is not a string.
func (p Profile) Instructions() string {
	raw, ok := p.Extra[InstructionsField]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// Clone returns a copy that shares no mutable state with p.
func (p Profile) Clone() Profile {
	out := p
	if p.ModifiedBy != nil {
		by := *p.ModifiedBy
		out.ModifiedBy = &by
	}
	if p.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(p.Extra))
		for k, v := range p.Extra {
			out.Extra[k] = v
		}
	}
	return out
}

// ClearServerFields drops unparsed audit values carried in Extra, so the
// fields stamped by the server are the only ones written.
func (p *Profile) ClearServerFields() {
	delete(p.Extra, keyLastModified)
	delete(p.Extra, keySchemaVersion)
	delete(p.Extra, keyModifiedBy)
	if len(p.Extra) == 0 {
		p.Extra = nil
	}
}

// MarshalJSON flattens the known fields and Extra into a single object.
func (p Profile) MarshalJSON() ([]byte, error) {
	obj := make(map[string]any, len(p.Extra)+5)
	for k, v := range p.Extra {
		obj[k] = v
	}

	obj[keyID] = p.ID
	obj[keyName] = p.Name
	if !p.LastModified.IsZero() {
		obj[keyLastModified] = FormatTimestamp(p.LastModified)
	}
	if p.SchemaVersion != 0 {
		obj[keySchemaVersion] = p.SchemaVersion
	}
	if _, raw := obj[keyModifiedBy]; !raw || p.ModifiedBy != nil {
		obj[keyModifiedBy] = p.ModifiedBy
	}

	return json.Marshal(obj)
}

// UnmarshalJSON splits a profile object into known fields and Extra.
// Audit values of the wrong shape stay in Extra as written, so a save does
// not lose them; the next upsert replaces them.
func (p *Profile) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj == nil {
		return fmt.Errorf("profile must be a JSON object")
	}

	var out Profile
	if raw, ok := obj[keyID]; ok {
		if err := unmarshalOptionalString(raw, &out.ID); err != nil {
			return fmt.Errorf("profile id: %w", err)
		}
		delete(obj, keyID)
	}
	if raw, ok := obj[keyName]; ok {
		if err := unmarshalOptionalString(raw, &out.Name); err != nil {
			return fmt.Errorf("profile name: %w", err)
		}
		delete(obj, keyName)
	}
	if raw, ok := obj[keyLastModified]; ok {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if ts, err := ParseTimestamp(s); err == nil {
				out.LastModified = ts
				delete(obj, keyLastModified)
			}
		}
	}
	if raw, ok := obj[keySchemaVersion]; ok {
		var v int
		if err := json.Unmarshal(raw, &v); err == nil {
			out.SchemaVersion = v
			delete(obj, keySchemaVersion)
		}
	}
	if raw, ok := obj[keyModifiedBy]; ok {
		var by *string
		if err := json.Unmarshal(raw, &by); err == nil {
			out.ModifiedBy = by
			delete(obj, keyModifiedBy)
		}
	}

	if len(obj) > 0 {
		out.Extra = obj
	}

	*p = out
	return nil
}

// unmarshalOptionalString accepts a JSON string or null.
func unmarshalOptionalString(raw json.RawMessage, dst *string) error {
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return fmt.Errorf("expected string: %w", err)
	}
	if s != nil {
		*dst = *s
	}
	return nil
}

// FormatTimestamp renders t in UTC with microsecond precision and a +00:00
// offset, e.g. "2026-10-16T08:30:00.123456+00:00".
func FormatTimestamp(t time.Time) string {
	t = t.UTC().Truncate(time.Microsecond)
	if t.Nanosecond() == 0 {
		return t.Format(timestampLayout)
	}
	return t.Format(timestampLayoutFraction)
}

// ParseTimestamp parses timestamps written by FormatTimestamp as well as plain RFC 3339.
func ParseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
