package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{
			name: "whole seconds omit the fraction",
			in:   time.Date(2026, 10, 16, 8, 30, 0, 0, time.UTC),
			want: "2026-10-16T08:30:00+00:00",
		},
		{
			name: "microseconds are kept",
			in:   time.Date(2026, 10, 16, 8, 30, 0, 123456000, time.UTC),
			want: "2026-10-16T08:30:00.123456+00:00",
		},
		{
			name: "nanoseconds are truncated",
			in:   time.Date(2026, 10, 16, 8, 30, 0, 1999, time.UTC),
			want: "2026-10-16T08:30:00.000001+00:00",
		},
		{
			name: "sub-microsecond only",
			in:   time.Date(2026, 10, 16, 8, 30, 0, 999, time.UTC),
			want: "2026-10-16T08:30:00+00:00",
		},
		{
			name: "converted to UTC",
			in:   time.Date(2026, 10, 16, 10, 30, 0, 0, time.FixedZone("CEST", 2*60*60)),
			want: "2026-10-16T08:30:00+00:00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatTimestamp(tt.in))
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	got, err := ParseTimestamp("2026-10-16T10:30:00.5+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 16, 8, 30, 0, 500000000, time.UTC), got)

	_, err = ParseTimestamp("16/10/2026")
	assert.Error(t, err)
}

func TestProfile_JSONPreservesUnknownKeys(t *testing.T) {
	in := `{
		"id": "p1",
		"name": "Kitchen",
		"last_modified": "2026-10-16T08:30:00.123456+00:00",
		"schema_version": 1,
		"modified_by": "Dana",
		"voice": "Puck",
		"tools": {"lights": true, "music": ["spotify"]},
		"instructions": "Be brief."
	}`

	var p Profile
	require.NoError(t, json.Unmarshal([]byte(in), &p))

	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "Kitchen", p.Name)
	assert.Equal(t, time.Date(2026, 10, 16, 8, 30, 0, 123456000, time.UTC), p.LastModified)
	assert.Equal(t, 1, p.SchemaVersion)
	require.NotNil(t, p.ModifiedBy)
	assert.Equal(t, "Dana", *p.ModifiedBy)
	assert.Len(t, p.Extra, 3)
	assert.Equal(t, "Be brief.", p.Instructions())

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
}

func TestProfile_UnmarshalKeepsMalformedAuditFields(t *testing.T) {
	in := `{"name": "Garage", "id": null, "last_modified": "yesterday", "schema_version": "one", "modified_by": 7}`

	var p Profile
	require.NoError(t, json.Unmarshal([]byte(in), &p))

	assert.Equal(t, "Garage", p.Name)
	assert.Empty(t, p.ID)
	assert.True(t, p.LastModified.IsZero())
	assert.Zero(t, p.SchemaVersion)
	assert.Nil(t, p.ModifiedBy)
	assert.JSONEq(t, `"yesterday"`, string(p.Extra["last_modified"]))
	assert.JSONEq(t, `"one"`, string(p.Extra["schema_version"]))
	assert.JSONEq(t, `7`, string(p.Extra["modified_by"]))

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "", "name": "Garage", "last_modified": "yesterday", "schema_version": "one", "modified_by": 7}`, string(out))
}

func TestProfile_ClearServerFields(t *testing.T) {
	var p Profile
	require.NoError(t, json.Unmarshal([]byte(`{"name": "Garage", "last_modified": 0, "modified_by": 7, "voice": "Puck"}`), &p))

	p.ClearServerFields()
	assert.Len(t, p.Extra, 1)
	assert.Contains(t, p.Extra, "voice")

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "", "name": "Garage", "modified_by": null, "voice": "Puck"}`, string(out))

	bare := Profile{Name: "Attic", Extra: map[string]json.RawMessage{"schema_version": json.RawMessage(`"x"`)}}
	bare.ClearServerFields()
	assert.Nil(t, bare.Extra)
}

func TestProfile_UnmarshalRejects(t *testing.T) {
	for _, in := range []string{`{"name": 42}`, `{"id": ["x"]}`, `"profile"`, `null`} {
		t.Run(in, func(t *testing.T) {
			var p Profile
			assert.Error(t, json.Unmarshal([]byte(in), &p))
		})
	}
}

func TestProfile_MarshalAlwaysCarriesModifiedBy(t *testing.T) {
	out, err := json.Marshal(Profile{ID: "p1", Name: "Office"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": "p1", "name": "Office", "modified_by": null}`, string(out))
}

func TestProfile_CloneIsIndependent(t *testing.T) {
	by := "Dana"
	p := Profile{
		ID:         "p1",
		Name:       "Kitchen",
		ModifiedBy: &by,
		Extra:      map[string]json.RawMessage{"voice": json.RawMessage(`"Puck"`)},
	}

	c := p.Clone()
	*c.ModifiedBy = "Eve"
	c.Extra["voice"] = json.RawMessage(`"Kore"`)

	assert.Equal(t, "Dana", *p.ModifiedBy)
	assert.JSONEq(t, `"Puck"`, string(p.Extra["voice"]))
}

func TestNameKey(t *testing.T) {
	assert.Equal(t, NameKey("KITCHEN"), Profile{Name: "kitchen"}.NameKey())
	assert.NotEqual(t, NameKey("Kitchen"), NameKey("Kitchen "))
}

func TestDocument_CloneIsIndependent(t *testing.T) {
	key := "AIzaOne"
	doc := NewDocument()
	doc.GeminiAPIKey = &key
	doc.Profiles = append(doc.Profiles, Profile{ID: "p1", Name: "Kitchen"})
	doc.SetupEntry = &SetupEntry{Domain: StorageKey, Title: "Live Config"}

	c := doc.Clone()
	*c.GeminiAPIKey = "AIzaTwo"
	c.Profiles[0].Name = "Office"
	c.SetupEntry.Title = "Changed"

	assert.Equal(t, "AIzaOne", *doc.GeminiAPIKey)
	assert.Equal(t, "Kitchen", doc.Profiles[0].Name)
	assert.Equal(t, "Live Config", doc.SetupEntry.Title)
}
