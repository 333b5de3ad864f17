package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/ericfisherdev/liveconfig/internal/domain/model"
	"github.com/ericfisherdev/liveconfig/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.DocumentStore = (*DocumentRepo)(nil)

const (
	settingSchemaVersion = "schema_version"
	credentialGemini     = "gemini"
)

// DocumentRepo is the SQLite implementation of the DocumentStore port. The
// document is spread over the settings, credentials, profiles and
// setup_entries tables and always written as a whole inside one transaction.
// The Gemini API key is sealed with AES-256-GCM when a secret key is set.
type DocumentRepo struct {
	db  *DB
	box secretBox
}

// NewDocumentRepo creates a DocumentRepo. key must be 32 bytes for AES-256-GCM,
// or nil to store the API key unencrypted.
func NewDocumentRepo(db *DB, key []byte) *DocumentRepo {
	return &DocumentRepo{db: db, box: secretBox{key: key}}
}

// Ping checks that the database is reachable. It implements driven.Pinger.
func (r *DocumentRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

// Load reads the whole document. Returns (nil, nil) when no document has been saved.
func (r *DocumentRepo) Load(ctx context.Context) (*model.Document, error) {
	tx, err := r.db.Reader.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin read: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var rawVersion string
	err = tx.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, settingSchemaVersion).Scan(&rawVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get schema version: %w", err)
	}

	version, err := strconv.Atoi(rawVersion)
	if err != nil {
		return nil, fmt.Errorf("parse schema version %q: %w", rawVersion, err)
	}

	doc := model.Document{SchemaVersion: version}

	doc.GeminiAPIKey, err = r.loadGeminiKey(ctx, tx)
	if err != nil {
		return nil, err
	}

	doc.Profiles, err = loadProfiles(ctx, tx)
	if err != nil {
		return nil, err
	}

	doc.SetupEntry, err = loadSetupEntry(ctx, tx)
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

func (r *DocumentRepo) loadGeminiKey(ctx context.Context, tx *sql.Tx) (*string, error) {
	const query = `SELECT value, encrypted FROM credentials WHERE service = ?`

	var value string
	var encrypted bool
	err := tx.QueryRowContext(ctx, query, credentialGemini).Scan(&value, &encrypted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential %q: %w", credentialGemini, err)
	}

	if encrypted {
		value, err = r.box.open(value)
		if err != nil {
			return nil, fmt.Errorf("decrypt credential %q: %w", credentialGemini, err)
		}
	}
	return &value, nil
}

func loadProfiles(ctx context.Context, tx *sql.Tx) ([]model.Profile, error) {
	const query = `SELECT id, body FROM profiles ORDER BY position`

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []model.Profile{}
	for rows.Next() {
		var id, body string
		if err := rows.Scan(&id, &body); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}

		var p model.Profile
		if err := json.Unmarshal([]byte(body), &p); err != nil {
			return nil, fmt.Errorf("decode profile %s: %w", id, err)
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

func loadSetupEntry(ctx context.Context, tx *sql.Tx) (*model.SetupEntry, error) {
	const query = `SELECT domain, title, created_at FROM setup_entries WHERE domain = ?`

	var entry model.SetupEntry
	var createdAt string
	err := tx.QueryRowContext(ctx, query, model.StorageKey).Scan(&entry.Domain, &entry.Title, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get setup entry: %w", err)
	}

	entry.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	return &entry, nil
}

// Save replaces the stored document with doc in a single transaction.
func (r *DocumentRepo) Save(ctx context.Context, doc model.Document) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin write: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const upsertSetting = `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := tx.ExecContext(ctx, upsertSetting, settingSchemaVersion, strconv.Itoa(doc.SchemaVersion)); err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}

	if err := r.saveGeminiKey(ctx, tx, doc.GeminiAPIKey); err != nil {
		return err
	}

	if err := saveProfiles(ctx, tx, doc.Profiles); err != nil {
		return err
	}

	if err := saveSetupEntry(ctx, tx, doc.SetupEntry); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit document: %w", err)
	}
	return nil
}

func (r *DocumentRepo) saveGeminiKey(ctx context.Context, tx *sql.Tx, key *string) error {
	if key == nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM credentials WHERE service = ?`, credentialGemini); err != nil {
			return fmt.Errorf("delete credential %q: %w", credentialGemini, err)
		}
		return nil
	}

	value := *key
	encrypted := false
	if r.box.enabled() {
		sealed, err := r.box.seal(value)
		if err != nil {
			return fmt.Errorf("encrypt credential %q: %w", credentialGemini, err)
		}
		value = sealed
		encrypted = true
	}

	const query = `
		INSERT INTO credentials (service, value, encrypted, updated_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			value = excluded.value,
			encrypted = excluded.encrypted,
			updated_at = excluded.updated_at
	`
	if _, err := tx.ExecContext(ctx, query, credentialGemini, value, encrypted); err != nil {
		return fmt.Errorf("set credential %q: %w", credentialGemini, err)
	}
	return nil
}

func saveProfiles(ctx context.Context, tx *sql.Tx, profiles []model.Profile) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM profiles`); err != nil {
		return fmt.Errorf("clear profiles: %w", err)
	}

	const query = `
		INSERT INTO profiles (id, position, name, name_key, body, schema_version, last_modified, modified_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	for i, p := range profiles {
		body, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode profile %s: %w", p.ID, err)
		}

		var lastModified any
		if !p.LastModified.IsZero() {
			lastModified = model.FormatTimestamp(p.LastModified)
		}

		_, err = tx.ExecContext(ctx, query,
			p.ID, i, p.Name, p.NameKey(), string(body), p.SchemaVersion, lastModified, p.ModifiedBy,
		)
		if err != nil {
			return fmt.Errorf("insert profile %s: %w", p.ID, err)
		}
	}
	return nil
}

func saveSetupEntry(ctx context.Context, tx *sql.Tx, entry *model.SetupEntry) error {
	if entry == nil {
		if _, err := tx.ExecContext(ctx, `DELETE FROM setup_entries`); err != nil {
			return fmt.Errorf("clear setup entries: %w", err)
		}
		return nil
	}

	const query = `
		INSERT INTO setup_entries (domain, title, created_at) VALUES (?, ?, ?)
		ON CONFLICT(domain) DO UPDATE SET title = excluded.title, created_at = excluded.created_at
	`
	_, err := tx.ExecContext(ctx, query, entry.Domain, entry.Title, entry.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("set setup entry: %w", err)
	}
	return nil
}

// parseTime parses a timestamp from SQLite, which may be in RFC 3339 or
// SQLite's CURRENT_TIMESTAMP format.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
