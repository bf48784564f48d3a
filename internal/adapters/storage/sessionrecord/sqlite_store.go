package sessionrecord

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"edusahasra/internal/adapters/storage"
	"edusahasra/internal/domain/session"
)

// SQLiteStore implements Store using SQLite. Payloads are the backend's
// login responses stored verbatim; a row that no longer parses is deleted
// the moment a read trips over it.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new session-record store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get retrieves the record for one role in one browser session.
// PRE: browserID and role are non-empty
// POST: returns (record, true) only for a stored payload that parses and
// carries a token; a malformed payload is deleted as a side effect
func (s *SQLiteStore) Get(ctx context.Context, browserID, role string) (session.Record, bool, error) {
	key := session.StorageKey(role)
	if key == "" {
		return session.Record{}, false, session.ErrUnknownRole
	}

	var payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT payload FROM session_record WHERE browser_id = ? AND key = ?",
		browserID, key,
	).Scan(&payload)
	if err == sql.ErrNoRows {
		return session.Record{}, false, nil
	}
	if err != nil {
		return session.Record{}, false, err
	}

	rec, parseErr := session.Parse(role, []byte(payload))
	if parseErr != nil {
		// Corrupt record: discard it and report the actor as logged out.
		if _, delErr := s.db.ExecContext(ctx,
			"DELETE FROM session_record WHERE browser_id = ? AND key = ?",
			browserID, key,
		); delErr != nil {
			return session.Record{}, false, fmt.Errorf("delete corrupt session record: %w", delErr)
		}
		return session.Record{}, false, nil
	}
	return rec, true, nil
}

// Set stores a record, replacing any existing one for the same role.
// PRE: rec carries a non-empty token and valid role
// POST: the role's row holds rec.Raw verbatim
func (s *SQLiteStore) Set(ctx context.Context, browserID string, rec session.Record) error {
	key := session.StorageKey(rec.Role)
	if key == "" {
		return session.ErrUnknownRole
	}
	if rec.Token == "" {
		return session.ErrNoToken
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_record (browser_id, key, payload, updated_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(browser_id, key) DO UPDATE SET payload=excluded.payload, updated_at=excluded.updated_at`,
		browserID, key, string(rec.Raw), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// Clear removes one role's record.
func (s *SQLiteStore) Clear(ctx context.Context, browserID, role string) error {
	key := session.StorageKey(role)
	if key == "" {
		return session.ErrUnknownRole
	}
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM session_record WHERE browser_id = ? AND key = ?",
		browserID, key,
	)
	return err
}

// ClearAll removes every record for a browser session.
func (s *SQLiteStore) ClearAll(ctx context.Context, browserID string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM session_record WHERE browser_id = ?", browserID,
	)
	return err
}

// Provider scopes a Store to one browser session, satisfying the API
// client's SessionProvider contract. Read errors are logged and reported as
// "not logged in" — a broken local database must not take pages down.
type Provider struct {
	store     Store
	browserID string
	log       zerolog.Logger
}

// NewProvider binds a store to one browser session id.
func NewProvider(store Store, browserID string, log zerolog.Logger) *Provider {
	return &Provider{store: store, browserID: browserID, log: log}
}

// Get returns the role's record when present and valid.
func (p *Provider) Get(ctx context.Context, role string) (session.Record, bool) {
	rec, ok, err := p.store.Get(ctx, p.browserID, role)
	if err != nil {
		p.log.Error().Err(err).Str("role", role).Msg("session_read_failed")
		return session.Record{}, false
	}
	return rec, ok
}

// Set persists the record for its role.
func (p *Provider) Set(ctx context.Context, rec session.Record) error {
	return p.store.Set(ctx, p.browserID, rec)
}

// Clear removes the role's record.
func (p *Provider) Clear(ctx context.Context, role string) error {
	return p.store.Clear(ctx, p.browserID, role)
}
