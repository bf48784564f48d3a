package contact

import (
	"context"
	"time"

	"edusahasra/internal/adapters/storage"
)

// Message is a contact-form submission. A copy is kept locally so messages
// survive an email-delivery outage.
type Message struct {
	ID      string
	Name    string
	Email   string
	Message string
	Sent    bool
}

// Store persists contact messages.
type Store interface {
	Save(ctx context.Context, m Message) error
	MarkSent(ctx context.Context, id string) error
}

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new contact-message store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Save persists a contact message.
// PRE: m has been validated
func (s *SQLiteStore) Save(ctx context.Context, m Message) error {
	sent := 0
	if m.Sent {
		sent = 1
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO contact_message (id, name, email, message, sent, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		m.ID, m.Name, m.Email, m.Message, sent, time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// MarkSent records that the message reached the site inbox.
func (s *SQLiteStore) MarkSent(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE contact_message SET sent = 1 WHERE id = ?", id,
	)
	return err
}
