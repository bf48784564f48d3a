package draft

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"edusahasra/internal/adapters/storage"
)

// SQLiteStore implements Store. Draft fields live in SQLite; staged file
// bytes live on disk under the upload directory with only metadata in the
// database.
type SQLiteStore struct {
	db        storage.SQLDB
	uploadDir string
}

// NewSQLiteStore creates a draft store writing file bytes under uploadDir.
func NewSQLiteStore(db storage.SQLDB, uploadDir string) *SQLiteStore {
	return &SQLiteStore{db: db, uploadDir: uploadDir}
}

// GetDraft retrieves a browser's draft for one wizard kind.
// POST: returns (draft, true) when a draft exists; Fields is never nil
func (s *SQLiteStore) GetDraft(ctx context.Context, browserID, kind string) (Draft, bool, error) {
	var step int
	var fieldsJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT step, fields FROM wizard_draft WHERE browser_id = ? AND kind = ?",
		browserID, kind,
	).Scan(&step, &fieldsJSON)
	if err == sql.ErrNoRows {
		return Draft{}, false, nil
	}
	if err != nil {
		return Draft{}, false, err
	}

	fields := make(map[string]string)
	if err := json.Unmarshal([]byte(fieldsJSON), &fields); err != nil {
		// A draft we can no longer read is a draft the user restarts.
		if _, delErr := s.db.ExecContext(ctx,
			"DELETE FROM wizard_draft WHERE browser_id = ? AND kind = ?", browserID, kind,
		); delErr != nil {
			return Draft{}, false, fmt.Errorf("delete corrupt draft: %w", delErr)
		}
		return Draft{}, false, nil
	}
	return Draft{BrowserID: browserID, Kind: kind, Step: step, Fields: fields}, true, nil
}

// SaveDraft persists a draft (insert or update).
// PRE: d.Step >= 1
func (s *SQLiteStore) SaveDraft(ctx context.Context, d Draft) error {
	fields := d.Fields
	if fields == nil {
		fields = map[string]string{}
	}
	encoded, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("encode draft fields: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO wizard_draft (browser_id, kind, step, fields, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(browser_id, kind) DO UPDATE SET step=excluded.step, fields=excluded.fields, updated_at=excluded.updated_at`,
		d.BrowserID, d.Kind, d.Step, string(encoded), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// DeleteDraft removes a draft and all of its staged files.
func (s *SQLiteStore) DeleteDraft(ctx context.Context, browserID, kind string) error {
	files, err := s.ListFiles(ctx, browserID, kind)
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := s.RemoveFile(ctx, browserID, f.ID); err != nil {
			return err
		}
	}
	_, err = s.db.ExecContext(ctx,
		"DELETE FROM wizard_draft WHERE browser_id = ? AND kind = ?", browserID, kind,
	)
	return err
}

// AddFile writes data to disk and records the staged file.
// PRE: f passed domain upload validation
// POST: file bytes exist at f.Path under the upload directory
func (s *SQLiteStore) AddFile(ctx context.Context, f StagedFile, data []byte) error {
	if f.Path == "" {
		f.Path = filepath.Join(f.Kind, f.ID+filepath.Ext(f.Name))
	}
	fullPath := filepath.Join(s.uploadDir, f.Path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	out, err := os.Create(fullPath)
	if err != nil {
		return fmt.Errorf("create: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO staged_file (id, browser_id, kind, field, name, content_type, size, path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.BrowserID, f.Kind, f.Field, f.Name, f.ContentType, f.Size, f.Path,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		os.Remove(fullPath)
		return err
	}
	return nil
}

// ListFiles returns the staged files for one wizard, oldest first.
func (s *SQLiteStore) ListFiles(ctx context.Context, browserID, kind string) ([]StagedFile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, browser_id, kind, field, name, content_type, size, path
		 FROM staged_file WHERE browser_id = ? AND kind = ? ORDER BY created_at`,
		browserID, kind,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []StagedFile
	for rows.Next() {
		var f StagedFile
		if err := rows.Scan(&f.ID, &f.BrowserID, &f.Kind, &f.Field, &f.Name, &f.ContentType, &f.Size, &f.Path); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

// RemoveFile deletes one staged file's row and bytes. Removing a file that
// belongs to another browser session is a no-op.
func (s *SQLiteStore) RemoveFile(ctx context.Context, browserID, fileID string) error {
	var path string
	err := s.db.QueryRowContext(ctx,
		"SELECT path FROM staged_file WHERE id = ? AND browser_id = ?", fileID, browserID,
	).Scan(&path)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM staged_file WHERE id = ? AND browser_id = ?", fileID, browserID,
	); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.uploadDir, path)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove staged file: %w", err)
	}
	return nil
}

// ReadFileData loads a staged file's bytes for the final submission.
func (s *SQLiteStore) ReadFileData(f StagedFile) ([]byte, error) {
	return os.ReadFile(filepath.Join(s.uploadDir, f.Path))
}
