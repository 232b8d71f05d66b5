package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Store is a single-file key-value store holding one wholesale record per
// user, keyed by lowercased email. Records are read and written as a unit;
// concurrent writers are not coordinated and the last writer wins.
type Store struct {
	db           *sql.DB
	artifactsDir string
}

// Open opens (or creates) the store at path with artifacts written under
// artifactsDir.
func Open(path, artifactsDir string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	if err := os.MkdirAll(artifactsDir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifacts directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			email      TEXT PRIMARY KEY,
			data       TEXT NOT NULL,
			updated_at REAL NOT NULL
		)
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db, artifactsDir: artifactsDir}, nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Key normalizes an email into the store key
func Key(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Load reads the whole record for a user. A user with no stored record gets
// a fresh zero record, mirroring first login.
func (s *Store) Load(email string) (*UserRecord, error) {
	row := s.db.QueryRow(`SELECT data FROM users WHERE email = ?`, Key(email))

	var data string
	if err := row.Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return NewUserRecord(), nil
		}
		return nil, fmt.Errorf("load user %s: %w", Key(email), err)
	}

	var record UserRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("parse user record %s: %w", Key(email), err)
	}

	return &record, nil
}

// Save writes the whole record for a user, replacing any previous value.
func (s *Store) Save(email string, record *UserRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal user record: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO users (email, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(email) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at
	`, Key(email), string(data), float64(time.Now().UnixMilli())/1000.0)
	if err != nil {
		return fmt.Errorf("save user %s: %w", Key(email), err)
	}

	return nil
}

// Users lists all stored user keys
func (s *Store) Users() ([]string, error) {
	rows, err := s.db.Query(`SELECT email FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// WriteArtifact stores a normalized audio container under the artifacts
// directory and returns its path, the reference kept on the recording.
func (s *Store) WriteArtifact(recordingID string, data []byte) (string, error) {
	path := filepath.Join(s.artifactsDir, recordingID+".wav")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write artifact %s: %w", recordingID, err)
	}
	return path, nil
}

// WriteMetadata emits the pretty-printed metadata sidecar next to the artifact
func (s *Store) WriteMetadata(meta RecordingMetadata) (string, error) {
	data, err := meta.MarshalPretty()
	if err != nil {
		return "", fmt.Errorf("marshal metadata %s: %w", meta.ID, err)
	}

	path := filepath.Join(s.artifactsDir, meta.ID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write metadata %s: %w", meta.ID, err)
	}
	return path, nil
}

// ReadArtifact reads a stored artifact back by path
func (s *Store) ReadArtifact(path string) ([]byte, error) {
	clean := filepath.Clean(path)
	if !strings.HasPrefix(clean, filepath.Clean(s.artifactsDir)) {
		return nil, fmt.Errorf("artifact path %s outside artifacts directory", path)
	}
	return os.ReadFile(clean)
}
