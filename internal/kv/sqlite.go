/*
Package kv provides the SQLite-backed durable store.

The database lives at ~/.engage/engage.db by default and uses
modernc.org/sqlite (a pure Go, CGo-free implementation). If the database
cannot be opened, the store is disabled and all operations become no-ops
(graceful degradation) so the host UI keeps working without persistence.
*/
package kv

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements the Store interface using SQLite.
type SQLiteStore struct {
	db       *sql.DB
	dbPath   string
	enabled  bool
	mu       sync.Mutex
	initOnce sync.Once
}

// DefaultPath returns the default database location under the user profile.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".engage", "engage.db"), nil
}

// NewSQLiteStore creates a store backed by the database at dbPath.
//
// If dbPath is empty, the default location is used. The database is not
// opened until Init is called.
func NewSQLiteStore(dbPath string) *SQLiteStore {
	if dbPath == "" {
		p, err := DefaultPath()
		if err != nil {
			log.Printf("Warning: %v", err)
			return &SQLiteStore{enabled: false}
		}
		dbPath = p
	}

	return &SQLiteStore{
		dbPath:  dbPath,
		enabled: true,
	}
}

// Init opens the database and creates the schema.
//
// It is safe to call multiple times; only the first call does work. If
// initialization fails, the store is disabled and subsequent operations
// become no-ops.
func (s *SQLiteStore) Init() error {
	if !s.enabled {
		return nil
	}

	var initErr error
	s.initOnce.Do(func() {
		dbDir := filepath.Dir(s.dbPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			initErr = fmt.Errorf("failed to create db directory: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}

		db, err := sql.Open("sqlite", s.dbPath)
		if err != nil {
			initErr = fmt.Errorf("failed to open database: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}
		s.db = db

		if err := db.Ping(); err != nil {
			initErr = fmt.Errorf("failed to ping database: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}

		if err := s.createSchema(); err != nil {
			initErr = fmt.Errorf("failed to create schema: %w", err)
			s.enabled = false
			log.Printf("Warning: %v", initErr)
			return
		}
	})

	return initErr
}

// createSchema creates the kv_state table.
func (s *SQLiteStore) createSchema() error {
	query := `
		CREATE TABLE IF NOT EXISTS kv_state (
			key TEXT PRIMARY KEY,
			value BLOB NOT NULL,
			updated_at TEXT NOT NULL
		)
	`
	_, err := s.db.Exec(query)
	return err
}

// Load decodes the value stored under key into dest.
func (s *SQLiteStore) Load(key string, dest interface{}) bool {
	if !s.enabled || s.db == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var raw []byte
	row := s.db.QueryRow("SELECT value FROM kv_state WHERE key = ?", key)
	if err := row.Scan(&raw); err != nil {
		if err != sql.ErrNoRows {
			log.Printf("Warning: failed to read stored value for %q: %v", key, err)
		}
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		log.Printf("Warning: failed to decode stored value for %q: %v", key, err)
		return false
	}

	return true
}

// Save encodes value and writes it under key, replacing any previous value.
func (s *SQLiteStore) Save(key string, value interface{}) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	raw, err := json.Marshal(value)
	if err != nil {
		log.Printf("Warning: failed to encode value for %q: %v", key, err)
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO kv_state (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	if _, err := s.db.Exec(query, key, raw, time.Now().UTC().Format(time.RFC3339)); err != nil {
		log.Printf("Warning: failed to persist %q: %v", key, err)
		return err
	}

	return nil
}

// Delete removes the value stored under key.
func (s *SQLiteStore) Delete(key string) error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM kv_state WHERE key = ?", key); err != nil {
		log.Printf("Warning: failed to delete %q: %v", key, err)
		return err
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if !s.enabled || s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	s.db = nil
	return nil
}
