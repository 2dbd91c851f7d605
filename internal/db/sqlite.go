package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// SQLiteStore implements Store using SQLite
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store and applies migrations
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// modernc serialises writers per connection; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS nav_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS records (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data TEXT NOT NULL,
			UNIQUE (collection, id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_records_collection ON records (collection, seq);`,
	}
	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SetState stores value under key, replacing any previous value.
func (s *SQLiteStore) SetState(key, value string) error {
	query := `INSERT INTO nav_state (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`
	_, err := s.db.Exec(query, key, value, time.Now())
	return err
}

// GetState returns the value stored under key, or "" when there is none.
func (s *SQLiteStore) GetState(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM nav_state WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// DeleteState removes key.
func (s *SQLiteStore) DeleteState(key string) error {
	_, err := s.db.Exec(`DELETE FROM nav_state WHERE key = ?`, key)
	return err
}

// SaveRecord inserts or replaces a record. Replacing keeps its position.
func (s *SQLiteStore) SaveRecord(collection, id string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("record %s/%s is not valid JSON", collection, id)
	}
	query := `INSERT INTO records (collection, id, data) VALUES (?, ?, ?)
		ON CONFLICT(collection, id) DO UPDATE SET data = excluded.data`
	_, err := s.db.Exec(query, collection, id, string(data))
	return err
}

// ListRecords returns up to limit records of collection after skipping skip.
func (s *SQLiteStore) ListRecords(collection string, skip, limit int) ([]json.RawMessage, error) {
	query := `SELECT data FROM records WHERE collection = ? ORDER BY seq LIMIT ? OFFSET ?`
	rows, err := s.db.Query(query, collection, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// CountRecords returns the number of records in collection.
func (s *SQLiteStore) CountRecords(collection string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM records WHERE collection = ?`, collection).Scan(&n)
	return n, err
}

func scanRecords(rows *sql.Rows) ([]json.RawMessage, error) {
	results := []json.RawMessage{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		results = append(results, json.RawMessage(data))
	}
	return results, rows.Err()
}
