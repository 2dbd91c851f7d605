package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresStore implements Store using PostgreSQL
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new Postgres store and applies migrations
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *PostgresStore) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS nav_state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS records (
			seq BIGSERIAL PRIMARY KEY,
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			data JSONB NOT NULL,
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
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// SetState stores value under key, replacing any previous value.
func (s *PostgresStore) SetState(key, value string) error {
	query := `INSERT INTO nav_state (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	_, err := s.db.Exec(query, key, value, time.Now())
	return err
}

// GetState returns the value stored under key, or "" when there is none.
func (s *PostgresStore) GetState(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM nav_state WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// DeleteState removes key.
func (s *PostgresStore) DeleteState(key string) error {
	_, err := s.db.Exec(`DELETE FROM nav_state WHERE key = $1`, key)
	return err
}

// SaveRecord inserts or replaces a record. Replacing keeps its position.
func (s *PostgresStore) SaveRecord(collection, id string, data []byte) error {
	if !json.Valid(data) {
		return fmt.Errorf("record %s/%s is not valid JSON", collection, id)
	}
	query := `INSERT INTO records (collection, id, data) VALUES ($1, $2, $3)
		ON CONFLICT (collection, id) DO UPDATE SET data = EXCLUDED.data`
	_, err := s.db.Exec(query, collection, id, string(data))
	return err
}

// ListRecords returns up to limit records of collection after skipping skip.
func (s *PostgresStore) ListRecords(collection string, skip, limit int) ([]json.RawMessage, error) {
	query := `SELECT data FROM records WHERE collection = $1 ORDER BY seq LIMIT $2 OFFSET $3`
	rows, err := s.db.Query(query, collection, limit, skip)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

// CountRecords returns the number of records in collection.
func (s *PostgresStore) CountRecords(collection string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM records WHERE collection = $1`, collection).Scan(&n)
	return n, err
}
