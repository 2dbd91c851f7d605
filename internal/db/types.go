package db

import "encoding/json"

// Store interface defines the methods for persistent storage.
//
// State keys hold small string values (the console keeps its navigation
// locations there). Records are JSON documents grouped by collection and
// listed in insertion order, which is what the dev backend pages over.
type Store interface {
	Close() error

	SetState(key, value string) error
	GetState(key string) (string, error)
	DeleteState(key string) error

	SaveRecord(collection, id string, data []byte) error
	ListRecords(collection string, skip, limit int) ([]json.RawMessage, error)
	CountRecords(collection string) (int, error)
}
