package db

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_State(t *testing.T) {
	store := newTestSQLite(t)

	value, err := store.GetState("nav:/admin")
	require.NoError(t, err)
	assert.Equal(t, "", value, "missing keys read as empty")

	require.NoError(t, store.SetState("nav:/admin", "/admin?page=2"))
	value, err = store.GetState("nav:/admin")
	require.NoError(t, err)
	assert.Equal(t, "/admin?page=2", value)

	require.NoError(t, store.SetState("nav:/admin", "/admin?page=3"))
	value, _ = store.GetState("nav:/admin")
	assert.Equal(t, "/admin?page=3", value)

	require.NoError(t, store.DeleteState("nav:/admin"))
	value, _ = store.GetState("nav:/admin")
	assert.Equal(t, "", value)
}

func TestSQLiteStore_Records(t *testing.T) {
	store := newTestSQLite(t)

	for i := 1; i <= 23; i++ {
		data := []byte(fmt.Sprintf(`{"id":"u%d","email":"u%d@example.com"}`, i, i))
		require.NoError(t, store.SaveRecord("users", fmt.Sprintf("u%d", i), data))
	}
	require.NoError(t, store.SaveRecord("clients", "c1", []byte(`{"id":"c1"}`)))

	count, err := store.CountRecords("users")
	require.NoError(t, err)
	assert.Equal(t, 23, count)

	page, err := store.ListRecords("users", 10, 10)
	require.NoError(t, err)
	require.Len(t, page, 10)

	var first struct{ ID string }
	require.NoError(t, json.Unmarshal(page[0], &first))
	assert.Equal(t, "u11", first.ID)

	last, err := store.ListRecords("users", 20, 10)
	require.NoError(t, err)
	assert.Len(t, last, 3)

	empty, err := store.ListRecords("orders", 0, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Len(t, empty, 0)
}

func TestSQLiteStore_ReplaceKeepsOrder(t *testing.T) {
	store := newTestSQLite(t)

	require.NoError(t, store.SaveRecord("users", "a", []byte(`{"id":"a","v":1}`)))
	require.NoError(t, store.SaveRecord("users", "b", []byte(`{"id":"b"}`)))
	require.NoError(t, store.SaveRecord("users", "a", []byte(`{"id":"a","v":2}`)))

	records, err := store.ListRecords("users", 0, 10)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"id":"a","v":2}`, string(records[0]))
	assert.JSONEq(t, `{"id":"b"}`, string(records[1]))

	count, _ := store.CountRecords("users")
	assert.Equal(t, 2, count)
}

func TestSQLiteStore_RejectsInvalidJSON(t *testing.T) {
	store := newTestSQLite(t)

	err := store.SaveRecord("users", "x", []byte(`{not json`))
	assert.Error(t, err)
}
