package nav

import (
	"errors"
	"path/filepath"
	"testing"

	"ammonit/internal/db"
	"ammonit/internal/paging"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	values map[string]string
	err    error
}

func newMemStore() *memStore { return &memStore{values: map[string]string{}} }

func (m *memStore) SetState(key, value string) error {
	if m.err != nil {
		return m.err
	}
	m.values[key] = value
	return nil
}

func (m *memStore) GetState(key string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.values[key], nil
}

func TestParseLocation(t *testing.T) {
	loc := ParseLocation("/admin?page=2")
	assert.Equal(t, "/admin", loc.Route)
	assert.Equal(t, "2", loc.Query.Get("page"))
	assert.Equal(t, "/admin?page=2", loc.String())

	bare := ParseLocation("/clients")
	assert.Equal(t, "/clients", bare.String())

	broken := ParseLocation("/orders?%zz")
	assert.Equal(t, "/orders", broken.Route)
	assert.Empty(t, broken.Query)
}

func TestPageBinding_NormalizesInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"zero", "0", 1},
		{"negative", "-3", 1},
		{"text", "abc", 1},
		{"fraction", "2.5", 1},
		{"valid", "4", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRouter(nil, "/admin")
			r.SetQuery("/admin", "page", tt.value)
			assert.Equal(t, paging.Request{Page: tt.want}, r.Binding("/admin").Request())
		})
	}

	r := NewRouter(nil, "/admin")
	assert.Equal(t, paging.Request{Page: 1}, r.Binding("/admin").Request(), "missing page defaults to 1")
}

func TestPageBinding_RoundTrip(t *testing.T) {
	r := NewRouter(nil, "/admin")
	b := r.Binding("/admin")

	b.SetPage(3)

	assert.Equal(t, "/admin?page=3", r.Current().String())
	assert.Equal(t, paging.Request{Page: 3}, b.Request())
	assert.Equal(t, "/admin", b.Route())
}

func TestRouter_BackRestoresPreviousPage(t *testing.T) {
	r := NewRouter(nil, "/admin")
	b := r.Binding("/admin")

	b.SetPage(2)
	b.SetPage(3)
	b.SetPage(3) // unchanged, no history entry

	loc, ok := r.Back()
	require.True(t, ok)
	assert.Equal(t, "/admin?page=2", loc.String())
	assert.Equal(t, 2, b.Request().Page)

	loc, ok = r.Back()
	require.True(t, ok)
	assert.Equal(t, "/admin", loc.String())
	assert.Equal(t, 1, b.Request().Page)

	_, ok = r.Back()
	assert.False(t, ok)
	assert.False(t, r.CanGoBack())
}

func TestRouter_NavigateKeepsPerRouteLocations(t *testing.T) {
	r := NewRouter(nil, "/admin")
	r.Binding("/admin").SetPage(2)

	loc := r.Navigate("/clients")
	assert.Equal(t, "/clients", loc.String())
	r.Binding("/clients").SetPage(5)

	assert.Equal(t, "/admin?page=2", r.Location("/admin").String())
	assert.Equal(t, "/clients?page=5", r.Current().String())

	same := r.Navigate("/clients")
	assert.Equal(t, "/clients?page=5", same.String())

	prev, ok := r.Back() // undo page 5
	require.True(t, ok)
	assert.Equal(t, "/clients", prev.String())

	prev, ok = r.Back() // back to admin
	require.True(t, ok)
	assert.Equal(t, "/admin?page=2", prev.String())
	assert.Equal(t, "/admin", r.Current().Route)
}

func TestRouter_ReturnedLocationsAreCopies(t *testing.T) {
	r := NewRouter(nil, "/admin")
	r.Binding("/admin").SetPage(2)

	loc := r.Current()
	loc.Query.Set("page", "99")

	assert.Equal(t, 2, r.Binding("/admin").Request().Page)
}

func TestRouter_Persistence(t *testing.T) {
	store := newMemStore()

	r := NewRouter(store, "/admin")
	r.Navigate("/orders")
	r.Binding("/orders").SetPage(4)

	assert.Equal(t, "/orders?page=4", store.values["nav:/orders"])
	assert.Equal(t, "/orders", store.values[currentKey])

	restarted := NewRouter(store, "/admin")
	assert.Equal(t, "/orders?page=4", restarted.Current().String())
	assert.Equal(t, 4, restarted.Binding("/orders").Request().Page)
}

func TestRouter_PersistenceFailuresDoNotBreakNavigation(t *testing.T) {
	store := newMemStore()
	store.err = errors.New("disk full")

	r := NewRouter(store, "/admin")
	r.Binding("/admin").SetPage(2)

	assert.Equal(t, 2, r.Binding("/admin").Request().Page)
}

func TestRouter_SurvivesRestartWithSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nav.db")

	store, err := db.NewSQLiteStore(path)
	require.NoError(t, err)
	r := NewRouter(store, "/admin")
	r.Binding("/admin").SetPage(3)
	require.NoError(t, store.Close())

	store, err = db.NewSQLiteStore(path)
	require.NoError(t, err)
	defer store.Close()

	restarted := NewRouter(store, "/admin")
	assert.Equal(t, paging.Request{Page: 3}, restarted.Binding("/admin").Request())
}
