package sqlite

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"hbnb/pkg/domain"
)

func tableSnapshot(s *Store) map[string]map[string]any {
	out := make(map[string]map[string]any)
	for k, m := range s.All() {
		out[k] = domain.ToMap(m)
	}
	return out
}

func TestSQLiteStorePersistAndReload(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "state.db")
	store, err := NewStore(ctx, path, nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	reg := domain.DefaultRegistry()
	for _, class := range reg.Classes() {
		m, _ := reg.Instantiate(class)
		_ = domain.Set(m, "note", "hello world")
		store.New(m)
	}
	place, _ := reg.Instantiate(domain.ClassPlace)
	for attr, v := range map[string]any{
		"name":         "Cabin",
		"number_rooms": int64(4),
		"latitude":     37.77,
		"amenity_ids":  []any{"wifi", "pool"},
		"rating":       4.5,
		"stars":        5.0,
		"scores":       []any{1.0, int64(2)},
	} {
		if err := domain.Set(place, attr, v); err != nil {
			t.Fatalf("set %s: %v", attr, err)
		}
	}
	store.New(place)
	if err := store.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	want := tableSnapshot(store)

	reloaded, err := NewStore(ctx, path, reg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reloaded.Close() })
	if got := tableSnapshot(reloaded); !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %v\nwant %v", got, want)
	}
	if reloaded.Path() != path {
		t.Fatalf("unexpected path %s", reloaded.Path())
	}
}

func TestSQLiteStoreSaveRemovesDeletedRows(t *testing.T) {
	ctx := context.Background()
	store, err := NewStore(ctx, filepath.Join(t.TempDir(), "state.db"), nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	reg := domain.DefaultRegistry()
	u, _ := reg.Instantiate(domain.ClassUser)
	store.New(u)
	if err := store.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	store.Delete(domain.Key(u))
	if err := store.Save(ctx); err != nil {
		t.Fatalf("save after delete: %v", err)
	}
	var n int
	if err := store.DB().QueryRow("SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected users table to be empty, got %d rows", n)
	}
}

func TestSQLiteStoreCreatesClassTables(t *testing.T) {
	store, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "state.db"), nil)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	for _, table := range []string{"base_models", "users", "states", "cities", "amenities", "places", "reviews"} {
		var name string
		if err := store.DB().QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name = ?", table).Scan(&name); err != nil {
			t.Fatalf("lookup %s table: %v", table, err)
		}
	}
}
