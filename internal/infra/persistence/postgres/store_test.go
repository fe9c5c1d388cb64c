package postgres

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	"hbnb/internal/infra/persistence/postgres/testutil"
	"hbnb/pkg/domain"
)

func openStub(t *testing.T) (*Store, *testutil.StubConn, func()) {
	t.Helper()
	db, conn := testutil.NewStubDB()
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	store, err := NewStore(context.Background(), "", nil)
	if err != nil {
		restore()
		t.Fatalf("NewStore: %v", err)
	}
	return store, conn, restore
}

func TestNewStoreCreatesClassTables(t *testing.T) {
	_, conn, restore := openStub(t)
	defer restore()
	if got := conn.ExecCount("CREATE TABLE IF NOT EXISTS"); got != 7 {
		t.Fatalf("expected 7 CREATE TABLE statements, got %d: %v", got, conn.Execs)
	}
}

func TestStoreSaveAndReloadRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, conn, restore := openStub(t)
	defer restore()

	reg := domain.DefaultRegistry()
	user, _ := reg.Instantiate(domain.ClassUser)
	_ = domain.Set(user, "email", "a@b.c")
	_ = domain.Set(user, "age", int64(89))
	review, _ := reg.Instantiate(domain.ClassReview)
	_ = domain.Set(review, "text", "great")
	place, _ := reg.Instantiate(domain.ClassPlace)
	_ = domain.Set(place, "max_guest", int64(6))
	_ = domain.Set(place, "longitude", -122.4)
	_ = domain.Set(place, "amenity_ids", []any{"a"})
	for _, m := range []domain.Model{user, review, place} {
		store.New(m)
	}
	if err := store.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(conn.Tables["users"]) != 1 || len(conn.Tables["reviews"]) != 1 || len(conn.Tables["places"]) != 1 {
		t.Fatalf("unexpected rows: %v", conn.Tables)
	}
	want := make(map[string]map[string]any)
	for k, m := range store.All() {
		want[k] = domain.ToMap(m)
	}

	store.Replace(nil)
	if err := store.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	got := make(map[string]map[string]any)
	for k, m := range store.All() {
		got[k] = domain.ToMap(m)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\n got %v\nwant %v", got, want)
	}
}

func TestStoreSaveIsWholesale(t *testing.T) {
	ctx := context.Background()
	store, conn, restore := openStub(t)
	defer restore()
	reg := domain.DefaultRegistry()
	a, _ := reg.Instantiate(domain.ClassState)
	b, _ := reg.Instantiate(domain.ClassState)
	store.New(a)
	store.New(b)
	if err := store.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	store.Delete(domain.Key(a))
	if err := store.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	rows := conn.Tables["states"]
	if len(rows) != 1 || rows[0]["id"] != b.Record().ID {
		t.Fatalf("expected only %s to remain, got %v", b.Record().ID, rows)
	}
}

func TestStoreSaveRollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	store, conn, restore := openStub(t)
	defer restore()
	reg := domain.DefaultRegistry()
	c, _ := reg.Instantiate(domain.ClassCity)
	store.New(c)
	if err := store.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	conn.FailTables = map[string]bool{"reviews": true}
	r, _ := reg.Instantiate(domain.ClassReview)
	store.New(r)
	if err := store.Save(ctx); err == nil {
		t.Fatalf("expected save failure")
	}
	conn.FailTables = nil
	if len(conn.Tables["cities"]) != 1 {
		t.Fatalf("expected rollback to keep previous rows, got %v", conn.Tables["cities"])
	}
}

func TestNewStorePingFailure(t *testing.T) {
	db, conn := testutil.NewStubDB()
	conn.FailPing = true
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()
	if _, err := NewStore(context.Background(), "postgres://x", nil); err == nil {
		t.Fatalf("expected ping error")
	}
	openErr := errors.New("boom")
	restoreErr := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return nil, openErr })
	defer restoreErr()
	if _, err := NewStore(context.Background(), "", nil); !errors.Is(err, openErr) {
		t.Fatalf("expected open error, got %v", err)
	}
}
