package fs

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"hbnb/internal/blob/core"
)

func newTempStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store, dir
}

func TestStore_PutOverwritesAndGet(t *testing.T) {
	ctx := context.Background()
	store, dir := newTempStore(t)
	if store.Driver() != core.DriverFilesystem {
		t.Fatalf("unexpected driver %s", store.Driver())
	}
	first, err := store.Put(ctx, "file.json", bytes.NewReader([]byte("{}")), core.PutOptions{ContentType: "application/json"})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	second, err := store.Put(ctx, "file.json", bytes.NewReader([]byte(`{"a":1}`)), core.PutOptions{})
	if err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if first.ETag == second.ETag || second.Size != 7 {
		t.Fatalf("unexpected infos %+v %+v", first, second)
	}
	info, rc, err := store.Get(ctx, "file.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	b, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(b) != `{"a":1}` || info.Size != 7 {
		t.Fatalf("unexpected content %q (%d)", b, info.Size)
	}
	if _, err := os.Stat(filepath.Join(dir, "file.json")); err != nil {
		t.Fatalf("expected plain file on disk: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("expected temp files to be cleaned up, got %d entries", len(entries))
	}
}

func TestStore_GetMissing(t *testing.T) {
	store, _ := newTempStore(t)
	if _, _, err := store.Get(context.Background(), "nope.json"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_PathTraversal(t *testing.T) {
	ctx := context.Background()
	store, _ := newTempStore(t)
	for _, key := range []string{"../escape.txt", "/abs.txt", "  "} {
		if _, err := store.Put(ctx, key, bytes.NewReader([]byte("x")), core.PutOptions{}); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}
