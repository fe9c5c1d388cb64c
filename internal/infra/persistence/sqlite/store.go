// Package sqlite persists the object table into per-class tables of an
// embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"hbnb/internal/infra/persistence/memory"
	"hbnb/internal/infra/persistence/relational"
	"hbnb/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// DefaultPath is used when no database path is configured.
const DefaultPath = "hbnb.db"

// Dialect is the SQLite flavour of the relational mapping.
var Dialect = relational.Dialect{
	Name:        "sqlite",
	Placeholder: func(n int) string { return "?" + strconv.Itoa(n) },
	Types: map[domain.FieldKind]string{
		domain.KindString:     "TEXT",
		domain.KindInt:        "INTEGER",
		domain.KindFloat:      "REAL",
		domain.KindStringList: "TEXT",
	},
	TextType: "TEXT",
}

// Store keeps the table in memory and rewrites the class tables on Save.
type Store struct {
	*memory.Store
	db       *sql.DB
	path     string
	tables   []relational.Table
	registry *domain.Registry
	mu       sync.Mutex
}

// NewStore opens (creating if needed) the database at path, ensures the class
// tables exist and loads their rows.
func NewStore(ctx context.Context, path string, registry *domain.Registry) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	if registry == nil {
		registry = domain.DefaultRegistry()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	tables, err := relational.Tables(registry)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := relational.EnsureSchema(ctx, db, Dialect, tables); err != nil {
		_ = db.Close()
		return nil, err
	}
	s := &Store{Store: memory.NewStore(), db: db, path: path, tables: tables, registry: registry}
	if err := s.Reload(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// Save replaces every class table with the current table contents.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return relational.Save(ctx, s.db, Dialect, s.tables, s.All())
}

// Reload replaces the in-memory table with the database rows.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	objects, err := relational.Load(ctx, s.db, s.tables, s.registry)
	if err != nil {
		return err
	}
	s.Replace(objects)
	return nil
}

// Close closes the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
