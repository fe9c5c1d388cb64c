// Package postgres persists the object table into per-class PostgreSQL tables.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"hbnb/internal/infra/persistence/memory"
	"hbnb/internal/infra/persistence/relational"
	"hbnb/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/hbnb_dev_db?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Dialect is the PostgreSQL flavour of the relational mapping.
var Dialect = relational.Dialect{
	Name:        "postgres",
	Placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	Types: map[domain.FieldKind]string{
		domain.KindString:     "VARCHAR(1024)",
		domain.KindInt:        "BIGINT",
		domain.KindFloat:      "DOUBLE PRECISION",
		domain.KindStringList: "TEXT",
	},
	TextType: "TEXT",
}

// Store keeps the table in memory and rewrites the class tables on Save.
type Store struct {
	*memory.Store
	db       *sql.DB
	tables   []relational.Table
	registry *domain.Registry
	mu       sync.Mutex
}

// NewStore opens a Postgres-backed store using the provided DSN (falls back to
// defaultDSN), creates missing class tables and loads their rows.
func NewStore(ctx context.Context, dsn string, registry *domain.Registry) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	if registry == nil {
		registry = domain.DefaultRegistry()
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
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
	s := &Store{Store: memory.NewStore(), db: db, tables: tables, registry: registry}
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

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
