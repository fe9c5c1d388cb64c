// Package storage selects the object store backend and instruments it.
package storage

import (
	"context"
	"fmt"
	"time"

	"hbnb/internal/blob"
	"hbnb/internal/config"
	"hbnb/internal/infra/persistence/file"
	"hbnb/internal/infra/persistence/memory"
	"hbnb/internal/infra/persistence/postgres"
	"hbnb/internal/infra/persistence/sqlite"
	"hbnb/internal/logging"
	"hbnb/internal/metrics"
	"hbnb/pkg/domain"
)

// Driver identifies a concrete persistent storage implementation.
type Driver string

const (
	DriverMemory   Driver = config.DriverMemory   // in-memory only (tests / ephemeral)
	DriverFile     Driver = config.DriverFile     // JSON document through the blob layer
	DriverSQLite   Driver = config.DriverSQLite   // embedded sqlite file
	DriverPostgres Driver = config.DriverPostgres // PostgreSQL server
)

type (
	// PersistentStore is the backend contract.
	PersistentStore = domain.PersistentStore
)

// ErrMalformed is returned by Reload when the flat file cannot be decoded.
var ErrMalformed = file.ErrMalformed

// Engine is the store the console and web front end hold.
type Engine interface {
	PersistentStore
	Driver() Driver
}

// Open builds the backend described by cfg and loads its contents. m may be nil.
func Open(ctx context.Context, cfg config.Storage, registry *domain.Registry, m *metrics.Metrics) (Engine, error) {
	if registry == nil {
		registry = domain.DefaultRegistry()
	}
	driver := Driver(cfg.Driver)
	if driver == "" {
		driver = DriverFile
	}
	var (
		backend PersistentStore
		err     error
	)
	started := time.Now()
	switch driver {
	case DriverMemory:
		backend = memory.NewStore()
	case DriverFile:
		backend, err = openFile(ctx, cfg, registry)
	case DriverSQLite:
		backend, err = sqlite.NewStore(ctx, cfg.SQLite.Path, registry)
	case DriverPostgres:
		backend, err = postgres.NewStore(ctx, cfg.Postgres.DSN, registry)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
	m.ObserveStore(string(driver), "open", started, err)
	if err != nil {
		logging.WithFields(logging.Fields{
			"event":  "storage_open_failed",
			"driver": driver,
		}).Error(err)
		return nil, err
	}
	engine := Instrument(backend, driver, m)
	logging.WithFields(logging.Fields{
		"event":   "storage_open",
		"driver":  driver,
		"objects": len(engine.All()),
	}).Info("store ready")
	return engine, nil
}

func openFile(ctx context.Context, cfg config.Storage, registry *domain.Registry) (PersistentStore, error) {
	b := cfg.File.Blob
	blobs, err := blob.Open(ctx, blob.Options{
		Driver: blob.Driver(b.Driver),
		Root:   b.Root,
		S3: blob.S3Config{
			Bucket:    b.S3.Bucket,
			Region:    b.S3.Region,
			Endpoint:  b.S3.Endpoint,
			PathStyle: b.S3.PathStyle,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}
	return file.NewStore(ctx, blobs, cfg.File.Path, registry)
}

// Instrumented decorates a backend with timing metrics and logging of
// Save and Reload.
type Instrumented struct {
	PersistentStore
	driver  Driver
	metrics *metrics.Metrics
}

// Instrument wraps backend. m may be nil.
func Instrument(backend PersistentStore, driver Driver, m *metrics.Metrics) *Instrumented {
	return &Instrumented{PersistentStore: backend, driver: driver, metrics: m}
}

// Driver reports the backend in use.
func (s *Instrumented) Driver() Driver { return s.driver }

// Save persists the table.
func (s *Instrumented) Save(ctx context.Context) error {
	started := time.Now()
	err := s.PersistentStore.Save(ctx)
	s.observe("save", started, err)
	return err
}

// Reload repopulates the table.
func (s *Instrumented) Reload(ctx context.Context) error {
	started := time.Now()
	err := s.PersistentStore.Reload(ctx)
	s.observe("reload", started, err)
	return err
}

func (s *Instrumented) observe(op string, started time.Time, err error) {
	s.metrics.ObserveStore(string(s.driver), op, started, err)
	entry := logging.WithFields(logging.Fields{
		"event":    "storage_" + op,
		"driver":   s.driver,
		"duration": time.Since(started),
	})
	if err != nil {
		entry.Error(err)
		return
	}
	entry.Debug(op + " complete")
}
