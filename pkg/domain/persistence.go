package domain

import "context"

// PersistentStore is the object table every backend exposes. The in-memory
// table is authoritative between Save and Reload calls; records returned by
// All and Get are live and may be mutated in place before calling Save.
type PersistentStore interface {
	// All returns a copy of the Store Key -> record mapping.
	All() map[string]Model
	// Get returns the record stored under key.
	Get(key string) (Model, bool)
	// New registers m under its Store Key, replacing any previous entry.
	New(m Model)
	// Delete removes key from the table and reports whether it was present.
	Delete(key string) bool
	// Save replaces the backing medium's contents with the current table.
	Save(ctx context.Context) error
	// Reload repopulates the table from the backing medium. A missing medium
	// leaves the table untouched; a malformed one is an error.
	Reload(ctx context.Context) error
	// Close releases backend resources.
	Close() error
}
