// Package file persists the object table as a single JSON document mapping
// Store Keys to attribute maps. The document is written through a blob store
// so it can live on local disk or in an object bucket.
package file

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"hbnb/internal/blob"
	"hbnb/internal/infra/persistence/memory"
	"hbnb/pkg/domain"
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

// DefaultKey is the document name used when none is configured.
const DefaultKey = "file.json"

// ErrMalformed is returned by Reload when the document exists but cannot be decoded.
var ErrMalformed = errors.New("malformed storage document")

// Store keeps the table in memory and rewrites the whole document on Save.
type Store struct {
	*memory.Store
	blobs    blob.Store
	key      string
	registry *domain.Registry
	mu       sync.Mutex
}

// NewStore opens the document stored under key in blobs and loads it.
func NewStore(ctx context.Context, blobs blob.Store, key string, registry *domain.Registry) (*Store, error) {
	if blobs == nil {
		return nil, fmt.Errorf("file store: nil blob store")
	}
	if key == "" {
		key = DefaultKey
	}
	if registry == nil {
		registry = domain.DefaultRegistry()
	}
	s := &Store{Store: memory.NewStore(), blobs: blobs, key: key, registry: registry}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Key returns the blob key of the document.
func (s *Store) Key() string { return s.key }

// Save serializes every record and replaces the document.
func (s *Store) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := make(map[string]map[string]any)
	for key, m := range s.All() {
		doc[key] = domain.JSONValue(domain.ToMap(m)).(map[string]any)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.key, err)
	}
	if _, err := s.blobs.Put(ctx, s.key, bytes.NewReader(data), blob.PutOptions{ContentType: "application/json"}); err != nil {
		return fmt.Errorf("write %s: %w", s.key, err)
	}
	return nil
}

// Reload replaces the table with the document's contents. A missing or empty
// document leaves the table untouched.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, rc, err := s.blobs.Get(ctx, s.key)
	if errors.Is(err, blob.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.key, err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return fmt.Errorf("read %s: %w", s.key, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	objects, err := decode(data, s.registry)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, s.key, err)
	}
	s.Replace(objects)
	return nil
}

func decode(data []byte, registry *domain.Registry) ([]domain.Model, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc map[string]map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	objects := make([]domain.Model, 0, len(doc))
	for _, k := range keys {
		attrs, ok := domain.NormalizeJSON(map[string]any(doc[k])).(map[string]any)
		if !ok || attrs == nil {
			return nil, fmt.Errorf("entry %s is not an object", k)
		}
		m, err := registry.FromMap(attrs)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", k, err)
		}
		objects = append(objects, m)
	}
	return objects, nil
}
