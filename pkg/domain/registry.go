package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrUnknownClass is returned when a class name has no registered factory.
var ErrUnknownClass = errors.New("unknown class")

// Factory returns a zero-valued Model of a single class.
type Factory func() Model

// Registry maps class names to factories. It replaces dynamic lookup of
// types by name: only registered classes can be constructed or decoded.
type Registry struct {
	order     []Class
	factories map[Class]Factory
	now       func() time.Time
	newID     func() string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[Class]Factory),
		now:       time.Now,
		newID:     func() string { return uuid.NewString() },
	}
}

// DefaultRegistry returns a registry holding the seven hbnb classes.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(ClassBaseModel, func() Model { return &BaseModel{} })
	r.MustRegister(ClassUser, func() Model { return &User{} })
	r.MustRegister(ClassState, func() Model { return &State{} })
	r.MustRegister(ClassCity, func() Model { return &City{} })
	r.MustRegister(ClassAmenity, func() Model { return &Amenity{} })
	r.MustRegister(ClassPlace, func() Model { return &Place{} })
	r.MustRegister(ClassReview, func() Model { return &Review{} })
	return r
}

// Register adds a factory for class. Registering a class twice is an error.
func (r *Registry) Register(class Class, factory Factory) error {
	if class == "" || factory == nil {
		return fmt.Errorf("register class: empty name or nil factory")
	}
	if _, exists := r.factories[class]; exists {
		return fmt.Errorf("class %s already registered", class)
	}
	r.factories[class] = factory
	r.order = append(r.order, class)
	return nil
}

// MustRegister is Register that panics on error. Used for static setup.
func (r *Registry) MustRegister(class Class, factory Factory) {
	if err := r.Register(class, factory); err != nil {
		panic(err)
	}
}

// Lookup resolves a class name.
func (r *Registry) Lookup(name string) (Class, bool) {
	_, ok := r.factories[Class(name)]
	return Class(name), ok
}

// Classes returns registered classes in registration order.
func (r *Registry) Classes() []Class {
	out := make([]Class, len(r.order))
	copy(out, r.order)
	return out
}

// SetClock overrides the time source used for new records.
func (r *Registry) SetClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Now returns the registry's current time in UTC.
func (r *Registry) Now() time.Time {
	return r.now().UTC()
}

// Instantiate constructs a new record of class with a fresh identifier and
// both timestamps set to now.
func (r *Registry) Instantiate(class Class) (Model, error) {
	factory, ok := r.factories[class]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownClass, class)
	}
	m := factory()
	now := r.Now()
	rec := m.Record()
	rec.ID = r.newID()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return m, nil
}

// FromMap decodes a serialized attribute mapping (as produced by ToMap) back
// into a record. The mapping must carry __class__ and id.
func (r *Registry) FromMap(attrs map[string]any) (Model, error) {
	className, _ := attrs[AttrClass].(string)
	factory, ok := r.factories[Class(className)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownClass, className)
	}
	id, _ := attrs[AttrID].(string)
	if id == "" {
		return nil, fmt.Errorf("decode %s: missing id", className)
	}
	m := factory()
	rec := m.Record()
	rec.ID = id
	for _, attr := range []string{AttrCreatedAt, AttrUpdatedAt} {
		raw, _ := attrs[attr].(string)
		if raw == "" {
			continue
		}
		ts, err := ParseTime(raw)
		if err != nil {
			return nil, fmt.Errorf("decode %s.%s: %w", className, id, err)
		}
		if attr == AttrCreatedAt {
			rec.CreatedAt = ts
		} else {
			rec.UpdatedAt = ts
		}
	}
	for k, v := range attrs {
		if err := Set(m, k, v); err != nil {
			return nil, fmt.Errorf("decode %s.%s: %w", className, id, err)
		}
	}
	return m, nil
}
