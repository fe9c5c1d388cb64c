package memory

import (
	"context"
	"testing"

	"hbnb/pkg/domain"
)

func TestStoreNewGetDelete(t *testing.T) {
	reg := domain.DefaultRegistry()
	store := NewStore()
	user, err := reg.Instantiate(domain.ClassUser)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	store.New(user)
	key := domain.Key(user)
	got, ok := store.Get(key)
	if !ok || got != user {
		t.Fatalf("expected stored user under %s", key)
	}
	if store.Len() != 1 {
		t.Fatalf("expected one record, got %d", store.Len())
	}
	if !store.Delete(key) {
		t.Fatalf("expected delete to report presence")
	}
	if store.Delete(key) {
		t.Fatalf("expected second delete to report absence")
	}
	store.New(nil)
	if store.Len() != 0 {
		t.Fatalf("expected empty table")
	}
}

func TestStoreAllReturnsCopy(t *testing.T) {
	reg := domain.DefaultRegistry()
	store := NewStore()
	state, _ := reg.Instantiate(domain.ClassState)
	store.New(state)
	all := store.All()
	delete(all, domain.Key(state))
	if _, ok := store.Get(domain.Key(state)); !ok {
		t.Fatalf("mutating All() result must not affect the table")
	}
}

func TestStoreReplaceAndNoopPersistence(t *testing.T) {
	reg := domain.DefaultRegistry()
	store := NewStore()
	a, _ := reg.Instantiate(domain.ClassCity)
	b, _ := reg.Instantiate(domain.ClassAmenity)
	store.New(a)
	store.Replace([]domain.Model{b})
	if _, ok := store.Get(domain.Key(a)); ok {
		t.Fatalf("expected replaced table to drop previous records")
	}
	if _, ok := store.Get(domain.Key(b)); !ok {
		t.Fatalf("expected replacement record")
	}
	ctx := context.Background()
	if err := store.Save(ctx); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Reload(ctx); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("no-op reload must keep the table")
	}
}
