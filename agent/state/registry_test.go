package state

import (
	"context"
	"errors"
	"testing"
	"time"
)

func newTestRegistry(t *testing.T) (*Registry, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	registry, err := NewRegistry(store)
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return registry, store
}

func TestNewRegistryRequiresStore(t *testing.T) {
	t.Parallel()

	if _, err := NewRegistry(nil); err == nil {
		t.Fatalf("NewRegistry(nil) expected error")
	}
}

func TestRegistryCreatePersistsSession(t *testing.T) {
	t.Parallel()

	registry, store := newTestRegistry(t)
	registry.newID = func() string { return "fixed-id" }

	session, err := registry.Create(context.Background(), testCart(), "thb", "user-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if session.SessionID != "fixed-id" {
		t.Fatalf("SessionID = %q, want fixed-id", session.SessionID)
	}
	if session.TotalAmount != 100000 {
		t.Fatalf("TotalAmount = %d, want 100000", session.TotalAmount)
	}

	loaded, err := store.Load(context.Background(), "fixed-id")
	if err != nil {
		t.Fatalf("Load() after Create error = %v", err)
	}
	if loaded.UserID != "user-1" {
		t.Fatalf("UserID = %q, want user-1", loaded.UserID)
	}
}

func TestRegistryCreateRejectsEmptyCart(t *testing.T) {
	t.Parallel()

	registry, store := newTestRegistry(t)

	_, err := registry.Create(context.Background(), nil, "thb", "")
	if !errors.Is(err, ErrInvalidCart) {
		t.Fatalf("error = %v, want ErrInvalidCart", err)
	}
	if store.Len() != 0 {
		t.Fatalf("store has %d sessions after rejected create, want 0", store.Len())
	}
}

func TestRegistryGetUnknownSession(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t)

	_, err := registry.Get(context.Background(), "missing")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("error = %v, want ErrSessionNotFound", err)
	}
}

func TestRegistrySaveTouchesUpdatedAt(t *testing.T) {
	t.Parallel()

	registry, _ := newTestRegistry(t)
	later := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	registry.now = func() time.Time { return later }

	session := newTestSession(t)
	if err := registry.Save(context.Background(), session); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if !session.UpdatedAt.Equal(later) {
		t.Fatalf("UpdatedAt = %v, want %v", session.UpdatedAt, later)
	}
}
