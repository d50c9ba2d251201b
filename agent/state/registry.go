package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Registry creates and looks up checkout sessions through an injected
// persistence backend. There is deliberately no package-level session map;
// swapping the backend never touches orchestration code.
type Registry struct {
	store Store
	newID func() string
	now   func() time.Time
}

func NewRegistry(store Store) (*Registry, error) {
	if store == nil {
		return nil, errors.New("session store is required")
	}
	return &Registry{
		store: store,
		newID: uuid.NewString,
		now:   time.Now,
	}, nil
}

// Create validates the cart, assigns a fresh session id, and persists the
// new active session. ErrInvalidCart covers empty carts, non-positive
// quantities, and negative prices.
func (r *Registry) Create(ctx context.Context, cart []CartItem, currency, userID string) (*CheckoutSession, error) {
	session, err := NewCheckoutSession(r.newID(), cart, currency, userID, r.now())
	if err != nil {
		return nil, err
	}
	if err := r.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save new session: %w", err)
	}
	return session, nil
}

// Get is a pure lookup; unknown ids surface ErrSessionNotFound.
func (r *Registry) Get(ctx context.Context, sessionID string) (*CheckoutSession, error) {
	return r.store.Load(ctx, sessionID)
}

// Save stamps UpdatedAt and persists the session.
func (r *Registry) Save(ctx context.Context, session *CheckoutSession) error {
	if session == nil {
		return ErrNilSession
	}
	session.Touch(r.now())
	return r.store.Save(ctx, session)
}
