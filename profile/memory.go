// Package profile persists customer profiles, saved addresses, and saved
// payment methods. At most one default exists per category per user; adding
// a new default clears the previous one.
package profile

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
)

// MemoryStore keeps profile data in process memory. It is the default boot
// store and the test backend; clones on both sides so callers never alias
// stored slices.
type MemoryStore struct {
	mu        sync.RWMutex
	profiles  map[string]*contractx.Profile
	addresses map[string][]contractx.Address
	methods   map[string][]contractx.PaymentMethod

	newID func() string
	now   func() time.Time
}

var _ contractx.ProfileStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		profiles:  make(map[string]*contractx.Profile),
		addresses: make(map[string][]contractx.Address),
		methods:   make(map[string][]contractx.PaymentMethod),
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

func (s *MemoryStore) CreateProfile(ctx context.Context, in contractx.ProfileInput) (*contractx.Profile, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: profile name is required", contractx.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile := &contractx.Profile{
		ID:        s.newID(),
		Name:      name,
		Email:     strings.TrimSpace(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		CreatedAt: s.now().UTC(),
	}
	s.profiles[profile.ID] = profile

	clone := *profile
	return &clone, nil
}

func (s *MemoryStore) GetProfile(ctx context.Context, userID string) (*contractx.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	profile, ok := s.profiles[strings.TrimSpace(userID)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", contractx.ErrProfileNotFound, userID)
	}
	clone := *profile
	return &clone, nil
}

// ListAddresses returns both categories in insertion order. Addresses are
// keyed by user id alone; a profile row is not required.
func (s *MemoryStore) ListAddresses(ctx context.Context, userID string) ([]contractx.Address, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]contractx.Address(nil), s.addresses[strings.TrimSpace(userID)]...), nil
}

func (s *MemoryStore) AddShippingAddress(ctx context.Context, userID string, in contractx.AddressInput) (*contractx.Address, error) {
	return s.addAddress(userID, in, contractx.AddressShipping)
}

func (s *MemoryStore) AddBillingAddress(ctx context.Context, userID string, in contractx.AddressInput) (*contractx.Address, error) {
	return s.addAddress(userID, in, contractx.AddressBilling)
}

func (s *MemoryStore) addAddress(userID string, in contractx.AddressInput, category contractx.AddressCategory) (*contractx.Address, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", contractx.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.IsDefault {
		list := s.addresses[userID]
		for i := range list {
			if list[i].Category == category {
				list[i].IsDefault = false
			}
		}
	}

	address := contractx.Address{
		ID:         s.newID(),
		UserID:     userID,
		Category:   category,
		Name:       in.Name,
		Line1:      in.Line1,
		Line2:      in.Line2,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
		Phone:      in.Phone,
		IsDefault:  in.IsDefault,
	}
	s.addresses[userID] = append(s.addresses[userID], address)

	clone := address
	return &clone, nil
}

func (s *MemoryStore) ListPaymentMethods(ctx context.Context, userID string) ([]contractx.PaymentMethod, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]contractx.PaymentMethod(nil), s.methods[strings.TrimSpace(userID)]...), nil
}

func (s *MemoryStore) AddPaymentMethod(ctx context.Context, userID string, in contractx.PaymentMethodInput) (*contractx.PaymentMethod, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", contractx.ErrValidation)
	}
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown payment method type %q", contractx.ErrValidation, in.Type)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if in.IsDefault {
		list := s.methods[userID]
		for i := range list {
			list[i].IsDefault = false
		}
	}

	method := contractx.PaymentMethod{
		ID:         s.newID(),
		UserID:     userID,
		Type:       in.Type,
		Label:      in.Label,
		CardToken:  in.CardToken,
		Brand:      in.Brand,
		LastDigits: in.LastDigits,
		Bank:       in.Bank,
		IsDefault:  in.IsDefault,
	}
	s.methods[userID] = append(s.methods[userID], method)

	clone := method
	return &clone, nil
}

func (s *MemoryStore) QuickCheckoutData(ctx context.Context, userID string) (*contractx.QuickCheckoutData, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", contractx.ErrValidation)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data := &contractx.QuickCheckoutData{}
	for i := range s.addresses[userID] {
		address := s.addresses[userID][i]
		if !address.IsDefault {
			continue
		}
		clone := address
		switch address.Category {
		case contractx.AddressShipping:
			data.ShippingAddress = &clone
		case contractx.AddressBilling:
			data.BillingAddress = &clone
		}
	}
	for i := range s.methods[userID] {
		method := s.methods[userID][i]
		if method.IsDefault {
			clone := method
			data.PaymentMethod = &clone
			break
		}
	}
	return data, nil
}

// RecordCheckout bumps the profile's checkout counters. Users without a
// profile row have nothing to increment and surface ErrProfileNotFound.
func (s *MemoryStore) RecordCheckout(ctx context.Context, userID string, amount int64) error {
	if amount < 0 {
		return fmt.Errorf("%w: checkout amount must not be negative", contractx.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	profile, ok := s.profiles[strings.TrimSpace(userID)]
	if !ok {
		return fmt.Errorf("%w: %s", contractx.ErrProfileNotFound, userID)
	}
	profile.CheckoutCount++
	profile.TotalSpent += amount
	return nil
}
