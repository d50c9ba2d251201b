package state

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultCurrency is applied when session creation omits a currency code.
const DefaultCurrency = "thb"

// Status is the checkout lifecycle position.
// active -> pending_payment -> completed | cancelled, with active -> completed
// allowed for synchronous card success. Terminal states stay terminal; a new
// purchase needs a new session.
type Status string

const (
	StatusActive         Status = "active"
	StatusPendingPayment Status = "pending_payment"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) known() bool {
	switch s {
	case StatusActive, StatusPendingPayment, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CartItem is one cart line. Price is in integer minor currency units.
type CartItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	Quantity    int    `json:"quantity"`
}

func (i CartItem) Subtotal() int64 {
	return i.Price * int64(i.Quantity)
}

// CheckoutSession is the per-checkout source of truth: cart, derived total,
// conversation transcript, and payment status.
// TotalAmount is never set directly; it is recomputed from the cart's integer
// values on every mutation. Conversation only grows by append.
type CheckoutSession struct {
	SessionID string `json:"session_id"`
	UserID    string `json:"user_id,omitempty"`

	Cart        []CartItem `json:"cart"`
	TotalAmount int64      `json:"total_amount"`
	Currency    string     `json:"currency"`

	Conversation []Message `json:"conversation,omitempty"`
	Status       Status    `json:"status"`

	ShippingAddressID string `json:"shipping_address_id,omitempty"`
	BillingAddressID  string `json:"billing_address_id,omitempty"`
	PaymentMethodID   string `json:"payment_method_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

var (
	ErrInvalidCart       = errors.New("cart is invalid")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidRole       = errors.New("message role is invalid")
)

func NewCheckoutSession(sessionID string, cart []CartItem, currency, userID string, now time.Time) (*CheckoutSession, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidSession
	}
	if err := ValidateCart(cart); err != nil {
		return nil, err
	}

	code := strings.ToLower(strings.TrimSpace(currency))
	if code == "" {
		code = DefaultCurrency
	}

	s := &CheckoutSession{
		SessionID: strings.TrimSpace(sessionID),
		UserID:    strings.TrimSpace(userID),
		Cart:      append([]CartItem(nil), cart...),
		Currency:  code,
		Status:    StatusActive,
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
	}
	s.RecalculateTotal()
	return s, nil
}

// ValidateCart enforces the creation-time cart rules: non-empty, positive
// quantities, non-negative prices.
func ValidateCart(cart []CartItem) error {
	if len(cart) == 0 {
		return fmt.Errorf("%w: cart is empty", ErrInvalidCart)
	}
	for i, item := range cart {
		if strings.TrimSpace(item.Name) == "" {
			return fmt.Errorf("%w: item %d has no name", ErrInvalidCart, i)
		}
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %q has non-positive quantity", ErrInvalidCart, item.Name)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: item %q has negative price", ErrInvalidCart, item.Name)
		}
	}
	return nil
}

/* ------------------------------ Cart helpers ------------------------------ */

// RecalculateTotal recomputes TotalAmount from the cart's integer source
// values. Idempotent.
func (s *CheckoutSession) RecalculateTotal() {
	var total int64
	for _, item := range s.Cart {
		total += item.Subtotal()
	}
	s.TotalAmount = total
}

// AddItem appends a cart line and recomputes the total.
func (s *CheckoutSession) AddItem(item CartItem) {
	s.Cart = append(s.Cart, item)
	s.RecalculateTotal()
}

// UpdateItemQuantity sets the quantity of the identified line; zero removes
// exactly that line. Reports whether the line existed; unknown ids mutate
// nothing.
func (s *CheckoutSession) UpdateItemQuantity(cartItemID string, quantity int) bool {
	for i := range s.Cart {
		if s.Cart[i].ID != cartItemID {
			continue
		}
		if quantity == 0 {
			s.Cart = append(s.Cart[:i], s.Cart[i+1:]...)
		} else {
			s.Cart[i].Quantity = quantity
		}
		s.RecalculateTotal()
		return true
	}
	return false
}

/* --------------------------- Conversation helpers ------------------------- */

// AppendMessage grows the transcript. Existing entries are never rewritten.
func (s *CheckoutSession) AppendMessage(role, content string) error {
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	s.Conversation = append(s.Conversation, Message{Role: role, Content: content})
	return nil
}

/* ----------------------------- Status machine ----------------------------- */

// MarkPendingPayment moves an open session to pending_payment. Already
// pending is a no-op; terminal states refuse.
func (s *CheckoutSession) MarkPendingPayment() error {
	return s.transition(StatusPendingPayment)
}

// MarkCompleted settles the session from active or pending_payment.
func (s *CheckoutSession) MarkCompleted() error {
	return s.transition(StatusCompleted)
}

// MarkCancelled abandons the session from active or pending_payment.
func (s *CheckoutSession) MarkCancelled() error {
	return s.transition(StatusCancelled)
}

func (s *CheckoutSession) transition(next Status) error {
	switch s.Status {
	case StatusActive, StatusPendingPayment:
		s.Status = next
		return nil
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, next)
}

func (s *CheckoutSession) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

/* --------------------------------- Misc ----------------------------------- */

// Clone deep-copies the session so store callers never alias each other's
// cart or transcript slices.
func (s *CheckoutSession) Clone() *CheckoutSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Cart = append([]CartItem(nil), s.Cart...)
	out.Conversation = append([]Message(nil), s.Conversation...)
	return &out
}

// Validate checks structural invariants. The cart may be empty here: line
// removal after creation can legitimately drain it.
func (s *CheckoutSession) Validate() error {
	if s == nil {
		return ErrNilSession
	}
	if strings.TrimSpace(s.SessionID) == "" {
		return ErrInvalidSession
	}
	if !s.Status.known() {
		return fmt.Errorf("unknown status %q", s.Status)
	}
	if strings.TrimSpace(s.Currency) == "" {
		return errors.New("currency is empty")
	}
	var total int64
	for _, item := range s.Cart {
		if item.Quantity <= 0 {
			return fmt.Errorf("%w: item %q has non-positive quantity", ErrInvalidCart, item.Name)
		}
		if item.Price < 0 {
			return fmt.Errorf("%w: item %q has negative price", ErrInvalidCart, item.Name)
		}
		total += item.Subtotal()
	}
	if total != s.TotalAmount {
		return fmt.Errorf("total_amount=%d drifted from cart sum=%d", s.TotalAmount, total)
	}
	for i, msg := range s.Conversation {
		if msg.Role != RoleUser && msg.Role != RoleAssistant {
			return fmt.Errorf("%w: message %d role=%q", ErrInvalidRole, i, msg.Role)
		}
	}
	return nil
}
