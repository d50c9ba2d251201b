package contract

import (
	"encoding/json"
	"strings"
	"time"
)

// ToolCallRequest is one structured tool invocation emitted by the model.
// Arguments stay raw until the tool layer decodes them against the tool's
// declared schema.
type ToolCallRequest struct {
	ID        string          `json:"id,omitempty"`
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolCallResult is the text outcome folded back into the assistant reply.
type ToolCallResult struct {
	Name   string `json:"name"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

/* ------------------------------ Payment gateway ----------------------------- */

// Charge statuses as reported by the gateway.
const (
	ChargeStatusPending    = "pending"
	ChargeStatusSuccessful = "successful"
	ChargeStatusFailed     = "failed"
	ChargeStatusExpired    = "expired"
	ChargeStatusReversed   = "reversed"
)

// Source types understood by the gateway. Internet banking types carry a
// bank suffix, e.g. internet_banking_bbl.
const (
	SourceTypePromptPay          = "promptpay"
	SourceTypeInternetBankingFmt = "internet_banking_%s"
)

type ChargeRequest struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	CardToken   string            `json:"card,omitempty"`
	SourceID    string            `json:"source,omitempty"`
	Description string            `json:"description,omitempty"`
	ReturnURI   string            `json:"return_uri,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

type Charge struct {
	ID             string    `json:"id"`
	Status         string    `json:"status"`
	Amount         int64     `json:"amount"`
	Currency       string    `json:"currency"`
	Paid           bool      `json:"paid"`
	AuthorizeURI   string    `json:"authorize_uri,omitempty"`
	FailureCode    string    `json:"failure_code,omitempty"`
	FailureMessage string    `json:"failure_message,omitempty"`
	Source         *Source   `json:"source,omitempty"`
	RefundedAmount int64     `json:"refunded_amount,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type SourceRequest struct {
	Type     string `json:"type"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Source is a gateway-side alternative payment instance. Offline flows carry
// a scannable QR reference; redirect flows get their URI on the charge.
type Source struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	Flow          string `json:"flow,omitempty"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	ScannableCode string `json:"scannable_code,omitempty"`
}

type Refund struct {
	ID        string    `json:"id"`
	ChargeID  string    `json:"charge_id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// CardToken is the dereferenced view of a tokenized card. The raw number
// never crosses this boundary.
type CardToken struct {
	ID         string `json:"id"`
	Brand      string `json:"brand,omitempty"`
	LastDigits string `json:"last_digits,omitempty"`
	ExpMonth   int    `json:"exp_month,omitempty"`
	ExpYear    int    `json:"exp_year,omitempty"`
	Used       bool   `json:"used,omitempty"`
}

type GatewayCapabilities struct {
	Currencies     []string `json:"currencies,omitempty"`
	PaymentMethods []string `json:"payment_methods,omitempty"`
}

/* ----------------------------- Platform products ---------------------------- */

type Product struct {
	ID          string `json:"id"`
	SKU         string `json:"sku,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Price       int64  `json:"price"`
	Currency    string `json:"currency,omitempty"`
	InStock     bool   `json:"in_stock"`
}

/* ------------------------------ User profiles ------------------------------ */

type Profile struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	CheckoutCount int64     `json:"checkout_count"`
	TotalSpent    int64     `json:"total_spent"`
	CreatedAt     time.Time `json:"created_at"`
}

type ProfileInput struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type AddressCategory string

const (
	AddressShipping AddressCategory = "shipping"
	AddressBilling  AddressCategory = "billing"
)

type Address struct {
	ID         string          `json:"id"`
	UserID     string          `json:"user_id"`
	Category   AddressCategory `json:"category"`
	Name       string          `json:"name"`
	Line1      string          `json:"line1"`
	Line2      string          `json:"line2,omitempty"`
	City       string          `json:"city"`
	State      string          `json:"state,omitempty"`
	PostalCode string          `json:"postal_code"`
	Country    string          `json:"country,omitempty"`
	Phone      string          `json:"phone,omitempty"`
	IsDefault  bool            `json:"is_default"`
}

type AddressInput struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country,omitempty"`
	Phone      string `json:"phone,omitempty"`
	IsDefault  bool   `json:"is_default,omitempty"`
}

type PaymentMethodType string

const (
	PaymentMethodCard            PaymentMethodType = "card"
	PaymentMethodPromptPay       PaymentMethodType = "promptpay"
	PaymentMethodInternetBanking PaymentMethodType = "internet_banking"
	PaymentMethodMobileBanking   PaymentMethodType = "mobile_banking"
)

func (t PaymentMethodType) Valid() bool {
	switch t {
	case PaymentMethodCard, PaymentMethodPromptPay, PaymentMethodInternetBanking, PaymentMethodMobileBanking:
		return true
	}
	return false
}

type PaymentMethod struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	Type       PaymentMethodType `json:"type"`
	Label      string            `json:"label,omitempty"`
	CardToken  string            `json:"card_token,omitempty"`
	Brand      string            `json:"brand,omitempty"`
	LastDigits string            `json:"last_digits,omitempty"`
	Bank       string            `json:"bank,omitempty"`
	IsDefault  bool              `json:"is_default"`
}

func (m *PaymentMethod) DisplayName() string {
	if m == nil {
		return ""
	}
	if strings.TrimSpace(m.Label) != "" {
		return m.Label
	}
	switch m.Type {
	case PaymentMethodCard:
		if m.Brand != "" && m.LastDigits != "" {
			return m.Brand + " ending " + m.LastDigits
		}
		return "card"
	case PaymentMethodInternetBanking, PaymentMethodMobileBanking:
		if m.Bank != "" {
			return string(m.Type) + " (" + m.Bank + ")"
		}
	}
	return string(m.Type)
}

type PaymentMethodInput struct {
	Type       PaymentMethodType `json:"type"`
	Label      string            `json:"label,omitempty"`
	CardToken  string            `json:"card_token,omitempty"`
	Brand      string            `json:"brand,omitempty"`
	LastDigits string            `json:"last_digits,omitempty"`
	Bank       string            `json:"bank,omitempty"`
	IsDefault  bool              `json:"is_default,omitempty"`
}

// QuickCheckoutData aggregates the per-category defaults. Missing pieces are
// nil, never zero structs.
type QuickCheckoutData struct {
	ShippingAddress *Address       `json:"shipping_address,omitempty"`
	BillingAddress  *Address       `json:"billing_address,omitempty"`
	PaymentMethod   *PaymentMethod `json:"payment_method,omitempty"`
}

/* --------------------------------- Events ---------------------------------- */

type CheckoutCompletedEvent struct {
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id,omitempty"`
	Amount      int64     `json:"amount"`
	Currency    string    `json:"currency"`
	CompletedAt time.Time `json:"completed_at"`
}
