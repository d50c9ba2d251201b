package tool

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
)

/* ----- payment arguments ----- */

type CardPaymentArgs struct {
	CardToken string `json:"card_token"`
}

func (a *CardPaymentArgs) Validate() error {
	if strings.TrimSpace(a.CardToken) == "" {
		return fmt.Errorf("%w: card_token is required", contractx.ErrToolArguments)
	}
	return nil
}

type PromptPayArgs struct{}

func (a *PromptPayArgs) Validate() error { return nil }

type InternetBankingArgs struct {
	Bank string `json:"bank"`
}

func (a *InternetBankingArgs) Validate() error {
	bank := strings.ToLower(strings.TrimSpace(a.Bank))
	if bank == "" {
		return fmt.Errorf("%w: bank is required", contractx.ErrToolArguments)
	}
	if !slices.Contains(SupportedBanks, bank) {
		return fmt.Errorf("%w: unsupported bank %q, expected one of %s",
			contractx.ErrToolArguments, a.Bank, strings.Join(SupportedBanks, ", "))
	}
	a.Bank = bank
	return nil
}

type PaymentStatusArgs struct {
	ChargeID string `json:"charge_id"`
}

func (a *PaymentStatusArgs) Validate() error {
	if strings.TrimSpace(a.ChargeID) == "" {
		return fmt.Errorf("%w: charge_id is required", contractx.ErrToolArguments)
	}
	return nil
}

/* ----- product arguments ----- */

type SearchBySKUArgs struct {
	SKU string `json:"sku"`
}

func (a *SearchBySKUArgs) Validate() error {
	if strings.TrimSpace(a.SKU) == "" {
		return fmt.Errorf("%w: sku is required", contractx.ErrToolArguments)
	}
	return nil
}

type AddProductArgs struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (a *AddProductArgs) Validate() error {
	if strings.TrimSpace(a.ProductID) == "" {
		return fmt.Errorf("%w: product_id is required", contractx.ErrToolArguments)
	}
	if a.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", contractx.ErrToolArguments)
	}
	if a.Quantity == 0 {
		a.Quantity = 1
	}
	return nil
}

// UpdateCartItemArgs carries the new quantity as a pointer so that an
// omitted quantity is distinguishable from a meaningful zero.
type UpdateCartItemArgs struct {
	CartItemID string `json:"cart_item_id"`
	Quantity   *int   `json:"quantity"`
}

func (a *UpdateCartItemArgs) Validate() error {
	if strings.TrimSpace(a.CartItemID) == "" {
		return fmt.Errorf("%w: cart_item_id is required", contractx.ErrToolArguments)
	}
	if a.Quantity == nil {
		return fmt.Errorf("%w: quantity is required", contractx.ErrToolArguments)
	}
	if *a.Quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", contractx.ErrToolArguments)
	}
	return nil
}

type ListProductsArgs struct {
	Limit  int    `json:"limit"`
	Search string `json:"search"`
}

func (a *ListProductsArgs) Validate() error {
	if a.Limit < 0 {
		return fmt.Errorf("%w: limit must not be negative", contractx.ErrToolArguments)
	}
	if a.Limit == 0 {
		a.Limit = 10
	}
	return nil
}

/* ----- profile arguments ----- */

type AddressArgs struct {
	Name       string `json:"name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	IsDefault  bool   `json:"is_default"`
}

func (a *AddressArgs) Validate() error {
	for field, value := range map[string]string{
		"name":        a.Name,
		"line1":       a.Line1,
		"city":        a.City,
		"postal_code": a.PostalCode,
	} {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%w: %s is required", contractx.ErrToolArguments, field)
		}
	}
	if strings.TrimSpace(a.Country) == "" {
		a.Country = "TH"
	}
	return nil
}

func (a *AddressArgs) Input() contractx.AddressInput {
	return contractx.AddressInput{
		Name:       a.Name,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		Phone:      a.Phone,
		IsDefault:  a.IsDefault,
	}
}

// SavePaymentMethodArgs validates only the method type. Missing card tokens
// or bank codes are allowed here; an incomplete saved method surfaces later
// when quick checkout tries to use it.
type SavePaymentMethodArgs struct {
	Type      string `json:"type"`
	Label     string `json:"label"`
	CardToken string `json:"card_token"`
	Bank      string `json:"bank"`
	IsDefault bool   `json:"is_default"`
}

func (a *SavePaymentMethodArgs) Validate() error {
	t := contractx.PaymentMethodType(strings.ToLower(strings.TrimSpace(a.Type)))
	if !t.Valid() {
		return fmt.Errorf("%w: unknown payment method type %q", contractx.ErrToolArguments, a.Type)
	}
	a.Type = string(t)
	return nil
}

type QuickCheckoutDataArgs struct{}

func (a *QuickCheckoutDataArgs) Validate() error { return nil }

type ProcessQuickCheckoutArgs struct{}

func (a *ProcessQuickCheckoutArgs) Validate() error { return nil }

/* ----- decoding ----- */

type validator interface {
	Validate() error
}

// decodeArgs unmarshals raw tool arguments into T and validates them.
// Empty or absent argument payloads decode to the zero value, which each
// Validate decides to accept or reject.
func decodeArgs[T any, PT interface {
	*T
	validator
}](raw json.RawMessage) (*T, error) {
	args := new(T)
	trimmed := strings.TrimSpace(string(raw))
	if trimmed != "" && trimmed != "null" {
		if err := json.Unmarshal(raw, args); err != nil {
			return nil, fmt.Errorf("%w: %v", contractx.ErrToolArguments, err)
		}
	}
	if err := PT(args).Validate(); err != nil {
		return nil, err
	}
	return args, nil
}
