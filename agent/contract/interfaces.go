package contract

import "context"

// PaymentGateway is the charge/source/token surface the checkout agent
// drives. Implementations model one gateway request as atomic; the agent
// never retries on their behalf.
type PaymentGateway interface {
	CreateCharge(ctx context.Context, req ChargeRequest) (*Charge, error)
	CreateSource(ctx context.Context, req SourceRequest) (*Source, error)
	GetCharge(ctx context.Context, chargeID string) (*Charge, error)
	ListCharges(ctx context.Context, limit, offset int) ([]Charge, error)
	CreateRefund(ctx context.Context, chargeID string, amount int64) (*Refund, error)
	GetToken(ctx context.Context, tokenID string) (*CardToken, error)
	Capabilities(ctx context.Context) (*GatewayCapabilities, error)
}

// Platform is the product surface of the active store integration.
// SearchBySKU returns (nil, nil) on a clean miss.
type Platform interface {
	SearchBySKU(ctx context.Context, sku string) (*Product, error)
	GetProduct(ctx context.Context, productID string) (*Product, error)
	ListProducts(ctx context.Context, limit int, search string) ([]Product, error)
}

// ProfileStore persists user profiles, addresses, and payment methods.
// Adding an entity with IsDefault set clears the previous default within the
// same category; at most one default exists per category per user.
type ProfileStore interface {
	CreateProfile(ctx context.Context, in ProfileInput) (*Profile, error)
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	ListAddresses(ctx context.Context, userID string) ([]Address, error)
	AddShippingAddress(ctx context.Context, userID string, in AddressInput) (*Address, error)
	AddBillingAddress(ctx context.Context, userID string, in AddressInput) (*Address, error)
	ListPaymentMethods(ctx context.Context, userID string) ([]PaymentMethod, error)
	AddPaymentMethod(ctx context.Context, userID string, in PaymentMethodInput) (*PaymentMethod, error)
	QuickCheckoutData(ctx context.Context, userID string) (*QuickCheckoutData, error)
	RecordCheckout(ctx context.Context, userID string, amount int64) error
}

// Events delivers best-effort notifications; delivery failures must not fail
// the checkout turn that produced them.
type Events interface {
	Publish(ctx context.Context, topic string, payload any) error
}
