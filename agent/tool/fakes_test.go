package tool

import (
	"context"
	"fmt"
	"testing"
	"time"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
	statex "github.com/kittipatv/checkout-agent/agent/state"
)

/* ----- session helpers ----- */

func newTestSession(t *testing.T) *statex.CheckoutSession {
	t.Helper()
	session, err := statex.NewCheckoutSession("sess-1", []statex.CartItem{
		{ID: "1", Name: "Widget", Price: 100000, Quantity: 1},
	}, "thb", "user-1", time.Unix(1700000000, 0))
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return session
}

/* ----- payment gateway fake ----- */

type fakeGateway struct {
	chargeStatus   string
	chargePaid     bool
	authorizeURI   string
	failureMessage string
	scannableCode  string
	chargeErr      error
	sourceErr      error

	storedCharge *contractx.Charge
	getChargeErr error
	token        *contractx.CardToken
	tokenErr     error

	chargeReqs []contractx.ChargeRequest
	sourceReqs []contractx.SourceRequest
}

func (g *fakeGateway) CreateCharge(ctx context.Context, req contractx.ChargeRequest) (*contractx.Charge, error) {
	g.chargeReqs = append(g.chargeReqs, req)
	if g.chargeErr != nil {
		return nil, g.chargeErr
	}
	charge := &contractx.Charge{
		ID:             fmt.Sprintf("chrg_%d", len(g.chargeReqs)),
		Status:         g.chargeStatus,
		Amount:         req.Amount,
		Currency:       req.Currency,
		Paid:           g.chargePaid,
		AuthorizeURI:   g.authorizeURI,
		FailureMessage: g.failureMessage,
	}
	if req.SourceID != "" {
		charge.Source = &contractx.Source{ID: req.SourceID, ScannableCode: g.scannableCode}
	}
	return charge, nil
}

func (g *fakeGateway) CreateSource(ctx context.Context, req contractx.SourceRequest) (*contractx.Source, error) {
	g.sourceReqs = append(g.sourceReqs, req)
	if g.sourceErr != nil {
		return nil, g.sourceErr
	}
	return &contractx.Source{
		ID:            fmt.Sprintf("src_%d", len(g.sourceReqs)),
		Type:          req.Type,
		Amount:        req.Amount,
		Currency:      req.Currency,
		ScannableCode: g.scannableCode,
	}, nil
}

func (g *fakeGateway) GetCharge(ctx context.Context, chargeID string) (*contractx.Charge, error) {
	if g.getChargeErr != nil {
		return nil, g.getChargeErr
	}
	if g.storedCharge == nil {
		return nil, contractx.ErrChargeNotFound
	}
	return g.storedCharge, nil
}

func (g *fakeGateway) ListCharges(ctx context.Context, limit, offset int) ([]contractx.Charge, error) {
	return nil, nil
}

func (g *fakeGateway) CreateRefund(ctx context.Context, chargeID string, amount int64) (*contractx.Refund, error) {
	return &contractx.Refund{ID: "rfnd_1", ChargeID: chargeID, Amount: amount}, nil
}

func (g *fakeGateway) GetToken(ctx context.Context, tokenID string) (*contractx.CardToken, error) {
	if g.tokenErr != nil {
		return nil, g.tokenErr
	}
	if g.token != nil {
		return g.token, nil
	}
	return &contractx.CardToken{ID: tokenID}, nil
}

func (g *fakeGateway) Capabilities(ctx context.Context) (*contractx.GatewayCapabilities, error) {
	return &contractx.GatewayCapabilities{Currencies: []string{"thb"}}, nil
}

/* ----- platform fake ----- */

type fakePlatform struct {
	products map[string]*contractx.Product
	bySKU    map[string]*contractx.Product
	listed   []contractx.Product
	listErr  error
}

func (p *fakePlatform) SearchBySKU(ctx context.Context, sku string) (*contractx.Product, error) {
	return p.bySKU[sku], nil
}

func (p *fakePlatform) GetProduct(ctx context.Context, productID string) (*contractx.Product, error) {
	product, ok := p.products[productID]
	if !ok {
		return nil, contractx.ErrProductNotFound
	}
	return product, nil
}

func (p *fakePlatform) ListProducts(ctx context.Context, limit int, search string) ([]contractx.Product, error) {
	if p.listErr != nil {
		return nil, p.listErr
	}
	if limit < len(p.listed) {
		return p.listed[:limit], nil
	}
	return p.listed, nil
}

/* ----- profile store fake ----- */

type fakeProfile struct {
	addresses  []contractx.Address
	methods    []contractx.PaymentMethod
	quick      *contractx.QuickCheckoutData
	quickErr   error
	addErr     error
	recorded   []int64
	recordErr  error
	nextID     int
	lastMethod *contractx.PaymentMethodInput
}

func (p *fakeProfile) CreateProfile(ctx context.Context, in contractx.ProfileInput) (*contractx.Profile, error) {
	return &contractx.Profile{ID: "user-1", Name: in.Name}, nil
}

func (p *fakeProfile) GetProfile(ctx context.Context, userID string) (*contractx.Profile, error) {
	return &contractx.Profile{ID: userID}, nil
}

func (p *fakeProfile) ListAddresses(ctx context.Context, userID string) ([]contractx.Address, error) {
	return p.addresses, nil
}

func (p *fakeProfile) AddShippingAddress(ctx context.Context, userID string, in contractx.AddressInput) (*contractx.Address, error) {
	return p.addAddress(userID, contractx.AddressShipping, in)
}

func (p *fakeProfile) AddBillingAddress(ctx context.Context, userID string, in contractx.AddressInput) (*contractx.Address, error) {
	return p.addAddress(userID, contractx.AddressBilling, in)
}

func (p *fakeProfile) addAddress(userID string, category contractx.AddressCategory, in contractx.AddressInput) (*contractx.Address, error) {
	if p.addErr != nil {
		return nil, p.addErr
	}
	p.nextID++
	address := contractx.Address{
		ID:         fmt.Sprintf("addr_%d", p.nextID),
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
	p.addresses = append(p.addresses, address)
	return &address, nil
}

func (p *fakeProfile) ListPaymentMethods(ctx context.Context, userID string) ([]contractx.PaymentMethod, error) {
	return p.methods, nil
}

func (p *fakeProfile) AddPaymentMethod(ctx context.Context, userID string, in contractx.PaymentMethodInput) (*contractx.PaymentMethod, error) {
	if p.addErr != nil {
		return nil, p.addErr
	}
	p.lastMethod = &in
	p.nextID++
	method := contractx.PaymentMethod{
		ID:         fmt.Sprintf("pm_%d", p.nextID),
		UserID:     userID,
		Type:       in.Type,
		Label:      in.Label,
		CardToken:  in.CardToken,
		Brand:      in.Brand,
		LastDigits: in.LastDigits,
		Bank:       in.Bank,
		IsDefault:  in.IsDefault,
	}
	p.methods = append(p.methods, method)
	return &method, nil
}

func (p *fakeProfile) QuickCheckoutData(ctx context.Context, userID string) (*contractx.QuickCheckoutData, error) {
	if p.quickErr != nil {
		return nil, p.quickErr
	}
	if p.quick != nil {
		return p.quick, nil
	}
	return &contractx.QuickCheckoutData{}, nil
}

func (p *fakeProfile) RecordCheckout(ctx context.Context, userID string, amount int64) error {
	if p.recordErr != nil {
		return p.recordErr
	}
	p.recorded = append(p.recorded, amount)
	return nil
}
