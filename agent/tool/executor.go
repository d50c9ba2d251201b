package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
	statex "github.com/kittipatv/checkout-agent/agent/state"
)

// Deps are the external capabilities the tools run against. Gateway is
// required; Platform and Profile are optional and gate their tool families.
type Deps struct {
	Gateway  contractx.PaymentGateway
	Platform contractx.Platform
	Profile  contractx.ProfileStore
}

type handler func(ctx context.Context, session *statex.CheckoutSession, raw json.RawMessage) (string, error)

// Executor dispatches model tool calls to their handlers. Every tool name is
// always dispatchable; handlers for unconfigured capabilities answer with
// explanatory text rather than failing, so the model can tell the customer
// what is missing.
type Executor struct {
	handlers map[string]handler
	caps     Capabilities
}

func NewExecutor(deps Deps) (*Executor, error) {
	if deps.Gateway == nil {
		return nil, errors.New("tool executor requires a payment gateway")
	}

	payments := &paymentFlows{gateway: deps.Gateway}
	products := &productFlows{platform: deps.Platform}
	profiles := &profileFlows{profile: deps.Profile, payments: payments}

	return &Executor{
		caps: Capabilities{
			Platform: deps.Platform != nil,
			Profile:  deps.Profile != nil,
		},
		handlers: map[string]handler{
			ToolProcessCardPayment:           payments.chargeCard,
			ToolCreatePromptPayPayment:       payments.chargePromptPay,
			ToolCreateInternetBankingPayment: payments.chargeInternetBanking,
			ToolCheckPaymentStatus:           payments.checkStatus,

			ToolSearchProductBySKU: products.searchBySKU,
			ToolAddProductToCart:   products.addToCart,
			ToolUpdateCartItem:     products.updateCartItem,
			ToolListProducts:       products.listProducts,

			ToolSaveShippingAddress:  profiles.saveShippingAddress,
			ToolSaveBillingAddress:   profiles.saveBillingAddress,
			ToolGetSavedAddresses:    profiles.getSavedAddresses,
			ToolSavePaymentMethod:    profiles.savePaymentMethod,
			ToolGetQuickCheckoutData: profiles.getQuickCheckoutData,
			ToolProcessQuickCheckout: profiles.processQuickCheckout,
		},
	}, nil
}

// Capabilities reports which optional tool families this executor serves.
func (e *Executor) Capabilities() Capabilities { return e.caps }

// Infos lists the tool schemas to advertise to the model.
func (e *Executor) Infos() []*schema.ToolInfo { return Infos(e.caps) }

// Execute runs one tool call against the session. The session is mutated in
// place; the caller decides when to persist it. Errors wrapping
// ErrToolArguments mean the model supplied unusable input.
func (e *Executor) Execute(ctx context.Context, session *statex.CheckoutSession, call contractx.ToolCallRequest) (string, error) {
	h, ok := e.handlers[call.Name]
	if !ok {
		toolExecutions.WithLabelValues(call.Name, outcomeError).Inc()
		return "", fmt.Errorf("unknown tool %q", call.Name)
	}

	log.Info().Str("tool", call.Name).Str("session_id", session.SessionID).Msg("executing tool")
	result, err := h(ctx, session, call.Arguments)
	if err != nil {
		toolExecutions.WithLabelValues(call.Name, outcomeError).Inc()
		log.Warn().Err(err).Str("tool", call.Name).Str("session_id", session.SessionID).Msg("tool execution failed")
		return "", err
	}
	toolExecutions.WithLabelValues(call.Name, outcomeOK).Inc()
	return result, nil
}
