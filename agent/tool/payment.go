package tool

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
	statex "github.com/kittipatv/checkout-agent/agent/state"
	moneyx "github.com/kittipatv/checkout-agent/pkg/money"
)

// paymentFlows owns the gateway call sequencing for the payment tools and
// the mapping from charge status to session status.
type paymentFlows struct {
	gateway contractx.PaymentGateway
}

// guard rejects charging against a session that can no longer change state
// or that has nothing to charge. Both are conversational outcomes, not
// errors: the model relays the returned text to the customer.
func (f *paymentFlows) guard(session *statex.CheckoutSession) (string, bool) {
	if session.Status.Terminal() {
		return fmt.Sprintf("This checkout is already %s and cannot accept payments.", session.Status), false
	}
	if session.TotalAmount <= 0 {
		return "The cart total is 0.00, so there is nothing to charge. Add items to the cart first.", false
	}
	return "", true
}

func (f *paymentFlows) chargeCard(ctx context.Context, session *statex.CheckoutSession, raw json.RawMessage) (string, error) {
	args, err := decodeArgs[CardPaymentArgs](raw)
	if err != nil {
		return "", err
	}
	return f.chargeCardToken(ctx, session, args.CardToken)
}

// chargeCardToken charges the session total to a tokenized card and maps the
// settlement outcome onto the session. Shared by the card tool and quick
// checkout.
func (f *paymentFlows) chargeCardToken(ctx context.Context, session *statex.CheckoutSession, token string) (string, error) {
	if msg, ok := f.guard(session); !ok {
		return msg, nil
	}

	charge, err := f.gateway.CreateCharge(ctx, contractx.ChargeRequest{
		Amount:      session.TotalAmount,
		Currency:    session.Currency,
		CardToken:   token,
		Description: fmt.Sprintf("Checkout session %s", session.SessionID),
	})
	if err != nil {
		return "", fmt.Errorf("create card charge: %w", err)
	}

	amount := moneyx.FormatWithCurrency(charge.Amount, charge.Currency)
	switch {
	case charge.Paid || charge.Status == contractx.ChargeStatusSuccessful:
		if err := session.MarkCompleted(); err != nil {
			return "", fmt.Errorf("complete session after charge %s: %w", charge.ID, err)
		}
		return fmt.Sprintf("Payment of %s succeeded (charge %s). The order is complete.", amount, charge.ID), nil
	case charge.Status == contractx.ChargeStatusPending:
		if err := session.MarkPendingPayment(); err != nil {
			return "", fmt.Errorf("mark session pending after charge %s: %w", charge.ID, err)
		}
		msg := fmt.Sprintf("Payment of %s is pending (charge %s).", amount, charge.ID)
		if charge.AuthorizeURI != "" {
			msg += fmt.Sprintf(" The customer must authorize it at %s.", charge.AuthorizeURI)
		}
		return msg, nil
	default:
		reason := charge.FailureMessage
		if reason == "" {
			reason = charge.Status
		}
		return fmt.Sprintf("Payment failed: %s (charge %s). The checkout is still open, so another payment method can be tried.", reason, charge.ID), nil
	}
}

func (f *paymentFlows) chargePromptPay(ctx context.Context, session *statex.CheckoutSession, raw json.RawMessage) (string, error) {
	if _, err := decodeArgs[PromptPayArgs](raw); err != nil {
		return "", err
	}
	if msg, ok := f.guard(session); !ok {
		return msg, nil
	}
	return f.chargeSource(ctx, session, contractx.SourceTypePromptPay, "PromptPay")
}

func (f *paymentFlows) chargeInternetBanking(ctx context.Context, session *statex.CheckoutSession, raw json.RawMessage) (string, error) {
	args, err := decodeArgs[InternetBankingArgs](raw)
	if err != nil {
		return "", err
	}
	if msg, ok := f.guard(session); !ok {
		return msg, nil
	}
	sourceType := fmt.Sprintf(contractx.SourceTypeInternetBankingFmt, args.Bank)
	label := fmt.Sprintf("internet banking (%s)", strings.ToUpper(args.Bank))
	return f.chargeSource(ctx, session, sourceType, label)
}

// chargeSource creates an offline payment source, charges it, and moves the
// session to pending_payment. Source-based charges settle asynchronously, so
// the session goes pending as soon as the charge exists regardless of the
// status the gateway reports back.
func (f *paymentFlows) chargeSource(ctx context.Context, session *statex.CheckoutSession, sourceType, label string) (string, error) {
	source, err := f.gateway.CreateSource(ctx, contractx.SourceRequest{
		Type:     sourceType,
		Amount:   session.TotalAmount,
		Currency: session.Currency,
	})
	if err != nil {
		return "", fmt.Errorf("create %s source: %w", sourceType, err)
	}

	charge, err := f.gateway.CreateCharge(ctx, contractx.ChargeRequest{
		Amount:      session.TotalAmount,
		Currency:    session.Currency,
		SourceID:    source.ID,
		Description: fmt.Sprintf("Checkout session %s", session.SessionID),
	})
	if err != nil {
		return "", fmt.Errorf("charge %s source: %w", sourceType, err)
	}

	if err := session.MarkPendingPayment(); err != nil {
		return "", fmt.Errorf("mark session pending after charge %s: %w", charge.ID, err)
	}

	amount := moneyx.FormatWithCurrency(charge.Amount, charge.Currency)
	msg := fmt.Sprintf("Created a %s payment of %s (charge %s).", label, amount, charge.ID)
	switch {
	case charge.Source != nil && charge.Source.ScannableCode != "":
		msg += fmt.Sprintf(" Ask the customer to scan the QR code at %s.", charge.Source.ScannableCode)
	case charge.AuthorizeURI != "":
		msg += fmt.Sprintf(" Send the customer to %s to authorize it.", charge.AuthorizeURI)
	}
	msg += " The checkout is now waiting for the payment to settle."
	return msg, nil
}

func (f *paymentFlows) checkStatus(ctx context.Context, session *statex.CheckoutSession, raw json.RawMessage) (string, error) {
	args, err := decodeArgs[PaymentStatusArgs](raw)
	if err != nil {
		return "", err
	}

	charge, err := f.gateway.GetCharge(ctx, args.ChargeID)
	if err != nil {
		if errors.Is(err, contractx.ErrChargeNotFound) {
			return fmt.Sprintf("Couldn't find a charge with id %s. Check the id and try again.", args.ChargeID), nil
		}
		return "", fmt.Errorf("get charge %s: %w", args.ChargeID, err)
	}

	amount := moneyx.FormatWithCurrency(charge.Amount, charge.Currency)
	switch {
	case charge.Paid || charge.Status == contractx.ChargeStatusSuccessful:
		return fmt.Sprintf("Charge %s for %s is paid.", charge.ID, amount), nil
	case charge.Status == contractx.ChargeStatusPending:
		return fmt.Sprintf("Charge %s for %s is still pending. The customer has not completed the payment yet.", charge.ID, amount), nil
	default:
		reason := charge.FailureMessage
		if reason == "" {
			reason = charge.Status
		}
		log.Debug().Str("charge_id", charge.ID).Str("status", charge.Status).Msg("charge in failed state")
		return fmt.Sprintf("Charge %s for %s did not go through: %s.", charge.ID, amount, reason), nil
	}
}
