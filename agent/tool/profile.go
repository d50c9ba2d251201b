package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
	statex "github.com/kittipatv/checkout-agent/agent/state"
)

const profileUnavailable = "Customer profiles are not configured for this store, so addresses and payment methods can't be saved."

// profileFlows backs the profile tools. Quick checkout additionally drives
// the payment flows with the customer's saved default method.
type profileFlows struct {
	profile  contractx.ProfileStore
	payments *paymentFlows
}

// requireProfile reports whether the profile tools can run for this session.
// Both misses are conversational outcomes the model relays, not errors.
func (f *profileFlows) requireProfile(session *statex.CheckoutSession) (string, bool) {
	if f.profile == nil {
		return profileUnavailable, false
	}
	if session.UserID == "" {
		return "This checkout session has no customer linked to it, so there is no profile to use. Start a session with a customer id to save details.", false
	}
	return "", true
}

func (f *profileFlows) saveShippingAddress(ctx context.Context, session *statex.CheckoutSession, raw json.RawMessage) (string, error) {
	return f.saveAddress(ctx, session, raw, contractx.AddressShipping)
}

func (f *profileFlows) saveBillingAddress(ctx context.Context, session *statex.CheckoutSession, raw json.RawMessage) (string, error) {
	return f.saveAddress(ctx, session, raw, contractx.AddressBilling)
}

func (f *profileFlows) saveAddress(ctx context.Context, session *statex.CheckoutSession, raw json.RawMessage, category contractx.AddressCategory) (string, error) {
	args, err := decodeArgs[AddressArgs](raw)
	if err != nil {
		return "", err
	}
	if msg, ok := f.requireProfile(session); !ok {
		return msg, nil
	}

	var address *contractx.Address
	switch category {
	case contractx.AddressShipping:
		address, err = f.profile.AddShippingAddress(ctx, session.UserID, args.Input())
	default:
		address, err = f.profile.AddBillingAddress(ctx, session.UserID, args.Input())
	}
	if err != nil {
		return "", fmt.Errorf("save %s address: %w", category, err)
	}

	switch category {
	case contractx.AddressShipping:
		session.ShippingAddressID = address.ID
	default:
		session.BillingAddressID = address.ID
	}

	msg := fmt.Sprintf("Saved the %s address for %s in %s (id %s).", category, address.Name, address.City, address.ID)
	if address.IsDefault {
		msg += fmt.Sprintf(" It is now the default %s address.", category)
	}
	return msg, nil
}

func (f *profileFlows) getSavedAddresses(ctx context.Context, session *statex.CheckoutSession, raw json.RawMessage) (string, error) {
	if _, err := decodeArgs[QuickCheckoutDataArgs](raw); err != nil {
		return "", err
	}
	if msg, ok := f.requireProfile(session); !ok {
		return msg, nil
	}

	addresses, err := f.profile.ListAddresses(ctx, session.UserID)
	if err != nil {
		return "", fmt.Errorf("list addresses: %w", err)
	}
	if len(addresses) == 0 {
		return "The customer has no saved addresses yet.", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "The customer has %d saved address(es):\n", len(addresses))
	for i := range addresses {
		b.WriteString(describeAddress(&addresses[i]))
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (f *profileFlows) savePaymentMethod(ctx context.Context, session *statex.CheckoutSession, raw json.RawMessage) (string, error) {
	args, err := decodeArgs[SavePaymentMethodArgs](raw)
	if err != nil {
		return "", err
	}
	if msg, ok := f.requireProfile(session); !ok {
		return msg, nil
	}

	input := contractx.PaymentMethodInput{
		Type:      contractx.PaymentMethodType(args.Type),
		Label:     args.Label,
		CardToken: args.CardToken,
		Bank:      strings.ToLower(args.Bank),
		IsDefault: args.IsDefault,
	}

	// Card methods get brand and last digits from the gateway token so the
	// saved method is recognizable later. A lookup failure only loses the
	// cosmetic fields, not the save.
	if input.Type == contractx.PaymentMethodCard && input.CardToken != "" && f.payments != nil {
		token, err := f.payments.gateway.GetToken(ctx, input.CardToken)
		if err != nil {
			log.Warn().Err(err).Str("user_id", session.UserID).Msg("card token lookup failed, saving method without card details")
		} else {
			input.Brand = token.Brand
			input.LastDigits = token.LastDigits
		}
	}

	method, err := f.profile.AddPaymentMethod(ctx, session.UserID, input)
	if err != nil {
		return "", fmt.Errorf("save payment method: %w", err)
	}
	session.PaymentMethodID = method.ID

	msg := fmt.Sprintf("Saved %s as a payment method (id %s).", method.DisplayName(), method.ID)
	if method.IsDefault {
		msg += " It is now the default."
	}
	return msg, nil
}

func (f *profileFlows) getQuickCheckoutData(ctx context.Context, session *statex.CheckoutSession, raw json.RawMessage) (string, error) {
	if _, err := decodeArgs[QuickCheckoutDataArgs](raw); err != nil {
		return "", err
	}
	if msg, ok := f.requireProfile(session); !ok {
		return msg, nil
	}

	data, err := f.profile.QuickCheckoutData(ctx, session.UserID)
	if err != nil {
		return "", fmt.Errorf("quick checkout data: %w", err)
	}

	var b strings.Builder
	b.WriteString("Quick checkout defaults:\n")
	if data.ShippingAddress != nil {
		b.WriteString("- Shipping: " + describeAddress(data.ShippingAddress) + "\n")
	} else {
		b.WriteString("- Shipping: no default shipping address saved.\n")
	}
	if data.BillingAddress != nil {
		b.WriteString("- Billing: " + describeAddress(data.BillingAddress) + "\n")
	} else {
		b.WriteString("- Billing: no default billing address saved.\n")
	}
	if data.PaymentMethod != nil {
		b.WriteString("- Payment: " + data.PaymentMethod.DisplayName() + "\n")
	} else {
		b.WriteString("- Payment: no default payment method saved.\n")
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (f *profileFlows) processQuickCheckout(ctx context.Context, session *statex.CheckoutSession, raw json.RawMessage) (string, error) {
	if _, err := decodeArgs[ProcessQuickCheckoutArgs](raw); err != nil {
		return "", err
	}
	if msg, ok := f.requireProfile(session); !ok {
		return msg, nil
	}

	data, err := f.profile.QuickCheckoutData(ctx, session.UserID)
	if err != nil {
		return "", fmt.Errorf("quick checkout data: %w", err)
	}
	method := data.PaymentMethod
	if method == nil {
		return "Quick checkout needs a saved default payment method, and the customer has none. Save a payment method first.", nil
	}
	session.PaymentMethodID = method.ID
	if data.ShippingAddress != nil {
		session.ShippingAddressID = data.ShippingAddress.ID
	}
	if data.BillingAddress != nil {
		session.BillingAddressID = data.BillingAddress.ID
	}

	result, err := f.payWithMethod(ctx, session, method)
	if err != nil {
		return "", err
	}

	if session.Status == statex.StatusCompleted {
		if err := f.profile.RecordCheckout(ctx, session.UserID, session.TotalAmount); err != nil {
			log.Warn().Err(err).Str("user_id", session.UserID).Msg("recording completed checkout on profile failed")
		}
	}
	return result, nil
}

func (f *profileFlows) payWithMethod(ctx context.Context, session *statex.CheckoutSession, method *contractx.PaymentMethod) (string, error) {
	switch method.Type {
	case contractx.PaymentMethodCard:
		if method.CardToken == "" {
			return fmt.Sprintf("The default payment method %s has no card token stored, so it can't be charged. Save the card again.", method.DisplayName()), nil
		}
		return f.payments.chargeCardToken(ctx, session, method.CardToken)
	case contractx.PaymentMethodPromptPay:
		if msg, ok := f.payments.guard(session); !ok {
			return msg, nil
		}
		return f.payments.chargeSource(ctx, session, contractx.SourceTypePromptPay, "PromptPay")
	case contractx.PaymentMethodInternetBanking:
		if method.Bank == "" {
			return fmt.Sprintf("The default payment method %s has no bank stored, so it can't be charged. Save the method again with a bank.", method.DisplayName()), nil
		}
		if msg, ok := f.payments.guard(session); !ok {
			return msg, nil
		}
		sourceType := fmt.Sprintf(contractx.SourceTypeInternetBankingFmt, method.Bank)
		label := fmt.Sprintf("internet banking (%s)", strings.ToUpper(method.Bank))
		return f.payments.chargeSource(ctx, session, sourceType, label)
	default:
		return fmt.Sprintf("The default payment method is %s, which can't be charged automatically. The customer needs to pay through their banking app.", method.DisplayName()), nil
	}
}

func describeAddress(a *contractx.Address) string {
	parts := []string{a.Line1}
	if a.Line2 != "" {
		parts = append(parts, a.Line2)
	}
	parts = append(parts, a.City)
	if a.State != "" {
		parts = append(parts, a.State)
	}
	parts = append(parts, a.PostalCode, a.Country)

	desc := fmt.Sprintf("%s, %s (id %s, %s", a.Name, strings.Join(parts, ", "), a.ID, a.Category)
	if a.IsDefault {
		desc += ", default"
	}
	return desc + ")"
}
