package checkoutnode

import (
	"context"
	"fmt"
	"strings"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
	statex "github.com/kittipatv/checkout-agent/agent/state"
	toolx "github.com/kittipatv/checkout-agent/agent/tool"
	moneyx "github.com/kittipatv/checkout-agent/pkg/money"
)

// BuildContext renders the system prompt with the live session snapshot and
// replays the transcript as chat messages. The snapshot reflects the cart as
// of this turn's start; tool calls later in the turn see the session
// directly.
func BuildContext(ctx context.Context, in *GraphState, template string, caps toolx.Capabilities) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	tmpl := einoprompt.FromMessages(schema.FString, schema.SystemMessage(template))
	messages, err := tmpl.Format(ctx, map[string]any{
		"status":       string(in.Session.Status),
		"currency":     strings.ToUpper(in.Session.Currency),
		"total":        moneyx.FormatWithCurrency(in.Session.TotalAmount, in.Session.Currency),
		"customer":     customerLine(in.Session),
		"capabilities": capabilityLine(caps),
		"cart":         cartLines(in.Session),
	})
	if err != nil {
		return nil, fmt.Errorf("format system prompt: %w", err)
	}

	for _, msg := range in.Session.Conversation {
		switch msg.Role {
		case statex.RoleUser:
			messages = append(messages, schema.UserMessage(msg.Content))
		case statex.RoleAssistant:
			messages = append(messages, schema.AssistantMessage(msg.Content, nil))
		}
	}

	in.Messages = messages
	return in, nil
}

func customerLine(session *statex.CheckoutSession) string {
	if session.UserID == "" {
		return "no customer profile linked"
	}
	return "linked customer id " + session.UserID
}

func capabilityLine(caps toolx.Capabilities) string {
	services := []string{"payments"}
	if caps.Platform {
		services = append(services, "product catalog")
	}
	if caps.Profile {
		services = append(services, "customer profiles")
	}
	return strings.Join(services, ", ")
}

func cartLines(session *statex.CheckoutSession) string {
	if len(session.Cart) == 0 {
		return "The cart is empty."
	}

	var b strings.Builder
	for _, item := range session.Cart {
		fmt.Fprintf(&b, "- %s (id %s) x%d at %s each, subtotal %s\n",
			item.Name, item.ID, item.Quantity,
			moneyx.FormatWithCurrency(item.Price, session.Currency),
			moneyx.FormatWithCurrency(item.Subtotal(), session.Currency))
	}
	return strings.TrimRight(b.String(), "\n")
}
