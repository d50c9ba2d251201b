package checkoutnode

import (
	"context"
	"fmt"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
	statex "github.com/kittipatv/checkout-agent/agent/state"
)

// RecordUserMessage appends the customer's message and persists before the
// model runs, so the transcript keeps the message even when the turn fails
// later.
func RecordUserMessage(ctx context.Context, in *GraphState, registry *statex.Registry) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	if err := in.Session.AppendMessage(statex.RoleUser, in.Text); err != nil {
		return nil, err
	}
	if err := registry.Save(ctx, in.Session); err != nil {
		return nil, fmt.Errorf("save user message: %w", err)
	}
	return in, nil
}
