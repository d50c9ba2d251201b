package checkoutnode

import (
	"context"
	"fmt"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
	statex "github.com/kittipatv/checkout-agent/agent/state"
)

// LoadSession fetches the session and captures its pre-turn status. Chat
// never creates sessions; an unknown id surfaces ErrSessionNotFound from the
// store.
func LoadSession(ctx context.Context, in *GraphState, registry *statex.Registry) (*GraphState, error) {
	if in == nil {
		return nil, fmt.Errorf("%w: graph state is nil", contractx.ErrValidation)
	}

	session, err := registry.Get(ctx, in.SessionID)
	if err != nil {
		return nil, err
	}

	in.Session = session
	in.PriorStatus = session.Status
	return in, nil
}
