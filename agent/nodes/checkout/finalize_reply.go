package checkoutnode

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
	statex "github.com/kittipatv/checkout-agent/agent/state"
)

// TopicCheckoutCompleted is published once per session when a turn moves it
// to completed.
const TopicCheckoutCompleted = "checkout.completed"

// FinalizeReply folds the model text and tool outcomes into one reply,
// records it on the transcript, persists the session, and emits the
// completion event when this turn finished the checkout. Event delivery is
// best effort.
func FinalizeReply(ctx context.Context, in *GraphState, registry *statex.Registry, events contractx.Events) (GraphOutput, error) {
	if in == nil || in.Session == nil {
		return GraphOutput{}, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	segments := make([]string, 0, len(in.ToolResults)+1)
	if in.ModelText != "" {
		segments = append(segments, in.ModelText)
	}
	for _, result := range in.ToolResults {
		if result.Error != "" {
			segments = append(segments, "Error: "+result.Error)
			continue
		}
		if result.Result != "" {
			segments = append(segments, result.Result)
		}
	}
	reply := strings.Join(segments, "\n\n")

	if reply != "" {
		if err := in.Session.AppendMessage(statex.RoleAssistant, reply); err != nil {
			return GraphOutput{}, err
		}
	}
	if err := registry.Save(ctx, in.Session); err != nil {
		return GraphOutput{}, fmt.Errorf("save session: %w", err)
	}

	if in.Session.Status == statex.StatusCompleted && in.PriorStatus != statex.StatusCompleted {
		event := contractx.CheckoutCompletedEvent{
			SessionID:   in.Session.SessionID,
			UserID:      in.Session.UserID,
			Amount:      in.Session.TotalAmount,
			Currency:    in.Session.Currency,
			CompletedAt: in.Session.UpdatedAt,
		}
		if err := events.Publish(ctx, TopicCheckoutCompleted, event); err != nil {
			log.Warn().Err(err).Str("session_id", in.Session.SessionID).Msg("publishing completion event failed")
		}
	}

	return GraphOutput{Reply: reply}, nil
}
