package checkoutnode

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
	statex "github.com/kittipatv/checkout-agent/agent/state"
)

var (
	ErrInvalidMessage = errors.New("message is empty")
	ErrInvalidSession = errors.New("session id is empty")
)

type GraphInput struct {
	SessionID string
	Text      string
}

type GraphOutput struct {
	Reply string
}

type GraphState struct {
	SessionID string
	Text      string
	Now       time.Time

	Session *statex.CheckoutSession
	// PriorStatus is the status before this turn; finalize compares it
	// against the post-turn status to decide on the completion event.
	PriorStatus statex.Status
	Messages    []*schema.Message

	ModelText   string
	ToolCalls   []contractx.ToolCallRequest
	ToolResults []contractx.ToolCallResult
}

// ToolRunner executes one model-issued tool call against the session.
type ToolRunner interface {
	Execute(ctx context.Context, session *statex.CheckoutSession, call contractx.ToolCallRequest) (string, error)
}

func ValidateRequest(in GraphInput, nowFn func() time.Time) (*GraphState, error) {
	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, ErrInvalidMessage
	}

	return &GraphState{
		SessionID: sessionID,
		Text:      text,
		Now:       nowFn().UTC(),
	}, nil
}
