package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
	nodex "github.com/kittipatv/checkout-agent/agent/nodes/checkout"
	promptx "github.com/kittipatv/checkout-agent/agent/prompt"
	statex "github.com/kittipatv/checkout-agent/agent/state"
	toolx "github.com/kittipatv/checkout-agent/agent/tool"
)

var (
	ErrInvalidMessage = nodex.ErrInvalidMessage
	ErrInvalidSession = nodex.ErrInvalidSession
)

// Service drives one conversational checkout turn at a time: render the
// session into the prompt, make a single model call, execute the requested
// tools against the session, persist, reply.
type Service struct {
	registry *statex.Registry
	executor *toolx.Executor
	events   contractx.Events

	chatModel einomodel.BaseChatModel
	template  string

	graphRunner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	now func() time.Time
}

// New binds the tool catalog to the model and compiles the turn graph.
// events may be nil; completion notifications are then dropped.
func New(
	registry *statex.Registry,
	chatModel einomodel.ToolCallingChatModel,
	executor *toolx.Executor,
	events contractx.Events,
) (*Service, error) {
	if registry == nil {
		return nil, errors.New("session registry is required")
	}
	if chatModel == nil {
		return nil, errors.New("chat model is required")
	}
	if executor == nil {
		return nil, errors.New("tool executor is required")
	}
	if events == nil {
		events = noopEvents{}
	}

	template := promptx.Checkout()
	if template == "" {
		return nil, fmt.Errorf("%w: checkout system prompt", contractx.ErrPromptMissing)
	}

	toolModel, err := chatModel.WithTools(executor.Infos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind checkout tools: %v", contractx.ErrModelInvoke, err)
	}

	s := &Service{
		registry:  registry,
		executor:  executor,
		events:    events,
		chatModel: toolModel,
		template:  template,
		now:       time.Now,
	}

	graphRunner, err := s.compileChatGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.graphRunner = graphRunner

	return s, nil
}

// Chat runs one turn against an existing session and returns the assistant
// reply. The reply is empty when the model had nothing to say and called no
// tools.
func (s *Service) Chat(ctx context.Context, sessionID string, text string) (string, error) {
	out, err := s.graphRunner.Invoke(ctx, nodex.GraphInput{
		SessionID: sessionID,
		Text:      text,
	})
	if err != nil {
		chatTurns.WithLabelValues(outcomeError).Inc()
		return "", err
	}
	chatTurns.WithLabelValues(outcomeOK).Inc()
	return out.Reply, nil
}

type noopEvents struct{}

func (noopEvents) Publish(context.Context, string, any) error { return nil }
