package checkoutnode

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
)

// InvokeModel makes the turn's single model call. The model is already bound
// to the tool catalog; its reply carries free text, tool calls, or both.
// There are no retries: a model failure fails the turn.
func InvokeModel(ctx context.Context, in *GraphState, chatModel einomodel.BaseChatModel) (*GraphState, error) {
	if in == nil || len(in.Messages) == 0 {
		return nil, fmt.Errorf("%w: graph messages are empty", contractx.ErrValidation)
	}

	resp, err := chatModel.Generate(ctx, in.Messages)
	if err != nil {
		return nil, fmt.Errorf("%w: generate: %v", contractx.ErrModelInvoke, err)
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: model returned no message", contractx.ErrModelInvoke)
	}

	in.ModelText = strings.TrimSpace(resp.Content)
	for _, tc := range resp.ToolCalls {
		in.ToolCalls = append(in.ToolCalls, contractx.ToolCallRequest{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: json.RawMessage(tc.Function.Arguments),
		})
	}
	return in, nil
}
