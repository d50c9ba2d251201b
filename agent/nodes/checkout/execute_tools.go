package checkoutnode

import (
	"context"
	"errors"
	"fmt"

	contractx "github.com/kittipatv/checkout-agent/agent/contract"
)

// ExecuteTools runs the model's tool calls strictly in order. Malformed
// arguments fail the whole turn; any other handler failure folds into the
// reply as an error line and the remaining calls still run.
func ExecuteTools(ctx context.Context, in *GraphState, runner ToolRunner) (*GraphState, error) {
	if in == nil || in.Session == nil {
		return nil, fmt.Errorf("%w: graph session is nil", contractx.ErrValidation)
	}

	for _, call := range in.ToolCalls {
		result, err := runner.Execute(ctx, in.Session, call)
		if err != nil {
			if errors.Is(err, contractx.ErrToolArguments) {
				return nil, fmt.Errorf("tool %s: %w", call.Name, err)
			}
			in.ToolResults = append(in.ToolResults, contractx.ToolCallResult{
				Name:  call.Name,
				Error: err.Error(),
			})
			continue
		}
		in.ToolResults = append(in.ToolResults, contractx.ToolCallResult{
			Name:   call.Name,
			Result: result,
		})
	}
	return in, nil
}
