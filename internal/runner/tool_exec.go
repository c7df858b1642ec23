package runner

import (
	"context"
	"time"

	"github.com/petasbytes/support-bot/internal/provider"
	"github.com/petasbytes/support-bot/internal/telemetry"
	"github.com/petasbytes/support-bot/tools"
)

// execTools answers a requires_action batch. The result has exactly one output
// per distinct call id, in the order the calls were listed.
func (r *Runner) execTools(ctx context.Context, threadID string, calls []provider.ToolCall) []provider.ToolOutput {
	ctx = tools.WithThreadID(ctx, threadID)
	seen := make(map[string]bool, len(calls))
	outputs := make([]provider.ToolOutput, 0, len(calls))
	for _, call := range calls {
		if seen[call.ID] {
			continue
		}
		seen[call.ID] = true
		outputs = append(outputs, r.execTool(ctx, call))
	}
	return outputs
}

func (r *Runner) execTool(ctx context.Context, call provider.ToolCall) provider.ToolOutput {
	turnID, _ := telemetry.TurnIDFromContext(ctx)

	emit := func(durationMs int64, outputSize int, errCode string) {
		fields := map[string]any{
			"tool_name":   call.Name,
			"duration_ms": durationMs,
			"input_size":  len(call.Arguments),
			"output_size": outputSize,
			"turn_id":     turnID,
		}
		if errCode != "" {
			fields["error"] = errCode
		} else {
			fields["error"] = nil
		}
		telemetry.Emit("tool_exec", fields)
	}

	start := time.Now()
	resp, err := r.Tools.Dispatch(ctx, call.Name, call.Arguments)
	if err != nil {
		// Only the error code goes to telemetry; the full message goes back to the assistant.
		out := tools.ErrorOutput(err)
		emit(time.Since(start).Milliseconds(), len(out), tools.ErrorCode(err))
		vlogf("tool %s (%s): %v\n", call.Name, call.ID, err)
		return provider.ToolOutput{ToolCallID: call.ID, Output: out}
	}
	emit(time.Since(start).Milliseconds(), len(resp), "")
	return provider.ToolOutput{ToolCallID: call.ID, Output: resp}
}
