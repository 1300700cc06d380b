package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/esgate/pkg/domain"
)

// Hooks logs every tool call and feeds m. Either argument may be nil.
func Hooks(logger *slog.Logger, m *Metrics) domain.LifecycleHooks {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return domain.LifecycleHooks{
		OnToolCall: func(ctx context.Context, e *domain.ToolEvent) {
			logger.DebugContext(ctx, "tool_call", "tool", e.ToolName, "call_id", e.CallID, "args", e.Input)
		},
		OnToolReturn: func(ctx context.Context, e *domain.ToolEvent) {
			attrs := []any{
				"tool", e.ToolName,
				"call_id", e.CallID,
				"indices", e.Indices,
				"duration", e.Duration,
			}
			switch {
			case e.Err == nil:
				logger.InfoContext(ctx, "tool_return", append(attrs, "outcome", OutcomeOK)...)
			case e.Err.Kind == domain.KindValidation:
				logger.WarnContext(ctx, "tool_rejected", append(attrs, "reason", RejectionReason(e.Err), "error", e.Err)...)
			default:
				logger.WarnContext(ctx, "tool_return", append(attrs, "outcome", OutcomeError, "kind", e.Err.Kind, "error", e.Err)...)
			}
			if m != nil {
				m.Observe(e)
			}
		},
	}
}
