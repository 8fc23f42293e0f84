package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/waypoint/pkg/domain"
)

// LogHooks returns lifecycle hooks that write one structured line per event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnViewChange: func(ctx context.Context, e *domain.ViewEvent) {
			logger.InfoContext(ctx, "view_change",
				"session_id", e.SessionID,
				"intent", e.Intent,
				"from", e.From,
				"to", e.To,
				"step_index", e.StepIndex,
			)
		},
		OnStepAdded: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step_added",
				"session_id", e.SessionID,
				"step_id", e.Step.ID,
				"category", e.Step.Category,
				"index", e.ToIndex,
			)
		},
		OnStepDeleted: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "step_deleted", "session_id", e.SessionID, "step_id", e.Step.ID, "index", e.FromIndex)
		},
		OnStepsReordered: func(ctx context.Context, e *domain.StepEvent) {
			logger.InfoContext(ctx, "steps_reordered",
				"session_id", e.SessionID,
				"step_id", e.Step.ID,
				"from", e.FromIndex,
				"to", e.ToIndex,
			)
		},
		OnValidationFailed: func(ctx context.Context, e *domain.ValidationEvent) {
			logger.WarnContext(ctx, "validation_failed", "session_id", e.SessionID, "fields", e.Fields)
		},
	}
}
