package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventViewChange       EventType = "view_change"
	EventStepAdded        EventType = "step_added"
	EventStepDeleted      EventType = "step_deleted"
	EventStepsReordered   EventType = "steps_reordered"
	EventValidationFailed EventType = "validation_failed"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// ViewEvent is emitted when a view transition commits.
type ViewEvent struct {
	EventBase
	From      View   `json:"from"`
	To        View   `json:"to"`
	Intent    Intent `json:"intent"`
	StepIndex int    `json:"step_index"`
}

// StepEvent is emitted when a step is added, deleted or moved.
type StepEvent struct {
	EventBase
	Step      Step `json:"step"`
	FromIndex int  `json:"from_index,omitempty"`
	ToIndex   int  `json:"to_index,omitempty"`
}

// ValidationEvent is emitted when a submission is rejected.
type ValidationEvent struct {
	EventBase
	Fields []string `json:"fields"`
}

// LifecycleHooks defines callbacks for tour observability.
// Hooks run after the state lock is released.
type LifecycleHooks struct {
	OnViewChange       func(context.Context, *ViewEvent)
	OnStepAdded        func(context.Context, *StepEvent)
	OnStepDeleted      func(context.Context, *StepEvent)
	OnStepsReordered   func(context.Context, *StepEvent)
	OnValidationFailed func(context.Context, *ValidationEvent)

	// OnChange receives every committed snapshot.
	OnChange func(context.Context, *Snapshot)
}

// Merge combines two hook sets; both callbacks run, h first.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnViewChange:       chain(h.OnViewChange, other.OnViewChange),
		OnStepAdded:        chain(h.OnStepAdded, other.OnStepAdded),
		OnStepDeleted:      chain(h.OnStepDeleted, other.OnStepDeleted),
		OnStepsReordered:   chain(h.OnStepsReordered, other.OnStepsReordered),
		OnValidationFailed: chain(h.OnValidationFailed, other.OnValidationFailed),
		OnChange:           chain(h.OnChange, other.OnChange),
	}
}

func chain[T any](a, b func(context.Context, T)) func(context.Context, T) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, v T) {
		a(ctx, v)
		b(ctx, v)
	}
}
