package runtime

import (
	"fmt"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// StepList owns the ordered collection of committed steps.
// Order is significant and only changes through Add, Delete and Reorder.
type StepList struct {
	steps []domain.Step
	ids   IDGenerator

	// issued remembers every ID ever handed out so deleted IDs are never reused.
	issued map[string]struct{}

	// fallback takes over for a single Add when ids keeps colliding.
	fallback *Sequence
}

// maxIDAttempts bounds how often a colliding generator is retried.
const maxIDAttempts = 16

// NewStepList creates an empty list using the given generator.
func NewStepList(ids IDGenerator) *StepList {
	if ids == nil {
		ids = NewSequence(0)
	}
	return &StepList{
		ids:    ids,
		issued: make(map[string]struct{}),
	}
}

// Add assigns a fresh ID, fills defaults and appends the step.
// Title and description are expected to be validated by the caller.
func (l *StepList) Add(d domain.Draft) domain.Step {
	category := d.Category
	if category == "" {
		category = domain.CategoryCustom
	}
	image := strings.TrimSpace(d.Image)
	if image == "" {
		image = domain.PlaceholderImage(d.Title)
	}

	step := domain.Step{
		ID:          l.freshID(),
		Title:       d.Title,
		Description: d.Description,
		Image:       image,
		Category:    category,
		Duration:    domain.DefaultDuration,
	}
	l.steps = append(l.steps, step)
	return step
}

func (l *StepList) freshID() string {
	for range maxIDAttempts {
		if id := l.ids.NextID(); l.claim(id) {
			return id
		}
	}
	if l.fallback == nil {
		l.fallback = NewSequence(0)
	}
	for {
		if id := l.fallback.NextID(); l.claim(id) {
			return id
		}
	}
}

func (l *StepList) claim(id string) bool {
	if _, taken := l.issued[id]; taken {
		return false
	}
	l.issued[id] = struct{}{}
	return true
}

// Delete removes the step with the given ID.
// It reports the removed step and its former position; unknown IDs are a no-op.
func (l *StepList) Delete(id string) (domain.Step, int, bool) {
	idx := l.Index(id)
	if idx < 0 {
		return domain.Step{}, -1, false
	}
	removed := l.steps[idx]
	l.steps = append(l.steps[:idx], l.steps[idx+1:]...)
	return removed, idx, true
}

// Reorder moves the element at from to position to, keeping the relative order of the rest.
func (l *StepList) Reorder(from, to int) error {
	n := len(l.steps)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d with %d steps", domain.ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}
	moved := l.steps[from]
	l.steps = append(l.steps[:from], l.steps[from+1:]...)
	l.steps = append(l.steps[:to], append([]domain.Step{moved}, l.steps[to:]...)...)
	return nil
}

// Index returns the position of id, or -1.
func (l *StepList) Index(id string) int {
	for i, s := range l.steps {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// Get returns the step with the given ID.
func (l *StepList) Get(id string) (domain.Step, bool) {
	if i := l.Index(id); i >= 0 {
		return l.steps[i], true
	}
	return domain.Step{}, false
}

// Len returns the number of steps.
func (l *StepList) Len() int {
	return len(l.steps)
}

// Steps returns a copy of the ordered steps.
func (l *StepList) Steps() []domain.Step {
	return append([]domain.Step(nil), l.steps...)
}

// load replaces the contents, used when restoring a snapshot.
func (l *StepList) load(steps []domain.Step) {
	l.steps = append([]domain.Step(nil), steps...)
	for _, s := range steps {
		l.issued[s.ID] = struct{}{}
	}
}
