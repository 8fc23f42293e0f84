package domain

import "fmt"

// View identifies the top-level screen that is active.
type View string

const (
	ViewHero   View = "hero"   // Landing page
	ViewTour   View = "tour"   // Step-by-step playback
	ViewEditor View = "editor" // Step authoring form
)

// Intent is a user action emitted by a rendering surface.
type Intent string

const (
	IntentStartDemo  Intent = "startDemo"
	IntentBackToHero Intent = "backToHero"
	IntentOpenEditor Intent = "openEditor"
	IntentBackToTour Intent = "backToTour"
	IntentNextStep   Intent = "nextStep"
	IntentPrevStep   Intent = "prevStep"
	IntentSubmit     Intent = "submit"
	IntentResetDraft Intent = "resetDraft"
)

// Intents lists every intent in a stable order.
var Intents = []Intent{
	IntentStartDemo,
	IntentBackToHero,
	IntentOpenEditor,
	IntentBackToTour,
	IntentNextStep,
	IntentPrevStep,
	IntentSubmit,
	IntentResetDraft,
}

// ParseIntent validates an intent name.
func ParseIntent(raw string) (Intent, error) {
	for _, i := range Intents {
		if string(i) == raw {
			return i, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownIntent, raw)
}

// ViewState is the navigator part of the application state.
type ViewState struct {
	View View `json:"view"`

	// StepIndex points into the step list. Meaningless when the list is empty.
	StepIndex int `json:"step_index"`

	// Transitioning is true between a view-change request and its commit.
	Transitioning bool `json:"transitioning"`
}

// Snapshot is a consistent, serialisable capture of one tour session.
type Snapshot struct {
	SessionID string    `json:"session_id"`
	Revision  uint64    `json:"revision"`
	ViewState ViewState `json:"view_state"`
	Steps     []Step    `json:"steps"`
	Draft     Draft     `json:"draft"`

	// SubmitPending is true while an editor submission waits to commit.
	SubmitPending bool `json:"submit_pending"`

	// NextSeq is the next value of the step ID sequence.
	NextSeq int64 `json:"next_seq"`

	// Sealed carries the encrypted snapshot when stored through an encrypting
	// store. Only SessionID and Revision stay readable beside it.
	Sealed []byte `json:"sealed,omitempty"`
}

// CurrentStep returns the step under the cursor, if any.
func (s *Snapshot) CurrentStep() (Step, bool) {
	if len(s.Steps) == 0 || s.ViewState.StepIndex < 0 || s.ViewState.StepIndex >= len(s.Steps) {
		return Step{}, false
	}
	return s.Steps[s.ViewState.StepIndex], true
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	c := *s
	c.Steps = append([]Step(nil), s.Steps...)
	return &c
}
