package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Outcome reports the effect of a dispatched intent.
type Outcome struct {
	Intent domain.Intent

	// Changed is false for intents that were valid but had nothing to do,
	// such as Next on the last step.
	Changed bool

	wait func(context.Context) (*domain.Step, error)
	step *domain.Step
}

// Wait blocks until a delayed commit is applied. It returns at once for
// synchronous intents.
func (o *Outcome) Wait(ctx context.Context) error {
	if o.wait == nil {
		return nil
	}
	step, err := o.wait(ctx)
	if err != nil {
		return err
	}
	o.step = step
	o.wait = nil
	return nil
}

// Step returns the step created by a submit once Wait has returned.
func (o *Outcome) Step() (domain.Step, bool) {
	if o.step == nil {
		return domain.Step{}, false
	}
	return *o.step, true
}

// Dispatch applies an intent by name. It is the single entry point used by the
// transports so they agree on intent semantics.
func (a *App) Dispatch(ctx context.Context, intent domain.Intent) (*Outcome, error) {
	out := &Outcome{Intent: intent, Changed: true}

	switch intent {
	case domain.IntentStartDemo, domain.IntentOpenEditor, domain.IntentBackToHero, domain.IntentBackToTour:
		p, err := a.Transition(ctx, intent)
		if err != nil {
			return nil, err
		}
		out.wait = func(ctx context.Context) (*domain.Step, error) {
			_, err := p.Wait(ctx)
			return nil, err
		}
	case domain.IntentNextStep:
		out.Changed = a.Next(ctx)
	case domain.IntentPrevStep:
		out.Changed = a.Prev(ctx)
	case domain.IntentSubmit:
		p, err := a.Submit(ctx)
		if err != nil {
			return nil, err
		}
		out.wait = func(ctx context.Context) (*domain.Step, error) {
			step, err := p.Wait(ctx)
			if err != nil {
				return nil, err
			}
			return &step, nil
		}
	case domain.IntentResetDraft:
		a.ResetDraft(ctx)
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownIntent, intent)
	}
	return out, nil
}
