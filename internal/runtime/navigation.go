package runtime

import (
	"fmt"

	"github.com/aretw0/waypoint/pkg/domain"
)

// route describes one view transition.
type route struct {
	from       []domain.View
	to         domain.View
	resetIndex bool
}

// routes is the view transition table.
var routes = map[domain.Intent]route{
	domain.IntentStartDemo:  {from: []domain.View{domain.ViewHero}, to: domain.ViewTour, resetIndex: true},
	domain.IntentOpenEditor: {from: []domain.View{domain.ViewHero, domain.ViewTour}, to: domain.ViewEditor},
	domain.IntentBackToHero: {from: []domain.View{domain.ViewTour, domain.ViewEditor}, to: domain.ViewHero},
	domain.IntentBackToTour: {from: []domain.View{domain.ViewEditor}, to: domain.ViewTour},
}

// IsViewIntent reports whether intent changes the top-level view.
func IsViewIntent(intent domain.Intent) bool {
	_, ok := routes[intent]
	return ok
}

// Navigator tracks the active view and the step cursor.
type Navigator struct {
	state domain.ViewState
}

// NewNavigator starts on the landing view.
func NewNavigator() Navigator {
	return Navigator{state: domain.ViewState{View: domain.ViewHero}}
}

// State returns the current view state.
func (n *Navigator) State() domain.ViewState {
	return n.state
}

// check validates intent against the current view and returns its route.
func (n *Navigator) check(intent domain.Intent) (route, error) {
	r, ok := routes[intent]
	if !ok {
		return route{}, fmt.Errorf("%w: %q is not a view intent", domain.ErrInvalidTransition, intent)
	}
	for _, v := range r.from {
		if v == n.state.View {
			return r, nil
		}
	}
	return route{}, fmt.Errorf("%w: %s from %s", domain.ErrInvalidTransition, intent, n.state.View)
}

// commit applies a route. View and index change together.
func (n *Navigator) commit(r route, count int) {
	next := domain.ViewState{View: r.to, StepIndex: n.state.StepIndex}
	if r.resetIndex {
		next.StepIndex = 0
	}
	n.state = next
	n.Clamp(count)
}

// Next advances the cursor on the tour view. It reports whether the index moved.
func (n *Navigator) Next(count int) bool {
	if n.state.View != domain.ViewTour || n.state.StepIndex >= count-1 {
		return false
	}
	n.state.StepIndex++
	return true
}

// Prev moves the cursor back on the tour view. It reports whether the index moved.
func (n *Navigator) Prev() bool {
	if n.state.View != domain.ViewTour || n.state.StepIndex <= 0 {
		return false
	}
	n.state.StepIndex--
	return true
}

// GoTo jumps to index i on the tour view. Invalid positions are ignored.
func (n *Navigator) GoTo(i, count int) bool {
	if n.state.View != domain.ViewTour || i < 0 || i >= count || i == n.state.StepIndex {
		return false
	}
	n.state.StepIndex = i
	return true
}

// Clamp keeps the cursor inside [0, count-1], or at 0 when the list is empty.
func (n *Navigator) Clamp(count int) {
	if n.state.StepIndex >= count {
		n.state.StepIndex = max(0, count-1)
	}
	if n.state.StepIndex < 0 {
		n.state.StepIndex = 0
	}
}
