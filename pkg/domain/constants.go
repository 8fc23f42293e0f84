package domain

import "time"

const (
	// DefaultDuration is the display label given to every new step.
	DefaultDuration = "2 min read"

	// PlaceholderImageBase is the generic placeholder endpoint used when a step has no image.
	PlaceholderImageBase = "https://placehold.co/800x450"

	// DefaultTransitionDelay lets an exit/enter animation play before a view commit.
	DefaultTransitionDelay = 100 * time.Millisecond

	// DefaultSubmitDelay precedes the commit of an editor submission.
	DefaultSubmitDelay = 800 * time.Millisecond
)
