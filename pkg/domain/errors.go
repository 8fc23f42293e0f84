package domain

import (
	"errors"
	"strings"
)

var (
	// ErrValidation is returned when a draft is missing required fields.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is returned when an intent is not allowed from the current view.
	ErrInvalidTransition = errors.New("invalid view transition")

	// ErrTransitionInFlight is returned when a view change is requested while another one is pending.
	ErrTransitionInFlight = errors.New("view transition already in progress")

	// ErrSubmitPending is returned when submit is requested while a submission is pending.
	// The request is ignored.
	ErrSubmitPending = errors.New("submission already pending")

	// ErrIndexOutOfRange is returned by reorder when an index is not a valid position.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrUnknownField is returned when a draft field name is not recognised.
	ErrUnknownField = errors.New("unknown draft field")

	// ErrInvalidCategory is returned when a category value is outside the enumeration.
	ErrInvalidCategory = errors.New("invalid category")

	// ErrUnknownIntent is returned when an intent name is not recognised.
	ErrUnknownIntent = errors.New("unknown intent")

	// ErrTemplateNotFound is returned when a quick template name is unknown.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrSessionNotFound is returned when a session ID cannot be found in the store.
	ErrSessionNotFound = errors.New("session not found")
)

// ValidationError lists the draft fields that failed the required check.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return "validation failed: missing " + strings.Join(e.Fields, ", ")
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
