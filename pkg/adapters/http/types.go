package http

import "github.com/aretw0/waypoint/pkg/domain"

// ErrorResponse is the body of every rejected request.
type ErrorResponse struct {
	Error  string   `json:"error"`
	Code   string   `json:"code"`
	Fields []string `json:"fields,omitempty"`
}

// IntentResponse reports the effect of a dispatched intent.
type IntentResponse struct {
	Intent  domain.Intent `json:"intent"`
	Changed bool          `json:"changed"`

	// Pending is true when a delayed commit has not been applied yet.
	Pending bool             `json:"pending"`
	Step    *domain.Step     `json:"step,omitempty"`
	State   *domain.Snapshot `json:"state"`
}

// DraftFieldRequest is the body of PUT /sessions/{id}/draft/{field}.
type DraftFieldRequest struct {
	Value *string `json:"value"`
}

// ReorderRequest is the body of POST /sessions/{id}/steps/reorder.
type ReorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}
