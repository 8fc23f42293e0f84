package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Event is one JSON line written by JSONHandler.
type Event struct {
	Type    string           `json:"type"`
	State   *domain.Snapshot `json:"state,omitempty"`
	Message string           `json:"message,omitempty"`
}

// JSONHandler implements IOHandler for structured JSON-Lines communication.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Render(ctx context.Context, snap *domain.Snapshot) error {
	return h.Encoder.Encode(Event{Type: "state", State: snap})
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(Event{Type: "message", Message: msg})
}

// Input reads one line: a JSON string, an object with a "command" field, or
// plain text.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || strings.TrimSpace(text) == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var val string
	if err := json.Unmarshal([]byte(text), &val); err == nil {
		return SanitizeLine(val)
	}
	var obj struct {
		Command string `json:"command"`
	}
	if err := json.Unmarshal([]byte(text), &obj); err == nil && obj.Command != "" {
		return SanitizeLine(obj.Command)
	}
	return SanitizeLine(text)
}
