package tui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// DefaultWidth is the word-wrap width used when the terminal size is unknown.
const DefaultWidth = 80

// NewRenderer returns a function that renders markdown for the terminal.
// Style follows the terminal background.
func NewRenderer(width int) (func(string) (string, error), error) {
	if width <= 0 {
		width = DefaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}
	return r.Render, nil
}

// NewPlainRenderer renders with the no-colour style, for pipes and tests.
func NewPlainRenderer(width int) (func(string) (string, error), error) {
	if width <= 0 {
		width = DefaultWidth
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("notty"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, fmt.Errorf("markdown renderer: %w", err)
	}
	return r.Render, nil
}
