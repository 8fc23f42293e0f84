package runner

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// IOHandler defines the strategy for interacting with the player.
// This allows switching between Text (terminal) and JSON (structured) modes.
type IOHandler interface {
	// Render presents the committed state.
	Render(ctx context.Context, snap *domain.Snapshot) error

	// Input reads one command line.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message such as an error or a listing.
	SystemOutput(ctx context.Context, msg string) error
}

// ContentRenderer transforms markdown before it is written, e.g. to ANSI.
type ContentRenderer func(string) (string, error)

// BadgeRenderer styles a category label.
type BadgeRenderer func(domain.Category) string
