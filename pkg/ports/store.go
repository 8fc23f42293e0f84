package ports

import (
	"context"

	"github.com/aretw0/waypoint/pkg/domain"
)

// SessionStore keeps session snapshots for the lifetime of a session.
// It lets a replica pick up a live session that another replica created.
type SessionStore interface {
	// Save stores the snapshot for a session, replacing any previous one.
	Save(ctx context.Context, sessionID string, snap *domain.Snapshot) error

	// Load retrieves the snapshot for a session.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Snapshot, error)

	// Delete removes the snapshot for a session. Deleting an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of the stored sessions.
	List(ctx context.Context) ([]string, error)
}
