package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractSnapshot(sessionID string) *domain.Snapshot {
	return &domain.Snapshot{
		SessionID: sessionID,
		Revision:  7,
		ViewState: domain.ViewState{View: domain.ViewTour, StepIndex: 1},
		Steps: []domain.Step{
			{ID: "100", Title: "Welcome", Description: "Hello", Image: domain.PlaceholderImage("Welcome"), Category: domain.CategoryOnboarding, Duration: domain.DefaultDuration},
			{ID: "101", Title: "Tips", Description: "Shortcuts", Image: "https://img/tips.png", Category: domain.CategoryAdvanced, Duration: domain.DefaultDuration},
		},
		Draft:   domain.Draft{Title: "half", Category: domain.CategoryCustom},
		NextSeq: 102,
	}
}

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := contractSnapshot(sessionID)

		err := store.Save(ctx, sessionID, snap)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap, loaded)
	})

	t.Run("Save Isolates Caller", func(t *testing.T) {
		snap := contractSnapshot(sessionID)
		require.NoError(t, store.Save(ctx, sessionID, snap))

		snap.Steps[0].Title = "mutated"
		snap.ViewState.View = domain.ViewHero

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Welcome", loaded.Steps[0].Title)
		assert.Equal(t, domain.ViewTour, loaded.ViewState.View)
	})

	t.Run("Overwrite", func(t *testing.T) {
		snap := contractSnapshot(sessionID)
		require.NoError(t, store.Save(ctx, sessionID, snap))

		snap.Revision = 8
		snap.Steps = snap.Steps[:1]
		require.NoError(t, store.Save(ctx, sessionID, snap))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, uint64(8), loaded.Revision)
		assert.Len(t, loaded.Steps, 1)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, contractSnapshot(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, contractSnapshot(id1))
		_ = store.Save(ctx, id2, contractSnapshot(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
