package repository

import (
	"context"
	"testing"
	"time"

	"pawcare/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDraftRepository(t *testing.T) {
	repo := NewMemoryDraftRepository(time.Hour)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("SaveAndGetDraft", func(t *testing.T) {
		state := &models.DraftState{
			SessionID: "s-1",
			Step:      models.StepSelectEmployee,
			Draft:     models.BookingDraft{ServiceID: "svc", PetID: models.StringPtr("p1")},
		}
		require.NoError(t, repo.SaveDraft(ctx, state))

		got, err := repo.GetDraft(ctx, "s-1")
		require.NoError(t, err)
		assert.Equal(t, state, got)

		// stored copy is isolated from the caller
		*state.Draft.PetID = "p2"
		got, _ = repo.GetDraft(ctx, "s-1")
		assert.Equal(t, "p1", *got.Draft.PetID)
	})

	t.Run("Expiry", func(t *testing.T) {
		now = now.Add(2 * time.Hour)
		got, err := repo.GetDraft(ctx, "s-1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("DeleteDraft", func(t *testing.T) {
		require.NoError(t, repo.SaveDraft(ctx, &models.DraftState{SessionID: "s-2"}))
		require.NoError(t, repo.DeleteDraft(ctx, "s-2"))
		got, _ := repo.GetDraft(ctx, "s-2")
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		key := "submit:s-3"
		allowed, _ := repo.CheckRateLimit(ctx, key, 2, time.Second)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, key, 2, time.Second)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, key, 2, time.Second)
		assert.False(t, allowed)

		now = now.Add(time.Second + 10*time.Millisecond)
		allowed, _ = repo.CheckRateLimit(ctx, key, 2, time.Second)
		assert.True(t, allowed)
	})
}
