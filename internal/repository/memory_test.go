package repository

import (
	"context"
	"testing"
	"time"

	"barberbot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStateRepository(t *testing.T) {
	repo := NewMemoryStateRepository(time.Hour)
	ctx := context.Background()

	t.Run("SetAndGetState", func(t *testing.T) {
		state := &models.UserState{
			UserID:      1,
			CurrentStep: "awaiting_date",
			TempData:    map[string]interface{}{"service_id": int64(2)},
		}
		require.NoError(t, repo.SetState(ctx, state))

		got, err := repo.GetState(ctx, 1)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "awaiting_date", got.CurrentStep)
		assert.Equal(t, int64(2), got.GetInt64("service_id"))
	})

	t.Run("MissingState", func(t *testing.T) {
		got, err := repo.GetState(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("ClearState", func(t *testing.T) {
		require.NoError(t, repo.SetState(ctx, &models.UserState{UserID: 2, CurrentStep: "x"}))
		require.NoError(t, repo.ClearState(ctx, 2))

		got, err := repo.GetState(ctx, 2)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("StateExpires", func(t *testing.T) {
		short := NewMemoryStateRepository(time.Millisecond)
		require.NoError(t, short.SetState(ctx, &models.UserState{UserID: 3, CurrentStep: "x"}))

		time.Sleep(5 * time.Millisecond)

		got, err := short.GetState(ctx, 3)
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("RateLimit", func(t *testing.T) {
		allowed, err := repo.CheckRateLimit(ctx, 10, 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, _ = repo.CheckRateLimit(ctx, 10, 2, time.Minute)
		assert.True(t, allowed)

		allowed, _ = repo.CheckRateLimit(ctx, 10, 2, time.Minute)
		assert.False(t, allowed)
	})

	t.Run("RateLimitWindowResets", func(t *testing.T) {
		window := 10 * time.Millisecond

		allowed, _ := repo.CheckRateLimit(ctx, 11, 1, window)
		assert.True(t, allowed)
		allowed, _ = repo.CheckRateLimit(ctx, 11, 1, window)
		assert.False(t, allowed)

		time.Sleep(window + 5*time.Millisecond)

		allowed, _ = repo.CheckRateLimit(ctx, 11, 1, window)
		assert.True(t, allowed)
	})
}
