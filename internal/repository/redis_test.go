package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisThrottleRepository(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()

	client := redis.NewClient(&redis.Options{
		Addr: s.Addr(),
	})
	defer client.Close()

	repo := NewRedisThrottleRepository(client)
	ctx := context.Background()

	t.Run("WithinLimit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			allowed, err := repo.Allow(ctx, "guest@example.com", 3, time.Hour)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
	})

	t.Run("ExceedsLimit", func(t *testing.T) {
		allowed, err := repo.Allow(ctx, "guest@example.com", 3, time.Hour)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("WindowExpires", func(t *testing.T) {
		allowed, err := repo.Allow(ctx, "other@example.com", 1, time.Second)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.Allow(ctx, "other@example.com", 1, time.Second)
		require.NoError(t, err)
		assert.False(t, allowed)

		s.FastForward(2 * time.Second)

		allowed, err = repo.Allow(ctx, "other@example.com", 1, time.Second)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("KeysAreIndependent", func(t *testing.T) {
		allowed, err := repo.Allow(ctx, "a@example.com", 1, time.Hour)
		require.NoError(t, err)
		assert.True(t, allowed)

		allowed, err = repo.Allow(ctx, "b@example.com", 1, time.Hour)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("NilClient", func(t *testing.T) {
		nilRepo := NewRedisThrottleRepository(nil)
		_, err := nilRepo.Allow(ctx, "x", 1, time.Hour)
		assert.Error(t, err)
	})
}
