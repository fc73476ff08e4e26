package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryThrottleRepository(t *testing.T) {
	repo := NewMemoryThrottleRepository()
	ctx := context.Background()

	t.Run("WithinLimit", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			allowed, err := repo.Allow(ctx, "guest@example.com", 2, time.Hour)
			require.NoError(t, err)
			assert.True(t, allowed)
		}
	})

	t.Run("ExceedsLimit", func(t *testing.T) {
		allowed, err := repo.Allow(ctx, "guest@example.com", 2, time.Hour)
		require.NoError(t, err)
		assert.False(t, allowed)
	})

	t.Run("WindowResets", func(t *testing.T) {
		allowed, err := repo.Allow(ctx, "short@example.com", 1, 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, allowed)

		time.Sleep(20 * time.Millisecond)

		allowed, err = repo.Allow(ctx, "short@example.com", 1, 10*time.Millisecond)
		require.NoError(t, err)
		assert.True(t, allowed)
	})

	t.Run("ConcurrentCounting", func(t *testing.T) {
		var wg sync.WaitGroup
		results := make(chan bool, 20)
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				allowed, err := repo.Allow(ctx, "racing@example.com", 10, time.Hour)
				require.NoError(t, err)
				results <- allowed
			}()
		}
		wg.Wait()
		close(results)

		allowedCount := 0
		for ok := range results {
			if ok {
				allowedCount++
			}
		}
		assert.Equal(t, 10, allowedCount)
	})
}
