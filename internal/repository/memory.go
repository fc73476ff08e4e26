package repository

import (
	"context"
	"sync"
	"time"
)

// MemoryThrottleRepository keeps submission counters in process memory.
// Used as a fallback when Redis is unavailable.
type MemoryThrottleRepository struct {
	counters sync.Map
}

func NewMemoryThrottleRepository() *MemoryThrottleRepository {
	return &MemoryThrottleRepository{}
}

type throttleEntry struct {
	mu        sync.Mutex
	count     int
	expiresAt time.Time
}

func (r *MemoryThrottleRepository) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	val, _ := r.counters.LoadOrStore(key, &throttleEntry{})
	entry := val.(*throttleEntry)

	entry.mu.Lock()
	defer entry.mu.Unlock()

	if now.After(entry.expiresAt) {
		entry.count = 1
		entry.expiresAt = now.Add(window)
	} else {
		entry.count++
	}

	return entry.count <= limit, nil
}
