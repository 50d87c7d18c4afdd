package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestQuotaTracker_DailyLimit(t *testing.T) {
	now := time.Date(2025, 6, 1, 23, 50, 0, 0, time.UTC)
	quota := NewQuotaTracker(150)
	quota.now = func() time.Time { return now }

	t.Run("consumes up to the daily limit", func(t *testing.T) {
		for i := 0; i < 150; i++ {
			assert.True(t, quota.TryConsume(), "call %d should succeed", i+1)
		}
		assert.Equal(t, 0, quota.Remaining())
	})

	t.Run("151st call is rejected without mutation", func(t *testing.T) {
		assert.False(t, quota.TryConsume())
		assert.False(t, quota.TryConsume())
		assert.Equal(t, 0, quota.Remaining())
	})

	t.Run("counter resets after the date boundary", func(t *testing.T) {
		now = now.Add(15 * time.Minute) // crosses midnight
		assert.True(t, quota.TryConsume())
		assert.Equal(t, 150-1, quota.Remaining())
	})
}

func TestQuotaTracker_Concurrent(t *testing.T) {
	quota := NewQuotaTracker(50)

	var wg sync.WaitGroup
	results := make(chan bool, 200)
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- quota.TryConsume()
		}()
	}
	wg.Wait()
	close(results)

	consumed := 0
	for ok := range results {
		if ok {
			consumed++
		}
	}
	assert.Equal(t, 50, consumed, "effective daily count must never exceed the limit")
}

func TestQuotaTracker_DefaultLimit(t *testing.T) {
	quota := NewQuotaTracker(0)
	assert.Equal(t, DefaultDailyQuota, quota.Remaining())
}
