package service

import (
	"sync"
	"time"
)

// DefaultDailyQuota is the catalog's daily call budget.
const DefaultDailyQuota = 150

// QuotaTracker owns the process-wide daily call budget for the external
// catalog. The count resets to zero on the first access after a calendar
// date boundary and is monotonically non-decreasing within a day.
type QuotaTracker struct {
	limit int

	mu        sync.Mutex
	count     int
	resetDate time.Time
	now       func() time.Time
}

// NewQuotaTracker creates a tracker with the given daily limit.
func NewQuotaTracker(limit int) *QuotaTracker {
	if limit <= 0 {
		limit = DefaultDailyQuota
	}
	return &QuotaTracker{
		limit: limit,
		now:   time.Now,
	}
}

// TryConsume attempts to consume one call from today's budget. It returns
// false without mutating the count when the limit is reached. Safe for
// concurrent callers; the effective daily count can never exceed the limit.
func (q *QuotaTracker) TryConsume() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	today := q.today()
	if today.After(q.resetDate) {
		q.count = 0
		q.resetDate = today
	}

	if q.count >= q.limit {
		return false
	}
	q.count++
	return true
}

// Remaining reports how many calls are left in today's budget.
func (q *QuotaTracker) Remaining() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.today().After(q.resetDate) {
		return q.limit
	}
	return q.limit - q.count
}

func (q *QuotaTracker) today() time.Time {
	y, m, d := q.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
