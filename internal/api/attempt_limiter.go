package api

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	defaultAttemptLimit  = 8
	defaultAttemptWindow = 15 * time.Minute
)

// attemptLimiter counts failed attempts per key inside a sliding window.
// Attempts in flight hold a slot until they succeed or are released.
type attemptLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

func newAttemptLimiter(limit int, window time.Duration) *attemptLimiter {
	if limit <= 0 {
		limit = defaultAttemptLimit
	}
	if window <= 0 {
		window = defaultAttemptWindow
	}
	return &attemptLimiter{
		attempts: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

// reserve claims an attempt slot for key before the attempt runs. It reports
// false once the window already holds limit slots. Check and claim happen
// under one lock, so concurrent requests cannot overshoot the limit.
func (limiter *attemptLimiter) reserve(key string) (time.Time, bool) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	now := limiter.now()
	active := limiter.pruneLocked(key, now)
	if len(active) >= limiter.limit {
		return time.Time{}, false
	}
	limiter.attempts[key] = append(active, now)
	return now, true
}

// release returns a slot claimed by reserve for an attempt that did not count
// as a failure.
func (limiter *attemptLimiter) release(key string, slot time.Time) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	values := limiter.attempts[key]
	for index, value := range values {
		if value.Equal(slot) {
			values = append(values[:index], values[index+1:]...)
			break
		}
	}
	if len(values) == 0 {
		delete(limiter.attempts, key)
		return
	}
	limiter.attempts[key] = values
}

func (limiter *attemptLimiter) reset(key string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	delete(limiter.attempts, key)
}

func (limiter *attemptLimiter) pruneLocked(key string, now time.Time) []time.Time {
	values := limiter.attempts[key]
	if len(values) == 0 {
		return []time.Time{}
	}

	threshold := now.Add(-limiter.window)
	pruned := make([]time.Time, 0, len(values))
	for _, value := range values {
		if value.After(threshold) {
			pruned = append(pruned, value)
		}
	}

	if len(pruned) == 0 {
		delete(limiter.attempts, key)
		return []time.Time{}
	}

	limiter.attempts[key] = pruned
	return pruned
}

func requestLimiterKey(c *fiber.Ctx) string {
	key := strings.TrimSpace(c.IP())
	if key == "" {
		return "unknown"
	}
	return key
}
