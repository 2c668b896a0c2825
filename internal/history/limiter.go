package history

import (
	"sync"
	"time"
)

// DefaultViewCooldown is how long repeat view events for the same product
// are suppressed.
const DefaultViewCooldown = 30 * time.Second

// ViewLimiter suppresses repeat view events for the same product within a
// cool-down window.
//
// Cache.Record performs no rate limiting of its own, so hosts that emit a
// view event on every render pass front it with a limiter keyed by product
// ID. The HTTP facade uses one per server.
type ViewLimiter struct {
	mu       sync.Mutex
	cooldown time.Duration
	lastSeen map[string]time.Time

	// now is injectable for tests.
	now func() time.Time
}

// NewViewLimiter creates a limiter with the given cool-down window.
// A window <= 0 falls back to DefaultViewCooldown.
func NewViewLimiter(cooldown time.Duration) *ViewLimiter {
	if cooldown <= 0 {
		cooldown = DefaultViewCooldown
	}
	return &ViewLimiter{
		cooldown: cooldown,
		lastSeen: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Allow reports whether a view event for id should pass through, and marks
// the id as seen when it does. An empty id is never allowed.
func (l *ViewLimiter) Allow(id string) bool {
	if id == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if last, ok := l.lastSeen[id]; ok && now.Sub(last) < l.cooldown {
		return false
	}

	l.lastSeen[id] = now
	return true
}

// Reset forgets all seen ids.
func (l *ViewLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastSeen = make(map[string]time.Time)
}
