package bot

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused per-user limiter is kept.
const limiterIdleTTL = 10 * time.Minute

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per user.
type RateLimiter struct {
	limit rate.Limit
	burst int
	now   func() time.Time

	mu        sync.Mutex
	users     map[string]*userLimiter
	lastPrune time.Time
}

// NewRateLimiter creates a limiter allowing perSecond events with the given burst per user.
// A non-positive rate disables limiting.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limit: rate.Limit(perSecond),
		burst: burst,
		now:   time.Now,
		users: make(map[string]*userLimiter),
	}
}

// Allow reports whether the user may run another interaction now.
func (l *RateLimiter) Allow(userID string) bool {
	if l.limit <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.prune(now)

	user, ok := l.users[userID]
	if !ok {
		user = &userLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.users[userID] = user
	}
	user.lastSeen = now

	return user.limiter.AllowN(now, 1)
}

func (l *RateLimiter) prune(now time.Time) {
	if now.Sub(l.lastPrune) < limiterIdleTTL {
		return
	}
	l.lastPrune = now

	for userID, user := range l.users {
		if now.Sub(user.lastSeen) > limiterIdleTTL {
			delete(l.users, userID)
		}
	}
}
