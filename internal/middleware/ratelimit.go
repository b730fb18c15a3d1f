package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// limiterTTL is how long an idle user's limiter is kept.
const limiterTTL = 30 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// UserRateLimiter throttles requests per authenticated user.
// Idle entries are pruned on access; there is no background goroutine.
type UserRateLimiter struct {
	every rate.Limit
	burst int
	rpm   int
	now   func() time.Time

	mu      sync.Mutex
	entries map[int]*limiterEntry
}

// NewUserRateLimiter allows each user requestsPerMinute requests with the
// given burst. Non-positive values fall back to 6 per minute and a burst of 3.
func NewUserRateLimiter(requestsPerMinute, burst int) *UserRateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 6
	}
	if burst <= 0 {
		burst = 3
	}
	return &UserRateLimiter{
		every:   rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:   burst,
		rpm:     requestsPerMinute,
		now:     time.Now,
		entries: make(map[int]*limiterEntry),
	}
}

// Handler returns the middleware. It must run after NewAuthHandler;
// anonymous requests pass through untouched.
func (l *UserRateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		if !l.allow(user.ID) {
			w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(l.rpm)))
			writeError(w, http.StatusTooManyRequests, "rate_limited", "too many requests, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *UserRateLimiter) allow(userID int) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, e := range l.entries {
		if now.Sub(e.lastSeen) > limiterTTL {
			delete(l.entries, id)
		}
	}

	e, ok := l.entries[userID]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(l.every, l.burst)}
		l.entries[userID] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

func retryAfterSeconds(rpm int) int {
	seconds := int(math.Ceil(60.0 / float64(rpm)))
	if seconds < 1 {
		return 1
	}
	return seconds
}
