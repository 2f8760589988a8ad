package chi

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/kailas-cloud/pilotprefs/internal/domain"
)

const limiterIdleTTL = 10 * time.Minute

type callerLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per caller.
type RateLimiter struct {
	mu       sync.Mutex
	limit    rate.Limit
	burst    int
	callers  map[string]*callerLimiter
	lastScan time.Time
	now      func() time.Time
}

// NewRateLimiter creates a per-caller limiter. rps <= 0 returns nil, which disables limiting.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		callers: make(map[string]*callerLimiter),
		now:     time.Now,
	}
}

// Allow reports whether uid may make a request now.
func (rl *RateLimiter) Allow(uid string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.evictIdle(now)

	cl, ok := rl.callers[uid]
	if !ok {
		cl = &callerLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.callers[uid] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// evictIdle drops buckets unused for limiterIdleTTL. Runs at most once per TTL.
func (rl *RateLimiter) evictIdle(now time.Time) {
	if now.Sub(rl.lastScan) < limiterIdleTTL {
		return
	}
	rl.lastScan = now
	for uid, cl := range rl.callers {
		if now.Sub(cl.lastSeen) >= limiterIdleTTL {
			delete(rl.callers, uid)
		}
	}
}

func (rl *RateLimiter) size() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.callers)
}

// RateLimitMiddleware rejects callers exceeding their bucket with RESOURCE_EXHAUSTED.
// Requests without a caller pass through; the service rejects them anyway.
func RateLimitMiddleware(rl *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if rl == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := CallerFromContext(r.Context())
			if caller.Authenticated() && !rl.Allow(caller.UID) {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, StatusResourceExhausted, domain.ErrRateLimited.Error())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
