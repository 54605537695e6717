package worker

import (
	"context"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// IdleTTL is how long a key's bucket is kept after its last use
const IdleTTL = 10 * time.Minute

// Limiter is a token bucket per key. Keys are hosts taken from URLs, or any
// opaque string such as a client address. Buckets idle for IdleTTL are
// dropped, so the key set stays bounded by recent traffic.
type Limiter struct {
	limiters     *gocache.Cache
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter. A non-positive rate disables limiting.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	return newLimiter(requestsPerSecond, burst, IdleTTL)
}

func newLimiter(requestsPerSecond float64, burst int, idle time.Duration) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	limit := rate.Limit(requestsPerSecond)
	if requestsPerSecond <= 0 {
		limit = rate.Inf
	}

	return &Limiter{
		limiters:     gocache.New(idle, idle),
		defaultRate:  limit,
		defaultBurst: burst,
	}
}

// Wait blocks until the bucket for key has a token or ctx is done
func (l *Limiter) Wait(ctx context.Context, key string) error {
	return l.get(Key(key)).Wait(ctx)
}

// Allow takes a token for key without waiting
func (l *Limiter) Allow(key string) bool {
	return l.get(Key(key)).Allow()
}

func (l *Limiter) get(key string) *rate.Limiter {
	if v, found := l.limiters.Get(key); found {
		limiter := v.(*rate.Limiter)
		l.limiters.SetDefault(key, limiter)
		return limiter
	}

	limiter := rate.NewLimiter(l.defaultRate, l.defaultBurst)
	if err := l.limiters.Add(key, limiter, gocache.DefaultExpiration); err != nil {
		// lost the race to another caller
		if v, found := l.limiters.Get(key); found {
			return v.(*rate.Limiter)
		}
	}
	return limiter
}

// Len returns the number of keys currently tracked
func (l *Limiter) Len() int {
	return l.limiters.ItemCount()
}

// Key reduces an absolute URL to its lower-cased host; anything else is
// used as given
func Key(raw string) string {
	if strings.Contains(raw, "://") {
		if parsed, err := url.Parse(raw); err == nil && parsed.Host != "" {
			return strings.ToLower(parsed.Hostname())
		}
	}
	return raw
}
