package handicaphttp

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const maxRetryAfter = time.Minute

// ClientLimiter keeps a token bucket per client address. Buckets idle for
// longer than idleAfter are dropped on the next sweep.
type ClientLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	every     rate.Limit
	burst     int
	idleAfter time.Duration
	lastSweep time.Time
}

type bucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// NewClientLimiter allows perSecond requests per address with bursts of burst.
func NewClientLimiter(perSecond rate.Limit, burst int) *ClientLimiter {
	return &ClientLimiter{
		buckets:   map[string]*bucket{},
		every:     perSecond,
		burst:     burst,
		idleAfter: 10 * time.Minute,
	}
}

// Allow takes a token for client at now. When none is available it reports
// how long the client should wait.
func (c *ClientLimiter) Allow(client string, now time.Time) (bool, time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastSweep) >= c.idleAfter {
		for k, b := range c.buckets {
			if now.Sub(b.seen) >= c.idleAfter {
				delete(c.buckets, k)
			}
		}
		c.lastSweep = now
	}

	b, ok := c.buckets[client]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(c.every, c.burst)}
		c.buckets[client] = b
	}
	b.seen = now

	res := b.lim.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return false, min(wait, maxRetryAfter)
	}
	return true, 0
}

// Clients returns the number of tracked addresses.
func (c *ClientLimiter) Clients() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.buckets)
}

// RateLimit answers 429 with Retry-After once an address runs out of tokens.
// chi's RealIP middleware runs first, so RemoteAddr is the client.
func RateLimit(limiter *ClientLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := r.RemoteAddr
			if host, _, err := net.SplitHostPort(client); err == nil {
				client = host
			}

			if ok, wait := limiter.Allow(client, time.Now()); !ok {
				secs := max(1, int(math.Ceil(wait.Seconds())))
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				writeError(w, http.StatusTooManyRequests, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
