package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimit returns a per-IP rate limiting middleware backed by token
// buckets. requestsPerMinute sets the steady rate; the burst equals the
// per-minute allowance so short spikes are absorbed.
func RateLimit(requestsPerMinute int) func(http.Handler) http.Handler {
	limiters := &ipLimiters{
		limit:   rate.Every(time.Minute / time.Duration(requestsPerMinute)),
		burst:   requestsPerMinute,
		byIP:    make(map[string]*ipLimiter),
		maxIdle: 10 * time.Minute,
	}
	go limiters.evictLoop()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// RemoteAddr already reflects the client after chi's RealIP.
			if !limiters.get(r.RemoteAddr).Allow() {
				w.Header().Set("Retry-After", "60")
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type ipLimiters struct {
	limit   rate.Limit
	burst   int
	maxIdle time.Duration

	mu   sync.Mutex
	byIP map[string]*ipLimiter
}

type ipLimiter struct {
	*rate.Limiter
	lastSeen time.Time
}

func (l *ipLimiters) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.byIP[ip]
	if !ok {
		entry = &ipLimiter{Limiter: rate.NewLimiter(l.limit, l.burst)}
		l.byIP[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.Limiter
}

// evictLoop drops limiters for IPs not seen recently.
func (l *ipLimiters) evictLoop() {
	for {
		time.Sleep(time.Minute)
		l.mu.Lock()
		for ip, entry := range l.byIP {
			if time.Since(entry.lastSeen) > l.maxIdle {
				delete(l.byIP, ip)
			}
		}
		l.mu.Unlock()
	}
}
