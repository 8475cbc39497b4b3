package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"application-service/internal/httputil"
	"application-service/internal/metrics"

	"golang.org/x/time/rate"
)

// RateLimiter caps submissions per source address. Over-cap requests are
// rejected immediately with 429, never queued.
type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	enabled  bool
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter allows maxPerWindow requests per window per source address.
// When enabled is false (non-production) every request passes, which keeps
// local testing friction-free.
func NewRateLimiter(maxPerWindow int, window time.Duration, enabled bool, logger *slog.Logger, m *metrics.Metrics) *RateLimiter {
	rl := &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    rate.Limit(float64(maxPerWindow) / window.Seconds()),
		burst:    maxPerWindow,
		enabled:  enabled,
		logger:   logger,
		metrics:  m,
	}
	go rl.prune(3 * window)
	return rl
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.enabled {
			next.ServeHTTP(w, r)
			return
		}

		addr := sourceAddr(r)
		if !rl.allow(addr) {
			rl.logger.WarnContext(r.Context(), "submission rate limit exceeded", "addr", addr)
			rl.metrics.RecordRateLimited(r.Context())
			httputil.RespondWithError(w, http.StatusTooManyRequests, "Too many submissions, please try again later")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(addr string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, ok := rl.visitors[addr]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[addr] = v
	}
	v.lastSeen = time.Now()
	return v.limiter.Allow()
}

func (rl *RateLimiter) prune(maxIdle time.Duration) {
	for range time.Tick(maxIdle) {
		rl.mu.Lock()
		for addr, v := range rl.visitors {
			if time.Since(v.lastSeen) > maxIdle {
				delete(rl.visitors, addr)
			}
		}
		rl.mu.Unlock()
	}
}

func sourceAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
