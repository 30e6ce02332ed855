package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/hongminglow/tenantauth/internal/http/respond"
	"github.com/hongminglow/tenantauth/internal/observability"
)

const (
	limiterCacheSize = 10_000
	limiterIdleTTL   = 15 * time.Minute
)

// IPRateLimiter keeps a token bucket per client IP. Buckets for idle clients expire.
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters *lru.LRU[string, *rate.Limiter]
	rate     rate.Limit
	burst    int
	log      *observability.Logger
	metrics  *observability.Metrics
}

// NewAuthRateLimiter allows perMinute requests per minute per IP with an equal burst.
func NewAuthRateLimiter(perMinute int, log *observability.Logger, metrics *observability.Metrics) *IPRateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	return &IPRateLimiter{
		limiters: lru.NewLRU[string, *rate.Limiter](limiterCacheSize, nil, limiterIdleTTL),
		rate:     rate.Limit(float64(perMinute) / 60.0),
		burst:    perMinute,
		log:      log,
		metrics:  metrics,
	}
}

func (l *IPRateLimiter) limiter(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if lim, ok := l.limiters.Get(ip); ok {
		return lim
	}
	lim := rate.NewLimiter(l.rate, l.burst)
	l.limiters.Add(ip, lim)
	return lim
}

// Middleware rejects requests over the limit with 429.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.limiter(ip).Allow() {
			l.log.RateLimitExceeded(ip, r.URL.Path)
			if l.metrics != nil {
				l.metrics.RateLimited.Inc()
			}
			w.Header().Set("Retry-After", "60")
			respond.Error(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
