package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"campusintern/internal/common"
	"campusintern/internal/http/response"
)

type Limiter interface {
	Allow(key string, limit int, window time.Duration) bool
}

// RateLimiter keeps one token bucket per key in process memory. It is the
// fallback when Redis is not configured.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	maxKeys  int
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{limiters: make(map[string]*rate.Limiter), maxKeys: 10000}
}

// Allow permits up to limit events per window with a burst of limit.
func (r *RateLimiter) Allow(key string, limit int, window time.Duration) bool {
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	bucketKey := key + "|" + strconv.Itoa(limit) + "|" + window.String()
	r.mu.Lock()
	limiter, ok := r.limiters[bucketKey]
	if !ok {
		if len(r.limiters) >= r.maxKeys {
			r.limiters = make(map[string]*rate.Limiter)
		}
		limiter = rate.NewLimiter(rate.Every(window/time.Duration(limit)), limit)
		r.limiters[bucketKey] = limiter
	}
	r.mu.Unlock()
	return limiter.Allow()
}

func RateLimit(limiter Limiter, keyFn func(*http.Request) string, limit int, window time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limiter == nil {
				next.ServeHTTP(w, r)
				return
			}
			key := keyFn(r)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}
			if !limiter.Allow(key, limit, window) {
				response.Error(w, common.NewError(common.CodeRateLimited, "too many requests", nil))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP prefers the first X-Forwarded-For hop.
func ClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ActorKey keys limits by the authenticated principal.
func ActorKey(prefix string) func(*http.Request) string {
	return func(r *http.Request) string {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			return ""
		}
		return prefix + ":" + actor.ID.String()
	}
}

func IPKey(prefix string) func(*http.Request) string {
	return func(r *http.Request) string {
		return prefix + ":" + ClientIP(r)
	}
}
