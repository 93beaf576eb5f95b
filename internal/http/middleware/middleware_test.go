package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusintern/internal/common"
	"campusintern/internal/domain/principal"
	"campusintern/internal/policy"
)

type stubResolver struct {
	actor policy.Actor
	err   error
	token string
}

func (s *stubResolver) ResolveToken(ctx context.Context, token string) (policy.Actor, error) {
	s.token = token
	return s.actor, s.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestChainRunsInListedOrder(t *testing.T) {
	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(okHandler(), mark("a"), mark("b"), mark("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestRequestIDKeepsClientValue(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Len(t, seen, 36)
}

func TestRecoverTurnsPanicInto500(t *testing.T) {
	logger := zerolog.Nop()
	h := Recover(&logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestLoggingWritesOneLine(t *testing.T) {
	var buf strings.Builder
	logger := zerolog.New(&buf)
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}), RequestID, Logging(&logger))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

	line := buf.String()
	assert.Contains(t, line, `"status":418`)
	assert.Contains(t, line, `"path":"/x"`)
	assert.Contains(t, line, `"request_id"`)
}

func TestTimeoutSetsDeadline(t *testing.T) {
	var hasDeadline bool
	h := Timeout(time.Second)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasDeadline = r.Context().Deadline()
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.True(t, hasDeadline)
}

func TestAuthenticate(t *testing.T) {
	actor := policy.Actor{ID: common.NewUUID(), Role: principal.RoleStudent}
	resolver := &stubResolver{actor: actor}
	var got policy.Actor
	h := NewAuthMiddleware(resolver).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ActorFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer tok")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "tok", resolver.token)
	assert.Equal(t, actor, got)

	resolver.err = common.NewForbidden("invalid_token", "invalid or expired token")
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_token")
}

func TestRequireRole(t *testing.T) {
	h := RequireRole(principal.RoleAdmin)(okHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithActor(req.Context(), policy.Actor{Role: principal.RoleCompany}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithActor(req.Context(), policy.Actor{Role: principal.RoleAdmin}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterAllowsBurstThenDenies(t *testing.T) {
	limiter := NewRateLimiter()
	for i := 0; i < 3; i++ {
		require.True(t, limiter.Allow("k", 3, time.Hour), "attempt %d", i)
	}
	assert.False(t, limiter.Allow("k", 3, time.Hour))
	assert.True(t, limiter.Allow("other", 3, time.Hour))
	assert.True(t, limiter.Allow("", 3, time.Hour))
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	h := RateLimit(NewRateLimiter(), IPKey("login"), 1, time.Hour)(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
	req.Header.Set("X-Forwarded-For", "10.0.0.1, 10.0.0.2")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "rate_limited")
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.5:4000"
	assert.Equal(t, "192.168.1.5", ClientIP(req))

	req.Header.Set("X-Forwarded-For", " 10.1.1.1 , 10.2.2.2")
	assert.Equal(t, "10.1.1.1", ClientIP(req))
}

func TestRedisLimiterFallsBackWhenUnreachable(t *testing.T) {
	assert.Nil(t, NewRedisLimiter(nil, nil, nil))

	var nilLimiter *RedisLimiter
	assert.True(t, nilLimiter.Allow("k", 1, time.Minute))

	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	logger := zerolog.Nop()

	open := NewRedisLimiter(client, nil, &logger)
	assert.True(t, open.Allow("k", 1, time.Minute))
	assert.True(t, open.Allow("k", 1, time.Minute))

	local := NewRedisLimiter(client, NewRateLimiter(), &logger)
	assert.True(t, local.Allow("k", 1, time.Minute))
	assert.False(t, local.Allow("k", 1, time.Minute))
}
