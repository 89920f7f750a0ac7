package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestMemoryLimiter(t *testing.T) {
	ctx := context.Background()

	t.Run("blocks requests exceeding limit", func(t *testing.T) {
		limiter := NewMemoryLimiter(3, time.Minute)
		for i := 0; i < 3; i++ {
			allowed, remaining, err := limiter.Allow(ctx, "client")
			require.NoError(t, err)
			assert.True(t, allowed)
			assert.Equal(t, 2-i, remaining)
		}
		allowed, _, _ := limiter.Allow(ctx, "client")
		assert.False(t, allowed)
	})

	t.Run("separate limits per client", func(t *testing.T) {
		limiter := NewMemoryLimiter(1, time.Minute)
		allowed, _, _ := limiter.Allow(ctx, "a")
		assert.True(t, allowed)
		allowed, _, _ = limiter.Allow(ctx, "a")
		assert.False(t, allowed)
		allowed, _, _ = limiter.Allow(ctx, "b")
		assert.True(t, allowed)
	})

	t.Run("resets after window", func(t *testing.T) {
		limiter := NewMemoryLimiter(1, time.Minute)
		now := time.Date(2026, 3, 18, 9, 0, 0, 0, time.UTC)
		limiter.now = func() time.Time { return now }

		allowed, _, _ := limiter.Allow(ctx, "c")
		assert.True(t, allowed)
		allowed, _, _ = limiter.Allow(ctx, "c")
		assert.False(t, allowed)

		now = now.Add(time.Minute)
		allowed, _, _ = limiter.Allow(ctx, "c")
		assert.True(t, allowed)
		assert.Len(t, limiter.clients, 1)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	router := newTestRouter(RequestID(), RateLimit(NewMemoryLimiter(2, time.Minute), zap.NewNop()))

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_RATE_LIMITED")
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitByKey(t *testing.T) {
	router := gin.New()
	router.Use(RateLimitByKey(NewMemoryLimiter(1, time.Minute), zap.NewNop(), func(c *gin.Context) string {
		return c.GetHeader("X-Till")
	}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(till string) int {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("X-Till", till)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}
	assert.Equal(t, http.StatusOK, send("till-1"))
	assert.Equal(t, http.StatusTooManyRequests, send("till-1"))
	assert.Equal(t, http.StatusOK, send("till-2"))
}

func TestRedisLimiter_FailsOpen(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	limiter := NewRedisLimiter(rdb, "shopman:ratelimit:", 1, time.Minute)
	_, _, err := limiter.Allow(context.Background(), "k")
	require.Error(t, err)

	router := newTestRouter(RateLimit(limiter, zap.NewNop()))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
}
