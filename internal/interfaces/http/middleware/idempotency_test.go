package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/infrastructure/cache"
	"github.com/shopman/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func idempotentRouter(store shared.IdempotencyStore, status *int) *gin.Engine {
	r := gin.New()
	r.Use(RequestID(), Idempotency(store, time.Hour, zap.NewNop()))
	r.POST("/sales", func(c *gin.Context) {
		c.String(*status, logger.GetIdempotencyKey(c.Request.Context()))
	})
	r.POST("/payments", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.GET("/sales", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func post(r *gin.Engine, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if key != "" {
		req.Header.Set(HeaderIdempotencyKey, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplayRejected(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	defer store.Close()
	status := http.StatusCreated
	router := idempotentRouter(store, &status)

	w := post(router, "/sales", "checkout-1")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "checkout-1", w.Body.String())

	w = post(router, "/sales", "checkout-1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_DUPLICATE_REQUEST")

	assert.Equal(t, http.StatusCreated, post(router, "/payments", "checkout-1").Code, "keys are scoped per route")
}

func TestIdempotency_FailedRequestReleasesKey(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	defer store.Close()
	status := http.StatusUnprocessableEntity
	router := idempotentRouter(store, &status)

	assert.Equal(t, http.StatusUnprocessableEntity, post(router, "/sales", "checkout-2").Code)
	status = http.StatusCreated
	assert.Equal(t, http.StatusCreated, post(router, "/sales", "checkout-2").Code)
}

func TestIdempotency_WithoutKeyPassesThrough(t *testing.T) {
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	defer store.Close()
	status := http.StatusCreated
	router := idempotentRouter(store, &status)

	assert.Equal(t, http.StatusCreated, post(router, "/sales", "").Code)
	assert.Equal(t, http.StatusCreated, post(router, "/sales", "").Code)
	assert.Zero(t, store.Len())
}

type brokenStore struct{}

func (brokenStore) MarkProcessed(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}
func (brokenStore) IsProcessed(context.Context, string) (bool, error) { return false, nil }
func (brokenStore) Forget(context.Context, string) error             { return nil }
func (brokenStore) Close() error                                      { return nil }

func TestIdempotency_StoreFailureRejects(t *testing.T) {
	status := http.StatusCreated
	router := idempotentRouter(brokenStore{}, &status)

	w := post(router, "/sales", "checkout-3")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_SERVICE_UNAVAILABLE")
}
