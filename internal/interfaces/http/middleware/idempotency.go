package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/infrastructure/logger"
	"github.com/shopman/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// HeaderIdempotencyKey names the client's retry key
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLength = 255

// Idempotency rejects a POST whose Idempotency-Key was already used on the
// same route within ttl. A request that fails (status >= 400) releases its
// key so the client can retry it. Requests without the header pass through.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(HeaderIdempotencyKey))
		if c.Request.Method != http.MethodPost || key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			abortWithCode(c, dto.ErrCodeInvalidInput, "Idempotency-Key is too long")
			return
		}

		ctx := c.Request.Context()
		scoped := c.Request.Method + " " + c.FullPath() + " " + key
		fresh, err := store.MarkProcessed(ctx, scoped, ttl)
		if err != nil {
			logger.WithTraceContext(ctx, log).Error("idempotency store unavailable",
				zap.String("idempotency_key", key), zap.Error(err))
			abortWithCode(c, dto.ErrCodeServiceUnavailable, "Request could not be deduplicated, retry later")
			return
		}
		if !fresh {
			abortWithCode(c, dto.ErrCodeDuplicateRequest, "A request with this Idempotency-Key was already processed")
			return
		}

		c.Request = c.Request.WithContext(logger.WithIdempotencyKey(ctx, key))
		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			if err := store.Forget(context.WithoutCancel(ctx), scoped); err != nil {
				log.Warn("failed to release idempotency key", zap.String("idempotency_key", key), zap.Error(err))
			}
		}
	}
}

func abortWithCode(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(dto.GetHTTPStatus(code), dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}
