package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)

	t.Cleanup(func() {
		_ = tp.Shutdown(t.Context())
		otel.SetTracerProvider(prev)
	})
	return sr
}

func tracedRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Tracing(TracingConfig{
		ServiceName: "shopman-test",
		Enabled:     true,
		SkipPaths:   []string{"/health"},
	}), SpanEnricher())
	router.GET("/products/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.POST("/sales", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })
	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	return router
}

func findSpan(spans []sdktrace.ReadOnlySpan, name string) sdktrace.ReadOnlySpan {
	for _, s := range spans {
		if s.Name() == name {
			return s
		}
	}
	return nil
}

func hasAttr(span sdktrace.ReadOnlySpan, key attribute.Key) bool {
	for _, kv := range span.Attributes() {
		if kv.Key == key {
			return true
		}
	}
	return false
}

func TestTracing_Disabled(t *testing.T) {
	sr := setupTestTracer(t)
	router := gin.New()
	router.Use(Tracing(TracingConfig{Enabled: false}))
	router.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/test", nil))
	assert.Empty(t, sr.Ended())
}

func TestTracing_SpanPerRoute(t *testing.T) {
	sr := setupTestTracer(t)
	router := tracedRouter()

	req := httptest.NewRequest(http.MethodGet, "/products/42", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	router.ServeHTTP(httptest.NewRecorder(), req)

	span := findSpan(sr.Ended(), "GET /products/:id")
	require.NotNil(t, span)
	assert.True(t, hasAttr(span, "request_id"))
	assert.NotEqual(t, codes.Error, span.Status().Code)
}

func TestTracing_ServerErrorMarked(t *testing.T) {
	sr := setupTestTracer(t)
	router := tracedRouter()

	req := httptest.NewRequest(http.MethodPost, "/sales", nil)
	req.Header.Set(HeaderIdempotencyKey, "checkout-9")
	router.ServeHTTP(httptest.NewRecorder(), req)

	span := findSpan(sr.Ended(), "POST /sales")
	require.NotNil(t, span)
	assert.Equal(t, codes.Error, span.Status().Code)
	assert.True(t, hasAttr(span, "idempotency_key"))
}

func TestTracing_SkipsHealth(t *testing.T) {
	sr := setupTestTracer(t)
	router := tracedRouter()

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Empty(t, sr.Ended())
}
