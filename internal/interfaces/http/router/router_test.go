package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

type registrarFunc func(rg *gin.RouterGroup)

func (f registrarFunc) RegisterRoutes(rg *gin.RouterGroup) { f(rg) }

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	var apiHits int
	r := NewRouter(engine, WithAPIMiddleware(func(c *gin.Context) {
		apiHits++
		c.Next()
	}))

	products := registrarFunc(func(rg *gin.RouterGroup) {
		NewResource("/products").
			GET("", func(c *gin.Context) { c.String(http.StatusOK, "list") }).
			GET("/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) }).
			Mount(rg)
	})
	sales := registrarFunc(func(rg *gin.RouterGroup) {
		NewResource("/sales").
			POST("", func(c *gin.Context) { c.Status(http.StatusCreated) }).
			Mount(rg)
	})
	r.Register(products, sales).Setup()
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, "list", serve(engine, http.MethodGet, "/api/v1/products").Body.String())
	assert.Equal(t, "42", serve(engine, http.MethodGet, "/api/v1/products/42").Body.String())
	assert.Equal(t, http.StatusCreated, serve(engine, http.MethodPost, "/api/v1/sales").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/health").Code)
	assert.Equal(t, 3, apiHits, "API middleware skips routes outside the version group")
}

func TestResource_Mount(t *testing.T) {
	engine := gin.New()
	NewResource("/categories").
		POST("", func(c *gin.Context) { c.Status(http.StatusCreated) }).
		PUT("/:id", func(c *gin.Context) { c.Status(http.StatusOK) }).
		DELETE("/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) }).
		Mount(engine.Group("/api/v1"))

	assert.Equal(t, http.StatusCreated, serve(engine, http.MethodPost, "/api/v1/categories").Code)
	assert.Equal(t, http.StatusOK, serve(engine, http.MethodPut, "/api/v1/categories/1").Code)
	assert.Equal(t, http.StatusNoContent, serve(engine, http.MethodDelete, "/api/v1/categories/1").Code)
	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/categories/1").Code)
}
