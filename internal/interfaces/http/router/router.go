// Package router assembles the versioned API from per-resource route groups.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar is implemented by every HTTP handler
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts registrars under /api/v1
type Router struct {
	engine     *gin.Engine
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

type RouterOption func(*Router)

// WithAPIMiddleware adds middleware that runs on versioned API routes only
func WithAPIMiddleware(mw ...gin.HandlerFunc) RouterOption {
	return func(r *Router) { r.middleware = append(r.middleware, mw...) }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup installs every registered route. Call it once, after Register.
func (r *Router) Setup() {
	api := r.engine.Group("/api/v1", r.middleware...)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// Resource collects the routes of one resource path before mounting them
type Resource struct {
	prefix string
	routes []route
}

type route struct {
	method   string
	path     string
	handlers []gin.HandlerFunc
}

func NewResource(prefix string) *Resource {
	return &Resource{prefix: prefix}
}

func (res *Resource) GET(path string, h ...gin.HandlerFunc) *Resource {
	return res.add(http.MethodGet, path, h)
}

func (res *Resource) POST(path string, h ...gin.HandlerFunc) *Resource {
	return res.add(http.MethodPost, path, h)
}

func (res *Resource) PUT(path string, h ...gin.HandlerFunc) *Resource {
	return res.add(http.MethodPut, path, h)
}

func (res *Resource) DELETE(path string, h ...gin.HandlerFunc) *Resource {
	return res.add(http.MethodDelete, path, h)
}

func (res *Resource) add(method, path string, h []gin.HandlerFunc) *Resource {
	res.routes = append(res.routes, route{method: method, path: path, handlers: h})
	return res
}

// Mount registers the collected routes below rg
func (res *Resource) Mount(rg *gin.RouterGroup) {
	group := rg.Group(res.prefix)
	for _, rt := range res.routes {
		group.Handle(rt.method, rt.path, rt.handlers...)
	}
}
