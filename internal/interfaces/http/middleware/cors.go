package middleware

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORSConfig lists the cross-origin callers of the API
type CORSConfig struct {
	AllowOrigins []string
	AllowMethods []string
	AllowHeaders []string
}

var (
	defaultCORSMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	defaultCORSHeaders = []string{"Origin", "Content-Type", "Accept", HeaderRequestID, HeaderIdempotencyKey}
	exposedCORSHeaders = []string{HeaderRequestID, "X-RateLimit-Limit", "X-RateLimit-Remaining"}
)

// CORS answers preflights for the configured origins. With no origins
// configured cross-origin requests get no CORS headers at all.
func CORS(cfg CORSConfig) gin.HandlerFunc {
	if len(cfg.AllowOrigins) == 0 {
		return func(c *gin.Context) { c.Next() }
	}

	cc := cors.Config{
		AllowMethods:  cfg.AllowMethods,
		AllowHeaders:  cfg.AllowHeaders,
		ExposeHeaders: exposedCORSHeaders,
		MaxAge:        12 * time.Hour,
	}
	if len(cc.AllowMethods) == 0 {
		cc.AllowMethods = defaultCORSMethods
	}
	if len(cc.AllowHeaders) == 0 {
		cc.AllowHeaders = defaultCORSHeaders
	}
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			cc.AllowAllOrigins = true
		}
	}
	if !cc.AllowAllOrigins {
		cc.AllowOrigins = cfg.AllowOrigins
		cc.AllowCredentials = true
	}
	return cors.New(cc)
}
