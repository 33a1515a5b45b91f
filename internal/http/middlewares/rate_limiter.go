package middlewares

import (
	"net"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rickmoura/gastoshub/internal/http/render"
	"github.com/rickmoura/gastoshub/internal/ratelimit"
)

// RateLimit enforces a per-key limit in front of a route. The login route
// uses it keyed by client IP so credential guessing gets throttled.
func RateLimit(limiter ratelimit.Limiter, keyFn func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := keyFn(c)

		if key == "" {
			key = clientIP(c)
		}

		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), key)

		if err != nil {
			// limiter backend down: let the request through rather than
			// locking everyone out
			c.Next()
			return
		}

		if !allowed {
			secs := int(retryAfter.Seconds())

			if secs < 0 {
				secs = 0
			}

			c.Header("Retry-After", strconv.Itoa(secs))

			c.AbortWithStatusJSON(http.StatusTooManyRequests, render.ErrorView{
				Status:  http.StatusTooManyRequests,
				Error:   http.StatusText(http.StatusTooManyRequests),
				Message: "Too many requests. Please try again shortly.",
				Path:    c.Request.URL.Path,
			})
			return
		}

		c.Next()
	}
}

// KeyByIP rate limits unauthenticated endpoints by client IP.
func KeyByIP(c *gin.Context) string {
	return clientIP(c)
}

// KeyByUserOrIP prefers the authenticated identity when present.
func KeyByUserOrIP(c *gin.Context) string {
	id, ok := IdentityFromContext(c)

	if ok && id.UserID != "" {
		return "user:" + id.UserID
	}

	return clientIP(c)
}

func clientIP(c *gin.Context) string {
	// Gin's ClientIP respects X-Forwarded-For / X-Real-IP if configured.
	ip := c.ClientIP()

	host, _, err := net.SplitHostPort(ip)

	if err == nil && host != "" {
		return host
	}

	return ip
}
