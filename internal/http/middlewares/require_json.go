package middlewares

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rickmoura/gastoshub/internal/http/render"
)

func RequireJSON() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			ct := c.GetHeader("Content-Type")
			// allow "application/json; charset=utf-8"
			if ct == "" || !strings.HasPrefix(strings.ToLower(ct), "application/json") {
				c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, render.ErrorView{
					Status:  http.StatusUnsupportedMediaType,
					Error:   http.StatusText(http.StatusUnsupportedMediaType),
					Message: "Content-Type must be application/json",
					Path:    c.Request.URL.Path,
				})
				return
			}
		}
		c.Next()
	}
}
