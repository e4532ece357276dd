package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ren-jimpo/shift-management-app-sub000/pkg/response"
)

// BodyLimit caps request bodies at maxBytes. Declared oversize bodies are
// refused up front; chunked ones fail while binding.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			response.Error(c, http.StatusRequestEntityTooLarge, 10005, "request body too large")
			c.Abort()
			return
		}
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}

		c.Next()
	}
}
