package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopsync/backend/internal/interfaces/http/dto"
)

// BodyLimit caps the request body at maxBytes. Order webhook payloads and
// tag edits are small; anything larger is rejected before the handler reads
// it. Declared lengths fail fast on the header, chunked bodies are cut off
// by MaxBytesReader during the handler's read.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge,
				dto.NewErrorResponse(dto.ErrCodePayloadTooLarge, "Request body exceeds maximum allowed size"))
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
