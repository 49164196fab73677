package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// HeaderRequestID is echoed back on every response so a client report can be
// matched against server logs.
const HeaderRequestID = "X-Request-ID"

// RequestID assigns each request an id unless the caller already sent one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(HeaderRequestID)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(HeaderRequestID, rid)
		c.Header(HeaderRequestID, rid)
		c.Next()
	}
}
