package middleware

import (
	"net/http"
	"strings"

	"VoChat/tools/errs"
	security "VoChat/tools/security"

	"github.com/gin-gonic/gin"
)

// CtxUserIDKey is where the verified user id lands in the gin context.
const CtxUserIDKey = "user_id"

// CookieName matches the cookie the auth handlers set on login.
const CookieName = "jwt"

// Auth verifies the session token from the Authorization header (Bearer) or
// the jwt cookie, and stores the subject user id in the context. Requests
// without a valid token stop here.
func Auth(opts security.Options) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			if v, err := c.Cookie(CookieName); err == nil {
				token = v
			}
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrUnauthorized)
			return
		}

		claims, err := security.Verify(opts, token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
			return
		}
		uid, err := claims.Subject()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errs.ErrTokenInvalid)
			return
		}

		c.Set(CtxUserIDKey, uid)
		c.Next()
	}
}

// UserID reads the id Auth stored; empty means the route was not protected.
func UserID(c *gin.Context) string {
	return c.GetString(CtxUserIDKey)
}

func bearerToken(c *gin.Context) string {
	authz := strings.TrimSpace(c.GetHeader("Authorization"))
	if authz == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return strings.TrimSpace(authz[len("bearer "):])
	}
	return ""
}
