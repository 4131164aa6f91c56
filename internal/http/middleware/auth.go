package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkarlin/gimmie/internal/auth"
)

const (
	// sessionIDKey is the Gin context key holding the session's JWT ID.
	sessionIDKey = "sessionID"
	// csrfClaimKey is the Gin context key holding the CSRF token from the
	// session claims, used by CSRF() to verify state-changing requests.
	csrfClaimKey = "csrfClaim"
	// csrfHeader carries the client's CSRF token on state-changing requests.
	csrfHeader = "X-CSRF-Token"
)

// SessionAuth returns a Gin middleware that requires a valid session cookie
// signed with secret. On success the session ID and CSRF claim are stored in
// the Gin context; on failure the request is rejected with 401.
func SessionAuth(secret, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, err := c.Cookie(cookieName)
		if err != nil || tok == "" {
			unauthorized(c, "authentication required")
			return
		}

		claims, err := auth.ValidateSessionToken(secret, tok)
		if err != nil {
			LoggerFrom(c).Warn().Err(err).Msg("session token rejected")
			unauthorized(c, "invalid or expired session")
			return
		}

		c.Set(sessionIDKey, claims.ID)
		c.Set(csrfClaimKey, claims.CSRFToken)
		c.Next()
	}
}

// CSRF returns a Gin middleware that verifies the X-CSRF-Token header against
// the token embedded in the session claims. Safe methods (GET, HEAD, OPTIONS)
// pass through. Place after SessionAuth.
func CSRF() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		want, _ := c.Get(csrfClaimKey)
		got := c.GetHeader(csrfHeader)
		if got == "" || got != asString(want) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "forbidden",
				"message":    "missing or invalid CSRF token",
			})
			return
		}
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(requestIDHeader),
		"code":       "unauthorized",
		"message":    msg,
	})
}
