// Auth HTTP handlers.
//
// This file exposes the shared-login session endpoints:
//   - POST /auth/login   (exchange the shared password for a session cookie)
//   - POST /auth/logout  (clear the session cookie)
//
// The app has a single shared password, so login carries no username. A
// successful login sets an HttpOnly session cookie and returns the CSRF
// token the client must echo on state-changing requests.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mkarlin/gimmie/internal/auth"
	"github.com/mkarlin/gimmie/internal/config"
	"github.com/mkarlin/gimmie/internal/http/middleware"
)

// AuthHandlers serves the session endpoints. It holds the auth settings
// directly; there is no user store behind it.
type AuthHandlers struct {
	cfg config.AuthConfig
}

// NewAuthHandlers constructs an AuthHandlers bound to the given settings.
func NewAuthHandlers(cfg config.AuthConfig) *AuthHandlers {
	return &AuthHandlers{cfg: cfg}
}

// LoginRequest is the JSON payload for logging in.
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// Login handles POST /auth/login.
func (h *AuthHandlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "password is required")
		return
	}

	if !auth.CheckPassword(h.cfg.PasswordHash, req.Password) {
		middleware.LoggerFrom(c).Warn().Msg("failed login attempt")
		fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid password")
		return
	}

	token, csrf, err := auth.GenerateSessionToken(h.cfg.SessionSecret)
	if err != nil {
		failFromErr(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, token, int(auth.SessionLifetime.Seconds()), "/", "", h.cfg.CookieSecure, true)
	ok(c, http.StatusOK, gin.H{"csrf_token": csrf})
}

// Logout handles POST /auth/logout. Sessions are stateless, so logout just
// expires the cookie client-side.
func (h *AuthHandlers) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cfg.CookieName, "", -1, "/", "", h.cfg.CookieSecure, true)
	noContent(c)
}
