// Package auth implements signed session tokens and password checks for
// the single shared login. A session is a stateless HS256 JWT carried in a
// cookie; the CSRF token handed to the client at login is embedded in the
// claims, so state-changing requests can be verified against the session
// without any server-side session store.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// SessionLifetime is how long a login remains valid.
const SessionLifetime = 30 * 24 * time.Hour

// Claims are the JWT claims carried by a session cookie.
type Claims struct {
	CSRFToken string `json:"csrf"`
	jwt.RegisteredClaims
}

// GenerateSessionToken mints a signed session token and returns it along
// with the embedded CSRF token.
func GenerateSessionToken(secret string) (token, csrfToken string, err error) {
	csrfToken, err = randomHex(32)
	if err != nil {
		return "", "", fmt.Errorf("generating csrf token: %w", err)
	}
	jti, err := randomHex(16)
	if err != nil {
		return "", "", fmt.Errorf("generating jti: %w", err)
	}

	now := time.Now()
	claims := Claims{
		CSRFToken: csrfToken,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(SessionLifetime)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", "", fmt.Errorf("signing token: %w", err)
	}
	return signed, csrfToken, nil
}

// ValidateSessionToken parses and verifies a session token, returning its
// claims. Expired or tampered tokens fail.
func ValidateSessionToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// HashPassword derives a bcrypt hash for storage in configuration.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether password matches the configured bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// randomHex returns n random bytes hex-encoded.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
