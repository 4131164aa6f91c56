package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/mkarlin/gimmie/internal/auth"
)

const testSecret = "middleware-test-secret"

func authedRouter(t *testing.T) (*gin.Engine, string, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	token, csrf, err := auth.GenerateSessionToken(testSecret)
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}

	r := gin.New()
	r.Use(RequestID())
	g := r.Group("/", SessionAuth(testSecret, "gimmie_session"), CSRF())
	g.GET("/items", func(c *gin.Context) { c.Status(http.StatusOK) })
	g.POST("/items", func(c *gin.Context) { c.Status(http.StatusCreated) })
	return r, token, csrf
}

func TestSessionAuth_RejectsMissingCookie(t *testing.T) {
	r, _, _ := authedRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without cookie, got %d", w.Code)
	}
}

func TestSessionAuth_RejectsBadToken(t *testing.T) {
	r, _, _ := authedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.AddCookie(&http.Cookie{Name: "gimmie_session", Value: "not.a.jwt"})
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for garbage token, got %d", w.Code)
	}
}

func TestSessionAuth_AllowsValidCookieOnSafeMethod(t *testing.T) {
	r, token, _ := authedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/items", nil)
	req.AddCookie(&http.Cookie{Name: "gimmie_session", Value: token})
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid session, got %d", w.Code)
	}
}

func TestCSRF_RejectsMutationWithoutHeader(t *testing.T) {
	r, token, _ := authedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/items", nil)
	req.AddCookie(&http.Cookie{Name: "gimmie_session", Value: token})
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 without CSRF header, got %d", w.Code)
	}
}

func TestCSRF_RejectsWrongToken(t *testing.T) {
	r, token, _ := authedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/items", nil)
	req.AddCookie(&http.Cookie{Name: "gimmie_session", Value: token})
	req.Header.Set(csrfHeader, "deadbeef")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for wrong CSRF token, got %d", w.Code)
	}
}

func TestCSRF_AllowsMatchingToken(t *testing.T) {
	r, token, csrf := authedRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/items", nil)
	req.AddCookie(&http.Cookie{Name: "gimmie_session", Value: token})
	req.Header.Set(csrfHeader, csrf)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 with matching CSRF token, got %d", w.Code)
	}
}
