package auth

import (
	"strings"
	"testing"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	token, csrf, err := GenerateSessionToken("test-secret")
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if token == "" || csrf == "" {
		t.Fatalf("empty token or csrf")
	}

	claims, err := ValidateSessionToken("test-secret", token)
	if err != nil {
		t.Fatalf("ValidateSessionToken: %v", err)
	}
	if claims.CSRFToken != csrf {
		t.Fatalf("csrf mismatch: %q vs %q", claims.CSRFToken, csrf)
	}
	if claims.ID == "" || claims.ExpiresAt == nil {
		t.Fatalf("missing registered claims: %+v", claims)
	}
}

func TestValidateSessionToken_WrongSecret(t *testing.T) {
	token, _, err := GenerateSessionToken("secret-a")
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	if _, err := ValidateSessionToken("secret-b", token); err == nil {
		t.Fatalf("expected error for wrong secret")
	}
}

func TestValidateSessionToken_Tampered(t *testing.T) {
	token, _, err := GenerateSessionToken("secret")
	if err != nil {
		t.Fatalf("GenerateSessionToken: %v", err)
	}
	parts := strings.Split(token, ".")
	parts[2] = "AAAA" + parts[2][4:]
	if _, err := ValidateSessionToken("secret", strings.Join(parts, ".")); err == nil {
		t.Fatalf("expected error for tampered signature")
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword(hash, "hunter2") {
		t.Fatalf("correct password rejected")
	}
	if CheckPassword(hash, "hunter3") {
		t.Fatalf("wrong password accepted")
	}
}
