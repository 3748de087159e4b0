package jwt

import (
	"testing"
	"time"
)

func TestCreateAndParseToken(t *testing.T) {
	secret := "test-secret"

	resp, err := CreateToken(secret, "alice", time.Hour)
	if err != nil {
		t.Fatalf("CreateToken error: %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("expected a token")
	}

	claims, err := ParseToken(secret, resp.AccessToken)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if sub, _ := claims["sub"].(string); sub != "alice" {
		t.Fatalf("unexpected subject %v", claims["sub"])
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	resp, err := CreateToken("secret-a", "alice", time.Hour)
	if err != nil {
		t.Fatalf("CreateToken error: %v", err)
	}
	if _, err := ParseToken("secret-b", resp.AccessToken); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestParseTokenGarbage(t *testing.T) {
	if _, err := ParseToken("secret", "not.a.jwt"); err == nil {
		t.Fatal("expected error for malformed token")
	}
	if _, err := ParseToken("secret", ""); err == nil {
		t.Fatal("expected error for empty token")
	}
}

func TestCreateTokenRequiresSecret(t *testing.T) {
	if _, err := CreateToken("", "alice", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter2")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if !ValidatePassword(hash, "hunter2") {
		t.Fatal("expected password to validate")
	}
	if ValidatePassword(hash, "wrong") {
		t.Fatal("expected wrong password to fail")
	}
}
