package token

import (
	"testing"
	"time"

	"marketbay_backend/internal/auth"
)

const testSecret = "test-secret"

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	signed, err := Issue("seller@example.com", auth.RoleSeller, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	claims, err := Verify(signed, testSecret)
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if claims.Email != "seller@example.com" {
		t.Fatalf("expected email seller@example.com, got %q", claims.Email)
	}
	if claims.Role != auth.RoleSeller {
		t.Fatalf("expected role SELLER, got %q", claims.Role)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signed, err := Issue("seller@example.com", auth.RoleSeller, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := Verify(signed, "other-secret"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	signed, err := Issue("seller@example.com", auth.RoleSeller, testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := Verify(signed, testSecret); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	signed, err := Issue("seller@example.com", auth.RoleSeller, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	tampered := signed[:len(signed)-2] + "xx"
	if _, err := Verify(tampered, testSecret); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if _, err := Verify("not-a-token", testSecret); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestVerifyRejectsUnknownRole(t *testing.T) {
	signed, err := Issue("someone@example.com", auth.Role("SUPERUSER"), testSecret, time.Hour)
	if err != nil {
		t.Fatalf("issue failed: %v", err)
	}

	if _, err := Verify(signed, testSecret); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
