package auth

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-key"

func TestIssueAndVerifyToken(t *testing.T) {
	token, err := IssueToken("64a1f0c2b3d4e5f601234567", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}

	userID, issuedAt, err := VerifyToken(token, testSecret)
	if err != nil {
		t.Fatalf("VerifyToken returned error: %v", err)
	}
	if userID != "64a1f0c2b3d4e5f601234567" {
		t.Fatalf("expected user id to round-trip, got %q", userID)
	}
	if delta := time.Since(issuedAt); delta < 0 || delta > time.Minute {
		t.Fatalf("unexpected issuedAt: %v", issuedAt)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := IssueToken("64a1f0c2b3d4e5f601234567", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}

	if _, _, err := VerifyToken(token, "another-secret"); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	token, err := IssueToken("64a1f0c2b3d4e5f601234567", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}

	if _, _, err := VerifyToken(token, testSecret); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyTokenTampered(t *testing.T) {
	token, err := IssueToken("64a1f0c2b3d4e5f601234567", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken returned error: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("expected a three-part JWT, got %d parts", len(parts))
	}
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	if _, _, err := VerifyToken(tampered, testSecret); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	if _, _, err := VerifyToken("not-a-token", testSecret); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken for garbage input, got %v", err)
	}
}
