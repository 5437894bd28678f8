package auth

import "testing"

func TestNewResetToken(t *testing.T) {
	raw, hash, err := NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken returned error: %v", err)
	}
	if raw == "" || hash == "" {
		t.Fatal("expected non-empty raw token and hash")
	}
	if raw == hash {
		t.Fatal("the stored hash must differ from the raw token")
	}
	if len(raw) != 64 {
		t.Fatalf("expected 32 random bytes hex-encoded, got %d chars", len(raw))
	}
}

func TestHashResetTokenMatchesStoredHash(t *testing.T) {
	raw, hash, err := NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken returned error: %v", err)
	}

	if HashResetToken(raw) != hash {
		t.Fatal("hashing the presented raw token must reproduce the stored hash")
	}
	if HashResetToken(raw+"x") == hash {
		t.Fatal("a different raw token must not reproduce the stored hash")
	}
}

func TestNewResetTokenUnique(t *testing.T) {
	first, _, err := NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken returned error: %v", err)
	}
	second, _, err := NewResetToken()
	if err != nil {
		t.Fatalf("NewResetToken returned error: %v", err)
	}
	if first == second {
		t.Fatal("two generated tokens must differ")
	}
}
