package models

import (
	"testing"
	"time"
)

func TestChangedPasswordAfterNeverChanged(t *testing.T) {
	user := User{}
	if user.ChangedPasswordAfter(time.Now()) {
		t.Fatal("a user who never changed their password must not invalidate tokens")
	}
}

func TestChangedPasswordAfterOldToken(t *testing.T) {
	now := time.Now()
	user := User{PasswordChangedAt: now}

	if !user.ChangedPasswordAfter(now.Add(-time.Hour)) {
		t.Fatal("a token issued before the password change must be invalidated")
	}
}

// The repository backdates passwordChangedAt by one second, so a token issued
// in the same instant as the change stays valid.
func TestChangedPasswordAfterSameInstantWithBackdate(t *testing.T) {
	issued := time.Now()
	user := User{PasswordChangedAt: issued.Add(-time.Second)}

	if user.ChangedPasswordAfter(issued) {
		t.Fatal("the backdate skew must keep a same-instant token valid")
	}
}

func TestChangedPasswordAfterSecondGranularity(t *testing.T) {
	issued := time.Unix(1_700_000_000, 0)
	user := User{PasswordChangedAt: time.Unix(1_700_000_000, 900_000_000)}

	// Same epoch second: not "after" at the token's precision.
	if user.ChangedPasswordAfter(issued) {
		t.Fatal("a change within the same second must not invalidate the token")
	}

	user.PasswordChangedAt = time.Unix(1_700_000_001, 0)
	if !user.ChangedPasswordAfter(issued) {
		t.Fatal("a change one second later must invalidate the token")
	}
}
