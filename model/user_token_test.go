package model

import (
	"testing"
	"time"
)

func TestPasswordResetTokenLifecycle(t *testing.T) {
	token := PasswordResetToken{ExpiresAt: time.Now().Add(time.Hour)}

	if token.IsExpired() {
		t.Error("token expiring in an hour reported expired")
	}
	if token.IsUsed() {
		t.Error("fresh token reported used")
	}

	token.MarkAsUsed()
	if !token.IsUsed() {
		t.Error("token not reported used after MarkAsUsed")
	}

	expired := PasswordResetToken{ExpiresAt: time.Now().Add(-time.Minute)}
	if !expired.IsExpired() {
		t.Error("past-expiry token not reported expired")
	}
}

func TestEmailVerificationTokenLifecycle(t *testing.T) {
	token := EmailVerificationToken{ExpiresAt: time.Now().Add(24 * time.Hour)}

	if token.IsExpired() || token.IsUsed() {
		t.Error("fresh token reported expired or used")
	}

	token.MarkAsUsed()
	if !token.IsUsed() {
		t.Error("token not reported used after MarkAsUsed")
	}
}
