package auth

import (
	"strings"
	"testing"
)

func TestNewUserTokenStoresOnlyTheHash(t *testing.T) {
	raw, hash := newUserToken()

	if raw == "" || hash == "" {
		t.Fatal("token generation returned empty values")
	}
	if raw == hash {
		t.Fatal("raw token must never equal the stored hash")
	}
	if len(hash) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(hash))
	}
	if hash != strings.ToLower(hash) {
		t.Error("hash must be lowercase hex")
	}
	if hashToken(raw) != hash {
		t.Error("hashToken(raw) must reproduce the stored hash")
	}
}

func TestNewUserTokensAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		_, hash := newUserToken()
		if seen[hash] {
			t.Fatal("duplicate token hash generated")
		}
		seen[hash] = true
	}
}

func TestHashTokenIsDeterministic(t *testing.T) {
	if hashToken("abc") != hashToken("abc") {
		t.Error("identical input must produce identical hashes")
	}
	if hashToken("abc") == hashToken("abd") {
		t.Error("different input must produce different hashes")
	}
}
