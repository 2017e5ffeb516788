package payments

import (
	"strings"
	"testing"
)

func TestSignatureDigestDeterministic(t *testing.T) {
	secret := "test_secret_key"
	a := SignatureDigest("order_123", "pay_456", secret)
	b := SignatureDigest("order_123", "pay_456", secret)

	if a != b {
		t.Fatalf("digest not deterministic: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(a))
	}
	if strings.ToLower(a) != a {
		t.Fatalf("digest must be lowercase hex: %s", a)
	}
}

func TestSignatureDigestChangesWithInput(t *testing.T) {
	secret := "test_secret_key"
	base := SignatureDigest("order_123", "pay_456", secret)

	variants := []struct {
		name    string
		orderID string
		payID   string
		secret  string
	}{
		{"different order", "order_124", "pay_456", secret},
		{"different payment", "order_123", "pay_457", secret},
		{"different secret", "order_123", "pay_456", "other_secret"},
		{"swapped ids", "pay_456", "order_123", secret},
	}

	for _, v := range variants {
		got := SignatureDigest(v.orderID, v.payID, v.secret)
		if got == base {
			t.Errorf("%s produced the same digest", v.name)
		}
	}
}

func TestVerifySignature(t *testing.T) {
	secret := "test_secret_key"
	valid := SignatureDigest("order_123", "pay_456", secret)

	if !VerifySignature("order_123", "pay_456", valid, secret) {
		t.Fatal("valid signature rejected")
	}
	if VerifySignature("order_123", "pay_456", valid, "wrong_secret") {
		t.Fatal("signature accepted with wrong secret")
	}
	if VerifySignature("order_999", "pay_456", valid, secret) {
		t.Fatal("signature accepted for wrong order")
	}
}

func TestVerifySignatureMalformedInput(t *testing.T) {
	secret := "test_secret_key"

	cases := []struct {
		name      string
		signature string
	}{
		{"empty", ""},
		{"truncated", SignatureDigest("order_123", "pay_456", secret)[:32]},
		{"not hex", "zzzz-not-a-signature"},
		{"uppercase hex", strings.ToUpper(SignatureDigest("order_123", "pay_456", secret))},
	}

	for _, c := range cases {
		if VerifySignature("order_123", "pay_456", c.signature, secret) {
			t.Errorf("%s signature accepted", c.name)
		}
	}
}

func TestVerifySignatureEmptySecret(t *testing.T) {
	// With no secret configured nothing can verify, not even an empty claim
	if VerifySignature("order_123", "pay_456", "", "") {
		t.Fatal("empty signature accepted with empty secret")
	}
	digest := SignatureDigest("order_123", "pay_456", "")
	if VerifySignature("order_123", "pay_456", digest, "") {
		t.Fatal("signature accepted with empty secret")
	}
}
