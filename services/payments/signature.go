package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignatureDigest computes the hex HMAC-SHA256 digest the gateway signs
// completion callbacks with: HMAC(secret, orderID + "|" + paymentID).
func SignatureDigest(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches the expected digest for
// (orderID, paymentID). The comparison is constant time. Malformed or empty
// input is simply not authentic; this function never fails.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	expected := SignatureDigest(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
