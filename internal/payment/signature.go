package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign computes a hex HMAC-SHA256 over the plain concatenation of
// fields in argument order, keyed by secret. The field order is part of
// the processor protocol and must never differ between signer and
// verifier.
func Sign(secret string, fields ...string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	for _, f := range fields {
		mac.Write([]byte(f))
	}
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the MAC and compares it against candidate in
// constant time. A malformed candidate is never an error; it simply
// fails closed.
func Verify(secret, candidate string, fields ...string) bool {
	got, err := hex.DecodeString(candidate)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, []byte(secret))
	for _, f := range fields {
		mac.Write([]byte(f))
	}
	return hmac.Equal(got, mac.Sum(nil))
}
