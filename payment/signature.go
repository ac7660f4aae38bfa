package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign is the hex HMAC-SHA256 of "intentID|paymentRef" under secret.
func Sign(secret, intentID, paymentRef string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(intentID + "|" + paymentRef))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time.
func VerifySignature(secret, intentID, paymentRef, signature string) bool {
	expected := Sign(secret, intentID, paymentRef)
	return hmac.Equal([]byte(expected), []byte(signature))
}
