package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// VerifySignature checks a payment-gateway callback against the shared
// secret: HMAC-SHA256 over "<gatewayOrderID>|<gatewayPaymentID>", hex
// encoded, compared in constant time. A mismatch is a normal negative
// verdict; the secret is never logged or persisted.
func VerifySignature(gatewayOrderID, gatewayPaymentID, supplied string, secret []byte) bool {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) == 1
}
