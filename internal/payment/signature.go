package payment

import (
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"strings"
)

// Signature computes the Midtrans notification signature: the SHA-512 hex
// digest of order_id + status_code + gross_amount + server key.
func Signature(orderID, statusCode, grossAmount, serverKey string) string {
	sum := sha512.Sum512([]byte(orderID + statusCode + grossAmount + serverKey))
	return hex.EncodeToString(sum[:])
}

// VerifySignature recomputes the expected signature for n and compares it
// in constant time, so the check does not leak how many leading bytes of a
// forged signature were correct.
func VerifySignature(n *Notification, serverKey string) bool {
	expected := Signature(n.OrderID, n.StatusCode, n.GrossAmount, serverKey)
	supplied := strings.ToLower(n.SignatureKey)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(supplied)) == 1
}
