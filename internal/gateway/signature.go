package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// ComputeSignature returns the hex HMAC-SHA256 of body keyed by secret
func ComputeSignature(body []byte, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write(body)
	return hex.EncodeToString(h.Sum(nil))
}

// VerifySignature checks a gateway webhook signature against the raw,
// unparsed request body. Parsing and re-serializing before verification would
// break the check, so callers must pass the bytes exactly as received. An
// empty signature never verifies.
func VerifySignature(rawBody []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	expected := ComputeSignature(rawBody, secret)
	return hmac.Equal([]byte(signature), []byte(expected))
}
