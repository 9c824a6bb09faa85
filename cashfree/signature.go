package cashfree

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// VerifySignature checks the authenticity of a webhook delivery.
// Cashfree signs base64(HMAC-SHA256(timestamp + rawBody)) with the merchant
// secret and sends it in the x-webhook-signature header alongside
// x-webhook-timestamp. The comparison is constant-time and the function
// fails closed: any missing input or undecodable signature returns false.
func VerifySignature(rawBody []byte, timestamp, receivedSignature, secret string) bool {
	if secret == "" || timestamp == "" || len(rawBody) == 0 || receivedSignature == "" {
		return false
	}

	received, err := base64.StdEncoding.DecodeString(receivedSignature)
	if err != nil {
		return false
	}

	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(timestamp))
	h.Write(rawBody)

	return hmac.Equal(h.Sum(nil), received)
}

// SignPayload computes the signature Cashfree would attach to the given
// timestamp and body. Used by tests and by the sandbox replay tool.
func SignPayload(rawBody []byte, timestamp, secret string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(timestamp))
	h.Write(rawBody)
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}
