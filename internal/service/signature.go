package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SignatureVerifier validates inbound webhook authenticity. The signature
// is HMAC-SHA256 over the exact raw bytes received (never a re-serialized
// object, which could change whitespace or key order), base64-encoded and
// compared in constant time. Multiple secrets are supported so sandbox and
// production keys can be active at once during rotation.
type SignatureVerifier struct {
	secrets []string
}

// NewSignatureVerifier creates a verifier over the given shared secrets.
// Empty secrets are dropped; with no usable secret the verifier fails
// closed.
func NewSignatureVerifier(secrets ...string) *SignatureVerifier {
	v := &SignatureVerifier{}
	for _, s := range secrets {
		if s != "" {
			v.secrets = append(v.secrets, s)
		}
	}
	return v
}

// Sign computes the base64-encoded HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// Verify checks signature against every active secret, returning true on
// the first match. Returns false for an empty signature or when no secret
// is configured.
func (v *SignatureVerifier) Verify(body []byte, signature string) bool {
	if signature == "" || len(v.secrets) == 0 {
		return false
	}
	for _, secret := range v.secrets {
		expected := Sign(secret, body)
		if hmac.Equal([]byte(expected), []byte(signature)) {
			return true
		}
	}
	return false
}
