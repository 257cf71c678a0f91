package service_test

import (
	"testing"

	"github.com/copperkettle/catering/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestVerify_ValidSignature(t *testing.T) {
	body := []byte(`{"event_id":"evt-1","type":"payment.updated"}`)
	v := service.NewSignatureVerifier("secret-a")

	assert.True(t, v.Verify(body, service.Sign("secret-a", body)))
}

func TestVerify_WrongSecret(t *testing.T) {
	body := []byte(`{"event_id":"evt-1"}`)
	v := service.NewSignatureVerifier("secret-a")

	assert.False(t, v.Verify(body, service.Sign("secret-b", body)))
}

func TestVerify_MultipleSecrets(t *testing.T) {
	body := []byte(`{"event_id":"evt-1"}`)
	v := service.NewSignatureVerifier("sandbox-secret", "production-secret")

	assert.True(t, v.Verify(body, service.Sign("sandbox-secret", body)))
	assert.True(t, v.Verify(body, service.Sign("production-secret", body)))
	assert.False(t, v.Verify(body, service.Sign("rotated-out-secret", body)))
}

func TestVerify_SingleByteMutationFlipsResult(t *testing.T) {
	body := []byte(`{"event_id":"evt-1","amount":4500}`)
	v := service.NewSignatureVerifier("secret-a")
	sig := service.Sign("secret-a", body)

	for i := range body {
		mutated := make([]byte, len(body))
		copy(mutated, body)
		mutated[i] ^= 0x01
		assert.False(t, v.Verify(mutated, sig), "flipped byte %d must invalidate signature", i)
	}
}

func TestVerify_FailsClosedWithoutSecrets(t *testing.T) {
	body := []byte(`{}`)

	v := service.NewSignatureVerifier()
	assert.False(t, v.Verify(body, service.Sign("anything", body)))

	// Empty strings do not count as secrets.
	v = service.NewSignatureVerifier("", "")
	assert.False(t, v.Verify(body, service.Sign("", body)))
}

func TestVerify_EmptySignature(t *testing.T) {
	v := service.NewSignatureVerifier("secret-a")
	assert.False(t, v.Verify([]byte(`{}`), ""))
}
