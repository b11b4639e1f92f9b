package paystack

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVerifySignature(t *testing.T) {
	secret := "sk_test_secret"
	body := []byte(`{"event":"charge.success","data":{"reference":"ref-1"}}`)

	sig := Sign(secret, body)
	assert.True(t, VerifySignature(secret, body, sig))
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	secret := "sk_test_secret"
	body := []byte(`{"event":"charge.success","data":{"amount":1000}}`)
	sig := Sign(secret, body)

	tampered := []byte(`{"event":"charge.success","data":{"amount":100000}}`)
	assert.False(t, VerifySignature(secret, tampered, sig))
	assert.False(t, VerifySignature("other-secret", body, sig))
	assert.False(t, VerifySignature(secret, body, "deadbeef"))
}

func TestVerifySignatureEmptyInputs(t *testing.T) {
	assert.False(t, VerifySignature("", []byte("body"), "sig"))
	assert.False(t, VerifySignature("secret", []byte("body"), ""))
}
