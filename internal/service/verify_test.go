package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifySignature_AcceptsCorrectSignature(t *testing.T) {
	t.Parallel()

	sig := sign("order_abc", "pay_xyz", testSecret)
	assert.True(t, VerifySignature("order_abc", "pay_xyz", sig, testSecret))
}

func TestVerifySignature_Deterministic(t *testing.T) {
	t.Parallel()

	sig := sign("order_abc", "pay_xyz", testSecret)
	for i := 0; i < 10; i++ {
		assert.True(t, VerifySignature("order_abc", "pay_xyz", sig, testSecret))
	}
}

func TestVerifySignature_AnyFlippedByteRejects(t *testing.T) {
	t.Parallel()

	sig := sign("order_abc", "pay_xyz", testSecret)
	require.NotEmpty(t, sig)

	for i := 0; i < len(sig); i++ {
		mutated := []byte(sig)
		mutated[i] ^= 0x01
		assert.False(t, VerifySignature("order_abc", "pay_xyz", string(mutated), testSecret),
			"flipping byte %d must reject", i)
	}
}

func TestVerifySignature_RejectsWrongInputs(t *testing.T) {
	t.Parallel()

	sig := sign("order_abc", "pay_xyz", testSecret)

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		supplied  string
		secret    []byte
	}{
		{name: "wrong order id", orderID: "order_other", paymentID: "pay_xyz", supplied: sig, secret: testSecret},
		{name: "wrong payment id", orderID: "order_abc", paymentID: "pay_other", supplied: sig, secret: testSecret},
		{name: "wrong secret", orderID: "order_abc", paymentID: "pay_xyz", supplied: sig, secret: []byte("other-secret")},
		{name: "empty signature", orderID: "order_abc", paymentID: "pay_xyz", supplied: "", secret: testSecret},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.False(t, VerifySignature(tt.orderID, tt.paymentID, tt.supplied, tt.secret))
		})
	}
}
