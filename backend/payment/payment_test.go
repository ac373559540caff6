package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/transaction/verify/chk_ok":
			_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"reference":"chk_ok","status":"success","amount":500000,"currency":"NGN","paid_at":"2026-05-01T10:00:00Z"}}`))
		case "/transaction/verify/chk_abandoned":
			_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"reference":"chk_abandoned","status":"abandoned","amount":500000,"currency":"NGN"}}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sk_test")
	ctx := context.Background()

	v, err := c.Verify(ctx, "chk_ok")
	require.NoError(t, err)
	assert.True(t, v.Succeeded())
	assert.Equal(t, int64(500000), v.Amount)
	assert.Equal(t, "NGN", v.Currency)
	assert.Equal(t, 2026, v.PaidAt.Year())

	v, err = c.Verify(ctx, "chk_abandoned")
	require.NoError(t, err)
	assert.False(t, v.Succeeded())

	_, err = c.Verify(ctx, "chk_unknown")
	assert.ErrorIs(t, err, ErrVerificationFailed)
	assert.Contains(t, err.Error(), "reference not found")

	_, err = c.Verify(ctx, "")
	assert.ErrorIs(t, err, ErrVerificationFailed)
}

func TestNewReference(t *testing.T) {
	a, b := NewReference(), NewReference()
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "chk_"))
	assert.NotContains(t, a, "-")
}
