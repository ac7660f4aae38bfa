package payment

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "secret", pass)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, float64(300000), body["amount"])
		assert.Equal(t, "INR", body["currency"])
		assert.Equal(t, "order_12", body["receipt"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"order_RZP1","amount":300000,"currency":"INR","receipt":"order_12","status":"created"}`))
	}))
	defer srv.Close()

	client := NewRazorpayClient(srv.URL+"/", "rzp_test_key", "secret")
	order, err := client.CreateOrder(context.Background(), 300000, "INR", "order_12")
	require.NoError(t, err)

	assert.Equal(t, "order_RZP1", order.ID)
	assert.Equal(t, int64(300000), order.Amount)
	assert.Equal(t, "rzp_test_key", client.KeyID())
}

func TestCreateOrder_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount must be at least INR 1.00"}}`))
	}))
	defer srv.Close()

	client := NewRazorpayClient(srv.URL, "k", "s")
	_, err := client.CreateOrder(context.Background(), 10, "INR", "order_1")

	var gwErr *GatewayError
	require.ErrorAs(t, err, &gwErr)
	assert.Equal(t, http.StatusBadRequest, gwErr.StatusCode)
	assert.Equal(t, "BAD_REQUEST_ERROR", gwErr.Code)
}

func TestCreateOrder_BreakerOpensOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewRazorpayClient(srv.URL, "k", "s")
	for i := 0; i < 5; i++ {
		_, err := client.CreateOrder(context.Background(), 100, "INR", "r")
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrUnavailable))
	}

	_, err := client.CreateOrder(context.Background(), 100, "INR", "r")
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(5), calls.Load())
}

func TestCreateOrder_ClientErrorsDoNotTrip(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := NewRazorpayClient(srv.URL, "k", "s")
	for i := 0; i < 6; i++ {
		_, err := client.CreateOrder(context.Background(), 100, "INR", "r")
		assert.False(t, errors.Is(err, ErrUnavailable))
	}
}

func TestVerifySignature(t *testing.T) {
	sig := Sign("shh", "order_RZP1", "pay_ABC")

	assert.True(t, VerifySignature("shh", "order_RZP1", "pay_ABC", sig))
	assert.False(t, VerifySignature("shh", "order_RZP1", "pay_ABD", sig))
	assert.False(t, VerifySignature("other", "order_RZP1", "pay_ABC", sig))
	assert.False(t, VerifySignature("shh", "order_RZP1", "pay_ABC", sig[:10]))
	assert.False(t, VerifySignature("shh", "order_RZP1", "pay_ABC", ""))
}
