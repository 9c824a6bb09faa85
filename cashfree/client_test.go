package cashfree

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrderSendsAuthHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, APIVersion, r.Header.Get("x-api-version"))
		assert.Equal(t, "client-id", r.Header.Get("x-client-id"))
		assert.Equal(t, "client-secret", r.Header.Get("x-client-secret"))
		assert.Equal(t, "/pg/orders/ord_1", r.URL.Path)

		json.NewEncoder(w).Encode(map[string]interface{}{
			"order_id":     "ord_1",
			"order_amount": 5000.0,
			"order_status": "PAID",
			"order_tags":   map[string]string{"metal_type": "gold"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "client-id", "client-secret", 2*time.Second)
	order, err := client.GetOrder(context.Background(), "ord_1")
	require.NoError(t, err)
	assert.Equal(t, "ord_1", order.OrderID)
	assert.Equal(t, "PAID", order.OrderStatus)
	assert.Equal(t, 5000.0, order.OrderAmount)
	assert.Equal(t, "gold", order.OrderTags["metal_type"])
	assert.NotNil(t, order.Raw)
}

func TestGetPayments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pg/orders/ord_1/payments", r.URL.Path)
		w.Write([]byte(`[{"cf_payment_id":12345,"payment_status":"SUCCESS","payment_amount":5000}]`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "id", "secret", 2*time.Second)
	payments, err := client.GetPayments(context.Background(), "ord_1")
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, "12345", payments[0].CFPaymentID.String())
	assert.Equal(t, "SUCCESS", payments[0].PaymentStatus)
}

func TestClientRetriesServerErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"order_id":"ord_1","order_status":"PAID"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "id", "secret", 2*time.Second)
	order, err := client.GetOrder(context.Background(), "ord_1")
	require.NoError(t, err)
	assert.Equal(t, "PAID", order.OrderStatus)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"order not found"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "id", "secret", 2*time.Second)
	_, err := client.GetOrder(context.Background(), "ord_unknown")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "4xx must not be retried")
}

func TestClientUnavailableAfterExhaustedRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, "id", "secret", 2*time.Second)
	_, err := client.GetOrder(context.Background(), "ord_1")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestCreateOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/pg/orders", r.URL.Path)

		var req CreateOrderRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "ord_new", req.OrderID)
		assert.Equal(t, "INR", req.OrderCurrency)
		assert.Equal(t, "gold", req.OrderTags["metal_type"])

		json.NewEncoder(w).Encode(CreateOrderResponse{
			OrderID:          req.OrderID,
			OrderAmount:      req.OrderAmount,
			OrderStatus:      "ACTIVE",
			PaymentSessionID: "session_xyz",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, "id", "secret", 2*time.Second)
	req := CreateOrderRequest{
		OrderID:       "ord_new",
		OrderAmount:   1500,
		OrderCurrency: "INR",
		OrderTags:     map[string]string{"metal_type": "gold", "user_id": "7"},
	}
	req.CustomerDetails.CustomerID = "7"
	req.CustomerDetails.CustomerPhone = "9999999999"

	resp, err := client.CreateOrder(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "session_xyz", resp.PaymentSessionID)
	assert.Equal(t, "ACTIVE", resp.OrderStatus)
}
