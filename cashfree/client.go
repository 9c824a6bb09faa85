package cashfree

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// APIVersion is the Cashfree PG API version every request is pinned to.
const APIVersion = "2022-09-01"

// ErrUnavailable indicates the gateway could not be reached or kept
// returning server errors. Callers treat it as transient and retry on a
// later reconciliation pass.
var ErrUnavailable = errors.New("cashfree: gateway unavailable")

// Order is the subset of the Cashfree order object the service consumes
type Order struct {
	OrderID     string                 `json:"order_id"`
	OrderAmount float64                `json:"order_amount"`
	OrderStatus string                 `json:"order_status"`
	OrderTags   map[string]string      `json:"order_tags"`
	CreatedAt   string                 `json:"created_at"`
	Raw         map[string]interface{} `json:"-"`
}

// Payment is one payment attempt against an order
type Payment struct {
	CFPaymentID   json.Number `json:"cf_payment_id"`
	PaymentStatus string      `json:"payment_status"`
	PaymentAmount float64     `json:"payment_amount"`
	PaymentMethod interface{} `json:"payment_method"`
	PaymentTime   string      `json:"payment_time"`
}

// CreateOrderRequest is the payload for creating a new payment order
type CreateOrderRequest struct {
	OrderID       string            `json:"order_id"`
	OrderAmount   float64           `json:"order_amount"`
	OrderCurrency string            `json:"order_currency"`
	OrderTags     map[string]string `json:"order_tags,omitempty"`
	CustomerDetails struct {
		CustomerID    string `json:"customer_id"`
		CustomerEmail string `json:"customer_email,omitempty"`
		CustomerPhone string `json:"customer_phone"`
	} `json:"customer_details"`
	OrderNote string `json:"order_note,omitempty"`
}

// CreateOrderResponse carries the fields the app needs to open a checkout
type CreateOrderResponse struct {
	OrderID          string  `json:"order_id"`
	OrderAmount      float64 `json:"order_amount"`
	OrderStatus      string  `json:"order_status"`
	PaymentSessionID string  `json:"payment_session_id"`
}

// Client talks to the Cashfree PG REST API. Construct once at startup and
// pass to collaborators; credentials never come from ambient env reads.
type Client struct {
	baseURL    string
	clientID   string
	secret     string
	httpClient *http.Client
	maxTries   uint
}

// NewClient builds a gateway client with a bounded per-request timeout.
func NewClient(baseURL, clientID, secret string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		clientID:   clientID,
		secret:     secret,
		httpClient: &http.Client{Timeout: timeout},
		maxTries:   3,
	}
}

// GetOrder fetches the authoritative order status from Cashfree.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	body, err := c.do(ctx, http.MethodGet, "/pg/orders/"+orderID, nil)
	if err != nil {
		return nil, err
	}

	var order Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("cashfree: decode order %s: %w", orderID, err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(body, &raw); err == nil {
		order.Raw = raw
	}
	return &order, nil
}

// GetPayments lists the payment attempts recorded against an order.
func (c *Client) GetPayments(ctx context.Context, orderID string) ([]Payment, error) {
	body, err := c.do(ctx, http.MethodGet, "/pg/orders/"+orderID+"/payments", nil)
	if err != nil {
		return nil, err
	}

	var payments []Payment
	if err := json.Unmarshal(body, &payments); err != nil {
		return nil, fmt.Errorf("cashfree: decode payments for %s: %w", orderID, err)
	}
	return payments, nil
}

// CreateOrder registers a new order with Cashfree and returns the payment
// session the client app uses to open checkout.
func (c *Client) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("cashfree: encode order request: %w", err)
	}

	body, err := c.do(ctx, http.MethodPost, "/pg/orders", payload)
	if err != nil {
		return nil, err
	}

	var resp CreateOrderResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("cashfree: decode create order response: %w", err)
	}
	return &resp, nil
}

// apiError is a non-retryable gateway rejection (4xx)
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("cashfree: api error %d: %s", e.Status, e.Message)
}

// do issues one authenticated request with retry on transport faults and
// 5xx responses. 4xx responses are permanent and surface immediately.
func (c *Client) do(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	op := func() ([]byte, error) {
		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("x-api-version", APIVersion)
		req.Header.Set("x-client-id", c.clientID)
		req.Header.Set("x-client-secret", c.secret)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode >= 500 {
			return nil, fmt.Errorf("cashfree: %s %s returned %d", method, path, resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return nil, backoff.Permanent(&apiError{Status: resp.StatusCode, Message: string(body)})
		}
		return body, nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 2 * time.Second

	body, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(c.maxTries))
	if err != nil {
		var apiErr *apiError
		if errors.As(err, &apiErr) {
			return nil, apiErr
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return body, nil
}

// IsNotFound reports whether the gateway rejected the order id as unknown.
func IsNotFound(err error) bool {
	var apiErr *apiError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}
