// Package payment talks to the Razorpay orders API and verifies the
// signatures it returns to the storefront after checkout.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
)

var ErrUnavailable = errors.New("payment gateway unavailable")

// Gateway creates payment intents at the external provider.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*GatewayOrder, error)
	KeyID() string
}

// GatewayOrder is the provider's handle for one payment intent.
type GatewayOrder struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// GatewayError is a non-2xx answer from the provider.
type GatewayError struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("razorpay API error (%d): %s %s", e.StatusCode, e.Code, e.Description)
}

type razorpayErrorBody struct {
	Error *struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error,omitempty"`
}

type RazorpayClient struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker[*GatewayOrder]
}

func NewRazorpayClient(baseURL, keyID, keySecret string) *RazorpayClient {
	return &RazorpayClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		http:      &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[*GatewayOrder](gobreaker.Settings{
			Name:        "razorpay",
			MaxRequests: 1,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				// rejected requests say nothing about the provider's health
				var gwErr *GatewayError
				if errors.As(err, &gwErr) {
					return gwErr.StatusCode < http.StatusInternalServerError
				}
				return err == nil
			},
		}),
	}
}

func (c *RazorpayClient) KeyID() string { return c.keyID }

// CreateOrder opens a payment intent for amountMinor (paise for INR).
func (c *RazorpayClient) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*GatewayOrder, error) {
	order, err := c.breaker.Execute(func() (*GatewayOrder, error) {
		return c.createOrder(ctx, amountMinor, currency, receipt)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return order, err
}

func (c *RazorpayClient) createOrder(ctx context.Context, amountMinor int64, currency, receipt string) (*GatewayOrder, error) {
	payload := map[string]any{
		"amount":   amountMinor,
		"currency": currency,
		"receipt":  receipt,
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach razorpay: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read razorpay response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		gwErr := &GatewayError{StatusCode: resp.StatusCode}
		var eb razorpayErrorBody
		if json.Unmarshal(body, &eb) == nil && eb.Error != nil {
			gwErr.Code, gwErr.Description = eb.Error.Code, eb.Error.Description
		}
		return nil, gwErr
	}

	var order GatewayOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("failed to parse razorpay response: %w", err)
	}
	if order.ID == "" {
		return nil, errors.New("razorpay returned empty order id")
	}
	return &order, nil
}
