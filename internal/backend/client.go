// Package backend is the HTTP client for the remote commerce backend. All
// responses are decoded into typed records at this boundary; nothing
// downstream touches raw JSON shapes.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	productsPath     = "/api/Product/GetAllProduct"
	productPath      = "/api/Product/GetProduct"
	placeOrderPath   = "/api/Order/PlaceOrder"
	ordersPath       = "/api/Order/GetOrderById"
	cancelOrderPath  = "/api/Order/CancelOrder"
	updateStatusPath = "/api/Order/UpdateOrderStatus"

	// Literal body the backend returns instead of an empty order array.
	noOrdersSentinel = "No orders found for the user."
)

type Client struct {
	baseURL string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, logger zerolog.Logger) *Client {
	breaker := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:    "storefront-backend",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: breaker,
		logger:  logger.With().Str("component", "backend").Logger(),
	}
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	return c.breaker.Execute(func() ([]byte, error) {
		var reader io.Reader
		if body != nil {
			data, err := json.Marshal(body)
			if err != nil {
				return nil, fmt.Errorf("marshal request: %w", err)
			}
			reader = bytes.NewReader(data)
		}

		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			c.logger.Warn().
				Str("path", path).
				Int("status", resp.StatusCode).
				Msg("backend call failed")
			return nil, fmt.Errorf("%s %s: backend returned %d", method, path, resp.StatusCode)
		}
		return data, nil
	})
}
