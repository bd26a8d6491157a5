package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/deundomarinel09/easyshop-engine/internal/domain"
)

// Products fetches the full catalog. Records that fail validation are
// dropped with a log line rather than failing the whole listing.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	data, err := c.do(ctx, http.MethodGet, productsPath, nil)
	if err != nil {
		return nil, err
	}

	var records valuesList[productRecord]
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode products: %w", err)
	}

	products := make([]domain.Product, 0, len(records.Values))
	for _, r := range records.Values {
		p, err := r.toDomain()
		if err != nil {
			c.logger.Warn().Err(err).Msg("dropping invalid product record")
			continue
		}
		products = append(products, p)
	}
	return products, nil
}

// Product looks up a single product by id, as currently known to the backend.
func (c *Client) Product(ctx context.Context, id int64) (domain.Product, error) {
	data, err := c.do(ctx, http.MethodPost, productPath, map[string]int64{"id": id})
	if err != nil {
		return domain.Product{}, err
	}

	var record productRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.Product{}, fmt.Errorf("decode product %d: %w", id, err)
	}
	return record.toDomain()
}

// PlaceOrder submits the payload. Any non-2xx response is a submission
// failure; the response body carries no information the engine needs.
func (c *Client) PlaceOrder(ctx context.Context, payload domain.OrderPayload) error {
	_, err := c.do(ctx, http.MethodPost, placeOrderPath, toWire(payload))
	if err != nil {
		return fmt.Errorf("place order: %w", err)
	}
	return nil
}

// OrdersByBuyer fetches every order of the buyer. The backend answers with
// a literal sentinel string instead of an empty array when the buyer has no
// orders; that is an empty result, not an error.
func (c *Client) OrdersByBuyer(ctx context.Context, buyerID string) ([]domain.Order, error) {
	data, err := c.do(ctx, http.MethodPost, ordersPath, map[string]string{"userId": buyerID})
	if err != nil {
		return nil, err
	}

	if isNoOrdersSentinel(data) {
		return nil, nil
	}

	var records valuesList[orderRecord]
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}

	orders := make([]domain.Order, 0, len(records.Values))
	for _, r := range records.Values {
		o, err := r.toDomain()
		if err != nil {
			c.logger.Warn().Err(err).Msg("dropping invalid order record")
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

type actionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// CancelOrder asks the backend to cancel a pending order. The backend is
// responsible for rejecting a cancel on an order that already left Pending.
func (c *Client) CancelOrder(ctx context.Context, orderRef, reason string) error {
	body := map[string]string{"OrderRef": orderRef, "Reason": reason}
	data, err := c.do(ctx, http.MethodPost, cancelOrderPath, body)
	if err != nil {
		return fmt.Errorf("cancel order %s: %w", orderRef, err)
	}
	return decodeActionResult(data, "cancel order "+orderRef)
}

// UpdateOrderStatus drives a one-way status transition, e.g. marking a
// shipped order received.
func (c *Client) UpdateOrderStatus(ctx context.Context, orderRef string, status domain.OrderStatus) error {
	body := map[string]string{"OrderRef": orderRef, "Status": status.String()}
	data, err := c.do(ctx, http.MethodPost, updateStatusPath, body)
	if err != nil {
		return fmt.Errorf("update order %s status: %w", orderRef, err)
	}
	return decodeActionResult(data, "update order "+orderRef)
}

func decodeActionResult(data []byte, op string) error {
	var result actionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	if !result.Success {
		if result.Message != "" {
			return fmt.Errorf("%s: %s", op, result.Message)
		}
		return fmt.Errorf("%s: backend rejected the request", op)
	}
	return nil
}

func isNoOrdersSentinel(data []byte) bool {
	body := strings.TrimSpace(string(data))
	if body == noOrdersSentinel {
		return true
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil && s == noOrdersSentinel {
		return true
	}
	return false
}
