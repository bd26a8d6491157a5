package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/deundomarinel09/easyshop-engine/internal/cart"
	"github.com/deundomarinel09/easyshop-engine/internal/domain"
	"github.com/deundomarinel09/easyshop-engine/internal/reconciler"
	"github.com/deundomarinel09/easyshop-engine/internal/reorder"
)

type orderBackendMock struct {
	mu     sync.Mutex
	orders []domain.Order
}

func (m *orderBackendMock) OrdersByBuyer(context.Context, string) ([]domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Order, len(m.orders))
	copy(out, m.orders)
	return out, nil
}

func (m *orderBackendMock) CancelOrder(_ context.Context, orderRef, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].OrderRef == orderRef {
			m.orders[i].Status = domain.OrderStatusCancelled
			m.orders[i].CancelReason = reason
		}
	}
	return nil
}

func (m *orderBackendMock) UpdateOrderStatus(_ context.Context, orderRef string, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.orders {
		if m.orders[i].OrderRef == orderRef {
			m.orders[i].Status = status
		}
	}
	return nil
}

func testOrder(ref string, status domain.OrderStatus) domain.Order {
	return domain.Order{
		OrderRef: ref,
		Status:   status,
		Name:     "Juan",
		Items: []domain.OrderItem{
			{ProductID: 1, Product: "rice", UnitPrice: decimal.NewFromInt(100), Quantity: 2},
		},
	}
}

func newOrdersHandler(t *testing.T, backend *orderBackendMock, catalog Catalog) (*OrdersHandler, *cart.Service) {
	t.Helper()
	manager := reconciler.NewManager(backend, time.Hour, zerolog.Nop())
	t.Cleanup(manager.Close)

	cartSvc := cart.NewService(cart.NewMemoryStore(), zerolog.Nop())
	transformer := reorder.NewTransformer(catalog, cartSvc, zerolog.Nop())

	handler := NewOrdersHandler(manager, transformer, 5*time.Second)

	// Warm the buyer's reconciler so list requests see loaded state.
	rec, err := manager.For("123")
	require.NoError(t, err)
	require.Eventually(t, rec.Loaded, time.Second, 5*time.Millisecond)

	return handler, cartSvc
}

func withOrderRef(r *http.Request, ref string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("order_ref", ref)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestListOrders_FilterByStatus(t *testing.T) {
	backend := &orderBackendMock{orders: []domain.Order{
		testOrder("A", domain.OrderStatusPending),
		testOrder("B", domain.OrderStatusShipped),
	}}
	handler, _ := newOrdersHandler(t, backend, catalogMock{})

	recorder := httptest.NewRecorder()
	request := withBuyer(httptest.NewRequest("GET", "/api/v1/orders?status=Shipped", nil))

	handler.ListOrders(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	var response OrdersResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	require.Len(t, response.Orders, 1)
	require.Equal(t, "B", response.Orders[0].OrderRef)
}

func TestCancelOrder_RequiresReason(t *testing.T) {
	backend := &orderBackendMock{orders: []domain.Order{testOrder("A", domain.OrderStatusPending)}}
	handler, _ := newOrdersHandler(t, backend, catalogMock{})

	recorder := httptest.NewRecorder()
	request := withBuyer(withOrderRef(
		httptest.NewRequest("POST", "/api/v1/orders/A/cancel", strings.NewReader(`{"reason":""}`)), "A"))

	handler.CancelOrder(recorder, request)

	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCancelOrder_Success(t *testing.T) {
	backend := &orderBackendMock{orders: []domain.Order{testOrder("A", domain.OrderStatusPending)}}
	handler, _ := newOrdersHandler(t, backend, catalogMock{})

	recorder := httptest.NewRecorder()
	request := withBuyer(withOrderRef(
		httptest.NewRequest("POST", "/api/v1/orders/A/cancel", strings.NewReader(`{"reason":"Changed my mind"}`)), "A"))

	handler.CancelOrder(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestMarkReceived_WrongState(t *testing.T) {
	backend := &orderBackendMock{orders: []domain.Order{testOrder("A", domain.OrderStatusPending)}}
	handler, _ := newOrdersHandler(t, backend, catalogMock{})

	recorder := httptest.NewRecorder()
	request := withBuyer(withOrderRef(
		httptest.NewRequest("POST", "/api/v1/orders/A/received", nil), "A"))

	handler.MarkReceived(recorder, request)

	require.Equal(t, http.StatusConflict, recorder.Code)
}

func TestReorder_RehydratesCart(t *testing.T) {
	backend := &orderBackendMock{orders: []domain.Order{testOrder("A", domain.OrderStatusCancelled)}}
	catalog := catalogMock{products: map[int64]domain.Product{
		1: inStock(1, 5),
	}}
	handler, cartSvc := newOrdersHandler(t, backend, catalog)

	recorder := httptest.NewRecorder()
	request := withBuyer(withOrderRef(
		httptest.NewRequest("POST", "/api/v1/orders/A/reorder", nil), "A"))

	handler.Reorder(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	var response ReorderResponseDTO
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&response))
	require.Equal(t, 1, response.Added)
	require.Equal(t, 0, response.Dropped)

	items, err := cartSvc.Items(context.Background(), "123")
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, 2, items[0].Quantity, "original quantity carried over")
}

func TestReorder_NonTerminalRejected(t *testing.T) {
	backend := &orderBackendMock{orders: []domain.Order{testOrder("A", domain.OrderStatusProcessing)}}
	handler, _ := newOrdersHandler(t, backend, catalogMock{})

	recorder := httptest.NewRecorder()
	request := withBuyer(withOrderRef(
		httptest.NewRequest("POST", "/api/v1/orders/A/reorder", nil), "A"))

	handler.Reorder(recorder, request)

	require.Equal(t, http.StatusConflict, recorder.Code)
}

func TestListOrders_Unauthenticated(t *testing.T) {
	handler, _ := newOrdersHandler(t, &orderBackendMock{}, catalogMock{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/api/v1/orders", nil)

	handler.ListOrders(recorder, request)

	require.Equal(t, http.StatusUnauthorized, recorder.Code)
}
