package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/deundomarinel09/easyshop-engine/internal/cart"
	"github.com/deundomarinel09/easyshop-engine/internal/checkout"
	"github.com/deundomarinel09/easyshop-engine/internal/domain"
)

// --- Mocks ---

type catalogMock struct {
	products map[int64]domain.Product
	err      error
}

func (m catalogMock) Products(context.Context) ([]domain.Product, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]domain.Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	return out, nil
}

func (m catalogMock) Product(_ context.Context, id int64) (domain.Product, error) {
	if m.err != nil {
		return domain.Product{}, m.err
	}
	p, ok := m.products[id]
	if !ok {
		return domain.Product{}, errors.New("product not found")
	}
	return p, nil
}

type placerMock struct{ err error }

func (m placerMock) PlaceOrder(context.Context, domain.OrderPayload) error { return m.err }

// --- helpers ---

var testStore = domain.GeoPoint{Lat: 14.5995, Lng: 120.9842}

func newCartHandler(catalog Catalog) (*CartHandler, *cart.Service) {
	cartSvc := cart.NewService(cart.NewMemoryStore(), zerolog.Nop())
	checkoutSvc := checkout.NewService(cartSvc, placerMock{}, testStore, zerolog.Nop())
	return NewCartHandler(cartSvc, checkoutSvc, catalog, 5*time.Second), cartSvc
}

func withBuyer(r *http.Request) *http.Request {
	ctx := context.WithValue(r.Context(), buyerIDKey, "123")
	return r.WithContext(ctx)
}

func withProductID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("product_id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func inStock(id int64, stock int) domain.Product {
	return domain.Product{
		ID:            id,
		Name:          "rice",
		Price:         decimal.NewFromInt(100),
		Stock:         stock,
		Weight:        decimal.NewFromInt(1),
		UnitOfMeasure: "kg",
	}
}

// --- tests ---

func TestAddItem_Success(t *testing.T) {
	handler, _ := newCartHandler(catalogMock{products: map[int64]domain.Product{
		1: inStock(1, 5),
	}})

	recorder := httptest.NewRecorder()
	request := withBuyer(httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(`{"product_id":1}`)))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}

	var response CartResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(response.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(response.Items))
	}
	if response.Items[0].Quantity != 1 {
		t.Errorf("expected quantity 1, got %d", response.Items[0].Quantity)
	}
	if response.Fees.ItemsSubtotal != "100.00" {
		t.Errorf("expected subtotal '100.00', got '%s'", response.Fees.ItemsSubtotal)
	}
}

func TestAddItem_OutOfStock(t *testing.T) {
	handler, cartSvc := newCartHandler(catalogMock{products: map[int64]domain.Product{
		1: inStock(1, 0),
	}})

	recorder := httptest.NewRecorder()
	request := withBuyer(httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(`{"product_id":1}`)))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusConflict {
		t.Errorf("expected %d, got %d", http.StatusConflict, recorder.Code)
	}
	items, _ := cartSvc.Items(context.Background(), "123")
	if len(items) != 0 {
		t.Errorf("cart must stay empty, got %d items", len(items))
	}
}

func TestAddItem_Unauthenticated(t *testing.T) {
	handler, _ := newCartHandler(catalogMock{})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("POST", "/api/v1/cart/items", strings.NewReader(`{"product_id":1}`))

	handler.AddItem(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Errorf("expected %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestUpdateQuantity_ClampsToStock(t *testing.T) {
	handler, cartSvc := newCartHandler(catalogMock{products: map[int64]domain.Product{
		1: inStock(1, 5),
	}})
	if err := cartSvc.AddItem(context.Background(), "123", inStock(1, 5)); err != nil {
		t.Fatal(err)
	}

	recorder := httptest.NewRecorder()
	request := withBuyer(withProductID(
		httptest.NewRequest("PUT", "/api/v1/cart/items/1", strings.NewReader(`{"quantity":50}`)), "1"))

	handler.UpdateQuantity(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, recorder.Code)
	}
	var response CartResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Items[0].Quantity != 5 {
		t.Errorf("expected quantity clamped to 5, got %d", response.Items[0].Quantity)
	}
}

func TestUpdateQuantity_RejectsNonPositive(t *testing.T) {
	handler, _ := newCartHandler(catalogMock{})

	recorder := httptest.NewRecorder()
	request := withBuyer(withProductID(
		httptest.NewRequest("PUT", "/api/v1/cart/items/1", strings.NewReader(`{"quantity":0}`)), "1"))

	handler.UpdateQuantity(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestQuote_WithDeliveryPoint(t *testing.T) {
	handler, cartSvc := newCartHandler(catalogMock{})
	if err := cartSvc.AddItem(context.Background(), "123", inStock(1, 5)); err != nil {
		t.Fatal(err)
	}

	recorder := httptest.NewRecorder()
	request := withBuyer(httptest.NewRequest("GET", "/api/v1/cart/quote?lat=14.6095&lng=120.9842", nil))

	handler.Quote(recorder, request)

	if recorder.Code != http.StatusOK {
		t.Fatalf("expected %d, got %d", http.StatusOK, recorder.Code)
	}
	var response CartResponseDTO
	if err := json.NewDecoder(recorder.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	// ~1.1 km north of the store: base 35 plus one whole kilometer.
	if response.Fees.DistanceFee != "45.00" {
		t.Errorf("expected distance fee '45.00', got '%s'", response.Fees.DistanceFee)
	}
}

func TestQuote_BadCoordinates(t *testing.T) {
	handler, _ := newCartHandler(catalogMock{})

	recorder := httptest.NewRecorder()
	request := withBuyer(httptest.NewRequest("GET", "/api/v1/cart/quote?lat=abc&lng=1", nil))

	handler.Quote(recorder, request)

	if recorder.Code != http.StatusBadRequest {
		t.Errorf("expected %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}
