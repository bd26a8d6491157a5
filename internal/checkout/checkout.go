// Package checkout composes the cart, the pricing engine and the backend
// into the order submission flow: purge dead lines, price a fresh read of
// the cart, submit, and clear the cart only once the backend confirms.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/deundomarinel09/easyshop-engine/internal/cart"
	"github.com/deundomarinel09/easyshop-engine/internal/domain"
	"github.com/deundomarinel09/easyshop-engine/internal/pricing"
)

var (
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrSubmitInFlight     = errors.New("an order submission is already in progress")
	ErrMissingContactInfo = errors.New("name, email, phone and address are required")
)

// OrderPlacer is the slice of the backend this service needs.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, payload domain.OrderPayload) error
}

// SubmitRequest carries the buyer's shipping details for one checkout
// attempt. Point, once captured here, is never mutated.
type SubmitRequest struct {
	Name         string
	Email        string
	Phone        string
	Address      string
	Instructions string
	Point        *domain.GeoPoint
}

type Service struct {
	cart          *cart.Service
	placer        OrderPlacer
	storeLocation domain.GeoPoint
	logger        zerolog.Logger

	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewService(cartSvc *cart.Service, placer OrderPlacer, storeLocation domain.GeoPoint, logger zerolog.Logger) *Service {
	return &Service{
		cart:          cartSvc,
		placer:        placer,
		storeLocation: storeLocation,
		logger:        logger.With().Str("component", "checkout").Logger(),
		inflight:      make(map[string]struct{}),
	}
}

// Quote prices the buyer's current cart delivered to point. The cart is
// re-read on every call; quotes are never served from a stale copy.
func (s *Service) Quote(ctx context.Context, buyerID string, point *domain.GeoPoint) (domain.FeeBreakdown, error) {
	items, err := s.cart.Items(ctx, buyerID)
	if err != nil {
		return domain.FeeBreakdown{}, err
	}
	return pricing.Quote(items, point, s.storeLocation), nil
}

// Submit places the order and clears the cart on confirmed success. A
// second submission for the same buyer while one is outstanding is refused.
func (s *Service) Submit(ctx context.Context, buyerID string, req SubmitRequest) (domain.FeeBreakdown, error) {
	if err := validate(req); err != nil {
		return domain.FeeBreakdown{}, err
	}

	if !s.begin(buyerID) {
		return domain.FeeBreakdown{}, ErrSubmitInFlight
	}
	defer s.end(buyerID)

	// Lines whose stock collapsed to zero must never reach the backend.
	if err := s.cart.PurgeOutOfStock(ctx, buyerID); err != nil {
		return domain.FeeBreakdown{}, err
	}

	items, err := s.cart.Items(ctx, buyerID)
	if err != nil {
		return domain.FeeBreakdown{}, err
	}
	if len(items) == 0 {
		return domain.FeeBreakdown{}, ErrEmptyCart
	}

	fees := pricing.Quote(items, req.Point, s.storeLocation)

	payloadItems := make([]domain.PayloadItem, 0, len(items))
	for _, it := range items {
		payloadItems = append(payloadItems, domain.PayloadItem{
			ProductID: it.ProductID,
			UnitPrice: it.Price,
			Quantity:  it.Quantity,
		})
	}

	payload := domain.OrderPayload{
		BuyerID:         buyerID,
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		ShippingAddress: req.Address,
		Instructions:    req.Instructions,
		Status:          domain.OrderStatusPending,
		Items:           payloadItems,
		Fees:            fees,
		Point:           req.Point,
	}

	if err := s.placer.PlaceOrder(ctx, payload); err != nil {
		s.logger.Warn().Err(err).Str("buyer_id", buyerID).Msg("order submission failed")
		return domain.FeeBreakdown{}, fmt.Errorf("submit order: %w", err)
	}

	// Only a confirmed submission empties the cart.
	if err := s.cart.Clear(ctx, buyerID); err != nil {
		s.logger.Error().Err(err).Str("buyer_id", buyerID).Msg("order placed but cart clear failed")
	}

	s.logger.Info().Str("buyer_id", buyerID).Msg("order placed")
	return fees, nil
}

func (s *Service) begin(buyerID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inflight[buyerID]; busy {
		return false
	}
	s.inflight[buyerID] = struct{}{}
	return true
}

func (s *Service) end(buyerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inflight, buyerID)
}

func validate(req SubmitRequest) error {
	for _, field := range []string{req.Name, req.Email, req.Phone, req.Address} {
		if strings.TrimSpace(field) == "" {
			return ErrMissingContactInfo
		}
	}
	return nil
}
