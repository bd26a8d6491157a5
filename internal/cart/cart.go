// Package cart owns the buyer's cart line-items and is the only writer of
// their persisted representation. Every mutation re-reads the persisted
// state, applies the stock-ceiling invariants and writes the result back,
// so callers never act on a quantity that a concurrent removal already
// changed.
package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/deundomarinel09/easyshop-engine/internal/domain"
)

type Service struct {
	store  Store
	logger zerolog.Logger
}

func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger.With().Str("component", "cart").Logger(),
	}
}

// Items returns the buyer's current line-items. A buyer without a persisted
// cart gets an empty list, not an error.
func (s *Service) Items(ctx context.Context, buyerID string) ([]domain.CartItem, error) {
	items, err := s.store.Load(ctx, buyerID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return items, nil
}

// AddItem inserts the product with quantity 1, or bumps an existing line by
// one without ever exceeding the product's stock. A product with no stock
// left is a silent no-op.
func (s *Service) AddItem(ctx context.Context, buyerID string, p domain.Product) error {
	if !p.InStock() {
		s.logger.Debug().Int64("product_id", p.ID).Msg("add item skipped, out of stock")
		return nil
	}

	items, err := s.Items(ctx, buyerID)
	if err != nil {
		return err
	}

	found := false
	for i := range items {
		if items[i].ProductID == p.ID {
			if items[i].Quantity < items[i].Stock {
				items[i].Quantity++
			}
			found = true
			break
		}
	}
	if !found {
		items = append(items, domain.NewCartItem(p))
	}

	return s.persist(ctx, buyerID, items)
}

// SetQuantity clamps the requested quantity into [1, stock]. Non-positive
// input leaves the prior value unchanged; the line is never removed here.
func (s *Service) SetQuantity(ctx context.Context, buyerID string, productID int64, quantity int) error {
	if quantity < 1 {
		return nil
	}

	items, err := s.Items(ctx, buyerID)
	if err != nil {
		return err
	}

	changed := false
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = clamp(quantity, items[i].Stock)
			changed = true
			break
		}
	}
	if !changed {
		return nil
	}

	return s.persist(ctx, buyerID, items)
}

// RemoveItem drops the line unconditionally. Removing an absent line is
// not an error.
func (s *Service) RemoveItem(ctx context.Context, buyerID string, productID int64) error {
	items, err := s.Items(ctx, buyerID)
	if err != nil {
		return err
	}

	kept := items[:0]
	for _, it := range items {
		if it.ProductID != productID {
			kept = append(kept, it)
		}
	}

	return s.persist(ctx, buyerID, kept)
}

// Clear empties the cart and removes the persisted record.
func (s *Service) Clear(ctx context.Context, buyerID string) error {
	return s.persist(ctx, buyerID, nil)
}

// ReplaceAll swaps the cart's contents wholesale, clamping each incoming
// line through the normal invariants. Lines whose stock is gone are dropped;
// quantities above current stock are clamped, not rejected. Used by the
// reorder flow after it has cleared the cart.
func (s *Service) ReplaceAll(ctx context.Context, buyerID string, items []domain.CartItem) error {
	kept := make([]domain.CartItem, 0, len(items))
	for _, it := range items {
		if it.Stock < 1 {
			continue
		}
		it.Quantity = clamp(it.Quantity, it.Stock)
		kept = append(kept, it)
	}
	return s.persist(ctx, buyerID, kept)
}

// PurgeOutOfStock removes every line whose stock has dropped to zero.
// Runs before order submission so a dead line never reaches the backend.
func (s *Service) PurgeOutOfStock(ctx context.Context, buyerID string) error {
	items, err := s.Items(ctx, buyerID)
	if err != nil {
		return err
	}

	kept := items[:0]
	for _, it := range items {
		if it.Stock > 0 {
			kept = append(kept, it)
		}
	}

	return s.persist(ctx, buyerID, kept)
}

func (s *Service) persist(ctx context.Context, buyerID string, items []domain.CartItem) error {
	if len(items) == 0 {
		err := s.store.Delete(ctx, buyerID)
		if err != nil && !errors.Is(err, ErrCartNotFound) {
			return fmt.Errorf("delete cart: %w", err)
		}
		return nil
	}
	if err := s.store.Save(ctx, buyerID, items); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

func clamp(quantity, stock int) int {
	if quantity > stock {
		return stock
	}
	if quantity < 1 {
		return 1
	}
	return quantity
}
