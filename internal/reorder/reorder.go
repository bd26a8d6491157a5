// Package reorder rehydrates a past order back into the live cart using
// current catalog data: today's price, stock, weight and unit, but the
// original quantities.
package reorder

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/deundomarinel09/easyshop-engine/internal/cart"
	"github.com/deundomarinel09/easyshop-engine/internal/domain"
)

var ErrNotTerminal = errors.New("only completed or cancelled orders can be reordered")

// ProductLookup is the slice of the backend the transformer consumes.
type ProductLookup interface {
	Product(ctx context.Context, id int64) (domain.Product, error)
}

type Transformer struct {
	products ProductLookup
	cart     *cart.Service
	sfg      singleflight.Group
	logger   zerolog.Logger
}

func NewTransformer(products ProductLookup, cartSvc *cart.Service, logger zerolog.Logger) *Transformer {
	return &Transformer{
		products: products,
		cart:     cartSvc,
		logger:   logger.With().Str("component", "reorder").Logger(),
	}
}

// Result reports how much of the order could be rehydrated.
type Result struct {
	Added   int
	Dropped int
}

// Reorder clears the buyer's cart and refills it from the order's lines.
// A line whose product can no longer be fetched is dropped silently; the
// rest go through the cart's normal invariants, so quantities above the
// product's current stock are clamped, not rejected.
func (t *Transformer) Reorder(ctx context.Context, buyerID string, order domain.Order) (Result, error) {
	if !order.Status.IsTerminal() {
		return Result{}, ErrNotTerminal
	}

	if err := t.cart.Clear(ctx, buyerID); err != nil {
		return Result{}, fmt.Errorf("clear cart before reorder: %w", err)
	}

	var result Result
	items := make([]domain.CartItem, 0, len(order.Items))
	for _, line := range order.Items {
		p, err := t.lookup(ctx, line.ProductID)
		if err != nil {
			t.logger.Warn().
				Err(err).
				Int64("product_id", line.ProductID).
				Str("order_ref", order.OrderRef).
				Msg("dropping unresolvable line from reorder")
			result.Dropped++
			continue
		}

		item := domain.NewCartItem(p)
		item.Quantity = line.Quantity
		items = append(items, item)
	}

	if err := t.cart.ReplaceAll(ctx, buyerID, items); err != nil {
		return Result{}, fmt.Errorf("rehydrate cart: %w", err)
	}

	refilled, err := t.cart.Items(ctx, buyerID)
	if err != nil {
		return Result{}, err
	}
	result.Added = len(refilled)
	result.Dropped = len(order.Items) - result.Added
	return result, nil
}

// lookup deduplicates concurrent fetches of the same product id.
func (t *Transformer) lookup(ctx context.Context, id int64) (domain.Product, error) {
	v, err, _ := t.sfg.Do(fmt.Sprint(id), func() (interface{}, error) {
		return t.products.Product(ctx, id)
	})
	if err != nil {
		return domain.Product{}, err
	}
	return v.(domain.Product), nil
}
