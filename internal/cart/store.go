package cart

import (
	"context"
	"errors"

	"github.com/deundomarinel09/easyshop-engine/internal/domain"
)

var ErrCartNotFound = errors.New("cart not found")

// Store persists a buyer's cart line-items between sessions. Save always
// writes the full list; Delete removes the record entirely so a buyer with
// an emptied cart is indistinguishable from one who never shopped.
// Consumers define this interface, not the storage implementations.
type Store interface {
	Load(ctx context.Context, buyerID string) ([]domain.CartItem, error)
	Save(ctx context.Context, buyerID string, items []domain.CartItem) error
	Delete(ctx context.Context, buyerID string) error
}
