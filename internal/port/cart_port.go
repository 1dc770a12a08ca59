package port

import (
	"context"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
)

// CartRepository persists carts of authenticated users.
type CartRepository interface {
	GetCart(ctx context.Context, userID int64) (domain.Cart, error)
	SaveCart(ctx context.Context, cart domain.Cart) error
	DeleteCart(ctx context.Context, userID int64) (bool, error)
}
