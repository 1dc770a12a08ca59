package checkout

import (
	"log/slog"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/shopspring/decimal"
)

// FallbackPrice is charged when no price source yields a positive value.
var FallbackPrice = decimal.RequireFromString("1.00")

// ResolvePrice returns the unit price submitted for a cart item. Sources are
// tried in order: product final price, product price, the item's own price,
// subtotal divided by quantity, then FallbackPrice.
func ResolvePrice(item domain.CartItem, logger *slog.Logger) decimal.Decimal {
	if item.Product != nil {
		if item.Product.FinalPrice.IsPositive() {
			return item.Product.FinalPrice
		}
		if item.Product.Price.IsPositive() {
			return item.Product.Price
		}
	}

	if item.Price.IsPositive() {
		return item.Price
	}

	if item.Quantity > 0 && item.Subtotal.IsPositive() {
		return domain.RoundCents(item.Subtotal.Div(decimal.NewFromInt(int64(item.Quantity))))
	}

	if logger == nil {
		logger = slog.Default()
	}
	logger.Warn("no usable price for cart item, using fallback",
		"method", "checkout.ResolvePrice",
		"product_id", item.ProductID,
		"fallback", FallbackPrice.StringFixed(2))

	return FallbackPrice
}

// PriceItems converts cart items into checkout lines with resolved prices.
func PriceItems(items []domain.CartItem, logger *slog.Logger) []domain.CheckoutItem {
	lines := make([]domain.CheckoutItem, 0, len(items))
	for _, item := range items {
		lines = append(lines, domain.CheckoutItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			Price:     ResolvePrice(item, logger),
		})
	}
	return lines
}
