package checkout

import (
	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/shopspring/decimal"
)

type Summary struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// Summarize totals priced checkout lines. Tax is rounded to cents.
func Summarize(items []domain.CheckoutItem, taxRate decimal.Decimal) Summary {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	tax := domain.RoundCents(subtotal.Mul(taxRate))

	return Summary{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}
