package checkout

import (
	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/template"
)

type StockIssue struct {
	ProductID int64  `json:"product_id"`
	Name      string `json:"name"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
	InStock   bool   `json:"in_stock"`
}

// StockError lists every item that cannot be fulfilled.
type StockError struct {
	Issues []StockIssue
}

func (e *StockError) Error() string {
	msg, err := template.Default().Render("stock_error", e.Issues)
	if err != nil {
		return "some products do not have enough stock"
	}
	return msg
}

// ValidateStock checks items that carry a product snapshot. Items without
// one are left to the server.
func ValidateStock(items []domain.CartItem) error {
	var issues []StockIssue

	for _, item := range items {
		if item.Product == nil {
			continue
		}

		p := item.Product
		if p.InStock && item.Quantity <= p.Stock {
			continue
		}

		name := p.Name
		if name == "" {
			name = "Product"
		}

		issues = append(issues, StockIssue{
			ProductID: item.ProductID,
			Name:      name,
			Requested: item.Quantity,
			Available: max(p.Stock, 0),
			InStock:   p.InStock,
		})
	}

	if len(issues) == 0 {
		return nil
	}

	return &StockError{Issues: issues}
}
