package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrItemNotFound       = errors.New("cart item not found")
	ErrQuantityOutOfRange = errors.New("quantity out of range")
	ErrInvalidProductID   = errors.New("invalid product id")
)

const DefaultMaxItemQuantity = 99

// Cart exclusively owns its items. Insertion order is display order.
type Cart struct {
	ID     uuid.UUID       `json:"id"`
	UserID int64           `json:"user_id"`
	Items  []CartItem      `json:"items"`
	Total  decimal.Decimal `json:"total"`
}

type CartItem struct {
	CartID    uuid.UUID       `json:"cart_id"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Product   *Product        `json:"product,omitempty"`
}

func NewCart(userID int64) Cart {
	return Cart{
		ID:     uuid.New(),
		UserID: userID,
		Total:  decimal.Zero,
	}
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) ItemCount() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

func (c Cart) Find(productID int64) (CartItem, bool) {
	idx := c.indexOf(productID)
	if idx < 0 {
		return CartItem{}, false
	}
	return c.Items[idx], true
}

// AddItem merges into an existing line for the same product. The unit
// price of an existing line keeps its original snapshot.
func (c *Cart) AddItem(item CartItem, maxQuantity int) error {
	if item.ProductID <= 0 {
		return ErrInvalidProductID
	}

	idx := c.indexOf(item.ProductID)
	if idx >= 0 {
		merged := c.Items[idx].Quantity + item.Quantity
		if err := checkQuantity(merged, maxQuantity); err != nil {
			return err
		}
		c.Items[idx].Quantity = merged
		if item.Product != nil {
			c.Items[idx].Product = item.Product
		}
		c.Recalculate()
		return nil
	}

	if err := checkQuantity(item.Quantity, maxQuantity); err != nil {
		return err
	}

	item.CartID = c.ID
	c.Items = append(c.Items, item)
	c.Recalculate()

	return nil
}

func (c *Cart) UpdateQuantity(productID int64, quantity, maxQuantity int) error {
	idx := c.indexOf(productID)
	if idx < 0 {
		return ErrItemNotFound
	}

	if err := checkQuantity(quantity, maxQuantity); err != nil {
		return err
	}

	c.Items[idx].Quantity = quantity
	c.Recalculate()

	return nil
}

func (c *Cart) RemoveItem(productID int64) bool {
	idx := c.indexOf(productID)
	if idx < 0 {
		return false
	}

	c.Items = append(c.Items[:idx], c.Items[idx+1:]...)
	c.Recalculate()

	return true
}

func (c *Cart) Clear() {
	c.Items = nil
	c.Recalculate()
}

// Recalculate restores subtotal = price * quantity for each item and
// total = sum of subtotals.
func (c *Cart) Recalculate() {
	total := decimal.Zero
	for i := range c.Items {
		c.Items[i].CartID = c.ID
		c.Items[i].Subtotal = c.Items[i].Price.Mul(decimal.NewFromInt(int64(c.Items[i].Quantity)))
		total = total.Add(c.Items[i].Subtotal)
	}
	c.Total = total
}

func (c Cart) indexOf(productID int64) int {
	for i, item := range c.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func checkQuantity(quantity, maxQuantity int) error {
	if maxQuantity <= 0 {
		maxQuantity = DefaultMaxItemQuantity
	}
	if quantity < 1 || quantity > maxQuantity {
		return fmt.Errorf("quantity %d not in [1, %d]: %w", quantity, maxQuantity, ErrQuantityOutOfRange)
	}
	return nil
}
