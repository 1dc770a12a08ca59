package domain_test

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAddItem(t *testing.T) {
	tests := []struct {
		name         string
		existing     []domain.CartItem
		item         domain.CartItem
		wantQuantity int
		wantError    error
	}{
		{
			name:         "new line: ok",
			item:         item(1, 2, "9.99"),
			wantQuantity: 2,
		},
		{
			name:         "same product merges: ok",
			existing:     []domain.CartItem{item(1, 2, "9.99")},
			item:         item(1, 3, "12.00"),
			wantQuantity: 5,
		},
		{
			name:      "merge above max: fail",
			existing:  []domain.CartItem{item(1, 98, "1.00")},
			item:      item(1, 2, "1.00"),
			wantError: domain.ErrQuantityOutOfRange,
		},
		{
			name:      "zero quantity: fail",
			item:      item(1, 0, "1.00"),
			wantError: domain.ErrQuantityOutOfRange,
		},
		{
			name:      "invalid product id: fail",
			item:      item(0, 1, "1.00"),
			wantError: domain.ErrInvalidProductID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cart := domain.NewCart(0)
			for _, it := range tt.existing {
				require.NoError(t, cart.AddItem(it, domain.DefaultMaxItemQuantity))
			}

			err := cart.AddItem(tt.item, domain.DefaultMaxItemQuantity)
			if tt.wantError != nil {
				require.ErrorIs(t, err, tt.wantError)
				return
			}
			require.NoError(t, err)

			actual, ok := cart.Find(tt.item.ProductID)
			require.True(t, ok)
			assert.Equal(t, tt.wantQuantity, actual.Quantity)
			assert.Len(t, cart.Items, 1)
			assertTotals(t, cart)
		})
	}
}

func TestCartKeepsOriginalUnitPriceOnMerge(t *testing.T) {
	cart := domain.NewCart(0)
	require.NoError(t, cart.AddItem(item(7, 1, "10.00"), 0))
	require.NoError(t, cart.AddItem(item(7, 1, "15.00"), 0))

	actual, ok := cart.Find(7)
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("10.00").Equal(actual.Price))
	assert.True(t, decimal.RequireFromString("20.00").Equal(cart.Total))
}

func TestCartTotalsAfterMutations(t *testing.T) {
	cart := domain.NewCart(gofakeit.Int64())

	for i := 1; i <= 5; i++ {
		price := decimal.NewFromFloat(gofakeit.Price(1, 100)).Round(2)
		require.NoError(t, cart.AddItem(domain.CartItem{
			ProductID: int64(i),
			Quantity:  gofakeit.IntRange(1, 10),
			Price:     price,
		}, 0))
		assertTotals(t, cart)
	}

	require.NoError(t, cart.UpdateQuantity(3, 42, 0))
	assertTotals(t, cart)

	assert.True(t, cart.RemoveItem(2))
	assert.False(t, cart.RemoveItem(2))
	assertTotals(t, cart)

	require.ErrorIs(t, cart.UpdateQuantity(2, 1, 0), domain.ErrItemNotFound)
	require.ErrorIs(t, cart.UpdateQuantity(3, 100, 0), domain.ErrQuantityOutOfRange)

	cart.Clear()
	assert.True(t, cart.IsEmpty())
	assert.Equal(t, 0, cart.ItemCount())
	assert.True(t, cart.Total.IsZero())
}

func TestCartItemCount(t *testing.T) {
	cart := domain.NewCart(0)
	require.NoError(t, cart.AddItem(item(1, 2, "1.00"), 0))
	require.NoError(t, cart.AddItem(item(2, 3, "1.00"), 0))

	assert.Equal(t, 5, cart.ItemCount())
}

func item(productID int64, quantity int, price string) domain.CartItem {
	return domain.CartItem{
		ProductID: productID,
		Quantity:  quantity,
		Price:     decimal.RequireFromString(price),
	}
}

func assertTotals(t *testing.T, cart domain.Cart) {
	t.Helper()

	total := decimal.Zero
	for _, it := range cart.Items {
		want := it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		assert.True(t, want.Equal(it.Subtotal), "subtotal of %d: want %s, got %s", it.ProductID, want, it.Subtotal)
		assert.Equal(t, cart.ID, it.CartID)
		total = total.Add(it.Subtotal)
	}
	assert.True(t, total.Equal(cart.Total), "total: want %s, got %s", total, cart.Total)
}
