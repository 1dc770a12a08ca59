package checkout_test

import (
	"testing"

	"github.com/kevinvillajim/bcommerce-checkout/internal/checkout"
	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestResolvePrice(t *testing.T) {
	tests := []struct {
		name string
		item domain.CartItem
		want string
	}{
		{
			name: "product final price",
			item: domain.CartItem{
				Quantity: 1,
				Price:    dec("12.00"),
				Product:  &domain.Product{Price: dec("11.00"), FinalPrice: dec("9.99")},
			},
			want: "9.99",
		},
		{
			name: "product price when final price is zero",
			item: domain.CartItem{
				Quantity: 1,
				Product:  &domain.Product{Price: dec("11.00")},
			},
			want: "11.00",
		},
		{
			name: "item price without snapshot",
			item: domain.CartItem{Quantity: 3, Price: dec("4.50")},
			want: "4.50",
		},
		{
			name: "subtotal divided by quantity",
			item: domain.CartItem{Quantity: 2, Subtotal: dec("10.00")},
			want: "5.00",
		},
		{
			name: "subtotal division rounds to cents",
			item: domain.CartItem{Quantity: 3, Subtotal: dec("10.00")},
			want: "3.33",
		},
		{
			name: "fallback",
			item: domain.CartItem{Quantity: 1, Product: &domain.Product{}},
			want: "1.00",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := checkout.ResolvePrice(tt.item, nil)
			assert.True(t, dec(tt.want).Equal(actual), "want %s, got %s", tt.want, actual)
		})
	}
}

func TestSummarize(t *testing.T) {
	items := []domain.CheckoutItem{
		{ProductID: 1, Quantity: 2, Price: dec("25.00")},
		{ProductID: 2, Quantity: 1, Price: dec("0.99")},
	}

	actual := checkout.Summarize(items, dec("0.15"))

	assert.True(t, dec("50.99").Equal(actual.Subtotal), actual.Subtotal.String())
	assert.True(t, dec("7.65").Equal(actual.Tax), actual.Tax.String())
	assert.True(t, dec("58.64").Equal(actual.Total), actual.Total.String())
}

func TestValidateStock(t *testing.T) {
	items := []domain.CartItem{
		{ProductID: 1, Quantity: 2, Product: &domain.Product{Name: "Mug", Stock: 5, InStock: true}},
		{ProductID: 2, Quantity: 3, Product: &domain.Product{Name: "Lamp", Stock: 1, InStock: true}},
		{ProductID: 3, Quantity: 1, Product: &domain.Product{Stock: 0}},
		{ProductID: 4, Quantity: 50},
	}

	err := checkout.ValidateStock(items)

	var stockErr *checkout.StockError
	if assert.ErrorAs(t, err, &stockErr) {
		assert.Equal(t, []checkout.StockIssue{
			{ProductID: 2, Name: "Lamp", Requested: 3, Available: 1, InStock: true},
			{ProductID: 3, Name: "Product", Requested: 1, Available: 0, InStock: false},
		}, stockErr.Issues)
		assert.Contains(t, stockErr.Error(), "Lamp: requested 3, available 1")
		assert.Contains(t, stockErr.Error(), "Product: requested 1, available 0 (out of stock)")
	}

	assert.NoError(t, checkout.ValidateStock(items[:1]))
}

func TestValidateForm(t *testing.T) {
	form := checkout.Form{
		ShippingAddress:    validAddress(),
		SameBillingAddress: false,
		Payment:            domain.PaymentInfo{Method: domain.PaymentMethodCreditCard, CardNumber: "1"},
	}

	errs := checkout.ValidateForm(form)
	assert.True(t, errs.Has("billing"))
	assert.True(t, errs.Has("payment.card_number"))

	assert.Empty(t, checkout.ValidateAddresses(checkout.Form{
		ShippingAddress:    validAddress(),
		SameBillingAddress: true,
	}))

	billing := validAddress()
	billing.City = "Quito"
	form = checkout.Form{ShippingAddress: validAddress(), BillingAddress: &billing}
	assert.Equal(t, "Quito", form.Billing().City)

	form.SameBillingAddress = true
	assert.Equal(t, validAddress(), form.Billing())
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func validAddress() domain.Address {
	return domain.Address{
		Name:       "Ana Perez",
		Street:     "Av. Amazonas 100",
		City:       "Guayaquil",
		State:      "Guayas",
		PostalCode: "090101",
		Country:    "EC",
		Phone:      "0999999999",
	}
}
