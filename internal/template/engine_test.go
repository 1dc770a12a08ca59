package template_test

import (
	"testing"

	"github.com/kevinvillajim/bcommerce-checkout/internal/template"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name      string
		template  string
		data      any
		want      string
		wantError bool
	}{
		{
			name:     "order created",
			template: "order_created",
			data: struct {
				OrderNumber   string
				Total         decimal.Decimal
				PaymentStatus string
			}{"ORD-1001", decimal.RequireFromString("57.5"), "pending"},
			want: "Order ORD-1001 created. Total: 57.50 (pending).",
		},
		{
			name:     "payment failed with message",
			template: "payment_failed",
			data:     "Card declined.",
			want:     "Card declined. You will be taken back to your cart.",
		},
		{
			name:     "payment failed without message",
			template: "payment_failed",
			data:     "",
			want:     "The payment could not be verified. You will be taken back to your cart.",
		},
		{
			name:     "stock error",
			template: "stock_error",
			data: []struct {
				Name                 string
				Requested, Available int
				InStock              bool
			}{
				{"Lamp", 3, 1, true},
				{"Mug", 1, 0, false},
			},
			want: "Some products do not have enough stock:\n- Lamp: requested 3, available 1\n- Mug: requested 1, available 0 (out of stock)",
		},
		{
			name:      "unknown template",
			template:  "missing",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual, err := template.Default().Render(tt.template, tt.data)
			if tt.wantError {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, actual)
		})
	}
}
