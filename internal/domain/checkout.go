package domain

import (
	"github.com/shopspring/decimal"
)

const CheckoutStatusSuccess = "success"

type CheckoutItem struct {
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

// CheckoutRequest is built fresh for each submission attempt.
type CheckoutRequest struct {
	Payment         PaymentInfo    `json:"payment"`
	ShippingAddress Address        `json:"shippingAddress"`
	BillingAddress  *Address       `json:"billingAddress,omitempty"`
	SellerID        *int64         `json:"seller_id,omitempty"`
	Items           []CheckoutItem `json:"items"`
}

type CheckoutResult struct {
	OrderID       FlexString      `json:"order_id"`
	OrderNumber   FlexString      `json:"order_number"`
	Total         decimal.Decimal `json:"total"`
	PaymentStatus string          `json:"payment_status"`
}

type CheckoutResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    *CheckoutResult `json:"data,omitempty"`
}

func (r CheckoutResponse) IsSuccess() bool {
	return r.Status == CheckoutStatusSuccess
}
