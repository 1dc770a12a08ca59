package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type CreatePaymentCheckout struct {
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	ShippingAddress Address         `json:"shippingAddress"`
	Items           []CheckoutItem  `json:"items"`
	SellerID        *int64          `json:"seller_id,omitempty"`
	CustomerEmail   string          `json:"customer_email,omitempty"`
}

type PaymentCheckout struct {
	CheckoutID    string          `json:"checkout_id"`
	WidgetURL     string          `json:"widget_url"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
}

type VerifyRequest struct {
	ResourcePath    string          `json:"resource_path"`
	CheckoutID      string          `json:"checkout_id,omitempty"`
	TransactionID   string          `json:"transaction_id,omitempty"`
	CalculatedTotal decimal.Decimal `json:"calculated_total,omitempty"`
	Simulate        bool            `json:"simulate_success,omitempty"`
}

type VerifiedPayment struct {
	OrderID       FlexString      `json:"order_id"`
	OrderNumber   FlexString      `json:"order_number"`
	Total         decimal.Decimal `json:"total"`
	PaymentStatus string          `json:"payment_status"`
	PaymentID     FlexString      `json:"payment_id"`
}

var paidStatuses = map[string]struct{}{
	"completed": {},
	"paid":      {},
	"approved":  {},
	"succeeded": {},
	"success":   {},
}

// IsPaid reports whether the provider considers the payment fully settled.
// An empty status is treated as paid because older verify responses omit it.
func (p VerifiedPayment) IsPaid() bool {
	if p.PaymentStatus == "" {
		return true
	}
	_, ok := paidStatuses[strings.ToLower(p.PaymentStatus)]
	return ok
}

type VerifyResponse struct {
	Success    bool             `json:"success"`
	Data       *VerifiedPayment `json:"data,omitempty"`
	Message    string           `json:"message"`
	ResultCode string           `json:"result_code,omitempty"`
}

// PaymentStatusResponse answers whether a checkout already has a payment.
type PaymentStatusResponse struct {
	Success bool             `json:"success"`
	Paid    bool             `json:"paid"`
	Data    *VerifiedPayment `json:"data,omitempty"`
	Message string           `json:"message"`
}

type QRPaymentStatus string

const (
	QRPaymentPending   QRPaymentStatus = "pending"
	QRPaymentCompleted QRPaymentStatus = "completed"
	QRPaymentFailed    QRPaymentStatus = "failed"
	QRPaymentExpired   QRPaymentStatus = "expired"
	QRPaymentCancelled QRPaymentStatus = "cancelled"
)

func (s QRPaymentStatus) IsTerminal() bool {
	return s != QRPaymentPending && s != ""
}

type QRStatusResponse struct {
	TransactionID string          `json:"transaction_id"`
	Status        QRPaymentStatus `json:"status"`
	Message       string          `json:"message,omitempty"`
}

// PaymentSession survives the redirect round trip to the payment provider.
type PaymentSession struct {
	CheckoutID      string
	ResourcePath    string
	TransactionID   string
	CalculatedTotal decimal.Decimal
	FormData        []byte
}
