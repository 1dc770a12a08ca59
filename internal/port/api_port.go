package port

import (
	"context"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
)

type ProductAPI interface {
	GetProduct(ctx context.Context, productID int64) (domain.Product, error)
}

// SellerLookup is the raw answer of the user to seller lookup endpoint.
type SellerLookup struct {
	Status   string
	SellerID *int64
}

type SellerAPI interface {
	SellerByUser(ctx context.Context, userID int64) (SellerLookup, error)
}

type CheckoutAPI interface {
	SubmitCheckout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error)
}

type PaymentAPI interface {
	CreateCheckout(ctx context.Context, req domain.CreatePaymentCheckout) (domain.PaymentCheckout, error)
	Verify(ctx context.Context, req domain.VerifyRequest) (domain.VerifyResponse, error)
	CheckoutStatus(ctx context.Context, checkoutID string) (domain.PaymentStatusResponse, error)
}

type QRPaymentAPI interface {
	QRStatus(ctx context.Context, transactionID string) (domain.QRStatusResponse, error)
}
