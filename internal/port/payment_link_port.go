package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
)

type PaymentLinkRepository interface {
	GetPaymentLink(ctx context.Context, id uuid.UUID) (domain.PaymentLink, error)
	GetPaymentLinkByCode(ctx context.Context, code string) (domain.PaymentLink, error)

	SearchPaymentLinks(ctx context.Context, filter domain.PaymentLinkFilter) ([]domain.PaymentLink, error)

	InsertPaymentLink(ctx context.Context, link domain.PaymentLink) (uuid.UUID, error)

	// MarkPaid succeeds only while the stored status is pending and paidAt is before expiry.
	MarkPaid(ctx context.Context, id uuid.UUID, method, transactionID string, paidAt time.Time) error
	// UpdateStatus succeeds only if the stored status equals from.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.PaymentLinkStatus) error
}
