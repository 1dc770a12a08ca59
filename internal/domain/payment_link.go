package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrPaymentLinkNotPending = errors.New("payment link is not pending")
	ErrPaymentLinkExpired    = errors.New("payment link has expired")
	ErrPaymentLinkForbidden  = errors.New("only the creator or an admin can cancel a payment link")
)

// PaymentLink lets a named customer pay a fixed amount outside the cart.
// Expiry is computed from ExpiresAt and never stored as a transition.
type PaymentLink struct {
	ID            uuid.UUID
	Code          string
	CreatedBy     int64
	CustomerName  string
	Amount        Money
	Description   *string
	Status        PaymentLinkStatus
	ExpiresAt     time.Time
	PaidAt        *time.Time
	PaymentMethod *string
	TransactionID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (l PaymentLink) EffectiveStatus(now time.Time) PaymentLinkStatus {
	if l.Status == PaymentLinkStatusPending && now.After(l.ExpiresAt) {
		return PaymentLinkStatusExpired
	}
	return l.Status
}

func (l PaymentLink) CanPay(now time.Time) error {
	switch l.EffectiveStatus(now) {
	case PaymentLinkStatusPending:
		return nil
	case PaymentLinkStatusExpired:
		return ErrPaymentLinkExpired
	default:
		return ErrPaymentLinkNotPending
	}
}

func (l PaymentLink) CanCancel(now time.Time, actorID int64, isAdmin bool) error {
	if !isAdmin && actorID != l.CreatedBy {
		return ErrPaymentLinkForbidden
	}

	switch l.EffectiveStatus(now) {
	case PaymentLinkStatusPending:
		return nil
	case PaymentLinkStatusExpired:
		return ErrPaymentLinkExpired
	default:
		return ErrPaymentLinkNotPending
	}
}
