package domain

import "errors"

type PaymentLinkStatus string

// remember to add new statuses to the validPaymentLinkStatuses map
const (
	PaymentLinkStatusPending   PaymentLinkStatus = "pending"
	PaymentLinkStatusPaid      PaymentLinkStatus = "paid"
	PaymentLinkStatusExpired   PaymentLinkStatus = "expired"
	PaymentLinkStatusCancelled PaymentLinkStatus = "cancelled"
)

var validPaymentLinkStatuses = map[PaymentLinkStatus]struct{}{
	PaymentLinkStatusPending:   {},
	PaymentLinkStatusPaid:      {},
	PaymentLinkStatusExpired:   {},
	PaymentLinkStatusCancelled: {},
}

func ToPaymentLinkStatus(s string) (PaymentLinkStatus, error) {
	status := PaymentLinkStatus(s)
	if _, ok := validPaymentLinkStatuses[status]; ok {
		return status, nil
	}

	return "", errors.New("invalid payment link status")
}

func PaymentLinkStatuses() []PaymentLinkStatus {
	result := make([]PaymentLinkStatus, 0, len(validPaymentLinkStatuses))
	for status := range validPaymentLinkStatuses {
		result = append(result, status)
	}
	return result
}

func (s PaymentLinkStatus) IsTerminal() bool {
	return s == PaymentLinkStatusPaid || s == PaymentLinkStatusCancelled
}
