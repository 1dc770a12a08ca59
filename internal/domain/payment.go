package domain

import (
	"errors"
	"regexp"
	"strings"
)

type PaymentMethod string

// remember to add new methods to the validPaymentMethods map
const (
	PaymentMethodCreditCard PaymentMethod = "credit_card"
	PaymentMethodPayPal     PaymentMethod = "paypal"
	PaymentMethodTransfer   PaymentMethod = "transfer"
	PaymentMethodQR         PaymentMethod = "qr"
)

var validPaymentMethods = map[PaymentMethod]struct{}{
	PaymentMethodCreditCard: {},
	PaymentMethodPayPal:     {},
	PaymentMethodTransfer:   {},
	PaymentMethodQR:         {},
}

func ToPaymentMethod(s string) (PaymentMethod, error) {
	method := PaymentMethod(s)
	if _, ok := validPaymentMethods[method]; ok {
		return method, nil
	}

	return "", errors.New("invalid payment method")
}

var (
	cardNumberPattern = regexp.MustCompile(`^\d{16}$`)
	cardExpiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/\d{2}$`)
	cardCVCPattern    = regexp.MustCompile(`^\d{3,4}$`)
)

// PaymentInfo is discriminated by Method; only the fields of that method
// are sent upstream.
type PaymentInfo struct {
	Method PaymentMethod `json:"method"`

	CardNumber string `json:"card_number,omitempty"`
	CardExpiry string `json:"expiry_date,omitempty"`
	CardCVC    string `json:"cvc,omitempty"`
	CardHolder string `json:"card_holder,omitempty"`

	PayPalEmail string `json:"paypal_email,omitempty"`

	TransferReference string `json:"transfer_reference,omitempty"`
	QRReference       string `json:"qr_reference,omitempty"`
}

func (p PaymentInfo) Validate() ValidationErrors {
	var errs ValidationErrors

	if _, err := ToPaymentMethod(string(p.Method)); err != nil {
		errs.Add("payment.method", "select a valid payment method")
		return errs
	}

	if p.Method != PaymentMethodCreditCard {
		return errs
	}

	if !cardNumberPattern.MatchString(NormalizeCardNumber(p.CardNumber)) {
		errs.Add("payment.card_number", "card number must have 16 digits")
	}
	if !cardExpiryPattern.MatchString(strings.TrimSpace(p.CardExpiry)) {
		errs.Add("payment.expiry_date", "expiry date must be in MM/YY format")
	}
	if !cardCVCPattern.MatchString(strings.TrimSpace(p.CardCVC)) {
		errs.Add("payment.cvc", "CVC must have 3 or 4 digits")
	}

	return errs
}

// Normalized drops the fields that do not belong to the selected method.
func (p PaymentInfo) Normalized() PaymentInfo {
	out := PaymentInfo{Method: p.Method}

	switch p.Method {
	case PaymentMethodCreditCard:
		out.CardNumber = NormalizeCardNumber(p.CardNumber)
		out.CardExpiry = strings.TrimSpace(p.CardExpiry)
		out.CardCVC = strings.TrimSpace(p.CardCVC)
		out.CardHolder = p.CardHolder
	case PaymentMethodPayPal:
		out.PayPalEmail = p.PayPalEmail
	case PaymentMethodTransfer:
		out.TransferReference = p.TransferReference
	case PaymentMethodQR:
		out.QRReference = p.QRReference
	}

	return out
}

func NormalizeCardNumber(s string) string {
	return strings.NewReplacer(" ", "", "-", "").Replace(s)
}
