package checkout

import (
	"errors"
	"strings"

	"github.com/kevinvillajim/bcommerce-checkout/internal/apiclient"
	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
)

var (
	ErrSubmissionInFlight = errors.New("checkout submission already in flight")
	ErrEmptyCart          = errors.New("cart is empty")
)

// RejectedError is a checkout answered without a success status.
type RejectedError struct {
	Status  string
	Message string
}

func (e *RejectedError) Error() string {
	return "checkout rejected with status " + e.Status + ": " + e.Message
}

// Error is returned by the orchestrator for every failed submission. Message
// is safe to show to the user.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Fields returns the per-field validation errors, if the failure was one.
func (e *Error) Fields() domain.ValidationErrors {
	var verrs domain.ValidationErrors
	if errors.As(e.Cause, &verrs) {
		return verrs
	}
	return nil
}

// UserMessage picks the one sentence shown for a failed checkout.
func UserMessage(err error) string {
	var checkoutErr *Error
	if errors.As(err, &checkoutErr) {
		return checkoutErr.Message
	}

	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fe.Message)
		}
		return "Please review the form: " + strings.Join(msgs, ", ") + "."
	}

	var stockErr *StockError
	if errors.As(err, &stockErr) {
		return stockErr.Error()
	}

	var rejected *RejectedError
	if errors.As(err, &rejected) {
		if msg := strings.TrimSpace(rejected.Message); msg != "" {
			return msg
		}
		return apiclient.DefaultMessage
	}

	switch {
	case errors.Is(err, ErrSubmissionInFlight):
		return "Your order is already being processed."
	case errors.Is(err, ErrEmptyCart):
		return "Your cart is empty."
	}

	return apiclient.UserMessage(err, apiclient.DefaultMessage)
}

func newError(err error) *Error {
	return &Error{Message: UserMessage(err), Cause: err}
}
