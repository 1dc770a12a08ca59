// Package verification turns provider verification answers into outcomes
// and drives the cart and navigation afterwards.
package verification

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/kevinvillajim/bcommerce-checkout/internal/apiclient"
	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
	"github.com/samber/lo"
)

const (
	DefaultSandboxCode  = "000.100.110"
	DefaultConsumedCode = "200.300.404"

	defaultFailureMessage = "The payment could not be verified."
)

type Class string

const (
	ClassSuccess Class = "success"
	ClassSandbox Class = "sandbox"
	ClassFailure Class = "failure"
)

type Result struct {
	Class      Class                   `json:"class"`
	Payment    *domain.VerifiedPayment `json:"payment,omitempty"`
	Message    string                  `json:"message,omitempty"`
	ResultCode string                  `json:"result_code,omitempty"`
	// Consumed is set when the provider reported the one-time resource path
	// as already used.
	Consumed bool `json:"consumed,omitempty"`
}

func (r Result) OrderID() string {
	if r.Payment == nil {
		return ""
	}
	return r.Payment.OrderID.String()
}

type VerifierOptions struct {
	SandboxCodes  []string
	ConsumedCodes []string
}

type Verifier struct {
	api      port.PaymentAPI
	sandbox  map[string]struct{}
	consumed map[string]struct{}
	logger   *slog.Logger
}

func NewVerifier(api port.PaymentAPI, opts VerifierOptions, logger *slog.Logger) (*Verifier, error) {
	if api == nil {
		return nil, errors.New("payment api is nil")
	}
	if len(opts.SandboxCodes) == 0 {
		opts.SandboxCodes = []string{DefaultSandboxCode}
	}
	if len(opts.ConsumedCodes) == 0 {
		opts.ConsumedCodes = []string{DefaultConsumedCode}
	}
	if logger == nil {
		logger = slog.Default()
	}

	toSet := func(codes []string) map[string]struct{} {
		return lo.SliceToMap(codes, func(code string) (string, struct{}) {
			return strings.TrimSpace(code), struct{}{}
		})
	}

	return &Verifier{
		api:      api,
		sandbox:  toSet(opts.SandboxCodes),
		consumed: toSet(opts.ConsumedCodes),
		logger:   logger,
	}, nil
}

// Verify calls the verification endpoint once and classifies the answer.
// A consumed resource path is followed by a status lookup of the checkout:
// if an earlier attempt already paid it, the result is a success.
func (v *Verifier) Verify(ctx context.Context, req domain.VerifyRequest) Result {
	res := v.verify(ctx, req)
	if !res.Consumed || req.CheckoutID == "" {
		return res
	}

	if prior, ok := v.priorPayment(ctx, req.CheckoutID); ok {
		return prior
	}

	return res
}

func (v *Verifier) verify(ctx context.Context, req domain.VerifyRequest) Result {
	resp, err := v.api.Verify(ctx, req)
	if err != nil {
		v.logger.Warn("payment verification request failed",
			"method", "Verifier.Verify",
			"checkout_id", req.CheckoutID,
			"error", err)
		return Result{
			Class:   ClassFailure,
			Message: apiclient.UserMessage(err, defaultFailureMessage),
		}
	}

	code := strings.TrimSpace(resp.ResultCode)

	switch {
	case resp.Success && resp.Data != nil && resp.Data.IsPaid():
		return Result{Class: ClassSuccess, Payment: resp.Data, Message: resp.Message, ResultCode: code}
	case v.isSandbox(code):
		return Result{Class: ClassSandbox, Message: resp.Message, ResultCode: code}
	}

	message := strings.TrimSpace(resp.Message)
	if message == "" {
		message = defaultFailureMessage
	}

	return Result{
		Class:      ClassFailure,
		Message:    message,
		ResultCode: code,
		Consumed:   v.isConsumed(code),
	}
}

func (v *Verifier) priorPayment(ctx context.Context, checkoutID string) (Result, bool) {
	status, err := v.api.CheckoutStatus(ctx, checkoutID)
	if err != nil {
		v.logger.Warn("payment status lookup failed",
			"method", "Verifier.priorPayment",
			"checkout_id", checkoutID,
			"error", err)
		return Result{}, false
	}

	if !status.Success || !status.Paid {
		return Result{}, false
	}

	v.logger.Info("resource path already consumed by a successful payment",
		"method", "Verifier.priorPayment",
		"checkout_id", checkoutID)

	return Result{Class: ClassSuccess, Payment: status.Data, Message: status.Message}, true
}

func (v *Verifier) isSandbox(code string) bool {
	_, ok := v.sandbox[code]
	return ok
}

func (v *Verifier) isConsumed(code string) bool {
	_, ok := v.consumed[code]
	return ok
}
