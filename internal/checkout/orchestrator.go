// Package checkout assembles checkout requests from the cart and the form,
// submits them and turns the answer into an outcome for the UI.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/pipeline"
	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
	"github.com/kevinvillajim/bcommerce-checkout/internal/template"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type CartStore interface {
	Get(ctx context.Context, owner domain.Owner) (domain.Cart, error)
	Clear(ctx context.Context, owner domain.Owner) (domain.Cart, error)
}

type SellerResolver interface {
	ResolveForCart(ctx context.Context, items []domain.CartItem) (int64, bool)
}

type Outcome struct {
	Result  domain.CheckoutResult `json:"result"`
	Summary Summary               `json:"summary"`
	Message string                `json:"message"`
}

// Prepared is a validated request that has not been submitted yet.
type Prepared struct {
	Request domain.CheckoutRequest
	Summary Summary
	Cart    domain.Cart
}

type submission struct {
	owner       domain.Owner
	form        Form
	cardEntered bool

	cart     domain.Cart
	request  domain.CheckoutRequest
	summary  Summary
	response domain.CheckoutResponse
}

type Orchestrator struct {
	carts   CartStore
	sellers SellerResolver
	api     port.CheckoutAPI
	taxRate decimal.Decimal
	logger  *slog.Logger

	prepare pipeline.Pipeline[*submission]
	submit  pipeline.Pipeline[*submission]

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewOrchestrator(carts CartStore, sellers SellerResolver, api port.CheckoutAPI, taxRate decimal.Decimal, logger *slog.Logger) (*Orchestrator, error) {
	if carts == nil {
		return nil, errors.New("cart store is nil")
	}
	if sellers == nil {
		return nil, errors.New("seller resolver is nil")
	}
	if api == nil {
		return nil, errors.New("checkout api is nil")
	}
	if taxRate.IsNegative() {
		return nil, fmt.Errorf("tax rate %s is negative", taxRate)
	}
	if logger == nil {
		logger = slog.Default()
	}

	o := &Orchestrator{
		carts:    carts,
		sellers:  sellers,
		api:      api,
		taxRate:  taxRate,
		logger:   logger,
		inFlight: make(map[string]struct{}),
	}

	prepareSteps := []pipeline.Step[*submission]{
		pipeline.StepFunc("load_cart", o.loadCart),
		pipeline.StepFunc("validate_form", o.validateForm),
		pipeline.StepFunc("validate_stock", o.validateStock),
		pipeline.StepFunc("resolve_seller", o.resolveSeller),
		pipeline.StepFunc("price_items", o.priceItems),
	}

	var err error
	if o.prepare, err = pipeline.New(prepareSteps...); err != nil {
		return nil, fmt.Errorf("pipeline.New prepare: %w", err)
	}

	submitSteps := append(slices.Clone(prepareSteps),
		pipeline.StepFunc("post_checkout", o.postCheckout),
	)
	if o.submit, err = pipeline.New(submitSteps...); err != nil {
		return nil, fmt.Errorf("pipeline.New submit: %w", err)
	}

	return o, nil
}

func (o *Orchestrator) TaxRate() decimal.Decimal {
	return o.taxRate
}

// Submit validates and posts the checkout of the owner's cart. On success
// the cart is cleared. Every failure is an *Error carrying the message for
// the user, and leaves the cart untouched.
func (o *Orchestrator) Submit(ctx context.Context, owner domain.Owner, form Form) (Outcome, error) {
	if !o.acquire(owner) {
		return Outcome{}, newError(ErrSubmissionInFlight)
	}
	defer o.release(owner)

	s := &submission{owner: owner, form: form, cardEntered: true}
	err := o.submit.Run(ctx, s)
	if err == nil {
		// once posted, the upstream answer is final even if the caller went away
		err = o.interpret(context.WithoutCancel(ctx), s)
	}
	if err != nil {
		o.logger.Info("checkout submission failed",
			"method", "Orchestrator.Submit",
			"owner", owner.Key(),
			"error", err)
		return Outcome{}, newError(err)
	}

	result := lo.FromPtr(s.response.Data)

	message, err := template.Default().Render("order_created", result)
	if err != nil {
		o.logger.Warn("failed to render order message",
			"method", "Orchestrator.Submit",
			"error", err)
	}

	return Outcome{
		Result:  result,
		Summary: s.summary,
		Message: message,
	}, nil
}

// Prepare runs the pre-submission checks without posting. Card fields are
// not validated because the hosted payment widget collects them.
func (o *Orchestrator) Prepare(ctx context.Context, owner domain.Owner, form Form) (Prepared, error) {
	s := &submission{owner: owner, form: form}
	if err := o.prepare.Run(ctx, s); err != nil {
		return Prepared{}, newError(err)
	}

	return Prepared{
		Request: s.request,
		Summary: s.summary,
		Cart:    s.cart,
	}, nil
}

func (o *Orchestrator) acquire(owner domain.Owner) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	key := owner.Key()
	if _, busy := o.inFlight[key]; busy {
		return false
	}
	o.inFlight[key] = struct{}{}
	return true
}

func (o *Orchestrator) release(owner domain.Owner) {
	o.mu.Lock()
	defer o.mu.Unlock()

	delete(o.inFlight, owner.Key())
}

func (o *Orchestrator) loadCart(ctx context.Context, s *submission) error {
	c, err := o.carts.Get(ctx, s.owner)
	if err != nil {
		return fmt.Errorf("carts.Get: %w", err)
	}
	if c.IsEmpty() {
		return ErrEmptyCart
	}

	s.cart = c
	return nil
}

func (o *Orchestrator) validateForm(_ context.Context, s *submission) error {
	if s.cardEntered {
		return ValidateForm(s.form).OrNil()
	}
	return ValidateAddresses(s.form).OrNil()
}

func (o *Orchestrator) validateStock(_ context.Context, s *submission) error {
	return ValidateStock(s.cart.Items)
}

func (o *Orchestrator) resolveSeller(ctx context.Context, s *submission) error {
	if sellerID, ok := o.sellers.ResolveForCart(ctx, s.cart.Items); ok {
		s.request.SellerID = lo.ToPtr(sellerID)
	}
	return nil
}

func (o *Orchestrator) priceItems(_ context.Context, s *submission) error {
	billing := s.form.Billing()

	s.request.Payment = s.form.Payment.Normalized()
	s.request.ShippingAddress = s.form.ShippingAddress
	s.request.BillingAddress = &billing
	s.request.Items = PriceItems(s.cart.Items, o.logger)
	s.summary = Summarize(s.request.Items, o.taxRate)

	return nil
}

func (o *Orchestrator) postCheckout(ctx context.Context, s *submission) error {
	resp, err := o.api.SubmitCheckout(ctx, s.request)
	if err != nil {
		return fmt.Errorf("api.SubmitCheckout: %w", err)
	}

	s.response = resp
	return nil
}

func (o *Orchestrator) interpret(ctx context.Context, s *submission) error {
	if !s.response.IsSuccess() {
		return fmt.Errorf("interpret: %w", &RejectedError{Status: s.response.Status, Message: s.response.Message})
	}

	if _, err := o.carts.Clear(ctx, s.owner); err != nil {
		// the order exists upstream, so a stale cart is not a checkout failure
		o.logger.Warn("failed to clear cart after checkout",
			"method", "Orchestrator.interpret",
			"owner", s.owner.Key(),
			"error", err)
	}

	return nil
}
