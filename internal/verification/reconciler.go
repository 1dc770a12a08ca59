package verification

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
	"github.com/kevinvillajim/bcommerce-checkout/internal/task"
	"github.com/kevinvillajim/bcommerce-checkout/internal/template"
)

const (
	DefaultSuccessRedirectDelay = 3 * time.Second
	DefaultFailureRedirectDelay = 5 * time.Second

	cartPath = "/cart"
)

type CartClearer interface {
	Clear(ctx context.Context, owner domain.Owner) (domain.Cart, error)
}

type ReconcilerOptions struct {
	SuccessRedirectDelay time.Duration
	FailureRedirectDelay time.Duration
}

type Reconciler struct {
	carts     CartClearer
	notifier  port.Notifier
	navigator port.Navigator
	opts      ReconcilerOptions
	logger    *slog.Logger
}

func NewReconciler(carts CartClearer, notifier port.Notifier, navigator port.Navigator, opts ReconcilerOptions, logger *slog.Logger) (*Reconciler, error) {
	if carts == nil {
		return nil, errors.New("cart store is nil")
	}
	if notifier == nil {
		return nil, errors.New("notifier is nil")
	}
	if navigator == nil {
		return nil, errors.New("navigator is nil")
	}
	if opts.SuccessRedirectDelay <= 0 {
		opts.SuccessRedirectDelay = DefaultSuccessRedirectDelay
	}
	if opts.FailureRedirectDelay <= 0 {
		opts.FailureRedirectDelay = DefaultFailureRedirectDelay
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		carts:     carts,
		notifier:  notifier,
		navigator: navigator,
		opts:      opts,
		logger:    logger,
	}, nil
}

// ConfirmationPath is where a verified order is shown.
func ConfirmationPath(orderID string) string {
	if orderID == "" {
		return "/orders"
	}
	return "/orders/" + orderID + "/confirmation"
}

// Apply finalizes a verification result and returns the scheduled
// navigation. A success clears the cart; anything else leaves it as is so
// the user can retry. The navigation outlives ctx cancellation and is only
// stopped through the returned task.
func (r *Reconciler) Apply(ctx context.Context, owner domain.Owner, res Result) *task.Task {
	switch res.Class {
	case ClassSuccess:
		return r.applySuccess(ctx, owner, res)
	case ClassSandbox:
		r.notify(ctx, owner, "payment_sandbox", nil, port.Notification{
			Severity:   port.SeverityInfo,
			Duration:   r.opts.FailureRedirectDelay,
			Persistent: true,
			Action:     "simulate",
		})
	default:
		r.notify(ctx, owner, "payment_failed", res.Message, port.Notification{
			Severity: port.SeverityError,
			Duration: r.opts.FailureRedirectDelay,
			Action:   "retry",
		})
	}

	return r.navigateAfter(ctx, owner, r.opts.FailureRedirectDelay, cartPath)
}

func (r *Reconciler) applySuccess(ctx context.Context, owner domain.Owner, res Result) *task.Task {
	if _, err := r.carts.Clear(ctx, owner); err != nil {
		r.logger.Warn("failed to clear cart after verified payment",
			"method", "Reconciler.Apply",
			"owner", owner.Key(),
			"error", err)
	}

	var data any = struct{ OrderNumber string }{}
	if res.Payment != nil {
		data = struct{ OrderNumber string }{OrderNumber: res.Payment.OrderNumber.String()}
	}

	r.notify(ctx, owner, "payment_verified", data, port.Notification{
		Severity: port.SeveritySuccess,
		Duration: r.opts.SuccessRedirectDelay,
	})

	return r.navigateAfter(ctx, owner, r.opts.SuccessRedirectDelay, ConfirmationPath(res.OrderID()))
}

func (r *Reconciler) notify(ctx context.Context, owner domain.Owner, name string, data any, n port.Notification) {
	msg, err := template.Default().Render(name, data)
	if err != nil {
		r.logger.Warn("failed to render notification",
			"method", "Reconciler.notify",
			"template", name,
			"error", err)
		msg = defaultFailureMessage
	}

	n.Message = msg
	r.notifier.Notify(ctx, owner, n)
}

func (r *Reconciler) navigateAfter(ctx context.Context, owner domain.Owner, d time.Duration, target string) *task.Task {
	return task.After(context.WithoutCancel(ctx), d, func(ctx context.Context) {
		r.navigator.Navigate(ctx, owner, target)
	})
}
