// Package widget coordinates the provider's hosted payment form for one
// checkout attempt: it injects the script, follows the widget callbacks and
// triggers exactly one verification when the redirect is captured.
package widget

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
	"github.com/kevinvillajim/bcommerce-checkout/internal/task"
	"github.com/kevinvillajim/bcommerce-checkout/internal/template"
	"github.com/kevinvillajim/bcommerce-checkout/internal/verification"
	"github.com/shopspring/decimal"
)

const DefaultVerifyDelay = 2 * time.Second

const verifyTimeout = 30 * time.Second

type Verifier interface {
	Verify(ctx context.Context, req domain.VerifyRequest) verification.Result
}

type SessionSaver interface {
	Save(ctx context.Context, owner domain.Owner, session domain.PaymentSession) error
}

type Deps struct {
	Host        port.ScriptHost
	Verifier    Verifier
	Sessions    SessionSaver
	Notifier    port.Notifier
	VerifyDelay time.Duration
	Logger      *slog.Logger
}

func (d Deps) validate() error {
	if d.Host == nil {
		return errors.New("script host is nil")
	}
	if d.Verifier == nil {
		return errors.New("verifier is nil")
	}
	if d.Sessions == nil {
		return errors.New("session store is nil")
	}
	if d.Notifier == nil {
		return errors.New("notifier is nil")
	}
	return nil
}

// Attempt identifies one checkout attempt with the provider.
type Attempt struct {
	Owner           domain.Owner
	CheckoutID      string
	TransactionID   string
	WidgetURL       string
	CalculatedTotal decimal.Decimal
	FormData        []byte
}

func MountPoint(checkoutID string) string {
	return "payment-widget-" + checkoutID
}

type Outcome struct {
	State      State               `json:"state"`
	Result     verification.Result `json:"result"`
	FinishedAt time.Time           `json:"finished_at"`
}

type Coordinator struct {
	deps      Deps
	attempt   Attempt
	onOutcome func(ctx context.Context, o Outcome)
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    State
	closed   bool
	outcome  *Outcome
	done     chan struct{}
	pending  *task.Task
	verified int
}

// NewCoordinator binds a coordinator to parent; cancelling parent or
// calling Close stops pending verification. onOutcome is called once with
// the terminal outcome.
func NewCoordinator(parent context.Context, deps Deps, attempt Attempt, onOutcome func(ctx context.Context, o Outcome)) (*Coordinator, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if attempt.CheckoutID == "" {
		return nil, errors.New("checkoutID is empty")
	}
	if attempt.WidgetURL == "" {
		return nil, errors.New("widgetURL is empty")
	}
	if deps.VerifyDelay <= 0 {
		deps.VerifyDelay = DefaultVerifyDelay
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(parent)

	return &Coordinator{
		deps:      deps,
		attempt:   attempt,
		onOutcome: onOutcome,
		logger:    deps.Logger.With("checkout_id", attempt.CheckoutID),
		ctx:       ctx,
		cancel:    cancel,
		state:     StateIdle,
		done:      make(chan struct{}),
	}, nil
}

func (c *Coordinator) CheckoutID() string {
	return c.attempt.CheckoutID
}

func (c *Coordinator) Owner() domain.Owner {
	return c.attempt.Owner
}

func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Outcome returns the terminal outcome once there is one.
func (c *Coordinator) Outcome() (Outcome, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.outcome == nil {
		return Outcome{}, false
	}
	return *c.outcome, true
}

// Done is closed when the coordinator reaches a terminal state.
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// VerificationCount reports how many verification round trips were made.
func (c *Coordinator) VerificationCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.verified
}

// Load injects the widget script, replacing any script already mounted for
// this checkout. On failure the coordinator returns to idle so the user can
// retry.
func (c *Coordinator) Load(ctx context.Context) error {
	if err := c.move(StateWidgetLoading); err != nil {
		return err
	}

	mountPoint := MountPoint(c.attempt.CheckoutID)
	c.deps.Host.Remove(mountPoint)

	callbacks := port.WidgetCallbacks{
		OnReady:          c.OnReady,
		OnBeforeSubmit:   c.OnBeforeSubmit,
		OnBeforeRedirect: c.OnBeforeRedirect,
		OnError:          c.OnError,
	}

	if err := c.deps.Host.Inject(ctx, mountPoint, c.attempt.WidgetURL, callbacks); err != nil {
		if moveErr := c.move(StateIdle); moveErr != nil {
			err = errors.Join(err, moveErr)
		}

		c.logger.Error("failed to load payment widget",
			"method", "Coordinator.Load",
			"error", err)
		c.notify(ctx, "widget_load_failed", port.Notification{
			Severity:   port.SeverityError,
			Persistent: true,
			Action:     "retry",
		})

		return fmt.Errorf("host.Inject: %w", err)
	}

	return nil
}

func (c *Coordinator) OnReady() {
	if err := c.move(StateWidgetReady); err != nil {
		c.logger.Debug("ignoring ready callback", "method", "Coordinator.OnReady", "error", err)
	}
}

// OnBeforeSubmit only tracks progress; the widget submits on its own.
func (c *Coordinator) OnBeforeSubmit() {
	if err := c.move(StateSubmitting); err != nil {
		c.logger.Debug("ignoring before submit callback", "method", "Coordinator.OnBeforeSubmit", "error", err)
		return
	}

	c.notify(c.ctx, "payment_processing", port.Notification{
		Severity: port.SeverityInfo,
	})
}

// OnBeforeRedirect captures the resource path and always asks the widget to
// suppress its redirect. Only the first call schedules verification: the
// move to redirect_captured is made under the lock, so later calls fail the
// transition and return without side effects.
func (c *Coordinator) OnBeforeRedirect(ctx context.Context, resourcePath, sessionID string) bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return true
	}

	next, err := transition(c.state, StateRedirectCaptured)
	if err != nil {
		c.mu.Unlock()
		c.logger.Info("duplicate redirect callback ignored",
			"method", "Coordinator.OnBeforeRedirect",
			"error", err)
		return true
	}
	c.state = next

	c.pending = task.After(c.ctx, c.deps.VerifyDelay, func(ctx context.Context) {
		c.verify(ctx, resourcePath)
	})
	c.mu.Unlock()

	session := domain.PaymentSession{
		CheckoutID:      c.attempt.CheckoutID,
		ResourcePath:    resourcePath,
		TransactionID:   c.attempt.TransactionID,
		CalculatedTotal: c.attempt.CalculatedTotal,
		FormData:        c.attempt.FormData,
	}
	if sessionID != "" && session.TransactionID == "" {
		session.TransactionID = sessionID
	}

	if err := c.deps.Sessions.Save(ctx, c.attempt.Owner, session); err != nil {
		c.logger.Warn("failed to persist payment session",
			"method", "Coordinator.OnBeforeRedirect",
			"error", err)
	}

	return true
}

// OnError fails the attempt unless the redirect was already captured.
func (c *Coordinator) OnError(message string) {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()

	if state == StateRedirectCaptured || state == StateVerifying {
		c.logger.Info("widget error after redirect ignored",
			"method", "Coordinator.OnError",
			"state", state,
			"message", message)
		return
	}

	c.finish(StateFailed, verification.Result{
		Class:   verification.ClassFailure,
		Message: message,
	})
}

// Close removes the widget script and stops verification that has not
// started yet. A verification already in flight still delivers its outcome.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	pending := c.pending
	c.mu.Unlock()

	c.cancel()
	if pending != nil {
		pending.Cancel()
	}

	c.deps.Host.Remove(MountPoint(c.attempt.CheckoutID))
}

func (c *Coordinator) verify(ctx context.Context, resourcePath string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	next, err := transition(c.state, StateVerifying)
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("verification not started", "method", "Coordinator.verify", "error", err)
		return
	}
	c.state = next
	c.verified++
	c.mu.Unlock()

	// a started verification outlives Close; its result still belongs to the owner
	vctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), verifyTimeout)
	defer cancel()

	res := c.deps.Verifier.Verify(vctx, domain.VerifyRequest{
		ResourcePath:    resourcePath,
		CheckoutID:      c.attempt.CheckoutID,
		TransactionID:   c.attempt.TransactionID,
		CalculatedTotal: c.attempt.CalculatedTotal,
	})

	to := StateFailed
	if res.Class == verification.ClassSuccess {
		to = StateSucceeded
	}

	c.finish(to, res)
}

func (c *Coordinator) finish(to State, res verification.Result) {
	c.mu.Lock()
	if c.closed && c.state != StateVerifying {
		c.mu.Unlock()
		return
	}
	next, err := transition(c.state, to)
	if err != nil {
		c.mu.Unlock()
		c.logger.Debug("terminal transition refused", "method", "Coordinator.finish", "error", err)
		return
	}
	c.state = next
	outcome := Outcome{State: next, Result: res, FinishedAt: time.Now()}
	c.outcome = &outcome
	close(c.done)
	c.mu.Unlock()

	c.logger.Info("payment widget finished",
		"method", "Coordinator.finish",
		"state", next,
		"class", res.Class)

	if c.onOutcome != nil {
		c.onOutcome(context.WithoutCancel(c.ctx), outcome)
	}
}

func (c *Coordinator) move(to State) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("coordinator is closed")
	}

	next, err := transition(c.state, to)
	if err != nil {
		return err
	}
	c.state = next
	return nil
}

func (c *Coordinator) notify(ctx context.Context, name string, n port.Notification) {
	msg, err := template.Default().Render(name, nil)
	if err != nil {
		c.logger.Warn("failed to render notification", "method", "Coordinator.notify", "error", err)
		return
	}

	n.Message = msg
	c.deps.Notifier.Notify(ctx, c.attempt.Owner, n)
}
