package qrpay

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
	"github.com/kevinvillajim/bcommerce-checkout/internal/task"
)

var ErrNotWatched = errors.New("transaction is not watched")

type watch struct {
	owner   domain.Owner
	task    *task.Task
	latest  Update
	settled time.Time
}

// Watcher runs one poller per transaction, remembers its latest update and
// notifies the owner when the payment settles. A settled transaction is
// forgotten once the poller's retention has passed.
type Watcher struct {
	poller   *Poller
	notifier port.Notifier
	logger   *slog.Logger

	mu      sync.Mutex
	watches map[string]*watch
}

func NewWatcher(poller *Poller, notifier port.Notifier, logger *slog.Logger) (*Watcher, error) {
	if poller == nil {
		return nil, errors.New("poller is nil")
	}
	if notifier == nil {
		return nil, errors.New("notifier is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Watcher{
		poller:   poller,
		notifier: notifier,
		logger:   logger,
		watches:  make(map[string]*watch),
	}, nil
}

// Watch starts polling transactionID. Watching a transaction twice keeps
// the running poller.
func (w *Watcher) Watch(ctx context.Context, owner domain.Owner, transactionID string) (Update, error) {
	if transactionID == "" {
		return Update{}, errors.New("transactionID is empty")
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.collect(time.Now())

	if existing, ok := w.watches[transactionID]; ok {
		return existing.latest, nil
	}

	wt := &watch{
		owner:  owner,
		latest: Update{TransactionID: transactionID, Status: domain.QRPaymentPending},
	}
	w.watches[transactionID] = wt

	wt.task = w.poller.Start(context.WithoutCancel(ctx), transactionID, func(u Update) {
		w.record(owner, u)
	})

	return wt.latest, nil
}

func (w *Watcher) Status(transactionID string) (Update, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.collect(time.Now())

	wt, ok := w.watches[transactionID]
	if !ok {
		return Update{}, ErrNotWatched
	}
	return wt.latest, nil
}

// Stop cancels polling; the last update becomes cancelled.
func (w *Watcher) Stop(transactionID string) error {
	w.mu.Lock()
	wt, ok := w.watches[transactionID]
	w.mu.Unlock()

	if !ok {
		return ErrNotWatched
	}

	wt.task.Cancel()
	<-wt.task.Done()
	return nil
}

// StopAll cancels every poller and waits for them to return.
func (w *Watcher) StopAll() {
	w.mu.Lock()
	tasks := make([]*task.Task, 0, len(w.watches))
	for _, wt := range w.watches {
		tasks = append(tasks, wt.task)
	}
	w.mu.Unlock()

	for _, t := range tasks {
		t.Cancel()
		<-t.Done()
	}
}

// Prune forgets settled transactions past their retention and reports how
// many were dropped.
func (w *Watcher) Prune() int {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.collect(time.Now())
}

func (w *Watcher) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.watches)
}

// collect drops settled watches; w.mu must be held.
func (w *Watcher) collect(now time.Time) int {
	var n int
	for id, wt := range w.watches {
		if !wt.settled.IsZero() && now.Sub(wt.settled) >= w.poller.opts.Retention {
			delete(w.watches, id)
			n++
		}
	}
	return n
}

func (w *Watcher) record(owner domain.Owner, u Update) {
	w.mu.Lock()
	if wt, ok := w.watches[u.TransactionID]; ok {
		wt.latest = u
		if u.Status.IsTerminal() {
			wt.settled = time.Now()
		}
	}
	w.mu.Unlock()

	var n port.Notification
	switch u.Status {
	case domain.QRPaymentCompleted:
		n = port.Notification{Severity: port.SeveritySuccess, Message: "Payment received. Thank you!"}
	case domain.QRPaymentFailed:
		n = port.Notification{Severity: port.SeverityError, Message: "The payment failed. Please try again.", Action: "retry"}
	case domain.QRPaymentExpired:
		n = port.Notification{Severity: port.SeverityWarning, Message: "The payment code expired. Generate a new one to pay."}
	default:
		return
	}

	w.notifier.Notify(context.Background(), owner, n)
}
