// Package notify delivers notifications and navigations to the storefront.
// The UI drains its inbox; nothing in the core waits for delivery.
package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
)

const defaultCapacity = 50

type Kind string

const (
	KindNotification Kind = "notification"
	KindNavigation   Kind = "navigation"
)

type Event struct {
	Kind         Kind               `json:"kind"`
	Notification *port.Notification `json:"notification,omitempty"`
	Target       string             `json:"target,omitempty"`
	At           time.Time          `json:"at"`
}

// Inbox queues events per owner. When a queue is full the oldest event is
// dropped.
type Inbox struct {
	capacity int
	logger   *slog.Logger

	mu     sync.Mutex
	queues map[string][]Event
}

var (
	_ port.Notifier  = (*Inbox)(nil)
	_ port.Navigator = (*Inbox)(nil)
)

func NewInbox(capacity int, logger *slog.Logger) *Inbox {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Inbox{
		capacity: capacity,
		logger:   logger,
		queues:   make(map[string][]Event),
	}
}

func (i *Inbox) Notify(_ context.Context, owner domain.Owner, n port.Notification) {
	i.logger.Info("notification",
		"method", "Inbox.Notify",
		"owner", owner.Key(),
		"severity", n.Severity,
		"message", n.Message)

	i.push(owner, Event{Kind: KindNotification, Notification: &n})
}

func (i *Inbox) Navigate(_ context.Context, owner domain.Owner, target string) {
	i.logger.Info("navigation",
		"method", "Inbox.Navigate",
		"owner", owner.Key(),
		"target", target)

	i.push(owner, Event{Kind: KindNavigation, Target: target})
}

// Drain returns and forgets the queued events of owner, oldest first.
func (i *Inbox) Drain(owner domain.Owner) []Event {
	i.mu.Lock()
	defer i.mu.Unlock()

	events := i.queues[owner.Key()]
	delete(i.queues, owner.Key())
	return events
}

// Peek returns the queued events of owner without removing them.
func (i *Inbox) Peek(owner domain.Owner) []Event {
	i.mu.Lock()
	defer i.mu.Unlock()

	return append([]Event(nil), i.queues[owner.Key()]...)
}

func (i *Inbox) push(owner domain.Owner, e Event) {
	e.At = time.Now().UTC()

	i.mu.Lock()
	defer i.mu.Unlock()

	q := append(i.queues[owner.Key()], e)
	if len(q) > i.capacity {
		q = q[len(q)-i.capacity:]
	}
	i.queues[owner.Key()] = q
}
