package port

import (
	"context"
	"time"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

type Notification struct {
	Severity   Severity      `json:"severity"`
	Message    string        `json:"message"`
	Duration   time.Duration `json:"duration"`
	Position   string        `json:"position,omitempty"`
	Persistent bool          `json:"persistent,omitempty"`
	// Action names a follow-up the UI offers, e.g. "retry".
	Action string `json:"action,omitempty"`
}

// Notifier is fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, owner domain.Owner, n Notification)
}

type Navigator interface {
	Navigate(ctx context.Context, owner domain.Owner, target string)
}

// WidgetCallbacks is the configuration object the hosted payment widget
// calls back into. It must be populated before the script is injected.
type WidgetCallbacks struct {
	OnReady          func()
	OnBeforeSubmit   func()
	OnBeforeRedirect func(ctx context.Context, resourcePath, sessionID string) bool
	OnError          func(message string)
}

// ScriptHost injects and removes the widget script at a mount point.
type ScriptHost interface {
	Inject(ctx context.Context, mountPoint, scriptURL string, callbacks WidgetCallbacks) error
	Remove(mountPoint string)
}
