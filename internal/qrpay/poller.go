// Package qrpay follows QR and bank transfer payments until they settle.
package qrpay

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
	"github.com/kevinvillajim/bcommerce-checkout/internal/task"
)

const (
	DefaultInterval  = 5 * time.Second
	DefaultExpiry    = 15 * time.Minute
	DefaultRetention = 10 * time.Minute
)

type Update struct {
	TransactionID string                 `json:"transaction_id"`
	Status        domain.QRPaymentStatus `json:"status"`
	Message       string                 `json:"message,omitempty"`
	Remaining     time.Duration          `json:"remaining"`
}

type Options struct {
	Interval time.Duration
	Expiry   time.Duration
	// Retention keeps a settled transaction readable by Watcher.Status.
	Retention time.Duration
}

type Poller struct {
	api    port.QRPaymentAPI
	opts   Options
	logger *slog.Logger
}

func NewPoller(api port.QRPaymentAPI, opts Options, logger *slog.Logger) (*Poller, error) {
	if api == nil {
		return nil, errors.New("qr payment api is nil")
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Expiry <= 0 {
		opts.Expiry = DefaultExpiry
	}
	if opts.Retention <= 0 {
		opts.Retention = DefaultRetention
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Poller{api: api, opts: opts, logger: logger}, nil
}

// Start polls the status of transactionID every interval until it is
// terminal, the expiry countdown runs out or the task is cancelled. The
// ticker and the countdown share the task's context. onUpdate receives
// every polled status and exactly one final update: the terminal status,
// expired or cancelled.
func (p *Poller) Start(parent context.Context, transactionID string, onUpdate func(Update)) *task.Task {
	return task.Go(parent, func(ctx context.Context) {
		deadline := time.Now().Add(p.opts.Expiry)

		expiry := time.NewTimer(p.opts.Expiry)
		defer expiry.Stop()

		ticker := time.NewTicker(p.opts.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				onUpdate(Update{
					TransactionID: transactionID,
					Status:        domain.QRPaymentCancelled,
				})
				return
			case <-expiry.C:
				onUpdate(Update{
					TransactionID: transactionID,
					Status:        domain.QRPaymentExpired,
				})
				return
			case <-ticker.C:
			}

			resp, err := p.api.QRStatus(ctx, transactionID)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				p.logger.Warn("qr status poll failed",
					"method", "Poller.Start",
					"transaction_id", transactionID,
					"error", err)
				continue
			}

			update := Update{
				TransactionID: transactionID,
				Status:        resp.Status,
				Message:       resp.Message,
				Remaining:     max(time.Until(deadline), 0),
			}
			onUpdate(update)

			if resp.Status.IsTerminal() {
				return
			}
		}
	})
}
