package qrpay_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/qrpay"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// fakeQRAPI answers the scripted statuses in order and then repeats the last.
type fakeQRAPI struct {
	mu       sync.Mutex
	statuses []domain.QRPaymentStatus
	errs     []error
	calls    int
}

func (f *fakeQRAPI) QRStatus(_ context.Context, transactionID string) (domain.QRStatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	idx := f.calls
	f.calls++

	if idx < len(f.errs) && f.errs[idx] != nil {
		return domain.QRStatusResponse{}, f.errs[idx]
	}

	status := domain.QRPaymentPending
	if len(f.statuses) > 0 {
		status = f.statuses[min(idx, len(f.statuses)-1)]
	}
	return domain.QRStatusResponse{TransactionID: transactionID, Status: status}, nil
}

func (f *fakeQRAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type recorder struct {
	mu      sync.Mutex
	updates []qrpay.Update
}

func (r *recorder) record(u qrpay.Update) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, u)
}

func (r *recorder) statuses() []domain.QRPaymentStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.QRPaymentStatus, 0, len(r.updates))
	for _, u := range r.updates {
		out = append(out, u.Status)
	}
	return out
}

func TestPollerStopsOnTerminalStatus(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeQRAPI{
		statuses: []domain.QRPaymentStatus{domain.QRPaymentPending, domain.QRPaymentPending, domain.QRPaymentCompleted},
		errs:     []error{nil, errors.New("bad gateway")},
	}
	poller, err := qrpay.NewPoller(api, qrpay.Options{Interval: 5 * time.Millisecond, Expiry: time.Minute}, nil)
	require.NoError(t, err)

	rec := &recorder{}
	tk := poller.Start(t.Context(), "tx-1", rec.record)
	require.NoError(t, tk.Wait(waitCtx(t)))

	assert.Equal(t, []domain.QRPaymentStatus{domain.QRPaymentPending, domain.QRPaymentCompleted}, rec.statuses())
	assert.Equal(t, 3, api.callCount())
	assert.False(t, tk.Cancelled())
}

func TestPollerExpires(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeQRAPI{}
	poller, err := qrpay.NewPoller(api, qrpay.Options{Interval: 5 * time.Millisecond, Expiry: 30 * time.Millisecond}, nil)
	require.NoError(t, err)

	rec := &recorder{}
	tk := poller.Start(t.Context(), "tx-1", rec.record)
	require.NoError(t, tk.Wait(waitCtx(t)))

	statuses := rec.statuses()
	require.NotEmpty(t, statuses)
	assert.Equal(t, domain.QRPaymentExpired, statuses[len(statuses)-1])
}

func TestPollerCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	api := &fakeQRAPI{}
	poller, err := qrpay.NewPoller(api, qrpay.Options{Interval: time.Hour, Expiry: time.Hour}, nil)
	require.NoError(t, err)

	rec := &recorder{}
	tk := poller.Start(t.Context(), "tx-1", rec.record)
	tk.Cancel()
	require.NoError(t, tk.Wait(waitCtx(t)))

	assert.True(t, tk.Cancelled())
	assert.Equal(t, []domain.QRPaymentStatus{domain.QRPaymentCancelled}, rec.statuses())
	assert.Zero(t, api.callCount())
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}
