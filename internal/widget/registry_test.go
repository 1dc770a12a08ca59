package widget_test

import (
	"context"
	"testing"
	"time"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/kvstore"
	"github.com/kevinvillajim/bcommerce-checkout/internal/notify"
	"github.com/kevinvillajim/bcommerce-checkout/internal/verification"
	"github.com/kevinvillajim/bcommerce-checkout/internal/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	sessions, err := verification.NewSessionStore(kvstore.NewMemory(), "datafast")
	require.NoError(t, err)

	host := widget.NewMemoryHost()
	deps := widget.Deps{
		Host:     host,
		Verifier: &fakeVerifier{},
		Sessions: sessions,
		Notifier: notify.NewInbox(0, nil),
	}

	newCoordinator := func() *widget.Coordinator {
		c, err := widget.NewCoordinator(t.Context(), deps, widget.Attempt{
			Owner:      domain.Owner{SessionID: "s-1"},
			CheckoutID: "chk-1",
			WidgetURL:  "https://pay.example.com/widget.js",
		}, nil)
		require.NoError(t, err)
		require.NoError(t, c.Load(t.Context()))
		return c
	}

	registry := widget.NewRegistry(widget.RegistryOptions{})

	first := newCoordinator()
	registry.Put(first)

	second := newCoordinator()
	registry.Put(second)

	actual, err := registry.Get("chk-1")
	require.NoError(t, err)
	assert.Same(t, second, actual)

	// the replaced coordinator is closed
	first.OnReady()
	assert.Equal(t, widget.StateWidgetLoading, first.State())

	assert.True(t, registry.Remove("chk-1"))
	assert.False(t, registry.Remove("chk-1"))

	_, err = registry.Get("chk-1")
	assert.ErrorIs(t, err, widget.ErrUnknownCheckout)

	registry.Put(newCoordinator())
	registry.CloseAll()
	_, err = registry.Get("chk-1")
	assert.ErrorIs(t, err, widget.ErrUnknownCheckout)
}

func TestRegistryEviction(t *testing.T) {
	sessions, err := verification.NewSessionStore(kvstore.NewMemory(), "datafast")
	require.NoError(t, err)

	host := widget.NewMemoryHost()
	deps := widget.Deps{
		Host: host,
		Verifier: &fakeVerifier{result: verification.Result{
			Class:   verification.ClassSuccess,
			Payment: &domain.VerifiedPayment{OrderID: "55"},
		}},
		Sessions:    sessions,
		Notifier:    notify.NewInbox(0, nil),
		VerifyDelay: time.Millisecond,
	}

	newCoordinator := func(checkoutID string) *widget.Coordinator {
		c, err := widget.NewCoordinator(t.Context(), deps, widget.Attempt{
			Owner:      domain.Owner{SessionID: "s-1"},
			CheckoutID: checkoutID,
			WidgetURL:  "https://pay.example.com/widget.js",
		}, nil)
		require.NoError(t, err)
		require.NoError(t, c.Load(t.Context()))
		return c
	}

	tests := []struct {
		name    string
		opts    widget.RegistryOptions
		finish  bool
		wait    time.Duration
		wantLen int
	}{
		{
			name:    "finished coordinator stays within grace",
			opts:    widget.RegistryOptions{Grace: time.Hour, IdleTTL: time.Hour},
			finish:  true,
			wantLen: 1,
		},
		{
			name:    "finished coordinator is dropped after grace",
			opts:    widget.RegistryOptions{Grace: 20 * time.Millisecond, IdleTTL: time.Hour},
			finish:  true,
			wait:    40 * time.Millisecond,
			wantLen: 0,
		},
		{
			name:    "unfinished coordinator is dropped after idle ttl",
			opts:    widget.RegistryOptions{Grace: time.Hour, IdleTTL: 20 * time.Millisecond},
			wait:    40 * time.Millisecond,
			wantLen: 0,
		},
		{
			name:    "unfinished coordinator stays within idle ttl",
			opts:    widget.RegistryOptions{Grace: time.Millisecond, IdleTTL: time.Hour},
			wait:    10 * time.Millisecond,
			wantLen: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := widget.NewRegistry(tt.opts)
			defer registry.CloseAll()

			c := newCoordinator("chk-" + tt.name)
			registry.Put(c)

			if tt.finish {
				c.OnReady()
				c.OnBeforeRedirect(context.Background(), "/v1/checkouts/x/payment", "")
				select {
				case <-c.Done():
				case <-time.After(2 * time.Second):
					t.Fatal("coordinator did not finish")
				}
			}

			time.Sleep(tt.wait)

			_, err := registry.Get(c.CheckoutID())
			if tt.wantLen == 0 {
				assert.ErrorIs(t, err, widget.ErrUnknownCheckout)
				_, mounted := host.ScriptURL(widget.MountPoint(c.CheckoutID()))
				assert.False(t, mounted)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantLen, registry.Len())
		})
	}
}

func TestRegistryPruneReportsDropped(t *testing.T) {
	sessions, err := verification.NewSessionStore(kvstore.NewMemory(), "datafast")
	require.NoError(t, err)

	deps := widget.Deps{
		Host:     widget.NewMemoryHost(),
		Verifier: &fakeVerifier{},
		Sessions: sessions,
		Notifier: notify.NewInbox(0, nil),
	}

	registry := widget.NewRegistry(widget.RegistryOptions{IdleTTL: 10 * time.Millisecond})
	for _, id := range []string{"chk-1", "chk-2", "chk-3"} {
		c, err := widget.NewCoordinator(t.Context(), deps, widget.Attempt{
			CheckoutID: id,
			WidgetURL:  "https://pay.example.com/widget.js",
		}, nil)
		require.NoError(t, err)
		registry.Put(c)
	}

	require.Equal(t, 3, registry.Len())
	assert.Zero(t, registry.Prune())

	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, 3, registry.Prune())
	assert.Zero(t, registry.Len())
}
