// Package httpapi is the backend-for-frontend the storefront UI talks to.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/kevinvillajim/bcommerce-checkout/internal/cart"
	"github.com/kevinvillajim/bcommerce-checkout/internal/checkout"
	"github.com/kevinvillajim/bcommerce-checkout/internal/notify"
	"github.com/kevinvillajim/bcommerce-checkout/internal/paymentlink"
	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
	"github.com/kevinvillajim/bcommerce-checkout/internal/qrpay"
	"github.com/kevinvillajim/bcommerce-checkout/internal/verification"
	"github.com/kevinvillajim/bcommerce-checkout/internal/widget"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/text/currency"
)

const defaultRequestTimeout = 30 * time.Second

type Deps struct {
	// BaseContext bounds background work started by requests, such as
	// widget verification.
	BaseContext context.Context

	Carts        *cart.Store
	Products     port.ProductAPI
	Checkout     *checkout.Orchestrator
	Payments     port.PaymentAPI
	Verification *verification.Service
	Widgets      *widget.Registry
	WidgetHost   *widget.MemoryHost
	WidgetDeps   widget.Deps
	QR           *qrpay.Watcher
	PaymentLinks *paymentlink.Service
	Inbox        *notify.Inbox

	Currency       currency.Unit
	JWTSecret      []byte
	RequestTimeout time.Duration
	Logger         *slog.Logger
}

func (d Deps) validate() error {
	switch {
	case d.BaseContext == nil:
		return errors.New("base context is nil")
	case d.Carts == nil:
		return errors.New("cart store is nil")
	case d.Products == nil:
		return errors.New("product api is nil")
	case d.Checkout == nil:
		return errors.New("checkout orchestrator is nil")
	case d.Payments == nil:
		return errors.New("payment api is nil")
	case d.Verification == nil:
		return errors.New("verification service is nil")
	case d.Widgets == nil:
		return errors.New("widget registry is nil")
	case d.WidgetHost == nil:
		return errors.New("widget host is nil")
	case d.QR == nil:
		return errors.New("qr watcher is nil")
	case d.PaymentLinks == nil:
		return errors.New("payment link service is nil")
	case d.Inbox == nil:
		return errors.New("inbox is nil")
	}
	return nil
}

type handler struct {
	Deps
}

// NewRouter wires every route behind the shared middleware stack and the
// otel server instrumentation.
func NewRouter(deps Deps) (http.Handler, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if deps.RequestTimeout <= 0 {
		deps.RequestTimeout = defaultRequestTimeout
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	h := &handler{Deps: deps}

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(deps.RequestTimeout))
	r.Use(IdentityMiddleware(deps.JWTSecret))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", h.getCart)
			r.Delete("/", h.clearCart)
			r.Post("/items", h.addItem)
			r.Patch("/items/{productID}", h.updateQuantity)
			r.Delete("/items/{productID}", h.removeItem)
			r.Post("/merge", requireUser(h.mergeCart))
		})

		r.Post("/checkout", h.submitCheckout)

		r.Route("/payment", func(r chi.Router) {
			r.Post("/widget", h.createWidget)
			r.Route("/widget/{checkoutID}", func(r chi.Router) {
				r.Get("/", h.getWidget)
				r.Delete("/", h.closeWidget)
				r.Post("/ready", h.widgetReady)
				r.Post("/before-submit", h.widgetBeforeSubmit)
				r.Post("/before-redirect", h.widgetBeforeRedirect)
				r.Post("/error", h.widgetError)
			})

			r.Post("/verify-stored", h.verifyStored)
			r.Post("/simulate", h.simulate)

			r.Route("/qr/{transactionID}", func(r chi.Router) {
				r.Get("/", h.qrStatus)
				r.Post("/watch", h.qrWatch)
				r.Delete("/", h.qrStop)
			})
		})

		r.Route("/payment-links", func(r chi.Router) {
			r.Post("/", requireUser(h.createPaymentLink))
			r.Get("/", requireUser(h.listPaymentLinks))
			r.Get("/{ref}", h.getPaymentLink)
			r.Post("/{ref}/pay", h.payPaymentLink)
			r.Post("/{ref}/cancel", requireUser(h.cancelPaymentLink))
		})

		r.Get("/notifications", h.drainNotifications)
	})

	return otelhttp.NewHandler(r, "storefront"), nil
}
