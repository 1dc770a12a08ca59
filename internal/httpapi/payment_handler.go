package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/kevinvillajim/bcommerce-checkout/internal/checkout"
	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
	"github.com/kevinvillajim/bcommerce-checkout/internal/verification"
	"github.com/kevinvillajim/bcommerce-checkout/internal/widget"
	"github.com/shopspring/decimal"
)

type createWidgetRequest struct {
	checkout.Form
	CustomerEmail string `json:"customer_email,omitempty"`
}

type widgetResponse struct {
	CheckoutID    string           `json:"checkout_id"`
	WidgetURL     string           `json:"widget_url,omitempty"`
	TransactionID string           `json:"transaction_id,omitempty"`
	Amount        decimal.Decimal  `json:"amount"`
	Summary       checkout.Summary `json:"summary"`
	State         widget.State     `json:"state"`
	Outcome       *widget.Outcome  `json:"outcome,omitempty"`
}

type beforeRedirectRequest struct {
	ResourcePath string `json:"resource_path"`
	SessionID    string `json:"session_id"`
}

type widgetErrorRequest struct {
	Message string `json:"message"`
}

type simulateRequest struct {
	CheckoutID string `json:"checkout_id"`
}

type verificationResponse struct {
	verification.Result
	RedirectTo string `json:"redirect_to"`
}

// createWidget prepares the checkout, opens a hosted payment session with
// the provider and loads its widget.
func (h *handler) createWidget(w http.ResponseWriter, r *http.Request) {
	var req createWidgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	owner := identityFrom(r.Context()).owner
	req.Payment.Method = domain.PaymentMethodCreditCard

	prepared, err := h.Checkout.Prepare(r.Context(), owner, req.Form)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	pc, err := h.Payments.CreateCheckout(r.Context(), domain.CreatePaymentCheckout{
		Amount:          prepared.Summary.Total,
		Currency:        h.Currency.String(),
		ShippingAddress: prepared.Request.ShippingAddress,
		Items:           prepared.Request.Items,
		SellerID:        prepared.Request.SellerID,
		CustomerEmail:   req.CustomerEmail,
	})
	if err != nil {
		respondServiceError(w, r, &checkout.Error{Message: checkout.UserMessage(err), Cause: err})
		return
	}

	formData, err := json.Marshal(req.Form)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	coordinator, err := widget.NewCoordinator(h.BaseContext, h.WidgetDeps, widget.Attempt{
		Owner:           owner,
		CheckoutID:      pc.CheckoutID,
		TransactionID:   pc.TransactionID,
		WidgetURL:       pc.WidgetURL,
		CalculatedTotal: prepared.Summary.Total,
		FormData:        formData,
	}, func(ctx context.Context, o widget.Outcome) {
		h.Verification.Finalize(ctx, owner, o.Result)
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	h.Widgets.Put(coordinator)

	if err := coordinator.Load(r.Context()); err != nil {
		respondError(w, http.StatusBadGateway, "widget_load_failed", "The payment form could not be loaded. Please try again.")
		return
	}

	respondJSON(w, http.StatusCreated, widgetResponse{
		CheckoutID:    pc.CheckoutID,
		WidgetURL:     pc.WidgetURL,
		TransactionID: pc.TransactionID,
		Amount:        prepared.Summary.Total,
		Summary:       prepared.Summary,
		State:         coordinator.State(),
	})
}

func (h *handler) getWidget(w http.ResponseWriter, r *http.Request) {
	c, ok := h.ownedWidget(w, r)
	if !ok {
		return
	}

	resp := widgetResponse{
		CheckoutID: c.CheckoutID(),
		State:      c.State(),
	}
	if url, found := h.WidgetHost.ScriptURL(widget.MountPoint(c.CheckoutID())); found {
		resp.WidgetURL = url
	}
	if outcome, done := c.Outcome(); done {
		resp.Outcome = &outcome
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *handler) closeWidget(w http.ResponseWriter, r *http.Request) {
	c, ok := h.ownedWidget(w, r)
	if !ok {
		return
	}

	h.Widgets.Remove(c.CheckoutID())
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) widgetReady(w http.ResponseWriter, r *http.Request) {
	callbacks, ok := h.widgetCallbacks(w, r)
	if !ok {
		return
	}

	callbacks.OnReady()
	h.respondWidgetState(w, r)
}

func (h *handler) widgetBeforeSubmit(w http.ResponseWriter, r *http.Request) {
	callbacks, ok := h.widgetCallbacks(w, r)
	if !ok {
		return
	}

	callbacks.OnBeforeSubmit()
	h.respondWidgetState(w, r)
}

func (h *handler) widgetBeforeRedirect(w http.ResponseWriter, r *http.Request) {
	callbacks, ok := h.widgetCallbacks(w, r)
	if !ok {
		return
	}

	var req beforeRedirectRequest
	if err := decodeJSON(w, r, &req); err != nil || req.ResourcePath == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "resource_path is required")
		return
	}

	suppress := callbacks.OnBeforeRedirect(r.Context(), req.ResourcePath, req.SessionID)

	respondJSON(w, http.StatusAccepted, map[string]bool{"suppress_redirect": suppress})
}

func (h *handler) widgetError(w http.ResponseWriter, r *http.Request) {
	callbacks, ok := h.widgetCallbacks(w, r)
	if !ok {
		return
	}

	var req widgetErrorRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	callbacks.OnError(req.Message)
	h.respondWidgetState(w, r)
}

func (h *handler) verifyStored(w http.ResponseWriter, r *http.Request) {
	owner := identityFrom(r.Context()).owner

	res, _, err := h.Verification.ResumeStored(r.Context(), owner)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newVerificationResponse(res))
}

func (h *handler) simulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	owner := identityFrom(r.Context()).owner

	res, _, err := h.Verification.SimulateSuccess(r.Context(), owner, req.CheckoutID)
	if err != nil {
		if errors.Is(err, verification.ErrSimulationDisabled) {
			respondServiceError(w, r, err)
			return
		}
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	respondJSON(w, http.StatusOK, newVerificationResponse(res))
}

func newVerificationResponse(res verification.Result) verificationResponse {
	target := "/cart"
	if res.Class == verification.ClassSuccess {
		target = verification.ConfirmationPath(res.OrderID())
	}
	return verificationResponse{Result: res, RedirectTo: target}
}

// ownedWidget returns the coordinator of the path's checkout if it belongs
// to the caller's session.
func (h *handler) ownedWidget(w http.ResponseWriter, r *http.Request) (*widget.Coordinator, bool) {
	c, err := h.Widgets.Get(chi.URLParam(r, "checkoutID"))
	if err != nil {
		respondServiceError(w, r, err)
		return nil, false
	}

	caller := identityFrom(r.Context()).owner
	if c.Owner().SessionID != caller.SessionID && (caller.IsAnonymous() || c.Owner().UserID != caller.UserID) {
		respondServiceError(w, r, widget.ErrUnknownCheckout)
		return nil, false
	}

	return c, true
}

func (h *handler) widgetCallbacks(w http.ResponseWriter, r *http.Request) (port.WidgetCallbacks, bool) {
	c, ok := h.ownedWidget(w, r)
	if !ok {
		return port.WidgetCallbacks{}, false
	}

	callbacks, err := h.WidgetHost.Callbacks(widget.MountPoint(c.CheckoutID()))
	if err != nil {
		respondServiceError(w, r, err)
		return port.WidgetCallbacks{}, false
	}

	return callbacks, true
}

func (h *handler) respondWidgetState(w http.ResponseWriter, r *http.Request) {
	c, err := h.Widgets.Get(chi.URLParam(r, "checkoutID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]widget.State{"state": c.State()})
}
