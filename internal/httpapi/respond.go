package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kevinvillajim/bcommerce-checkout/internal/apiclient"
	"github.com/kevinvillajim/bcommerce-checkout/internal/checkout"
	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/qrpay"
	"github.com/kevinvillajim/bcommerce-checkout/internal/repository"
	"github.com/kevinvillajim/bcommerce-checkout/internal/verification"
	"github.com/kevinvillajim/bcommerce-checkout/internal/widget"
)

type ErrorResponse struct {
	Error  string                  `json:"error"`
	Code   string                  `json:"code,omitempty"`
	Fields domain.ValidationErrors `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "method", "respondJSON", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
}

// respondServiceError maps service errors to a status and a message that
// is safe to show.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var verrs domain.ValidationErrors
	var checkoutErr *checkout.Error
	var stockErr *checkout.StockError
	var rejected *checkout.RejectedError
	var httpErr *apiclient.HTTPError

	switch {
	case errors.As(err, &checkoutErr) && errors.Is(err, checkout.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "submission_in_flight", checkoutErr.Message)
	case errors.As(err, &checkoutErr) && errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusBadRequest, "empty_cart", checkoutErr.Message)
	case errors.As(err, &verrs):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  checkout.UserMessage(err),
			Code:   "validation_failed",
			Fields: verrs,
		})
	case errors.As(err, &stockErr):
		respondError(w, http.StatusUnprocessableEntity, "insufficient_stock", stockErr.Error())
	case errors.As(err, &rejected):
		respondError(w, http.StatusUnprocessableEntity, "checkout_rejected", checkout.UserMessage(err))
	case errors.Is(err, domain.ErrQuantityOutOfRange), errors.Is(err, domain.ErrInvalidProductID):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, domain.ErrItemNotFound):
		respondError(w, http.StatusNotFound, "item_not_found", "the product is not in your cart")
	case errors.Is(err, repository.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", "payment link not found")
	case errors.Is(err, domain.ErrPaymentLinkForbidden):
		respondError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, domain.ErrPaymentLinkExpired):
		respondError(w, http.StatusGone, "expired", err.Error())
	case errors.Is(err, domain.ErrPaymentLinkNotPending):
		respondError(w, http.StatusConflict, "not_pending", err.Error())
	case errors.Is(err, widget.ErrUnknownCheckout), errors.Is(err, widget.ErrNoScript), errors.Is(err, qrpay.ErrNotWatched):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, widget.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_state", err.Error())
	case errors.Is(err, verification.ErrNoSession):
		respondError(w, http.StatusNotFound, "no_payment_session", "no pending payment was found")
	case errors.Is(err, verification.ErrSimulationDisabled):
		respondError(w, http.StatusForbidden, "simulation_disabled", err.Error())
	case errors.As(err, &httpErr), errors.As(err, &checkoutErr):
		respondError(w, http.StatusBadGateway, "upstream_error", checkout.UserMessage(err))
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", "respondServiceError",
			"path", r.URL.Path,
			"error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", apiclient.DefaultMessage)
	}
}
