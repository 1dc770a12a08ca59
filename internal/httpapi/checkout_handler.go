package httpapi

import (
	"net/http"

	"github.com/kevinvillajim/bcommerce-checkout/internal/checkout"
)

func (h *handler) submitCheckout(w http.ResponseWriter, r *http.Request) {
	var form checkout.Form
	if err := decodeJSON(w, r, &form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	outcome, err := h.Checkout.Submit(r.Context(), identityFrom(r.Context()).owner, form)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, outcome)
}
