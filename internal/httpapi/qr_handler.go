package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (h *handler) qrWatch(w http.ResponseWriter, r *http.Request) {
	update, err := h.QR.Watch(r.Context(), identityFrom(r.Context()).owner, chi.URLParam(r, "transactionID"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	respondJSON(w, http.StatusAccepted, update)
}

func (h *handler) qrStatus(w http.ResponseWriter, r *http.Request) {
	update, err := h.QR.Status(chi.URLParam(r, "transactionID"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, update)
}

func (h *handler) qrStop(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")

	if err := h.QR.Stop(transactionID); err != nil {
		respondServiceError(w, r, err)
		return
	}

	update, err := h.QR.Status(transactionID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, update)
}
