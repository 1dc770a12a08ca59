package httpapi

import (
	"net/http"

	"github.com/kevinvillajim/bcommerce-checkout/internal/notify"
)

func (h *handler) drainNotifications(w http.ResponseWriter, r *http.Request) {
	events := h.Inbox.Drain(identityFrom(r.Context()).owner)
	if events == nil {
		events = []notify.Event{}
	}

	respondJSON(w, http.StatusOK, events)
}
