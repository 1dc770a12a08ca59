package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/paymentlink"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type createPaymentLinkRequest struct {
	CustomerName string          `json:"customer_name"`
	Amount       decimal.Decimal `json:"amount"`
	Description  string          `json:"description,omitempty"`
}

type payPaymentLinkRequest struct {
	PaymentMethod string `json:"payment_method"`
	TransactionID string `json:"transaction_id"`
}

type paymentLinkResponse struct {
	ID            uuid.UUID       `json:"id"`
	Code          string          `json:"code"`
	CustomerName  string          `json:"customer_name"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Description   *string         `json:"description,omitempty"`
	Status        string          `json:"status"`
	ExpiresAt     time.Time       `json:"expires_at"`
	PaidAt        *time.Time      `json:"paid_at,omitempty"`
	PaymentMethod *string         `json:"payment_method,omitempty"`
	TransactionID *string         `json:"transaction_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

func newPaymentLinkResponse(l domain.PaymentLink) paymentLinkResponse {
	return paymentLinkResponse{
		ID:            l.ID,
		Code:          l.Code,
		CustomerName:  l.CustomerName,
		Amount:        l.Amount.Amount,
		Currency:      l.Amount.Currency.String(),
		Description:   l.Description,
		Status:        string(l.Status),
		ExpiresAt:     l.ExpiresAt,
		PaidAt:        l.PaidAt,
		PaymentMethod: l.PaymentMethod,
		TransactionID: l.TransactionID,
		CreatedAt:     l.CreatedAt,
	}
}

func (h *handler) createPaymentLink(w http.ResponseWriter, r *http.Request) {
	var req createPaymentLinkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	link, err := h.PaymentLinks.Create(r.Context(), paymentlink.CreateParams{
		CreatorID:    identityFrom(r.Context()).owner.UserID,
		CustomerName: req.CustomerName,
		Amount:       req.Amount,
		Description:  req.Description,
	})
	if err != nil {
		if errors.Is(err, paymentlink.ErrCustomerName) || errors.Is(err, paymentlink.ErrInvalidAmount) {
			respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, newPaymentLinkResponse(link))
}

// listPaymentLinks accepts repeated or comma separated status and code
// parameters plus RFC 3339 created_after and created_before bounds.
func (h *handler) listPaymentLinks(w http.ResponseWriter, r *http.Request) {
	query, err := parseListQuery(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	links, err := h.PaymentLinks.ListByCreator(r.Context(), identityFrom(r.Context()).owner.UserID, query)
	if err != nil {
		if errors.Is(err, paymentlink.ErrInvalidQuery) {
			respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, lo.Map(links, func(l domain.PaymentLink, _ int) paymentLinkResponse {
		return newPaymentLinkResponse(l)
	}))
}

func (h *handler) getPaymentLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.PaymentLinks.GetByCode(r.Context(), chi.URLParam(r, "ref"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newPaymentLinkResponse(link))
}

func (h *handler) payPaymentLink(w http.ResponseWriter, r *http.Request) {
	var req payPaymentLinkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if _, err := domain.ToPaymentMethod(req.PaymentMethod); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_payment_method", err.Error())
		return
	}

	link, err := h.PaymentLinks.Pay(r.Context(), chi.URLParam(r, "ref"), req.PaymentMethod, req.TransactionID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newPaymentLinkResponse(link))
}

func (h *handler) cancelPaymentLink(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "ref"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_id", "payment link id must be a uuid")
		return
	}

	caller := identityFrom(r.Context())

	link, err := h.PaymentLinks.Cancel(r.Context(), id, caller.owner.UserID, caller.isAdmin())
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newPaymentLinkResponse(link))
}

func parseListQuery(values url.Values) (paymentlink.ListQuery, error) {
	var q paymentlink.ListQuery

	for _, raw := range splitParam(values["status"]) {
		status, err := domain.ToPaymentLinkStatus(raw)
		if err != nil {
			return q, fmt.Errorf("status %q: %w", raw, err)
		}
		q.Statuses = append(q.Statuses, status)
	}

	q.Codes = splitParam(values["code"])

	var created domain.TimeRange
	for name, dst := range map[string]**time.Time{
		"created_after":  &created.After,
		"created_before": &created.Before,
	} {
		raw := values.Get(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return q, fmt.Errorf("%s: %w", name, err)
		}
		*dst = &t
	}
	if created.After != nil || created.Before != nil {
		q.Created = &created
	}

	return q, nil
}

func splitParam(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return lo.Uniq(out)
}
