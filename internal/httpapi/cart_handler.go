package httpapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kevinvillajim/bcommerce-checkout/internal/apiclient"
	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/shopspring/decimal"
)

type addItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
	// Price is used only when the product cannot be fetched.
	Price *decimal.Decimal `json:"price,omitempty"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type cartResponse struct {
	domain.Cart
	ItemCount int `json:"item_count"`
}

func newCartResponse(c domain.Cart) cartResponse {
	if c.Items == nil {
		c.Items = []domain.CartItem{}
	}
	return cartResponse{Cart: c, ItemCount: c.ItemCount()}
}

func (h *handler) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.Carts.Get(r.Context(), identityFrom(r.Context()).owner)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	var snapshot *domain.Product
	price := decimal.Zero

	product, err := h.Products.GetProduct(r.Context(), req.ProductID)
	switch {
	case err == nil:
		snapshot = &product
		price = product.Price
		if product.FinalPrice.IsPositive() {
			price = product.FinalPrice
		}
	case req.Price != nil && req.Price.IsPositive():
		h.Logger.Warn("product lookup failed, using submitted price",
			"method", "handler.addItem",
			"product_id", req.ProductID,
			"error", err)
		price = *req.Price
	default:
		var httpErr *apiclient.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			respondError(w, http.StatusNotFound, "product_not_found", "the product does not exist")
			return
		}
		respondError(w, http.StatusBadGateway, "upstream_error", apiclient.UserMessage(err, ""))
		return
	}

	c, err := h.Carts.AddItem(r.Context(), identityFrom(r.Context()).owner, req.ProductID, req.Quantity, price, snapshot)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusCreated, newCartResponse(c))
}

func (h *handler) updateQuantity(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	var req updateQuantityRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	c, err := h.Carts.UpdateQuantity(r.Context(), identityFrom(r.Context()).owner, productID, req.Quantity)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *handler) removeItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := productIDParam(w, r)
	if !ok {
		return
	}

	c, err := h.Carts.RemoveItem(r.Context(), identityFrom(r.Context()).owner, productID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(c))
}

func (h *handler) clearCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.Carts.Clear(r.Context(), identityFrom(r.Context()).owner)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(c))
}

// mergeCart folds the anonymous cart of the current session into the
// signed-in user's cart.
func (h *handler) mergeCart(w http.ResponseWriter, r *http.Request) {
	owner := identityFrom(r.Context()).owner

	c, err := h.Carts.Merge(r.Context(), owner.SessionID, owner.UserID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, newCartResponse(c))
}

func productIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || productID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product id must be a positive integer")
		return 0, false
	}
	return productID, true
}
