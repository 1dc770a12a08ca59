package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
)

var (
	_ port.ProductAPI   = (*Client)(nil)
	_ port.SellerAPI    = (*Client)(nil)
	_ port.CheckoutAPI  = (*Client)(nil)
	_ port.PaymentAPI   = (*Client)(nil)
	_ port.QRPaymentAPI = (*Client)(nil)
)

// GetProduct accepts both a bare product record and one wrapped in "data".
func (c *Client) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	var envelope struct {
		Data *domain.Product `json:"data"`
	}

	var raw json.RawMessage
	if err := c.get(ctx, fmt.Sprintf("/products/%d", productID), &raw); err != nil {
		return domain.Product{}, fmt.Errorf("c.get product[%d]: %w", productID, err)
	}

	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Data != nil {
		return *envelope.Data, nil
	}

	var product domain.Product
	if err := json.Unmarshal(raw, &product); err != nil {
		return domain.Product{}, fmt.Errorf("decode product[%d]: %w", productID, err)
	}

	return product, nil
}

func (c *Client) SellerByUser(ctx context.Context, userID int64) (port.SellerLookup, error) {
	var resp struct {
		Status string `json:"status"`
		Data   *struct {
			SellerID *domain.FlexString `json:"seller_id"`
		} `json:"data"`
	}

	if err := c.get(ctx, fmt.Sprintf("/sellers/by-user/%d", userID), &resp); err != nil {
		return port.SellerLookup{}, fmt.Errorf("c.get seller by user[%d]: %w", userID, err)
	}

	lookup := port.SellerLookup{Status: resp.Status}
	if resp.Data != nil && resp.Data.SellerID != nil {
		if id, ok := parsePositiveID(resp.Data.SellerID.String()); ok {
			lookup.SellerID = &id
		}
	}

	return lookup, nil
}

func (c *Client) SubmitCheckout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	var resp domain.CheckoutResponse
	if err := c.post(ctx, "/checkout", req, &resp); err != nil {
		return resp, fmt.Errorf("c.post checkout: %w", err)
	}
	return resp, nil
}

func (c *Client) CreateCheckout(ctx context.Context, req domain.CreatePaymentCheckout) (domain.PaymentCheckout, error) {
	var resp struct {
		Success bool                   `json:"success"`
		Message string                 `json:"message"`
		Data    domain.PaymentCheckout `json:"data"`
	}

	if err := c.post(ctx, "/payment/create-checkout", req, &resp); err != nil {
		return domain.PaymentCheckout{}, fmt.Errorf("c.post create-checkout: %w", err)
	}

	if !resp.Success || resp.Data.CheckoutID == "" {
		return domain.PaymentCheckout{}, &HTTPError{StatusCode: 200, Message: resp.Message}
	}

	return resp.Data, nil
}

func (c *Client) Verify(ctx context.Context, req domain.VerifyRequest) (domain.VerifyResponse, error) {
	var resp domain.VerifyResponse
	if err := c.post(ctx, "/payment/verify", req, &resp); err != nil {
		return resp, fmt.Errorf("c.post verify: %w", err)
	}
	return resp, nil
}

func (c *Client) CheckoutStatus(ctx context.Context, checkoutID string) (domain.PaymentStatusResponse, error) {
	var resp domain.PaymentStatusResponse
	if err := c.get(ctx, "/payment/status/"+url.PathEscape(checkoutID), &resp); err != nil {
		return resp, fmt.Errorf("c.get payment status[%s]: %w", checkoutID, err)
	}
	return resp, nil
}

func (c *Client) QRStatus(ctx context.Context, transactionID string) (domain.QRStatusResponse, error) {
	var resp domain.QRStatusResponse
	if err := c.get(ctx, "/payment/qr/"+url.PathEscape(transactionID)+"/status", &resp); err != nil {
		return resp, fmt.Errorf("c.get qr status[%s]: %w", transactionID, err)
	}
	if resp.TransactionID == "" {
		resp.TransactionID = transactionID
	}
	return resp, nil
}
