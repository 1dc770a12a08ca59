package verification_test

import (
	"context"
	"sync"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
)

type fakePaymentAPI struct {
	mu sync.Mutex

	verifyResp domain.VerifyResponse
	verifyErr  error
	statusResp domain.PaymentStatusResponse
	statusErr  error

	verifyCalls []domain.VerifyRequest
	statusCalls []string
}

func (f *fakePaymentAPI) CreateCheckout(context.Context, domain.CreatePaymentCheckout) (domain.PaymentCheckout, error) {
	return domain.PaymentCheckout{}, nil
}

func (f *fakePaymentAPI) Verify(_ context.Context, req domain.VerifyRequest) (domain.VerifyResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.verifyCalls = append(f.verifyCalls, req)
	return f.verifyResp, f.verifyErr
}

func (f *fakePaymentAPI) CheckoutStatus(_ context.Context, checkoutID string) (domain.PaymentStatusResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.statusCalls = append(f.statusCalls, checkoutID)
	return f.statusResp, f.statusErr
}

type fakeCarts struct {
	mu      sync.Mutex
	cleared []domain.Owner
}

func (f *fakeCarts) Clear(_ context.Context, owner domain.Owner) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cleared = append(f.cleared, owner)
	return domain.NewCart(owner.UserID), nil
}

func (f *fakeCarts) clearedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cleared)
}
