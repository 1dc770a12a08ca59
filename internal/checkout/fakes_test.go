package checkout_test

import (
	"context"
	"sync"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
)

type fakeCarts struct {
	mu      sync.Mutex
	carts   map[string]domain.Cart
	cleared int
}

func newFakeCarts() *fakeCarts {
	return &fakeCarts{carts: make(map[string]domain.Cart)}
}

func (f *fakeCarts) put(owner domain.Owner, cart domain.Cart) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.carts[owner.Key()] = cart
}

func (f *fakeCarts) Get(_ context.Context, owner domain.Owner) (domain.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if c, ok := f.carts[owner.Key()]; ok {
		return c, nil
	}
	return domain.NewCart(owner.UserID), nil
}

func (f *fakeCarts) Clear(ctx context.Context, owner domain.Owner) (domain.Cart, error) {
	if err := ctx.Err(); err != nil {
		return domain.Cart{}, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	c := f.carts[owner.Key()]
	c.Clear()
	f.carts[owner.Key()] = c
	f.cleared++
	return c, nil
}

type fakeSellers struct {
	id int64
	ok bool
}

func (f fakeSellers) ResolveForCart(context.Context, []domain.CartItem) (int64, bool) {
	return f.id, f.ok
}

type fakeCheckoutAPI struct {
	mu       sync.Mutex
	calls    []domain.CheckoutRequest
	response domain.CheckoutResponse
	err      error

	// when set, SubmitCheckout signals entered and waits for release
	entered chan struct{}
	release chan struct{}

	// runs after the request is recorded, before the answer is returned
	afterPost func()
}

func (f *fakeCheckoutAPI) SubmitCheckout(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutResponse, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()

	if f.entered != nil {
		f.entered <- struct{}{}
		select {
		case <-f.release:
		case <-ctx.Done():
			return domain.CheckoutResponse{}, ctx.Err()
		}
	}

	if f.afterPost != nil {
		f.afterPost()
	}

	return f.response, f.err
}

func (f *fakeCheckoutAPI) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}
