package seller_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
	"github.com/kevinvillajim/bcommerce-checkout/internal/seller"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeProducts struct {
	products map[int64]domain.Product
	delay    time.Duration
	calls    atomic.Int32
}

func (f *fakeProducts) GetProduct(ctx context.Context, productID int64) (domain.Product, error) {
	f.calls.Add(1)

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return domain.Product{}, ctx.Err()
		}
	}

	p, ok := f.products[productID]
	if !ok {
		return domain.Product{}, errors.New("product not found")
	}
	return p, nil
}

type fakeSellers struct {
	byUser map[int64]int64
	calls  atomic.Int32
}

func (f *fakeSellers) SellerByUser(_ context.Context, userID int64) (port.SellerLookup, error) {
	f.calls.Add(1)

	sellerID, ok := f.byUser[userID]
	if !ok {
		return port.SellerLookup{Status: "error"}, nil
	}
	return port.SellerLookup{Status: "success", SellerID: lo.ToPtr(sellerID)}, nil
}

func newResolver(t *testing.T, products *fakeProducts, sellers *fakeSellers, defaultSellerID int64) *seller.Resolver {
	t.Helper()

	r, err := seller.NewResolver(products, sellers, seller.NewCache(), defaultSellerID, nil)
	require.NoError(t, err)
	return r
}

func TestResolveForProductPriority(t *testing.T) {
	tests := []struct {
		name    string
		product domain.Product
		want    int64
		wantOK  bool
	}{
		{
			name:    "seller_id beats user_id",
			product: domain.Product{ID: 1, SellerID: lo.ToPtr(int64(7)), UserID: lo.ToPtr(int64(63))},
			want:    7,
			wantOK:  true,
		},
		{
			name:    "user_id through lookup",
			product: domain.Product{ID: 1, UserID: lo.ToPtr(int64(63))},
			want:    11,
			wantOK:  true,
		},
		{
			name: "unknown user falls through to sellerId",
			product: domain.Product{
				ID:             1,
				UserID:         lo.ToPtr(int64(99)),
				CamelSellerID:  lo.ToPtr(int64(5)),
				NestedSellerID: lo.ToPtr(int64(6)),
			},
			want:   5,
			wantOK: true,
		},
		{
			name:    "nested seller last",
			product: domain.Product{ID: 1, NestedSellerID: lo.ToPtr(int64(6))},
			want:    6,
			wantOK:  true,
		},
		{
			name:    "no seller identity",
			product: domain.Product{ID: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := &fakeProducts{products: map[int64]domain.Product{1: tt.product}}
			sellers := &fakeSellers{byUser: map[int64]int64{63: 11}}
			r := newResolver(t, products, sellers, 0)

			sellerID, ok := r.ResolveForProduct(t.Context(), 1, false)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, sellerID)
		})
	}
}

func TestResolveForProductCachesResult(t *testing.T) {
	products := &fakeProducts{products: map[int64]domain.Product{
		1: {ID: 1, SellerID: lo.ToPtr(int64(7))},
	}}
	r := newResolver(t, products, &fakeSellers{}, 0)

	for range 3 {
		sellerID, ok := r.ResolveForProduct(t.Context(), 1, false)
		require.True(t, ok)
		assert.Equal(t, int64(7), sellerID)
	}

	assert.Equal(t, int32(1), products.calls.Load())

	r.ClearCache()
	_, _ = r.ResolveForProduct(t.Context(), 1, false)
	assert.Equal(t, int32(2), products.calls.Load())
}

func TestResolveForProductCoalescesConcurrentMisses(t *testing.T) {
	defer goleak.VerifyNone(t)

	products := &fakeProducts{
		products: map[int64]domain.Product{1: {ID: 1, SellerID: lo.ToPtr(int64(7))}},
		delay:    50 * time.Millisecond,
	}
	r := newResolver(t, products, &fakeSellers{}, 0)

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			sellerID, ok := r.ResolveForProduct(t.Context(), 1, false)
			assert.True(t, ok)
			assert.Equal(t, int64(7), sellerID)
		})
	}
	wg.Wait()

	assert.Equal(t, int32(1), products.calls.Load())
}

func TestResolveForProductDefault(t *testing.T) {
	r := newResolver(t, &fakeProducts{}, &fakeSellers{}, 3)

	sellerID, ok := r.ResolveForProduct(t.Context(), 404, true)
	assert.True(t, ok)
	assert.Equal(t, int64(3), sellerID)

	_, ok = r.ResolveForProduct(t.Context(), 404, false)
	assert.False(t, ok)

	r.SetDefaultSellerID(0)
	_, ok = r.ResolveForProduct(t.Context(), 404, true)
	assert.False(t, ok)
}

func TestResolveForProducts(t *testing.T) {
	products := &fakeProducts{products: map[int64]domain.Product{
		1: {ID: 1, SellerID: lo.ToPtr(int64(7))},
		2: {ID: 2, UserID: lo.ToPtr(int64(63))},
		3: {ID: 3},
	}}
	r := newResolver(t, products, &fakeSellers{byUser: map[int64]int64{63: 11}}, 9)

	actual := r.ResolveForProducts(t.Context(), []int64{1, 2, 3, 1})

	assert.Equal(t, map[int64]int64{1: 7, 2: 11}, actual)
	assert.Equal(t, int32(3), products.calls.Load())
}

func TestResolveForCart(t *testing.T) {
	tests := []struct {
		name         string
		items        []domain.CartItem
		products     map[int64]domain.Product
		wantSeller   int64
		wantOK       bool
		wantAPICalls int32
	}{
		{
			name: "snapshot seller",
			items: []domain.CartItem{
				{ProductID: 1, Product: &domain.Product{SellerID: lo.ToPtr(int64(7)), UserID: lo.ToPtr(int64(63))}},
				{ProductID: 2, Product: &domain.Product{NestedSellerID: lo.ToPtr(int64(7))}},
			},
			wantSeller: 7,
			wantOK:     true,
		},
		{
			name: "mislabeled user id is corrected",
			items: []domain.CartItem{
				{ProductID: 1, Product: &domain.Product{SellerID: lo.ToPtr(int64(63)), UserID: lo.ToPtr(int64(63))}},
			},
			wantSeller: 11,
			wantOK:     true,
		},
		{
			name: "multiple sellers take the first",
			items: []domain.CartItem{
				{ProductID: 1, Product: &domain.Product{SellerID: lo.ToPtr(int64(8))}},
				{ProductID: 2, Product: &domain.Product{SellerID: lo.ToPtr(int64(7))}},
			},
			wantSeller: 8,
			wantOK:     true,
		},
		{
			name:  "api fallback without snapshots",
			items: []domain.CartItem{{ProductID: 10}},
			products: map[int64]domain.Product{
				10: {ID: 10, SellerID: lo.ToPtr(int64(4))},
			},
			wantSeller:   4,
			wantOK:       true,
			wantAPICalls: 1,
		},
		{
			name:         "default when nothing resolves",
			items:        []domain.CartItem{{ProductID: 10}},
			wantSeller:   2,
			wantOK:       true,
			wantAPICalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products := &fakeProducts{products: tt.products}
			r := newResolver(t, products, &fakeSellers{byUser: map[int64]int64{63: 11}}, 2)

			sellerID, ok := r.ResolveForCart(t.Context(), tt.items)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantSeller, sellerID)
			assert.Equal(t, tt.wantAPICalls, products.calls.Load())
		})
	}
}

func TestResolveUserToSeller(t *testing.T) {
	r := newResolver(t, &fakeProducts{}, &fakeSellers{byUser: map[int64]int64{63: 11}}, 0)

	sellerID, ok := r.ResolveUserToSeller(t.Context(), 63)
	assert.True(t, ok)
	assert.Equal(t, int64(11), sellerID)

	_, ok = r.ResolveUserToSeller(t.Context(), 64)
	assert.False(t, ok)
}
