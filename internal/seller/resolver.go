// Package seller decides which seller owns a cart. Upstream product records
// expose seller identity inconsistently, and sometimes only carry the id of
// the uploading user, so resolution tries several sources and never fails:
// it degrades to a configured default instead.
package seller

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync/atomic"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
	"github.com/samber/lo"
	"golang.org/x/sync/singleflight"
)

const lookupStatusSuccess = "success"

type Resolver struct {
	products port.ProductAPI
	sellers  port.SellerAPI
	cache    *Cache
	logger   *slog.Logger

	defaultSellerID atomic.Int64
	group           singleflight.Group
}

func NewResolver(products port.ProductAPI, sellers port.SellerAPI, cache *Cache, defaultSellerID int64, logger *slog.Logger) (*Resolver, error) {
	if products == nil {
		return nil, errors.New("product api is nil")
	}
	if sellers == nil {
		return nil, errors.New("seller api is nil")
	}
	if cache == nil {
		cache = NewCache()
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Resolver{
		products: products,
		sellers:  sellers,
		cache:    cache,
		logger:   logger,
	}
	r.defaultSellerID.Store(defaultSellerID)

	return r, nil
}

func (r *Resolver) SetDefaultSellerID(id int64) {
	r.defaultSellerID.Store(id)
}

func (r *Resolver) DefaultSellerID() (int64, bool) {
	id := r.defaultSellerID.Load()
	return id, id > 0
}

func (r *Resolver) ClearCache() {
	r.cache.Clear()
}

// ResolveForProduct returns the seller of a single product. A cache miss
// fetches the product and tries seller_id, then user_id through the user
// to seller lookup, then sellerId, then seller.id. Concurrent misses for the
// same product share one fetch.
func (r *Resolver) ResolveForProduct(ctx context.Context, productID int64, useDefault bool) (int64, bool) {
	if sellerID, ok := r.cache.Get(productID); ok {
		return sellerID, true
	}

	v, _, _ := r.group.Do(strconv.FormatInt(productID, 10), func() (any, error) {
		if sellerID, ok := r.cache.Get(productID); ok {
			return sellerID, nil
		}

		sellerID, ok := r.fetchProductSeller(ctx, productID)
		if !ok {
			return int64(0), nil
		}

		r.cache.Set(productID, sellerID)
		return sellerID, nil
	})

	if sellerID, _ := v.(int64); sellerID > 0 {
		return sellerID, true
	}

	if useDefault {
		return r.DefaultSellerID()
	}

	return 0, false
}

// ResolveForProducts resolves every product that has a seller. Products
// without one are absent from the result.
func (r *Resolver) ResolveForProducts(ctx context.Context, productIDs []int64) map[int64]int64 {
	result := make(map[int64]int64, len(productIDs))

	var uncached []int64
	for _, productID := range lo.Uniq(productIDs) {
		if sellerID, ok := r.cache.Get(productID); ok {
			result[productID] = sellerID
			continue
		}
		uncached = append(uncached, productID)
	}

	for _, productID := range uncached {
		if sellerID, ok := r.ResolveForProduct(ctx, productID, false); ok {
			result[productID] = sellerID
		}
	}

	return result
}

// ResolveForCart picks the single seller for a checkout. Embedded product
// snapshots are tried first, then the product API, then the default. When
// the cart spans several sellers the first one in item order wins.
func (r *Resolver) ResolveForCart(ctx context.Context, items []domain.CartItem) (int64, bool) {
	var candidates []int64
	for _, item := range items {
		if item.Product == nil {
			continue
		}
		if sellerID, ok := r.snapshotSeller(ctx, *item.Product); ok {
			candidates = append(candidates, sellerID)
		}
	}

	if sellerID, ok := r.pick(candidates, "snapshot"); ok {
		return sellerID, true
	}

	productIDs := lo.Map(items, func(item domain.CartItem, _ int) int64 {
		return item.ProductID
	})
	resolved := r.ResolveForProducts(ctx, productIDs)

	candidates = candidates[:0]
	for _, productID := range lo.Uniq(productIDs) {
		if sellerID, ok := resolved[productID]; ok {
			candidates = append(candidates, sellerID)
		}
	}

	if sellerID, ok := r.pick(candidates, "api"); ok {
		return sellerID, true
	}

	sellerID, ok := r.DefaultSellerID()
	if ok {
		r.logger.Warn("no seller resolved for cart, using default",
			"method", "Resolver.ResolveForCart",
			"default_seller_id", sellerID)
	}
	return sellerID, ok
}

// ResolveUserToSeller maps a user account to the seller it operates. A
// non-success status or a missing seller id means not found.
func (r *Resolver) ResolveUserToSeller(ctx context.Context, userID int64) (int64, bool) {
	lookup, err := r.sellers.SellerByUser(ctx, userID)
	if err != nil {
		r.logger.Warn("user to seller lookup failed",
			"method", "Resolver.ResolveUserToSeller",
			"user_id", userID,
			"error", err)
		return 0, false
	}

	if lookup.Status != lookupStatusSuccess || lookup.SellerID == nil || *lookup.SellerID <= 0 {
		return 0, false
	}

	return *lookup.SellerID, true
}

func (r *Resolver) fetchProductSeller(ctx context.Context, productID int64) (int64, bool) {
	product, err := r.products.GetProduct(ctx, productID)
	if err != nil {
		r.logger.Warn("product lookup failed",
			"method", "Resolver.ResolveForProduct",
			"product_id", productID,
			"error", err)
		return 0, false
	}

	if product.SellerID != nil {
		return *product.SellerID, true
	}

	if product.UserID != nil {
		if sellerID, ok := r.ResolveUserToSeller(ctx, *product.UserID); ok {
			return sellerID, true
		}
	}

	if product.CamelSellerID != nil {
		return *product.CamelSellerID, true
	}

	if product.NestedSellerID != nil {
		return *product.NestedSellerID, true
	}

	r.logger.Warn("product carries no seller identity",
		"method", "Resolver.ResolveForProduct",
		"product_id", productID)

	return 0, false
}

// snapshotSeller applies the snapshot field priority. A candidate equal to
// the product's user_id is a mislabeled user id and is re-resolved.
func (r *Resolver) snapshotSeller(ctx context.Context, product domain.Product) (int64, bool) {
	candidate, ok := product.SellerCandidate()
	if !ok {
		return 0, false
	}

	if product.UserID != nil && *product.UserID == candidate {
		if sellerID, found := r.ResolveUserToSeller(ctx, candidate); found && sellerID != candidate {
			return sellerID, true
		}
	}

	return candidate, true
}

func (r *Resolver) pick(candidates []int64, source string) (int64, bool) {
	distinct := lo.Uniq(candidates)

	switch len(distinct) {
	case 0:
		return 0, false
	case 1:
		return distinct[0], true
	default:
		r.logger.Warn("cart spans multiple sellers, using the first",
			"method", "Resolver.ResolveForCart",
			"source", source,
			"seller_ids", distinct)
		return distinct[0], true
	}
}
