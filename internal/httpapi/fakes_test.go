package httpapi_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/repository"
	"github.com/samber/lo"
)

type memoryCartRepo struct {
	mu    sync.Mutex
	carts map[int64]domain.Cart
}

func newMemoryCartRepo() *memoryCartRepo {
	return &memoryCartRepo{carts: make(map[int64]domain.Cart)}
}

func (r *memoryCartRepo) GetCart(_ context.Context, userID int64) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.carts[userID]
	if !ok {
		return domain.NewCart(userID), nil
	}
	c.Items = append([]domain.CartItem(nil), c.Items...)
	return c, nil
}

func (r *memoryCartRepo) SaveCart(_ context.Context, c domain.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c.Items = append([]domain.CartItem(nil), c.Items...)
	r.carts[c.UserID] = c
	return nil
}

func (r *memoryCartRepo) DeleteCart(_ context.Context, userID int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.carts[userID]
	delete(r.carts, userID)
	return ok, nil
}

type memoryLinkRepo struct {
	mu    sync.Mutex
	links map[uuid.UUID]domain.PaymentLink
}

func newMemoryLinkRepo() *memoryLinkRepo {
	return &memoryLinkRepo{links: make(map[uuid.UUID]domain.PaymentLink)}
}

func (r *memoryLinkRepo) GetPaymentLink(_ context.Context, id uuid.UUID) (domain.PaymentLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.links[id]
	if !ok {
		return domain.PaymentLink{}, repository.ErrNotFound
	}
	return l, nil
}

func (r *memoryLinkRepo) GetPaymentLinkByCode(_ context.Context, code string) (domain.PaymentLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := lo.Find(lo.Values(r.links), func(l domain.PaymentLink) bool {
		return l.Code == code
	})
	if !ok {
		return domain.PaymentLink{}, repository.ErrNotFound
	}
	return l, nil
}

func (r *memoryLinkRepo) SearchPaymentLinks(_ context.Context, filter domain.PaymentLinkFilter) ([]domain.PaymentLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	inRange := func(tr *domain.TimeRange, t time.Time) bool {
		return tr == nil ||
			((tr.After == nil || t.After(*tr.After)) && (tr.Before == nil || t.Before(*tr.Before)))
	}

	return lo.Filter(lo.Values(r.links), func(l domain.PaymentLink, _ int) bool {
		return lo.Contains(filter.CreatorIDs, l.CreatedBy) &&
			(len(filter.Codes) == 0 || lo.Contains(filter.Codes, l.Code)) &&
			(len(filter.Statuses) == 0 || lo.Contains(filter.Statuses, l.Status)) &&
			inRange(filter.CreatedAt, l.CreatedAt) &&
			inRange(filter.ExpiresAt, l.ExpiresAt)
	}), nil
}

func (r *memoryLinkRepo) InsertPaymentLink(_ context.Context, link domain.PaymentLink) (uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link.ID = uuid.New()
	link.CreatedAt = time.Now().UTC()
	r.links[link.ID] = link
	return link.ID, nil
}

func (r *memoryLinkRepo) MarkPaid(_ context.Context, id uuid.UUID, method, transactionID string, paidAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.links[id]
	if !ok || l.Status != domain.PaymentLinkStatusPending || !l.ExpiresAt.After(paidAt) {
		return repository.ErrStaleStatus
	}

	l.Status = domain.PaymentLinkStatusPaid
	l.PaidAt = lo.ToPtr(paidAt)
	l.PaymentMethod = lo.ToPtr(method)
	l.TransactionID = lo.EmptyableToPtr(transactionID)
	r.links[id] = l
	return nil
}

func (r *memoryLinkRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to domain.PaymentLinkStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.links[id]
	if !ok || l.Status != from {
		return repository.ErrStaleStatus
	}

	l.Status = to
	r.links[id] = l
	return nil
}
