// Package paymentlink manages shareable links that let a named customer pay
// a fixed amount outside the cart.
package paymentlink

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
	"github.com/kevinvillajim/bcommerce-checkout/internal/repository"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const (
	DefaultTTL = 72 * time.Hour

	codeLength     = 10
	maxCodeRetries = 5
)

var (
	ErrInvalidAmount = errors.New("amount must be positive")
	ErrCustomerName  = errors.New("customer name is required")
	ErrInvalidQuery  = errors.New("invalid payment link query")
)

var codeEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

type CreateParams struct {
	CreatorID    int64
	CustomerName string
	Amount       decimal.Decimal
	Description  string
}

type Service struct {
	repo     port.PaymentLinkRepository
	currency currency.Unit
	ttl      time.Duration
	now      func() time.Time
	logger   *slog.Logger
}

func NewService(repo port.PaymentLinkRepository, unit currency.Unit, ttl time.Duration, logger *slog.Logger) (*Service, error) {
	if repo == nil {
		return nil, errors.New("payment link repository is nil")
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		repo:     repo,
		currency: unit,
		ttl:      ttl,
		now:      time.Now,
		logger:   logger,
	}, nil
}

// Create stores a pending link that expires after the configured TTL. A
// code collision is retried with a fresh code.
func (s *Service) Create(ctx context.Context, params CreateParams) (domain.PaymentLink, error) {
	if params.CreatorID <= 0 {
		return domain.PaymentLink{}, errors.New("creatorID is empty")
	}
	if strings.TrimSpace(params.CustomerName) == "" {
		return domain.PaymentLink{}, ErrCustomerName
	}
	if !params.Amount.IsPositive() {
		return domain.PaymentLink{}, ErrInvalidAmount
	}

	now := s.now().UTC()

	link := domain.PaymentLink{
		CreatedBy:    params.CreatorID,
		CustomerName: strings.TrimSpace(params.CustomerName),
		Amount:       domain.NewMoney(domain.RoundCents(params.Amount), s.currency),
		Description:  lo.EmptyableToPtr(strings.TrimSpace(params.Description)),
		Status:       domain.PaymentLinkStatusPending,
		ExpiresAt:    now.Add(s.ttl),
	}

	for attempt := 1; ; attempt++ {
		code, err := newCode()
		if err != nil {
			return domain.PaymentLink{}, fmt.Errorf("newCode: %w", err)
		}
		link.Code = code

		id, err := s.repo.InsertPaymentLink(ctx, link)
		if err == nil {
			link.ID = id
			break
		}

		if !errors.Is(err, repository.ErrDuplicateCode) || attempt >= maxCodeRetries {
			return domain.PaymentLink{}, fmt.Errorf("repo.InsertPaymentLink: %w", err)
		}

		s.logger.Warn("payment link code collision, retrying",
			"method", "Service.Create",
			"attempt", attempt)
	}

	created, err := s.repo.GetPaymentLink(ctx, link.ID)
	if err != nil {
		return domain.PaymentLink{}, fmt.Errorf("repo.GetPaymentLink: %w", err)
	}

	return created, nil
}

// GetByCode returns the link with its effective status.
func (s *Service) GetByCode(ctx context.Context, code string) (domain.PaymentLink, error) {
	link, err := s.repo.GetPaymentLinkByCode(ctx, code)
	if err != nil {
		return domain.PaymentLink{}, fmt.Errorf("repo.GetPaymentLinkByCode: %w", err)
	}

	link.Status = link.EffectiveStatus(s.now())
	return link, nil
}

// Pay settles a pending, unexpired link.
func (s *Service) Pay(ctx context.Context, code, method, transactionID string) (domain.PaymentLink, error) {
	if _, err := domain.ToPaymentMethod(method); err != nil {
		return domain.PaymentLink{}, fmt.Errorf("domain.ToPaymentMethod[%s]: %w", method, err)
	}

	link, err := s.repo.GetPaymentLinkByCode(ctx, code)
	if err != nil {
		return domain.PaymentLink{}, fmt.Errorf("repo.GetPaymentLinkByCode: %w", err)
	}

	now := s.now().UTC()
	if err := link.CanPay(now); err != nil {
		return domain.PaymentLink{}, err
	}

	if err := s.repo.MarkPaid(ctx, link.ID, method, transactionID, now); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return domain.PaymentLink{}, s.staleError(ctx, link.ID, now, err)
		}
		return domain.PaymentLink{}, fmt.Errorf("repo.MarkPaid: %w", err)
	}

	paid, err := s.repo.GetPaymentLink(ctx, link.ID)
	if err != nil {
		return domain.PaymentLink{}, fmt.Errorf("repo.GetPaymentLink: %w", err)
	}

	return paid, nil
}

// Cancel is allowed for the creator or an admin while the link is pending.
func (s *Service) Cancel(ctx context.Context, id uuid.UUID, actorID int64, isAdmin bool) (domain.PaymentLink, error) {
	link, err := s.repo.GetPaymentLink(ctx, id)
	if err != nil {
		return domain.PaymentLink{}, fmt.Errorf("repo.GetPaymentLink: %w", err)
	}

	now := s.now().UTC()
	if err := link.CanCancel(now, actorID, isAdmin); err != nil {
		return domain.PaymentLink{}, err
	}

	err = s.repo.UpdateStatus(ctx, id, domain.PaymentLinkStatusPending, domain.PaymentLinkStatusCancelled)
	if err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			return domain.PaymentLink{}, s.staleError(ctx, id, now, err)
		}
		return domain.PaymentLink{}, fmt.Errorf("repo.UpdateStatus: %w", err)
	}

	cancelled, err := s.repo.GetPaymentLink(ctx, id)
	if err != nil {
		return domain.PaymentLink{}, fmt.Errorf("repo.GetPaymentLink: %w", err)
	}

	return cancelled, nil
}

// ListQuery narrows a creator's listing. Statuses are effective statuses:
// expired selects pending links past their expiry.
type ListQuery struct {
	Statuses []domain.PaymentLinkStatus
	Codes    []string
	Created  *domain.TimeRange
}

func (s *Service) ListByCreator(ctx context.Context, creatorID int64, q ListQuery) ([]domain.PaymentLink, error) {
	if q.Created != nil {
		if err := q.Created.Validate(); err != nil {
			return nil, fmt.Errorf("%w: created: %w", ErrInvalidQuery, err)
		}
	}

	now := s.now()
	filter := domain.PaymentLinkFilter{
		CreatorIDs: []int64{creatorID},
		Codes:      q.Codes,
		CreatedAt:  q.Created,
	}

	if len(q.Statuses) > 0 {
		filter.Statuses = lo.Uniq(lo.Map(q.Statuses, func(st domain.PaymentLinkStatus, _ int) domain.PaymentLinkStatus {
			if st == domain.PaymentLinkStatusExpired {
				return domain.PaymentLinkStatusPending
			}
			return st
		}))

		// expiry splits stored pending links; only narrow by it when nothing else is asked for
		if len(filter.Statuses) == 1 && filter.Statuses[0] == domain.PaymentLinkStatusPending {
			wantPending := lo.Contains(q.Statuses, domain.PaymentLinkStatusPending)
			wantExpired := lo.Contains(q.Statuses, domain.PaymentLinkStatusExpired)
			switch {
			case wantPending && !wantExpired:
				filter.ExpiresAt = &domain.TimeRange{After: lo.ToPtr(now)}
			case wantExpired && !wantPending:
				filter.ExpiresAt = &domain.TimeRange{Before: lo.ToPtr(now)}
			}
		}
	}

	links, err := s.repo.SearchPaymentLinks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("repo.SearchPaymentLinks: %w", err)
	}

	for i := range links {
		links[i].Status = links[i].EffectiveStatus(now)
	}

	if len(q.Statuses) > 0 {
		links = lo.Filter(links, func(l domain.PaymentLink, _ int) bool {
			return lo.Contains(q.Statuses, l.Status)
		})
	}

	return links, nil
}

// staleError explains a lost race using the status that won it.
func (s *Service) staleError(ctx context.Context, id uuid.UUID, now time.Time, cause error) error {
	current, err := s.repo.GetPaymentLink(ctx, id)
	if err != nil {
		return errors.Join(cause, err)
	}

	if current.EffectiveStatus(now) == domain.PaymentLinkStatusExpired {
		return domain.ErrPaymentLinkExpired
	}
	return domain.ErrPaymentLinkNotPending
}

func newCode() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return strings.ToLower(codeEncoding.EncodeToString(buf))[:codeLength], nil
}
