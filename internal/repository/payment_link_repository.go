package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kevinvillajim/bcommerce-checkout/internal/db"
	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
	"github.com/samber/lo"
	"golang.org/x/text/currency"
)

var (
	ErrNotFound      = errors.New("payment link not found")
	ErrDuplicateCode = errors.New("payment link code already exists")
	ErrStaleStatus   = errors.New("payment link status changed concurrently")
)

const uniqueViolation = "23505"

type paymentLinkRepository struct {
	q    *db.Queries
	dbtx db.DBTX
}

func NewPaymentLink(pool *pgxpool.Pool) port.PaymentLinkRepository {
	return &paymentLinkRepository{
		q:    db.New(pool),
		dbtx: pool,
	}
}

func (r *paymentLinkRepository) GetPaymentLink(ctx context.Context, id uuid.UUID) (domain.PaymentLink, error) {
	var l domain.PaymentLink

	if id == uuid.Nil {
		return l, fmt.Errorf("id is empty")
	}

	row, err := r.q.GetPaymentLink(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return l, fmt.Errorf("q.GetPaymentLink: %w", ErrNotFound)
		}
		return l, fmt.Errorf("q.GetPaymentLink: %w", err)
	}

	link, err := mapDBPaymentLinkToDomain(row)
	if err != nil {
		return l, fmt.Errorf("mapDBPaymentLinkToDomain: %w", err)
	}

	return link, nil
}

func (r *paymentLinkRepository) GetPaymentLinkByCode(ctx context.Context, code string) (domain.PaymentLink, error) {
	var l domain.PaymentLink

	if code == "" {
		return l, fmt.Errorf("code is empty")
	}

	row, err := r.q.GetPaymentLinkByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return l, fmt.Errorf("q.GetPaymentLinkByCode: %w", ErrNotFound)
		}
		return l, fmt.Errorf("q.GetPaymentLinkByCode: %w", err)
	}

	link, err := mapDBPaymentLinkToDomain(row)
	if err != nil {
		return l, fmt.Errorf("mapDBPaymentLinkToDomain: %w", err)
	}

	return link, nil
}

func (r *paymentLinkRepository) InsertPaymentLink(ctx context.Context, link domain.PaymentLink) (uuid.UUID, error) {
	if link.Code == "" {
		return uuid.Nil, errors.New("code is empty")
	}
	if !link.Amount.Amount.IsPositive() {
		return uuid.Nil, errors.New("amount must be positive")
	}

	id, err := r.q.InsertPaymentLink(ctx, db.InsertPaymentLinkParams{
		Code:         link.Code,
		CreatedBy:    link.CreatedBy,
		CustomerName: link.CustomerName,
		Amount:       link.Amount.Amount,
		Currency:     link.Amount.Currency.String(),
		Description:  link.Description,
		ExpiresAt:    link.ExpiresAt,
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return uuid.Nil, fmt.Errorf("q.InsertPaymentLink: %w", ErrDuplicateCode)
		}
		return uuid.Nil, fmt.Errorf("q.InsertPaymentLink: %w", err)
	}

	return id, nil
}

func (r *paymentLinkRepository) MarkPaid(ctx context.Context, id uuid.UUID, method, transactionID string, paidAt time.Time) error {
	if id == uuid.Nil {
		return fmt.Errorf("id is empty")
	}

	cmdTag, err := r.q.MarkPaymentLinkPaid(ctx, db.MarkPaymentLinkPaidParams{
		ID:            id,
		PaidAt:        lo.ToPtr(paidAt),
		PaymentMethod: lo.EmptyableToPtr(method),
		TransactionID: lo.EmptyableToPtr(transactionID),
	})
	if err != nil {
		return fmt.Errorf("q.MarkPaymentLinkPaid: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("q.MarkPaymentLinkPaid: %w", ErrStaleStatus)
	}

	return nil
}

func (r *paymentLinkRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domain.PaymentLinkStatus) error {
	if id == uuid.Nil {
		return fmt.Errorf("id is empty")
	}
	if to == "" {
		return fmt.Errorf("status is empty")
	}

	cmdTag, err := r.q.UpdatePaymentLinkStatus(ctx, db.UpdatePaymentLinkStatusParams{
		ToStatus:   string(to),
		ID:         id,
		FromStatus: string(from),
	})
	if err != nil {
		return fmt.Errorf("q.UpdatePaymentLinkStatus: %w", err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("q.UpdatePaymentLinkStatus: %w", ErrStaleStatus)
	}

	return nil
}

func (r *paymentLinkRepository) SearchPaymentLinks(ctx context.Context, filter domain.PaymentLinkFilter) ([]domain.PaymentLink, error) {
	if err := filter.Validate(); err != nil {
		return nil, fmt.Errorf("filter.Validate: %w", err)
	}

	rows, err := r.q.SearchPaymentLinks(ctx, mapDomainFilterToDBFilter(filter))
	if err != nil {
		return nil, fmt.Errorf("q.SearchPaymentLinks: %w", err)
	}

	links := make([]domain.PaymentLink, 0, len(rows))
	for _, row := range rows {
		link, err := mapDBPaymentLinkToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapDBPaymentLinkToDomain: %w", err)
		}
		links = append(links, link)
	}

	return links, nil
}

func mapDomainFilterToDBFilter(filter domain.PaymentLinkFilter) db.SearchPaymentLinksParams {
	statuses := lo.Map(filter.Statuses, func(s domain.PaymentLinkStatus, _ int) string {
		return string(s)
	})

	var createdAfter, createdBefore, expiresAfter, expiresBefore *time.Time

	if filter.CreatedAt != nil {
		createdAfter = filter.CreatedAt.After
		createdBefore = filter.CreatedAt.Before
	}

	if filter.ExpiresAt != nil {
		expiresAfter = filter.ExpiresAt.After
		expiresBefore = filter.ExpiresAt.Before
	}

	return db.SearchPaymentLinksParams{
		CreatorIds:    nilSliceIfEmpty(filter.CreatorIDs),
		Codes:         nilSliceIfEmpty(filter.Codes),
		Statuses:      nilSliceIfEmpty(statuses),
		CreatedAfter:  createdAfter,
		CreatedBefore: createdBefore,
		ExpiresAfter:  expiresAfter,
		ExpiresBefore: expiresBefore,
	}
}

func mapDBPaymentLinkToDomain(row db.PaymentLink) (domain.PaymentLink, error) {
	parsedCurrency, err := currency.ParseISO(row.Currency)
	if err != nil {
		return domain.PaymentLink{}, fmt.Errorf("currency[%s] is not valid: %w", row.Currency, err)
	}

	status, err := domain.ToPaymentLinkStatus(row.Status)
	if err != nil {
		return domain.PaymentLink{}, fmt.Errorf("domain.ToPaymentLinkStatus[%s]: %w", row.Status, err)
	}

	return domain.PaymentLink{
		ID:            row.ID,
		Code:          row.Code,
		CreatedBy:     row.CreatedBy,
		CustomerName:  row.CustomerName,
		Amount:        domain.Money{Amount: row.Amount, Currency: parsedCurrency},
		Description:   row.Description,
		Status:        status,
		ExpiresAt:     row.ExpiresAt,
		PaidAt:        row.PaidAt,
		PaymentMethod: row.PaymentMethod,
		TransactionID: row.TransactionID,
		CreatedAt:     row.CreatedAt,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

func nilSliceIfEmpty[T any](s []T) []T {
	if len(s) == 0 {
		return nil
	}
	return s
}
