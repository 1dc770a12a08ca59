package domain

import (
	"errors"
	"fmt"
	"time"
)

// PaymentLinkFilter has AND semantics across fields, OR semantics within each field slice.
// Statuses are matched against the stored status, so expired links are
// stored as pending.
type PaymentLinkFilter struct {
	CreatorIDs []int64
	Codes      []string
	Statuses   []PaymentLinkStatus
	CreatedAt  *TimeRange
	ExpiresAt  *TimeRange
}

func (f PaymentLinkFilter) Validate() error {
	if len(f.CreatorIDs) == 0 && len(f.Codes) == 0 && len(f.Statuses) == 0 && f.CreatedAt == nil && f.ExpiresAt == nil {
		return errors.New("all fields are empty")
	}

	if f.CreatedAt != nil {
		if err := f.CreatedAt.Validate(); err != nil {
			return fmt.Errorf("createdAt: %w", err)
		}
	}

	if f.ExpiresAt != nil {
		if err := f.ExpiresAt.Validate(); err != nil {
			return fmt.Errorf("expiresAt: %w", err)
		}
	}

	return nil
}

type TimeRange struct {
	Before *time.Time
	After  *time.Time
}

func (t TimeRange) Validate() error {
	if t.Before == nil && t.After == nil {
		return errors.New("both Before and After are nil")
	}

	if t.Before != nil && t.After != nil {
		if t.Before.Before(*t.After) {
			return fmt.Errorf("before is before After")
		}
	}

	return nil
}
