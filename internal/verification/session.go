package verification

import (
	"context"
	"errors"
	"fmt"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/kvstore"
	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
	"github.com/shopspring/decimal"
)

var ErrNoSession = errors.New("no stored payment session")

// ResourcePathFor builds the resource path the provider would put in its
// redirect for a checkout.
func ResourcePathFor(checkoutID string) string {
	return "/v1/checkouts/" + checkoutID + "/payment"
}

// SessionStore keeps the payment session of an owner across the redirect
// round trip, one key per field under the provider's prefix.
type SessionStore struct {
	kv       port.KVStore
	provider string
}

func NewSessionStore(kv port.KVStore, provider string) (*SessionStore, error) {
	if kv == nil {
		return nil, errors.New("kv store is nil")
	}
	if provider == "" {
		return nil, errors.New("provider is empty")
	}

	return &SessionStore{kv: kv, provider: provider}, nil
}

func (s *SessionStore) Keys() []string {
	return []string{
		s.key("resource_path"),
		s.key("transaction_id"),
		s.key("checkout_id"),
		s.key("calculated_total"),
		s.key("form_data"),
	}
}

// Save writes the non-empty fields of session.
func (s *SessionStore) Save(ctx context.Context, owner domain.Owner, session domain.PaymentSession) error {
	kv := s.namespace(owner)

	values := map[string]string{
		s.key("resource_path"):  session.ResourcePath,
		s.key("transaction_id"): session.TransactionID,
		s.key("checkout_id"):    session.CheckoutID,
		s.key("form_data"):      string(session.FormData),
	}
	if !session.CalculatedTotal.IsZero() {
		values[s.key("calculated_total")] = session.CalculatedTotal.String()
	}

	for key, value := range values {
		if value == "" {
			continue
		}
		if err := kv.Set(ctx, key, value); err != nil {
			return fmt.Errorf("kv.Set[%s]: %w", key, err)
		}
	}

	return nil
}

// Load reads the stored session. Missing keys are left empty; a missing
// resource path is regenerated from the checkout id. ErrNoSession is
// returned when neither is stored.
func (s *SessionStore) Load(ctx context.Context, owner domain.Owner) (domain.PaymentSession, error) {
	kv := s.namespace(owner)

	var session domain.PaymentSession
	var err error

	if session.ResourcePath, err = s.get(ctx, kv, "resource_path"); err != nil {
		return domain.PaymentSession{}, err
	}
	if session.TransactionID, err = s.get(ctx, kv, "transaction_id"); err != nil {
		return domain.PaymentSession{}, err
	}
	if session.CheckoutID, err = s.get(ctx, kv, "checkout_id"); err != nil {
		return domain.PaymentSession{}, err
	}

	formData, err := s.get(ctx, kv, "form_data")
	if err != nil {
		return domain.PaymentSession{}, err
	}
	if formData != "" {
		session.FormData = []byte(formData)
	}

	total, err := s.get(ctx, kv, "calculated_total")
	if err != nil {
		return domain.PaymentSession{}, err
	}
	if total != "" {
		// an unreadable total is dropped, the server recalculates it
		session.CalculatedTotal, _ = decimal.NewFromString(total)
	}

	if session.ResourcePath == "" && session.CheckoutID != "" {
		session.ResourcePath = ResourcePathFor(session.CheckoutID)
	}

	if session.ResourcePath == "" {
		return domain.PaymentSession{}, ErrNoSession
	}

	return session, nil
}

func (s *SessionStore) Clear(ctx context.Context, owner domain.Owner) error {
	if err := s.namespace(owner).Delete(ctx, s.Keys()...); err != nil {
		return fmt.Errorf("kv.Delete: %w", err)
	}
	return nil
}

func (s *SessionStore) get(ctx context.Context, kv port.KVStore, field string) (string, error) {
	value, err := kv.Get(ctx, s.key(field))
	if errors.Is(err, port.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("kv.Get[%s]: %w", s.key(field), err)
	}
	return value, nil
}

func (s *SessionStore) key(field string) string {
	return s.provider + "_" + field
}

func (s *SessionStore) namespace(owner domain.Owner) port.KVStore {
	return kvstore.Namespace(s.kv, owner.Key())
}
