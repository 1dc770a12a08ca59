// Package cart owns shopping cart state. Anonymous carts are mirrored to the
// key-value store under the session namespace; carts of signed-in users are
// kept in the cart repository.
package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/kvstore"
	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
	"github.com/shopspring/decimal"
)

const storageKey = "cart"

// Change is published after every successful mutation.
type Change struct {
	Owner domain.Owner
	Cart  domain.Cart
}

type Store struct {
	repo        port.CartRepository
	kv          port.KVStore
	maxQuantity int
	logger      *slog.Logger

	mu          sync.Mutex
	subscribers map[int]chan Change
	nextSubID   int
}

func NewStore(repo port.CartRepository, kv port.KVStore, maxQuantity int, logger *slog.Logger) (*Store, error) {
	if repo == nil {
		return nil, errors.New("cart repository is nil")
	}
	if kv == nil {
		return nil, errors.New("kv store is nil")
	}
	if maxQuantity <= 0 {
		maxQuantity = domain.DefaultMaxItemQuantity
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Store{
		repo:        repo,
		kv:          kv,
		maxQuantity: maxQuantity,
		logger:      logger,
		subscribers: make(map[int]chan Change),
	}, nil
}

func (s *Store) MaxQuantity() int {
	return s.maxQuantity
}

func (s *Store) Get(ctx context.Context, owner domain.Owner) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx, owner)
}

// AddItem snapshots price as the unit price of a new line.
func (s *Store) AddItem(ctx context.Context, owner domain.Owner, productID int64, quantity int, price decimal.Decimal, product *domain.Product) (domain.Cart, error) {
	return s.mutate(ctx, owner, func(c *domain.Cart) error {
		return c.AddItem(domain.CartItem{
			ProductID: productID,
			Quantity:  quantity,
			Price:     price,
			Product:   product,
		}, s.maxQuantity)
	})
}

func (s *Store) UpdateQuantity(ctx context.Context, owner domain.Owner, productID int64, quantity int) (domain.Cart, error) {
	return s.mutate(ctx, owner, func(c *domain.Cart) error {
		return c.UpdateQuantity(productID, quantity, s.maxQuantity)
	})
}

func (s *Store) RemoveItem(ctx context.Context, owner domain.Owner, productID int64) (domain.Cart, error) {
	return s.mutate(ctx, owner, func(c *domain.Cart) error {
		if !c.RemoveItem(productID) {
			return domain.ErrItemNotFound
		}
		return nil
	})
}

func (s *Store) Clear(ctx context.Context, owner domain.Owner) (domain.Cart, error) {
	return s.mutate(ctx, owner, func(c *domain.Cart) error {
		c.Clear()
		return nil
	})
}

// Merge moves the anonymous cart of sessionID into the cart of userID and
// drops the anonymous copy. Quantities of shared products are added and
// capped at the configured maximum.
func (s *Store) Merge(ctx context.Context, sessionID string, userID int64) (domain.Cart, error) {
	if userID <= 0 {
		return domain.Cart{}, errors.New("userID is empty")
	}

	anonymous := domain.Owner{SessionID: sessionID}
	user := domain.Owner{UserID: userID, SessionID: sessionID}

	s.mu.Lock()
	anonCart, err := s.load(ctx, anonymous)
	s.mu.Unlock()
	if err != nil {
		return domain.Cart{}, fmt.Errorf("s.load anonymous: %w", err)
	}

	if anonCart.IsEmpty() {
		return s.Get(ctx, user)
	}

	merged, err := s.mutate(ctx, user, func(c *domain.Cart) error {
		for _, item := range anonCart.Items {
			existing, ok := c.Find(item.ProductID)
			if ok {
				quantity := min(existing.Quantity+item.Quantity, s.maxQuantity)
				if err := c.UpdateQuantity(item.ProductID, quantity, s.maxQuantity); err != nil {
					return err
				}
				continue
			}
			if err := c.AddItem(item, s.maxQuantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return domain.Cart{}, err
	}

	if err := s.namespace(anonymous).Delete(ctx, storageKey); err != nil {
		s.logger.Warn("failed to drop anonymous cart after merge",
			"method", "Store.Merge",
			"session_id", sessionID,
			"error", err)
	}

	return merged, nil
}

// Subscribe returns a channel of cart changes and a function to stop the
// subscription. Slow subscribers miss changes rather than block mutations.
func (s *Store) Subscribe() (<-chan Change, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++

	ch := make(chan Change, 16)
	s.subscribers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
}

func (s *Store) mutate(ctx context.Context, owner domain.Owner, fn func(c *domain.Cart) error) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.load(ctx, owner)
	if err != nil {
		return domain.Cart{}, err
	}

	if err := fn(&c); err != nil {
		return domain.Cart{}, err
	}

	if err := s.save(ctx, owner, c); err != nil {
		return domain.Cart{}, err
	}

	s.publish(Change{Owner: owner, Cart: c})

	return c, nil
}

func (s *Store) load(ctx context.Context, owner domain.Owner) (domain.Cart, error) {
	if !owner.IsAnonymous() {
		c, err := s.repo.GetCart(ctx, owner.UserID)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("repo.GetCart: %w", err)
		}
		return c, nil
	}

	raw, err := s.namespace(owner).Get(ctx, storageKey)
	if errors.Is(err, port.ErrKeyNotFound) {
		return domain.NewCart(0), nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("kv.Get: %w", err)
	}

	var c domain.Cart
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		// a corrupted mirror must not lock the user out of shopping
		s.logger.Warn("discarding unreadable stored cart",
			"method", "Store.load",
			"owner", owner.Key(),
			"error", err)
		return domain.NewCart(0), nil
	}

	c.Recalculate()
	return c, nil
}

// save stores c for owner. An emptied cart is deleted rather than stored.
func (s *Store) save(ctx context.Context, owner domain.Owner, c domain.Cart) error {
	if !owner.IsAnonymous() {
		if c.IsEmpty() {
			if _, err := s.repo.DeleteCart(ctx, owner.UserID); err != nil {
				return fmt.Errorf("repo.DeleteCart: %w", err)
			}
			return nil
		}
		if err := s.repo.SaveCart(ctx, c); err != nil {
			return fmt.Errorf("repo.SaveCart: %w", err)
		}
		return nil
	}

	if c.IsEmpty() {
		if err := s.namespace(owner).Delete(ctx, storageKey); err != nil {
			return fmt.Errorf("kv.Delete: %w", err)
		}
		return nil
	}

	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("json.Marshal cart: %w", err)
	}

	if err := s.namespace(owner).Set(ctx, storageKey, string(raw)); err != nil {
		return fmt.Errorf("kv.Set: %w", err)
	}

	return nil
}

func (s *Store) namespace(owner domain.Owner) port.KVStore {
	return kvstore.Namespace(s.kv, owner.Key())
}

func (s *Store) publish(change Change) {
	for _, ch := range s.subscribers {
		select {
		case ch <- change:
		default:
			s.logger.Debug("cart subscriber is full, dropping change",
				"method", "Store.publish",
				"owner", change.Owner.Key())
		}
	}
}
