package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kevinvillajim/bcommerce-checkout/internal/db"
	"github.com/kevinvillajim/bcommerce-checkout/internal/domain"
	"github.com/kevinvillajim/bcommerce-checkout/internal/port"
)

type cartRepository struct {
	q    *db.Queries
	dbtx db.DBTX
}

func NewCart(pool *pgxpool.Pool) port.CartRepository {
	return &cartRepository{
		q:    db.New(pool),
		dbtx: pool,
	}
}

func NewCartWithTx(tx pgx.Tx) port.CartRepository {
	return &cartRepository{
		q:    db.New(tx),
		dbtx: tx, // use provided transaction instead
	}
}

// GetCart returns an empty cart for a user that has none stored.
func (r *cartRepository) GetCart(ctx context.Context, userID int64) (domain.Cart, error) {
	if userID <= 0 {
		return domain.Cart{}, fmt.Errorf("userID is empty")
	}

	dbCart, err := r.q.GetCartByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewCart(userID), nil
		}
		return domain.Cart{}, fmt.Errorf("q.GetCartByUser: %w", err)
	}

	dbItems, err := r.q.GetCartItems(ctx, dbCart.ID)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("q.GetCartItems: %w", err)
	}

	items, err := mapCartItemsToDomain(dbItems)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapCartItemsToDomain: %w", err)
	}

	cart := domain.Cart{
		ID:     dbCart.ID,
		UserID: dbCart.UserID,
		Items:  items,
	}
	cart.Recalculate()

	return cart, nil
}

// SaveCart replaces the stored items of the user's cart.
func (r *cartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	if cart.UserID <= 0 {
		return fmt.Errorf("cart.UserID is empty")
	}
	if cart.ID == uuid.Nil {
		cart.ID = uuid.New()
	}

	_, err := withTx(ctx, r.dbtx, pgx.TxOptions{}, func(q *db.Queries) (struct{}, error) {
		cartID, err := q.UpsertCart(ctx, db.UpsertCartParams{ID: cart.ID, UserID: cart.UserID})
		if err != nil {
			return struct{}{}, fmt.Errorf("q.UpsertCart: %w", err)
		}

		if err := q.DeleteCartItems(ctx, cartID); err != nil {
			return struct{}{}, fmt.Errorf("q.DeleteCartItems: %w", err)
		}

		// TODO: batch insert with pgx.Batch once carts grow beyond a handful of lines
		for idx, item := range cart.Items {
			arg, err := mapCartItemToDB(cartID, idx, item)
			if err != nil {
				return struct{}{}, fmt.Errorf("mapCartItemToDB: %w", err)
			}
			if err := q.InsertCartItem(ctx, arg); err != nil {
				return struct{}{}, fmt.Errorf("q.InsertCartItem: %w", err)
			}
		}

		return struct{}{}, nil
	})
	if err != nil {
		return fmt.Errorf("withTx: %w", err)
	}

	return nil
}

func (r *cartRepository) DeleteCart(ctx context.Context, userID int64) (bool, error) {
	cmdTag, err := r.q.DeleteCartByUser(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("q.DeleteCartByUser: %w", err)
	}

	return cmdTag.RowsAffected() > 0, nil
}

func mapCartItemToDB(cartID uuid.UUID, position int, item domain.CartItem) (db.InsertCartItemParams, error) {
	var product []byte

	if item.Product != nil {
		var err error
		product, err = json.Marshal(item.Product)
		if err != nil {
			return db.InsertCartItemParams{}, fmt.Errorf("json.Marshal product[%d]: %w", item.ProductID, err)
		}
	}

	return db.InsertCartItemParams{
		CartID:    cartID,
		ProductID: item.ProductID,
		Position:  int32(position),
		Quantity:  int32(item.Quantity),
		Price:     item.Price,
		Product:   product,
	}, nil
}

func mapCartItemToDomain(row db.CartItem) (domain.CartItem, error) {
	item := domain.CartItem{
		CartID:    row.CartID,
		ProductID: row.ProductID,
		Quantity:  int(row.Quantity),
		Price:     row.Price,
	}

	if len(row.Product) > 0 {
		var product domain.Product
		if err := json.Unmarshal(row.Product, &product); err != nil {
			return domain.CartItem{}, fmt.Errorf("json.Unmarshal product[%d]: %w", row.ProductID, err)
		}
		item.Product = &product
	}

	return item, nil
}

func mapCartItemsToDomain(rows []db.CartItem) ([]domain.CartItem, error) {
	var items []domain.CartItem

	for _, row := range rows {
		item, err := mapCartItemToDomain(row)
		if err != nil {
			return nil, fmt.Errorf("mapCartItemToDomain: %w", err)
		}

		items = append(items, item)
	}

	return items, nil
}
