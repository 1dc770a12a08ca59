package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/kevinvillajim/bcommerce-checkout/internal/db"
)

type txBeginner interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error)
}

// withTx runs fn in its own transaction when dbtx can begin one. A dbtx that
// already is a transaction is reused and left for the caller to finish.
func withTx[T any](ctx context.Context, dbtx db.DBTX, opts pgx.TxOptions, fn func(q *db.Queries) (T, error)) (T, error) {
	var result T

	if tx, ok := dbtx.(pgx.Tx); ok {
		return fn(db.New(tx))
	}

	beginner, ok := dbtx.(txBeginner)
	if !ok {
		return result, fmt.Errorf("dbtx cannot begin a transaction: %T", dbtx)
	}

	// BeginTxFunc rolls back on error and joins a failed rollback into it.
	err := pgx.BeginTxFunc(ctx, beginner, opts, func(tx pgx.Tx) error {
		var err error
		result, err = fn(db.New(tx))
		return err
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}
