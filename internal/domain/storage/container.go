package storage

import (
	"context"

	"voyago/internal/domain/bookings"
	"voyago/internal/domain/listings"
	"voyago/internal/domain/payments"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Container struct {
	pool     *pgxpool.Pool
	refCodec *bookings.RefCodec

	Listings listings.Store
	Bookings bookings.Store
	Payments payments.Store
}

func NewContainer(db *pgxpool.Pool, refCodec *bookings.RefCodec) *Container {
	return &Container{
		pool:     db,
		refCodec: refCodec,
		Listings: listings.NewRepository(db),
		Bookings: bookings.NewRepository(db, refCodec),
		Payments: payments.NewRepository(db),
	}
}

// PaymentTx is a tx-scoped set of repos for one payment unit of work.
type PaymentTx struct {
	Bookings bookings.Store
	Payments payments.Store
}

// WithPaymentTx runs a payment read-modify-write atomically. Concurrent
// callbacks and initiations for the same booking serialize on the row locks
// taken by the Lock* repository methods inside fn.
//
// A container without a pool (as built by handler tests) runs fn against the
// container's own repositories instead of opening a transaction.
func (c *Container) WithPaymentTx(ctx context.Context, fn func(s *PaymentTx) error) error {
	if c.pool == nil {
		return fn(&PaymentTx{Bookings: c.Bookings, Payments: c.Payments})
	}

	tx, err := c.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback(ctx) // safe even if already committed
	}()

	s := &PaymentTx{
		Bookings: bookings.NewRepository(tx, c.refCodec),
		Payments: payments.NewRepository(tx),
	}

	if err := fn(s); err != nil {
		return err
	}

	return tx.Commit(ctx)
}
