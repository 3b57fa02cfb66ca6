package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voyago/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type Repository struct{ q dbx.Querier }

func NewRepository(q dbx.Querier) *Repository { return &Repository{q: q} }

const paymentColumns = `id, booking_id, transaction_reference, gateway_tx_id,
	amount_cents, currency, status, created_at, updated_at`

func scanPayment(row pgx.Row, p *Payment) error {
	return row.Scan(
		&p.ID, &p.BookingID, &p.TxRef, &p.GatewayTxID,
		&p.AmountCents, &p.Currency, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
}

func (r *Repository) Create(ctx context.Context, p *Payment) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO payments (booking_id, transaction_reference, amount_cents, currency, status)
		VALUES ($1, $2, $3, COALESCE(NULLIF($4,''), 'ETB'), COALESCE(NULLIF($5,''), 'PENDING')::payment_status)
		RETURNING id, currency, status, created_at, updated_at
	`, p.BookingID, p.TxRef, p.AmountCents, p.Currency, string(p.Status)).
		Scan(&p.ID, &p.Currency, &p.Status, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			switch pgErr.ConstraintName {
			case "payments_transaction_reference_key":
				return ErrDuplicateReference
			case "payments_one_pending_per_booking":
				return ErrActivePaymentExists
			}
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Payment, error) {
	var p Payment
	err := scanPayment(r.q.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id=$1`, id), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

func (r *Repository) GetByReference(ctx context.Context, txRef string) (*Payment, error) {
	return r.byReference(ctx, txRef, "")
}

func (r *Repository) LockByReference(ctx context.Context, txRef string) (*Payment, error) {
	return r.byReference(ctx, txRef, " FOR UPDATE")
}

func (r *Repository) byReference(ctx context.Context, txRef, lock string) (*Payment, error) {
	var p Payment
	err := scanPayment(r.q.QueryRow(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE transaction_reference=$1`+lock, txRef), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by reference: %w", err)
	}
	return &p, nil
}

func (r *Repository) LatestByBooking(ctx context.Context, bookingID int64) (*Payment, error) {
	return r.latestByBooking(ctx, bookingID, "")
}

func (r *Repository) LockLatestByBooking(ctx context.Context, bookingID int64) (*Payment, error) {
	return r.latestByBooking(ctx, bookingID, " FOR UPDATE")
}

func (r *Repository) latestByBooking(ctx context.Context, bookingID int64, lock string) (*Payment, error) {
	var p Payment
	err := scanPayment(r.q.QueryRow(ctx, `
		SELECT `+paymentColumns+`
		FROM payments WHERE booking_id=$1
		ORDER BY created_at DESC, id DESC
		LIMIT 1`+lock, bookingID), &p)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get latest payment for booking: %w", err)
	}
	return &p, nil
}

func (r *Repository) SetStatus(ctx context.Context, id int64, status Status) error {
	_, err := r.q.Exec(ctx, `
		UPDATE payments SET status=$2::payment_status, updated_at=now() WHERE id=$1
	`, id, string(status))
	if err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	return nil
}

func (r *Repository) MarkCompleted(ctx context.Context, id int64, gatewayTxID string) error {
	_, err := r.q.Exec(ctx, `
		UPDATE payments
		   SET status='COMPLETED'::payment_status,
		       gateway_tx_id=$2,
		       updated_at=now()
		 WHERE id=$1
	`, id, gatewayTxID)
	if err != nil {
		return fmt.Errorf("mark payment completed: %w", err)
	}
	return nil
}

func (r *Repository) ExpirePending(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.q.Exec(ctx, `
		UPDATE payments
		   SET status='FAILED'::payment_status, updated_at=now()
		 WHERE status='PENDING'::payment_status AND created_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("expire pending payments: %w", err)
	}
	return tag.RowsAffected(), nil
}
