package bookings

import (
	"context"
	"errors"
	"fmt"

	"voyago/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Repository struct {
	q   dbx.Querier
	ref *RefCodec
}

func NewRepository(q dbx.Querier, ref *RefCodec) *Repository {
	return &Repository{q: q, ref: ref}
}

// Create inserts the booking and assigns its reference from the generated ID.
// Both statements run in one transaction, so a failed reference assignment
// never leaves behind a booking row without a reference.
func (r *Repository) Create(ctx context.Context, b *Booking) error {
	tx, err := r.q.Begin(ctx)
	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx) // safe even if already committed
	}()

	if err := tx.QueryRow(ctx, `
		INSERT INTO bookings
			(listing_id, guest_name, guest_email, guest_phone, check_in, check_out,
			 guests, amount_due_cents, currency)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, COALESCE(NULLIF($9,''), 'ETB'))
		RETURNING id, currency, created_at, updated_at
	`, b.ListingID, b.GuestName, b.GuestEmail, b.GuestPhone, b.CheckIn, b.CheckOut,
		b.Guests, b.AmountDueCents, b.Currency).
		Scan(&b.ID, &b.Currency, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	ref, err := r.ref.Encode(b.ID)
	if err != nil {
		return fmt.Errorf("encode booking reference: %w", err)
	}
	if _, err := tx.Exec(ctx, `
		UPDATE bookings SET reference=$2 WHERE id=$1
	`, b.ID, ref); err != nil {
		return fmt.Errorf("set booking reference: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	b.Reference = ref
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Booking, error) {
	var b Booking
	err := r.q.QueryRow(ctx, `
		SELECT id, listing_id, reference, guest_name, guest_email, guest_phone,
		       check_in, check_out, guests, amount_due_cents, currency, created_at, updated_at
		FROM bookings WHERE id=$1
	`, id).Scan(
		&b.ID, &b.ListingID, &b.Reference, &b.GuestName, &b.GuestEmail, &b.GuestPhone,
		&b.CheckIn, &b.CheckOut, &b.Guests, &b.AmountDueCents, &b.Currency, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Booking, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, listing_id, reference, guest_name, guest_email, guest_phone,
		       check_in, check_out, guests, amount_due_cents, currency, created_at, updated_at,
		       COUNT(*) OVER() AS total_count
		FROM bookings
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}
	defer rows.Close()

	var (
		out   []*Booking
		total int
	)
	for rows.Next() {
		var b Booking
		var t int
		if err := rows.Scan(
			&b.ID, &b.ListingID, &b.Reference, &b.GuestName, &b.GuestEmail, &b.GuestPhone,
			&b.CheckIn, &b.CheckOut, &b.Guests, &b.AmountDueCents, &b.Currency,
			&b.CreatedAt, &b.UpdatedAt, &t,
		); err != nil {
			return nil, 0, fmt.Errorf("scan booking: %w", err)
		}
		if total == 0 {
			total = t
		}
		out = append(out, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
