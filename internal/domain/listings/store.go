package listings

import (
	"context"
	"errors"
	"fmt"

	"voyago/internal/infra/dbx"

	"github.com/jackc/pgx/v5"
)

type Repository struct{ q dbx.Querier }

func NewRepository(q dbx.Querier) *Repository { return &Repository{q: q} }

func (r *Repository) Create(ctx context.Context, l *Listing) error {
	if err := r.q.QueryRow(ctx, `
		INSERT INTO listings (name, description, address, price_per_night_cents)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, l.Name, l.Description, l.Address, l.PricePerNightCents).
		Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return fmt.Errorf("create listing: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (*Listing, error) {
	var l Listing
	err := r.q.QueryRow(ctx, `
		SELECT id, name, description, address, price_per_night_cents, created_at, updated_at
		FROM listings WHERE id=$1
	`, id).Scan(&l.ID, &l.Name, &l.Description, &l.Address, &l.PricePerNightCents, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return &l, nil
}

func (r *Repository) List(ctx context.Context, limit, offset int) ([]*Listing, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := r.q.Query(ctx, `
		SELECT id, name, description, address, price_per_night_cents, created_at, updated_at,
		       COUNT(*) OVER() AS total_count
		FROM listings
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var (
		out   []*Listing
		total int
	)
	for rows.Next() {
		var l Listing
		var t int
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.Address, &l.PricePerNightCents,
			&l.CreatedAt, &l.UpdatedAt, &t); err != nil {
			return nil, 0, fmt.Errorf("scan listing: %w", err)
		}
		if total == 0 {
			total = t
		}
		out = append(out, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
