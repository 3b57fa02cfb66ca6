package bookings

import (
	"context"
	"time"
)

type Booking struct {
	ID             int64     `json:"id"`
	ListingID      int64     `json:"listing_id"`
	Reference      string    `json:"reference"`
	GuestName      string    `json:"guest_name"`
	GuestEmail     string    `json:"guest_email"`
	GuestPhone     string    `json:"guest_phone,omitempty"`
	CheckIn        time.Time `json:"check_in"`
	CheckOut       time.Time `json:"check_out"`
	Guests         int       `json:"guests"`
	AmountDueCents int64     `json:"amount_due_cents"`
	Currency       string    `json:"currency"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Store interface {
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id int64) (*Booking, error)
	List(ctx context.Context, limit, offset int) ([]*Booking, int, error)
}
