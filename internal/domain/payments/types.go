package payments

import (
	"context"
	"errors"
	"time"
)

// Status is the lifecycle state of one payment attempt. PENDING is the only
// non-terminal state; a payment never leaves COMPLETED, FAILED or CANCELLED.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
	StatusCancelled Status = "CANCELLED"
)

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCancelled
}

var (
	// ErrDuplicateReference maps the transaction_reference unique constraint.
	ErrDuplicateReference = errors.New("transaction reference already exists")
	// ErrActivePaymentExists maps the one-PENDING-payment-per-booking index.
	ErrActivePaymentExists = errors.New("booking already has an active payment")
)

type Payment struct {
	ID          int64     `json:"id"`
	BookingID   int64     `json:"booking_id"`
	TxRef       string    `json:"transaction_reference"`
	GatewayTxID *string   `json:"gateway_tx_id,omitempty"`
	AmountCents int64     `json:"amount_cents"`
	Currency    string    `json:"currency"`
	Status      Status    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Store interface {
	Create(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id int64) (*Payment, error)
	GetByReference(ctx context.Context, txRef string) (*Payment, error)
	// LockByReference is GetByReference with FOR UPDATE; call inside a tx.
	LockByReference(ctx context.Context, txRef string) (*Payment, error)
	// LatestByBooking returns the most recent attempt for the booking.
	LatestByBooking(ctx context.Context, bookingID int64) (*Payment, error)
	// LockLatestByBooking is LatestByBooking with FOR UPDATE; call inside a tx.
	LockLatestByBooking(ctx context.Context, bookingID int64) (*Payment, error)
	SetStatus(ctx context.Context, id int64, status Status) error
	MarkCompleted(ctx context.Context, id int64, gatewayTxID string) error
	// ExpirePending fails PENDING payments created before the cutoff.
	ExpirePending(ctx context.Context, cutoff time.Time) (int64, error)
}
