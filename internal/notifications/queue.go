package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"voyago/internal/domain/bookings"
	"voyago/internal/domain/payments"
	"voyago/internal/mailer"

	"go.uber.org/zap"
)

// Notifier is what the payment flow sees: a non-blocking enqueue. Delivery is
// best effort; the payment's state never depends on it.
type Notifier interface {
	Enqueue(paymentID int64)
}

// EmailQueue delivers payment confirmation emails from a background worker
// pool, decoupled from the request/response cycle. Workers re-fetch the
// payment and only send while it is still COMPLETED, so a stale or duplicate
// task is a no-op.
type EmailQueue struct {
	tasks    chan int64
	payments payments.Store
	bookings bookings.Store
	mailer   mailer.Client
	logger   *zap.SugaredLogger

	wg        sync.WaitGroup
	closeOnce sync.Once
}

func NewEmailQueue(p payments.Store, b bookings.Store, m mailer.Client, logger *zap.SugaredLogger, capacity int) *EmailQueue {
	if capacity <= 0 {
		capacity = 64
	}
	return &EmailQueue{
		tasks:    make(chan int64, capacity),
		payments: p,
		bookings: b,
		mailer:   m,
		logger:   logger,
	}
}

// Start spawns the worker goroutines. Call once at boot.
func (q *EmailQueue) Start(workers int) {
	if workers <= 0 {
		workers = 2
	}
	for i := 0; i < workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for id := range q.tasks {
				q.process(id)
			}
		}()
	}
}

// Enqueue never blocks the caller. A full queue drops the task with a log
// line; the confirmation email is best effort.
func (q *EmailQueue) Enqueue(paymentID int64) {
	select {
	case q.tasks <- paymentID:
	default:
		q.logger.Warnw("notification queue full, dropping task", "payment_id", paymentID)
	}
}

// Close stops accepting tasks and waits for in-flight sends to finish.
func (q *EmailQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.tasks)
	})
	q.wg.Wait()
}

func (q *EmailQueue) process(paymentID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	payment, err := q.payments.GetByID(ctx, paymentID)
	if err != nil {
		q.logger.Errorw("confirmation email: payment lookup failed", "payment_id", paymentID, "error", err.Error())
		return
	}
	if payment == nil {
		q.logger.Warnw("confirmation email: payment not found", "payment_id", paymentID)
		return
	}
	if payment.Status != payments.StatusCompleted {
		q.logger.Infow("confirmation email: payment no longer completed, skipping",
			"payment_id", paymentID, "status", payment.Status)
		return
	}

	booking, err := q.bookings.GetByID(ctx, payment.BookingID)
	if err != nil || booking == nil {
		q.logger.Errorw("confirmation email: booking lookup failed",
			"payment_id", paymentID, "booking_id", payment.BookingID, "error", fmt.Sprint(err))
		return
	}

	data := struct {
		GuestName            string
		BookingReference     string
		TransactionReference string
		Amount               string
		Currency             string
	}{
		GuestName:            booking.GuestName,
		BookingReference:     booking.Reference,
		TransactionReference: payment.TxRef,
		Amount:               fmt.Sprintf("%.2f", float64(payment.AmountCents)/100),
		Currency:             payment.Currency,
	}

	if _, err := q.mailer.Send(mailer.PaymentConfirmationTemplate, booking.GuestName, booking.GuestEmail, data); err != nil {
		// Swallowed on purpose: delivery failure must not touch payment state.
		q.logger.Errorw("confirmation email: send failed",
			"payment_id", paymentID, "email", booking.GuestEmail, "error", err.Error())
		return
	}

	q.logger.Infow("confirmation email sent", "payment_id", paymentID, "booking_id", booking.ID)
}
