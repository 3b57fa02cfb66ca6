package main

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"voyago/internal/domain/payments"
	"voyago/internal/domain/storage"
	"voyago/internal/gateway"

	"github.com/go-chi/chi/v5"
)

var errAlreadyPaid = errors.New("payment for this booking is already completed")

type initiatePaymentResponse struct {
	Message              string `json:"message"`
	CheckoutURL          string `json:"checkout_url"`
	TransactionReference string `json:"transaction_reference"`
}

// InitiatePayment godoc
//
//	@Summary		Initiate payment for a booking
//	@Description	Ensures a PENDING payment exists for the booking (reusing an in-flight attempt, or opening a fresh one after a failed attempt) and asks the gateway for a hosted checkout link.
//	@Tags			payments
//	@Accept			json
//	@Produce		json
//	@Param			bookingID	path		int	true	"Booking ID"
//	@Success		200			{object}	initiatePaymentResponse
//	@Failure		400			{object}	error	"Payment already completed"
//	@Failure		404			{object}	error	"Booking not found"
//	@Failure		502			{object}	error	"Gateway rejected the initialization"
//	@Router			/bookings/{bookingID}/initiate-payment [post]
func (app *application) initiatePaymentHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	bookingID, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid booking ID"))
		return
	}

	booking, err := app.store.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if booking == nil {
		app.notFoundResponse(w, r, fmt.Errorf("booking not found"))
		return
	}

	// Resolve-or-create the payment attempt under a row lock so two
	// concurrent initiations for the same booking cannot both insert.
	var pay *payments.Payment
	err = app.store.WithPaymentTx(ctx, func(s *storage.PaymentTx) error {
		existing, err := s.Payments.LockLatestByBooking(ctx, booking.ID)
		if err != nil {
			return err
		}

		switch {
		case existing != nil && existing.Status == payments.StatusCompleted:
			return errAlreadyPaid

		case existing != nil && existing.Status == payments.StatusPending:
			// Reuse the in-flight attempt; the tx_ref is never regenerated.
			pay = existing
			return nil

		default:
			// No attempt yet, or the last one is FAILED/CANCELLED. Terminal
			// attempts stay in place as an audit trail; open a fresh one.
			p := &payments.Payment{
				BookingID:   booking.ID,
				TxRef:       payments.NewTransactionReference(booking.Reference),
				AmountCents: booking.AmountDueCents,
				Currency:    booking.Currency,
				Status:      payments.StatusPending,
			}
			if err := s.Payments.Create(ctx, p); err != nil {
				return err
			}
			pay = p
			return nil
		}
	})
	if err != nil {
		switch {
		case errors.Is(err, errAlreadyPaid):
			app.badRequestResponse(w, r, errAlreadyPaid)
		case errors.Is(err, payments.ErrDuplicateReference),
			errors.Is(err, payments.ErrActivePaymentExists):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	firstName, lastName := splitGuestName(booking.GuestName)
	callbackURL := app.callbackURL(r)

	resp, err := app.gateway.InitializeTransaction(ctx, gateway.InitializeRequest{
		Amount:      formatAmount(pay.AmountCents),
		Currency:    pay.Currency,
		Email:       booking.GuestEmail,
		FirstName:   firstName,
		LastName:    lastName,
		PhoneNumber: booking.GuestPhone,
		TxRef:       pay.TxRef,
		CallbackURL: callbackURL,
		ReturnURL:   callbackURL,
		Title:       fmt.Sprintf("Payment for Booking %s", booking.Reference),
		Description: fmt.Sprintf("Travel booking payment of %s %s", formatAmount(pay.AmountCents), pay.Currency),
	})
	if err != nil {
		if serr := app.store.Payments.SetStatus(ctx, pay.ID, payments.StatusFailed); serr != nil {
			app.logger.Errorw("failed to mark payment failed after gateway error",
				"payment_id", pay.ID, "error", serr.Error())
		}
		app.badGatewayResponse(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, initiatePaymentResponse{
		Message:              "Payment initiated successfully.",
		CheckoutURL:          resp.CheckoutURL,
		TransactionReference: pay.TxRef,
	})
}

// PaymentCallback godoc
//
//	@Summary		Payment verification callback
//	@Description	Entry point for the gateway's redirect/notification. The inbound status is an untrusted hint; the payment is re-verified server-to-server before any state transition, then the guest is redirected to the booking's payment status page.
//	@Tags			payments
//	@Produce		json
//	@Param			tx_ref	query	string	true	"Transaction reference"
//	@Param			status	query	string	false	"Provider-asserted status (ignored for transitions)"
//	@Success		302
//	@Failure		400	{object}	error	"Missing tx_ref"
//	@Failure		404	{object}	error	"Unknown tx_ref"
//	@Router			/payments/verify-callback [get]
func (app *application) paymentCallbackHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Chapa sends tx_ref as a query param on GET redirects and as form data
	// on POST notifications; FormValue covers both.
	txRef := strings.TrimSpace(r.FormValue("tx_ref"))
	if txRef == "" {
		app.badRequestResponse(w, r, fmt.Errorf("transaction reference (tx_ref) not found in callback"))
		return
	}

	pay, err := app.store.Payments.GetByReference(ctx, txRef)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if pay == nil {
		app.notFoundResponse(w, r, fmt.Errorf("payment record not found for this transaction reference"))
		return
	}

	// Idempotent short-circuit: a terminal payment is never re-verified, so
	// replayed callbacks cannot double-send the confirmation email.
	if pay.Status.Terminal() {
		app.redirectToPaymentStatus(w, r, pay.BookingID, resultForStatus(pay.Status), txRef)
		return
	}

	ver, err := app.gateway.VerifyTransaction(ctx, txRef)
	if err != nil {
		// Explicit failure over silent limbo: an unverifiable payment is
		// marked FAILED rather than left PENDING indefinitely.
		app.logger.Errorw("payment verification call failed", "tx_ref", txRef, "error", err.Error())
		if terr := app.failUnlessTerminal(r, txRef); terr != nil {
			app.internalServerError(w, r, terr)
			return
		}
		app.redirectToPaymentStatus(w, r, pay.BookingID, "error", txRef)
		return
	}

	switch ver.Status {
	case gateway.VerifiedSuccess:
		notify := false
		err := app.store.WithPaymentTx(ctx, func(s *storage.PaymentTx) error {
			cur, err := s.Payments.LockByReference(ctx, txRef)
			if err != nil {
				return err
			}
			if cur == nil {
				return fmt.Errorf("payment disappeared during verification: %s", txRef)
			}
			if cur.Status.Terminal() {
				return nil // a concurrent callback got here first
			}
			if err := s.Payments.MarkCompleted(ctx, cur.ID, ver.GatewayRef); err != nil {
				return err
			}
			notify = true
			return nil
		})
		if err != nil {
			app.internalServerError(w, r, err)
			return
		}
		if notify {
			app.notifier.Enqueue(pay.ID)
		}
		app.redirectToPaymentStatus(w, r, pay.BookingID, "success", txRef)

	case gateway.VerifiedFailed, gateway.VerifiedCancelled, gateway.VerifiedExpired:
		if err := app.failUnlessTerminal(r, txRef); err != nil {
			app.internalServerError(w, r, err)
			return
		}
		app.redirectToPaymentStatus(w, r, pay.BookingID, "failed", txRef)

	default:
		// Still pending (or an unrecognized status) at the provider. The
		// record stays PENDING; re-invoking this callback later is safe.
		app.redirectToPaymentStatus(w, r, pay.BookingID, "pending", txRef)
	}
}

// failUnlessTerminal marks the payment FAILED under a row lock, unless a
// concurrent flow already drove it to a terminal state.
func (app *application) failUnlessTerminal(r *http.Request, txRef string) error {
	return app.store.WithPaymentTx(r.Context(), func(s *storage.PaymentTx) error {
		cur, err := s.Payments.LockByReference(r.Context(), txRef)
		if err != nil {
			return err
		}
		if cur == nil || cur.Status.Terminal() {
			return nil
		}
		return s.Payments.SetStatus(r.Context(), cur.ID, payments.StatusFailed)
	})
}

func (app *application) redirectToPaymentStatus(w http.ResponseWriter, r *http.Request, bookingID int64, result, txRef string) {
	target := fmt.Sprintf("%s/booking/%d/payment_%s?tx_ref=%s",
		app.config.frontendURL, bookingID, result, url.QueryEscape(txRef))
	http.Redirect(w, r, target, http.StatusFound)
}

// callbackURL derives the gateway-facing callback endpoint from the inbound
// request's host, so the same binary works behind any hostname.
func (app *application) callbackURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s/v1/payments/verify-callback", scheme, r.Host)
}

func resultForStatus(s payments.Status) string {
	if s == payments.StatusCompleted {
		return "success"
	}
	return "failed"
}

func formatAmount(cents int64) string {
	return fmt.Sprintf("%.2f", float64(cents)/100)
}

func splitGuestName(full string) (first, last string) {
	first, last, _ = strings.Cut(strings.TrimSpace(full), " ")
	return first, last
}
