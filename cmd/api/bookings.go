package main

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"voyago/internal/domain/bookings"
	"voyago/internal/params"

	"github.com/go-chi/chi/v5"
)

type CreateBookingPayload struct {
	ListingID  int64     `json:"listing_id" validate:"required,gt=0"`
	GuestName  string    `json:"guest_name" validate:"required,max=100"`
	GuestEmail string    `json:"guest_email" validate:"required,email"`
	GuestPhone string    `json:"guest_phone" validate:"omitempty,max=20"`
	CheckIn    time.Time `json:"check_in" validate:"required"`
	CheckOut   time.Time `json:"check_out" validate:"required,gtfield=CheckIn"`
	Guests     int       `json:"guests" validate:"required,gt=0"`
}

// CreateBooking godoc
//
//	@Summary		Create a booking
//	@Description	Books a listing for the given date range; amount due is nights times the listing's nightly price.
//	@Tags			bookings
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateBookingPayload	true	"Booking payload"
//	@Success		201		{object}	bookings.Booking
//	@Failure		400		{object}	error
//	@Failure		404		{object}	error
//	@Failure		500		{object}	error
//	@Router			/bookings [post]
func (app *application) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateBookingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	listing, err := app.store.Listings.GetByID(r.Context(), payload.ListingID)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if listing == nil {
		app.notFoundResponse(w, r, fmt.Errorf("listing not found"))
		return
	}

	nights := int64(payload.CheckOut.Sub(payload.CheckIn).Hours() / 24)
	if nights < 1 {
		app.badRequestResponse(w, r, fmt.Errorf("stay must cover at least one night"))
		return
	}

	booking := &bookings.Booking{
		ListingID:      listing.ID,
		GuestName:      payload.GuestName,
		GuestEmail:     payload.GuestEmail,
		GuestPhone:     payload.GuestPhone,
		CheckIn:        payload.CheckIn,
		CheckOut:       payload.CheckOut,
		Guests:         payload.Guests,
		AmountDueCents: nights * listing.PricePerNightCents,
	}
	if err := app.store.Bookings.Create(r.Context(), booking); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, booking)
}

// GetBooking godoc
//
//	@Summary		Fetch a booking
//	@Tags			bookings
//	@Produce		json
//	@Param			bookingID	path		int	true	"Booking ID"
//	@Success		200			{object}	bookings.Booking
//	@Failure		404			{object}	error
//	@Router			/bookings/{bookingID} [get]
func (app *application) getBookingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "bookingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid booking ID"))
		return
	}

	booking, err := app.store.Bookings.GetByID(r.Context(), id)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if booking == nil {
		app.notFoundResponse(w, r, fmt.Errorf("booking not found"))
		return
	}

	app.jsonResponse(w, http.StatusOK, booking)
}

// ListBookings godoc
//
//	@Summary		List bookings
//	@Tags			bookings
//	@Produce		json
//	@Param			page	query		int	false	"Page number (1-based)"
//	@Param			limit	query		int	false	"Items per page"
//	@Success		200		{array}		bookings.Booking
//	@Failure		500		{object}	error
//	@Router			/bookings [get]
func (app *application) listBookingsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	out, total, err := app.store.Bookings.List(r.Context(), p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"bookings":   out,
		"pagination": p,
	})
}
