package main

import (
	"fmt"
	"net/http"
	"strconv"

	"voyago/internal/domain/listings"
	"voyago/internal/params"

	"github.com/go-chi/chi/v5"
)

type CreateListingPayload struct {
	Name               string `json:"name" validate:"required,max=255"`
	Description        string `json:"description" validate:"omitempty,max=2000"`
	Address            string `json:"address" validate:"required,max=255"`
	PricePerNightCents int64  `json:"price_per_night_cents" validate:"required,gt=0"`
}

// CreateListing godoc
//
//	@Summary		Create a listing
//	@Tags			listings
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateListingPayload	true	"Listing payload"
//	@Success		201		{object}	listings.Listing
//	@Failure		400		{object}	error
//	@Failure		500		{object}	error
//	@Router			/listings [post]
func (app *application) createListingHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateListingPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	listing := &listings.Listing{
		Name:               payload.Name,
		Description:        payload.Description,
		Address:            payload.Address,
		PricePerNightCents: payload.PricePerNightCents,
	}
	if err := app.store.Listings.Create(r.Context(), listing); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusCreated, listing)
}

// GetListing godoc
//
//	@Summary		Fetch a listing
//	@Tags			listings
//	@Produce		json
//	@Param			listingID	path		int	true	"Listing ID"
//	@Success		200			{object}	listings.Listing
//	@Failure		404			{object}	error
//	@Router			/listings/{listingID} [get]
func (app *application) getListingHandler(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "listingID"), 10, 64)
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid listing ID"))
		return
	}

	listing, err := app.store.Listings.GetByID(r.Context(), id)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if listing == nil {
		app.notFoundResponse(w, r, fmt.Errorf("listing not found"))
		return
	}

	app.jsonResponse(w, http.StatusOK, listing)
}

// ListListings godoc
//
//	@Summary		List listings
//	@Tags			listings
//	@Produce		json
//	@Param			page	query		int	false	"Page number (1-based)"
//	@Param			limit	query		int	false	"Items per page"
//	@Success		200		{array}		listings.Listing
//	@Failure		500		{object}	error
//	@Router			/listings [get]
func (app *application) listListingsHandler(w http.ResponseWriter, r *http.Request) {
	p := params.ParsePagination(r.URL.Query())

	out, total, err := app.store.Listings.List(r.Context(), p.Limit, p.Offset)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	p.ComputeMeta(total)

	app.jsonResponse(w, http.StatusOK, map[string]any{
		"listings":   out,
		"pagination": p,
	})
}
