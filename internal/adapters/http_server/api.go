package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"slow_travel/internal/adapters/observability"
	"slow_travel/internal/app"
	"slow_travel/internal/domain"
)

// Flat {success, ...} responses consumed by the booking widgets and partner sites.

type failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type dayTripsResponse struct {
	Success   bool             `json:"success"`
	HeroImage string           `json:"heroImage"`
	DayTrips  []domain.DayTrip `json:"dayTrips"`
	Addons    []domain.Addon   `json:"addons"`
}

type dayTripResponse struct {
	Success bool                 `json:"success"`
	DayTrip domain.DayTripDetail `json:"dayTrip"`
	Addons  []domain.Addon       `json:"addons"`
}

type bookingResponse struct {
	Success   bool   `json:"success"`
	BookingID string `json:"bookingId"`
	Message   string `json:"message"`
}

type journeysResponse struct {
	Success  bool             `json:"success"`
	Journeys []domain.Journey `json:"journeys"`
}

type newsletterRequest struct {
	Email string `json:"email"`
	Brand string `json:"brand"`
}

func nonNil[T any](xs []T) []T {
	if xs == nil {
		return []T{}
	}
	return xs
}

// Content reads fail to empty, so this endpoint degrades to empty lists instead of erroring.
func (h *Handlers) apiDayTrips(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	writeETagJSON(w, r, dayTripsResponse{
		Success:   true,
		HeroImage: app.DriveThumbnailURL(h.Content.Setting(ctx, domain.SettingDayTripsHero)),
		DayTrips:  nonNil(h.Content.ListDayTrips(ctx)),
		Addons:    nonNil(h.Content.ListAddons(ctx)),
	})
}

func (h *Handlers) apiDayTrip(w http.ResponseWriter, r *http.Request) {
	trip, addons, ok := h.Content.DayTripBySlug(r.Context(), chi.URLParam(r, "slug"))
	if !ok {
		writeJSON(w, http.StatusNotFound, failure{Error: "Day trip not found"})
		return
	}
	// applicability is implied by the trip
	scoped := make([]domain.Addon, len(addons))
	for i, a := range addons {
		a.AppliesTo = nil
		scoped[i] = a
	}
	writeETagJSON(w, r, dayTripResponse{Success: true, DayTrip: trip, Addons: scoped})
}

func (h *Handlers) apiCreateBooking(w http.ResponseWriter, r *http.Request) {
	var req domain.BookingRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, failure{Error: "invalid request body"})
		return
	}
	b, err := h.Bookings.Record(r.Context(), req)
	if err != nil {
		observability.ObserveBooking("unrecorded")
		log.Error().Err(err).
			Str("trip", req.TripSlug).
			Str("transaction", req.PaymentTransaction).
			Msg("day trip booking not recorded")
		writeJSON(w, http.StatusInternalServerError, failure{Error: err.Error()})
		return
	}
	observability.ObserveBooking("recorded")
	writeJSON(w, http.StatusOK, bookingResponse{Success: true, BookingID: b.ID, Message: "Booking confirmed"})
}

func (h *Handlers) apiJourneys(w http.ResponseWriter, r *http.Request) {
	writeETagJSON(w, r, journeysResponse{Success: true, Journeys: nonNil(h.Content.ListJourneys(r.Context()))})
}

func (h *Handlers) apiNewsletter(w http.ResponseWriter, r *http.Request) {
	var req newsletterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, app.NewsletterResult{Message: "Please enter a valid email address."})
		return
	}
	res := h.Newsletter.Subscribe(r.Context(), req.Email, req.Brand)
	writeJSON(w, newsletterStatus(res), res)
}
