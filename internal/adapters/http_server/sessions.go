package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"slow_travel/internal/adapters/observability"
	"slow_travel/internal/app"
	"slow_travel/internal/domain"
)

var stepLabels = map[app.Step]string{
	app.StepDateAndGuests:  "Date & guests",
	app.StepAddOns:         "Add-ons",
	app.StepContactDetails: "Your details",
	app.StepPayment:        "Payment",
	app.StepConfirmed:      "Confirmed",
}

type sessionResponse struct {
	Wizard   *app.Wizard `json:"wizard"`
	Quote    app.Quote   `json:"quote"`
	StepName string      `json:"stepName"`
}

type openRequest struct {
	TripSlug string `json:"tripSlug"`
}

type tripRequest struct {
	Date   string `json:"date"`
	Guests int    `json:"guests"`
}

type addonsRequest struct {
	AddonIDs []string `json:"addonIds"`
}

type captureRequest struct {
	OrderID string `json:"orderId"`
}

func writeSession(w http.ResponseWriter, status int, wz *app.Wizard) {
	writeJSON(w, status, sessionResponse{Wizard: wz, Quote: wz.Quote(), StepName: stepLabels[wz.Step]})
}

// writeFlowError maps booking flow errors onto problem responses.
func writeFlowError(w http.ResponseWriter, r *http.Request, err error) {
	var unrecorded *domain.UnrecordedBookingError
	switch {
	case errors.As(err, &unrecorded):
		observability.ObserveBooking("unrecorded")
		writeProblemBody(w, problem{
			Status:        http.StatusInternalServerError,
			Title:         "Booking not recorded",
			Detail:        unrecorded.Error(),
			TransactionID: unrecorded.TransactionID,
		})
	case domain.AsInputError(err) != nil:
		ie := domain.AsInputError(err)
		writeProblemBody(w, problem{
			Status: http.StatusUnprocessableEntity,
			Title:  "Invalid input",
			Detail: inputDetail(ie),
			Errors: ie.Fields(),
		})
	case errors.Is(err, domain.ErrSessionNotFound):
		writeProblem(w, http.StatusNotFound, "Session not found", "This booking has expired. Please start again.")
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "Day trip not found")
	case errors.Is(err, domain.ErrPayment):
		observability.ObserveBooking("payment_failed")
		writeProblem(w, http.StatusPaymentRequired, "Payment failed", "Payment failed. Please try again.")
	case errors.Is(err, domain.ErrInvalidTransition):
		writeProblem(w, http.StatusConflict, "Conflict", err.Error())
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("booking session request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "Something went wrong. Please try again.")
	}
}

// inputDetail is the field list without the error prefix, e.g. "date: select a date".
func inputDetail(ie *domain.InputError) string {
	return strings.TrimPrefix(ie.Error(), "invalid input: ")
}

func badBody(w http.ResponseWriter) {
	writeProblem(w, http.StatusBadRequest, "Bad Request", "invalid request body")
}

// respond writes the wizard on success and the mapped error otherwise.
func respond(w http.ResponseWriter, r *http.Request, wz *app.Wizard, err error) {
	if err != nil {
		writeFlowError(w, r, err)
		return
	}
	writeSession(w, http.StatusOK, wz)
}

func (h *Handlers) openSession(w http.ResponseWriter, r *http.Request) {
	var req openRequest
	if err := decodeJSON(r, &req); err != nil {
		badBody(w)
		return
	}
	if strings.TrimSpace(req.TripSlug) == "" {
		ie := domain.NewInputError()
		ie.Add("tripSlug", "Choose a day trip.")
		writeFlowError(w, r, ie)
		return
	}
	wz, err := h.Flow.Open(r.Context(), req.TripSlug)
	if err != nil {
		writeFlowError(w, r, err)
		return
	}
	writeSession(w, http.StatusCreated, wz)
}

func (h *Handlers) getSession(w http.ResponseWriter, r *http.Request) {
	wz, err := h.Flow.Get(r.Context(), chi.URLParam(r, "id"))
	respond(w, r, wz, err)
}

func (h *Handlers) closeSession(w http.ResponseWriter, r *http.Request) {
	if err := h.Flow.Close(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeFlowError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"closed": true})
}

func (h *Handlers) setTrip(w http.ResponseWriter, r *http.Request) {
	var req tripRequest
	if err := decodeJSON(r, &req); err != nil {
		badBody(w)
		return
	}
	wz, err := h.Flow.SetDateAndGuests(r.Context(), chi.URLParam(r, "id"), req.Date, req.Guests)
	respond(w, r, wz, err)
}

func (h *Handlers) setAddons(w http.ResponseWriter, r *http.Request) {
	var req addonsRequest
	if err := decodeJSON(r, &req); err != nil {
		badBody(w)
		return
	}
	wz, err := h.Flow.SetAddons(r.Context(), chi.URLParam(r, "id"), req.AddonIDs)
	respond(w, r, wz, err)
}

func (h *Handlers) setContact(w http.ResponseWriter, r *http.Request) {
	var c app.Contact
	if err := decodeJSON(r, &c); err != nil {
		badBody(w)
		return
	}
	wz, err := h.Flow.SetContact(r.Context(), chi.URLParam(r, "id"), c)
	respond(w, r, wz, err)
}

func (h *Handlers) next(w http.ResponseWriter, r *http.Request) {
	wz, err := h.Flow.Next(r.Context(), chi.URLParam(r, "id"))
	respond(w, r, wz, err)
}

func (h *Handlers) back(w http.ResponseWriter, r *http.Request) {
	wz, err := h.Flow.Back(r.Context(), chi.URLParam(r, "id"))
	respond(w, r, wz, err)
}

func (h *Handlers) createOrder(w http.ResponseWriter, r *http.Request) {
	wz, err := h.Flow.CreateOrder(r.Context(), chi.URLParam(r, "id"))
	respond(w, r, wz, err)
}

func (h *Handlers) capture(w http.ResponseWriter, r *http.Request) {
	var req captureRequest
	if err := decodeJSON(r, &req); err != nil {
		badBody(w)
		return
	}
	wz, err := h.Flow.Capture(r.Context(), chi.URLParam(r, "id"), req.OrderID)
	if err == nil {
		observability.ObserveBooking("recorded")
	}
	respond(w, r, wz, err)
}

func (h *Handlers) submit(w http.ResponseWriter, r *http.Request) {
	wz, err := h.Flow.Submit(r.Context(), chi.URLParam(r, "id"))
	if err == nil {
		observability.ObserveBooking("recorded")
	}
	respond(w, r, wz, err)
}
