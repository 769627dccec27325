package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"slow_travel/internal/app"
	"slow_travel/internal/presentation"
)

const maxBodyBytes = 64 << 10

type Handlers struct {
	Content    *app.ContentService
	Flow       *app.BookingFlow
	Bookings   *app.BookingService
	Newsletter *app.NewsletterService
	Sitemap    *app.SitemapService
	Views      *presentation.Renderer
	Site       presentation.Site
	Now        func() time.Time
}

func (h *Handlers) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

type problem struct {
	Type   string              `json:"type"`
	Title  string              `json:"title"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
	// TransactionID is set when money was taken but the booking was not written.
	TransactionID string `json:"transactionId,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/robots.txt", h.robots)
	s.mux.Get("/sitemap.xml", h.sitemap)

	s.mux.Group(func(r chi.Router) {
		r.Use(NoStore)
		r.Get("/", h.home)
		r.Get("/places", h.regions)
		r.Get("/places/{region}", h.region)
		r.Get("/destination/{slug}", h.destination)
		r.Get("/place/{slug}", h.place)
		r.Get("/day-trips", h.dayTrips)
		r.Get("/day-trips/{slug}", h.dayTrip)
		r.Get("/journeys", h.journeys)
		r.Get("/journeys/{slug}", h.journey)
		r.Post("/newsletter", h.newsletterForm)
		r.Get("/newsletter/unsubscribe", h.unsubscribe)
	})

	s.mux.Route("/api", func(r chi.Router) {
		r.Use(NoStore)
		r.Get("/day-trips", h.apiDayTrips)
		r.Get("/day-trips/{slug}", h.apiDayTrip)
		r.Post("/day-trip-bookings", h.apiCreateBooking)
		r.Get("/journeys", h.apiJourneys)
		r.Post("/newsletter", h.apiNewsletter)

		r.Route("/booking-sessions", func(r chi.Router) {
			r.Post("/", h.openSession)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.getSession)
				r.Delete("/", h.closeSession)
				r.Put("/trip", h.setTrip)
				r.Put("/addons", h.setAddons)
				r.Put("/contact", h.setContact)
				r.Post("/next", h.next)
				r.Post("/back", h.back)
				r.Post("/payment/order", h.createOrder)
				r.Post("/payment/capture", h.capture)
				r.Post("/payment/submit", h.submit)
			})
		})
	})

	s.mux.NotFound(h.notFound)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	writeProblemBody(w, problem{Title: title, Status: status, Detail: detail})
}

func writeProblemBody(w http.ResponseWriter, p problem) {
	p.Type = "about:blank"
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeETagJSON answers 304 when the client already holds this exact payload.
// The payload is still rebuilt from the sheet on every request.
func writeETagJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "could not encode response")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("write body failed")
	}
}

// decodeJSON reads a small JSON body into dst. An empty body leaves dst untouched.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
