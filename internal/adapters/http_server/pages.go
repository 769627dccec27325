package httpserver

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"slow_travel/internal/app"
	"slow_travel/internal/domain"
	"slow_travel/internal/presentation"
)

const relatedJourneyLimit = 2

func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, page string, v presentation.View) {
	v.Site = h.Site
	if v.Meta.Canonical == "" {
		v.Meta.Canonical = h.Site.URL + r.URL.Path
	}
	var buf bytes.Buffer
	if err := h.Views.Render(&buf, page, v); err != nil {
		log.Error().Err(err).Str("page", page).Msg("render page failed")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error().Err(err).Str("page", page).Msg("write page failed")
	}
}

func (h *Handlers) notFound(w http.ResponseWriter, r *http.Request) {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		writeProblem(w, http.StatusNotFound, "Not Found", "no such endpoint")
		return
	}
	h.render(w, r, http.StatusNotFound, presentation.PageNotFound, presentation.View{
		Meta: presentation.Meta{Title: "Not found", NoIndex: true},
		Data: presentation.MessageData{},
	})
}

func (h *Handlers) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	journeys := h.Content.ListJourneys(ctx)
	h.render(w, r, http.StatusOK, presentation.PageHome, presentation.View{
		Meta:    presentation.HomeMeta(h.Site),
		Schemas: []any{presentation.TravelAgency(h.Site, journeys)},
		Data: presentation.HomeData{
			Regions:  h.Content.ListRegions(ctx),
			Featured: h.Content.FeaturedPlaces(ctx),
			Journeys: journeys,
		},
	})
}

func (h *Handlers) regions(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, presentation.PageRegions, presentation.View{
		Meta: presentation.Meta{
			Title:       "Places",
			Description: "Regions, cities and landscapes of " + h.Site.CountryName + ", and the places worth slowing down for.",
		},
		Schemas: []any{presentation.Breadcrumbs(h.Site,
			presentation.Crumb{Name: "Home", Path: "/"},
			presentation.Crumb{Name: "Places", Path: "/places"},
		)},
		Data: presentation.RegionsData{Regions: h.Content.ListRegions(r.Context())},
	})
}

func (h *Handlers) region(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	region, ok := h.Content.RegionBySlug(ctx, chi.URLParam(r, "region"))
	if !ok {
		h.notFound(w, r)
		return
	}
	h.render(w, r, http.StatusOK, presentation.PageRegion, presentation.View{
		Meta: presentation.RegionMeta(h.Site, region),
		Schemas: []any{presentation.Breadcrumbs(h.Site,
			presentation.Crumb{Name: "Home", Path: "/"},
			presentation.Crumb{Name: "Places", Path: "/places"},
			presentation.Crumb{Name: region.Title, Path: "/places/" + region.Slug},
		)},
		Data: presentation.RegionData{
			Region:       region,
			Destinations: h.Content.DestinationsOfRegion(ctx, region.Slug),
		},
	})
}

func (h *Handlers) destination(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	d, ok := h.Content.DestinationBySlug(ctx, chi.URLParam(r, "slug"))
	if !ok {
		h.notFound(w, r)
		return
	}
	data := presentation.DestinationData{
		Destination: d,
		Places:      h.Content.PlacesOfDestination(ctx, d.Slug),
		Journeys:    h.Content.RelatedJourneys(ctx, d.Slug, relatedJourneyLimit),
	}
	crumbs := []presentation.Crumb{{Name: "Home", Path: "/"}, {Name: "Places", Path: "/places"}}
	if slug := d.PrimaryRegion(); slug != "" {
		data.Region, data.HasRegion = h.Content.RegionBySlug(ctx, slug)
		if data.HasRegion {
			crumbs = append(crumbs, presentation.Crumb{Name: data.Region.Title, Path: "/places/" + data.Region.Slug})
		}
	}
	crumbs = append(crumbs, presentation.Crumb{Name: d.Title, Path: "/destination/" + d.Slug})

	h.render(w, r, http.StatusOK, presentation.PageDestination, presentation.View{
		Meta:    presentation.DestinationMeta(h.Site, d),
		Schemas: []any{presentation.Breadcrumbs(h.Site, crumbs...)},
		Data:    data,
	})
}

func (h *Handlers) place(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, ok := h.Content.PlaceBySlug(ctx, chi.URLParam(r, "slug"))
	if !ok {
		h.notFound(w, r)
		return
	}
	base := "/place/" + p.Slug
	data := presentation.PlaceData{
		Place:   p,
		Gallery: presentation.NewGallery(base, h.Content.ListPlaceImages(ctx, p.Slug), r.URL.Query().Get("photo")),
	}
	crumbs := []presentation.Crumb{{Name: "Home", Path: "/"}, {Name: "Places", Path: "/places"}}
	if p.Destination != "" {
		data.Destination, data.HasDestination = h.Content.DestinationBySlug(ctx, p.Destination)
		if data.HasDestination {
			crumbs = append(crumbs, presentation.Crumb{Name: data.Destination.Title, Path: "/destination/" + data.Destination.Slug})
		}
	}
	crumbs = append(crumbs, presentation.Crumb{Name: p.Title, Path: base})

	meta := presentation.PlaceMeta(h.Site, p)
	if data.Gallery.Lightbox.IsOpen {
		// ?photo= views are the same page
		meta.Canonical = h.Site.URL + base
	}
	h.render(w, r, http.StatusOK, presentation.PagePlace, presentation.View{
		Meta:    meta,
		Schemas: []any{presentation.PlaceArticle(h.Site, p), presentation.Breadcrumbs(h.Site, crumbs...)},
		Data:    data,
	})
}

func (h *Handlers) dayTrips(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	h.render(w, r, http.StatusOK, presentation.PageDayTrips, presentation.View{
		Meta: presentation.Meta{
			Title:       "Day Trips",
			Description: "Private day trips from " + h.Site.Locality + " with your own driver.",
		},
		Data: presentation.DayTripsData{
			HeroImage: app.DriveThumbnailURL(h.Content.Setting(ctx, domain.SettingDayTripsHero)),
			Trips:     h.Content.ListDayTrips(ctx),
		},
	})
}

func (h *Handlers) dayTrip(w http.ResponseWriter, r *http.Request) {
	trip, addons, ok := h.Content.DayTripBySlug(r.Context(), chi.URLParam(r, "slug"))
	if !ok {
		h.notFound(w, r)
		return
	}
	h.render(w, r, http.StatusOK, presentation.PageDayTrip, presentation.View{
		Meta: presentation.DayTripMeta(h.Site, trip.DayTrip),
		Schemas: []any{
			presentation.TouristTrip(h.Site, trip.DayTrip),
			presentation.Breadcrumbs(h.Site,
				presentation.Crumb{Name: "Home", Path: "/"},
				presentation.Crumb{Name: "Day Trips", Path: "/day-trips"},
				presentation.Crumb{Name: trip.Title, Path: "/day-trips/" + trip.Slug},
			),
		},
		Data: presentation.DayTripData{
			Trip:         trip,
			Addons:       addons,
			EarliestDate: app.EarliestTripDate(h.now()).Format(app.DateLayout),
			MinGuests:    app.MinGuests,
			MaxGuests:    app.MaxGuests,
		},
	})
}

func (h *Handlers) journeys(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, presentation.PageJourneys, presentation.View{
		Meta: presentation.Meta{
			Title:       "Journeys",
			Description: "Multi-day journeys through " + h.Site.CountryName + ", planned around the places in between.",
		},
		Schemas: []any{presentation.Breadcrumbs(h.Site,
			presentation.Crumb{Name: "Home", Path: "/"},
			presentation.Crumb{Name: "Journeys", Path: "/journeys"},
		)},
		Data: presentation.JourneysData{Journeys: h.Content.ListJourneys(r.Context())},
	})
}

func (h *Handlers) journey(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	j, ok := h.Content.JourneyBySlug(ctx, chi.URLParam(r, "slug"))
	if !ok {
		h.notFound(w, r)
		return
	}
	data := presentation.JourneyData{Journey: j}
	for _, name := range j.Destinations {
		if d, ok := h.Content.DestinationBySlug(ctx, name); ok {
			data.Destinations = append(data.Destinations, d)
		} else {
			data.Stops = append(data.Stops, name)
		}
	}
	h.render(w, r, http.StatusOK, presentation.PageJourney, presentation.View{
		Meta: presentation.JourneyMeta(h.Site, j),
		Schemas: []any{presentation.Breadcrumbs(h.Site,
			presentation.Crumb{Name: "Home", Path: "/"},
			presentation.Crumb{Name: "Journeys", Path: "/journeys"},
			presentation.Crumb{Name: j.Title, Path: "/journeys/" + j.Slug},
		)},
		Data: data,
	})
}

func (h *Handlers) newsletterForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		h.renderNewsletter(w, r, http.StatusBadRequest, app.NewsletterResult{Message: "Please enter a valid email address."})
		return
	}
	res := h.Newsletter.Subscribe(r.Context(), r.PostForm.Get("email"), r.PostForm.Get("brand"))
	h.renderNewsletter(w, r, newsletterStatus(res), res)
}

func (h *Handlers) unsubscribe(w http.ResponseWriter, r *http.Request) {
	res := h.Newsletter.Unsubscribe(r.Context(), r.URL.Query().Get("token"))
	h.renderNewsletter(w, r, newsletterStatus(res), res)
}

func newsletterStatus(res app.NewsletterResult) int {
	switch {
	case res.Success:
		return http.StatusOK
	case res.Internal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

func (h *Handlers) renderNewsletter(w http.ResponseWriter, r *http.Request, status int, res app.NewsletterResult) {
	heading := "Newsletter"
	if !res.Success {
		heading = "Something is not right"
	}
	h.render(w, r, status, presentation.PageMessage, presentation.View{
		Meta: presentation.Meta{Title: "Newsletter", NoIndex: true},
		Data: presentation.MessageData{Heading: heading, Message: res.Message, OK: res.Success},
	})
}
