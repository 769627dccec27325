package domain

// Region is the top of the place hierarchy (cities, mountains, coast, desert).
type Region struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Subtitle    string `json:"subtitle"`
	HeroImage   string `json:"heroImage"`
	Description string `json:"description"`
	Order       int    `json:"order"`
}

// Destination belongs to one or more regions; the first listed region is the primary one.
type Destination struct {
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Subtitle    string   `json:"subtitle"`
	Regions     []string `json:"regions"`
	HeroImage   string   `json:"heroImage"`
	HeroCaption string   `json:"heroCaption"`
	Excerpt     string   `json:"excerpt"`
	Body        string   `json:"body"`
	Published   bool     `json:"published"`
	Featured    bool     `json:"featured"`
	Order       int      `json:"order"`
}

// PrimaryRegion returns the first region slug, or "" when none is set.
func (d Destination) PrimaryRegion() string {
	if len(d.Regions) == 0 {
		return ""
	}
	return d.Regions[0]
}

type Place struct {
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Destination  string   `json:"destination"`
	Category     string   `json:"category"`
	Address      string   `json:"address"`
	OpeningHours string   `json:"openingHours"`
	Fees         string   `json:"fees"`
	Notes        string   `json:"notes"`
	HeroImage    string   `json:"heroImage"`
	HeroCaption  string   `json:"heroCaption"`
	Excerpt      string   `json:"excerpt"`
	Body         string   `json:"body"`
	Sources      []string `json:"sources"`
	Tags         []string `json:"tags"`
	Published    bool     `json:"published"`
	Featured     bool     `json:"featured"`
	Order        int      `json:"order"`
}

type PlaceImage struct {
	PlaceSlug string `json:"placeSlug"`
	Order     int    `json:"order"`
	URL       string `json:"url"`
	Caption   string `json:"caption"`
}

type DayTrip struct {
	Slug             string   `json:"slug"`
	RouteID          string   `json:"routeId"`
	Title            string   `json:"title"`
	ShortDescription string   `json:"shortDescription"`
	DurationHours    int      `json:"durationHours"`
	PriceMAD         float64  `json:"priceMAD"`
	PriceEUR         float64  `json:"priceEUR"`
	DepartureCity    string   `json:"departureCity"`
	Category         string   `json:"category"`
	HeroImage        string   `json:"heroImage"`
	Includes         []string `json:"includes"`
	Excludes         []string `json:"excludes"`
	MeetingPoint     string   `json:"meetingPoint"`
	Published        bool     `json:"-"`
}

// RouteNarrative is the long-form route description a day trip points at via RouteID.
type RouteNarrative struct {
	RouteID    string `json:"-"`
	Narrative  string `json:"narrative"`
	FromCity   string `json:"fromCity"`
	ToCity     string `json:"toCity"`
	ViaCities  string `json:"viaCities"`
	TravelTime string `json:"travelTime"`
	Activities string `json:"activities"`
	Difficulty string `json:"difficulty"`
	Region     string `json:"region"`
	RouteImage string `json:"routeImage"`
}

// DayTripDetail is a day trip joined with its route narrative.
type DayTripDetail struct {
	DayTrip
	RouteNarrative
}

type Addon struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	PriceMAD    float64  `json:"priceMAD"`
	PriceEUR    float64  `json:"priceEUR"`
	AppliesTo   []string `json:"appliesTo,omitempty"`
	Published   bool     `json:"-"`
}

// AppliesToTrip reports whether the add-on may be attached to the given day trip.
func (a Addon) AppliesToTrip(slug string) bool {
	for _, s := range a.AppliesTo {
		if s == slug {
			return true
		}
	}
	return false
}

type Journey struct {
	Slug         string   `json:"slug"`
	Title        string   `json:"title"`
	Duration     string   `json:"duration"`
	Description  string   `json:"description"`
	HeroImage    string   `json:"heroImage"`
	Destinations []string `json:"destinations"`
	Published    bool     `json:"-"`
}

type Setting struct {
	Key   string
	Value string
}
