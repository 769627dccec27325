package presentation

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"slow_travel/internal/domain"
)

// Site is the per-brand identity every page is rendered with.
type Site struct {
	Name           string
	URL            string
	Email          string
	Locality       string
	Country        string // ISO code
	CountryName    string
	PayPalClientID string
}

// Meta is the head metadata of one page.
type Meta struct {
	Title       string
	Description string
	Canonical   string
	Image       string
	Type        string // og:type
	Keywords    []string
	NoIndex     bool
}

// FullTitle is "<title> | <site>", or the site name alone on the home page.
func (m Meta) FullTitle(site Site) string {
	if m.Title == "" || m.Title == site.Name {
		return site.Name
	}
	return m.Title + " | " + site.Name
}

func (m Meta) OGType() string {
	if m.Type == "" {
		return "website"
	}
	return m.Type
}

func (s Site) abs(path string) string { return s.URL + path }

/********** page metadata **********/

func HomeMeta(s Site) Meta {
	return Meta{
		Title:       s.Name,
		Description: fmt.Sprintf("Thoughtful private journeys across %s, designed for travellers who prefer depth over speed.", s.CountryName),
		Canonical:   s.URL,
		Image:       s.abs("/og-image.jpg"),
	}
}

func RegionMeta(s Site, r domain.Region) Meta {
	return Meta{
		Title:       r.Title,
		Description: firstNonEmpty(r.Subtitle, r.Description, "Explore "+r.Title+" with "+s.Name+"."),
		Canonical:   s.abs("/places/" + r.Slug),
		Image:       r.HeroImage,
	}
}

func DestinationMeta(s Site, d domain.Destination) Meta {
	return Meta{
		Title:       d.Title,
		Description: firstNonEmpty(d.Excerpt, d.Subtitle, "Discover "+d.Title+" with "+s.Name+"."),
		Canonical:   s.abs("/destination/" + d.Slug),
		Image:       d.HeroImage,
		Type:        "article",
	}
}

func JourneyMeta(s Site, j domain.Journey) Meta {
	return Meta{
		Title:       j.Title,
		Description: firstNonEmpty(j.Description, j.Title+" with "+s.Name+"."),
		Canonical:   s.abs("/journeys/" + j.Slug),
		Image:       j.HeroImage,
		Type:        "article",
	}
}

func PlaceMeta(s Site, p domain.Place) Meta {
	return Meta{
		Title:       p.Title,
		Description: firstNonEmpty(p.Excerpt, "Discover "+p.Title+" with "+s.Name+"."),
		Canonical:   s.abs("/place/" + p.Slug),
		Image:       p.HeroImage,
		Type:        "article",
		Keywords:    p.Tags,
	}
}

func DayTripMeta(s Site, t domain.DayTrip) Meta {
	return Meta{
		Title:       t.Title,
		Description: firstNonEmpty(t.ShortDescription, fmt.Sprintf("A private day trip from %s.", t.DepartureCity)),
		Canonical:   s.abs("/day-trips/" + t.Slug),
		Image:       t.HeroImage,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

/********** structured data **********/

type ldThing = map[string]any

// TravelAgency describes the brand itself; it goes on every page.
func TravelAgency(s Site, journeys []domain.Journey) ldThing {
	ld := ldThing{
		"@context":    "https://schema.org",
		"@type":       "TravelAgency",
		"name":        s.Name,
		"description": HomeMeta(s).Description,
		"url":         s.URL,
		"image":       s.abs("/og-image.jpg"),
		"priceRange":  "€€€",
		"address": ldThing{
			"@type":           "PostalAddress",
			"addressLocality": s.Locality,
			"addressCountry":  s.Country,
		},
		"areaServed": ldThing{"@type": "Country", "name": s.CountryName},
	}
	if s.Email != "" {
		ld["email"] = s.Email
	}
	if len(journeys) > 0 {
		offers := make([]ldThing, 0, len(journeys))
		for _, j := range journeys {
			offers = append(offers, ldThing{
				"@type": "Offer",
				"itemOffered": ldThing{
					"@type":       "TouristTrip",
					"name":        j.Title,
					"description": j.Description,
				},
			})
		}
		ld["hasOfferCatalog"] = ldThing{
			"@type":           "OfferCatalog",
			"name":            s.CountryName + " Private Journeys",
			"itemListElement": offers,
		}
	}
	return ld
}

func TouristTrip(s Site, t domain.DayTrip) ldThing {
	ld := ldThing{
		"@context":    "https://schema.org",
		"@type":       "TouristTrip",
		"name":        t.Title,
		"description": t.ShortDescription,
		"url":         s.abs("/day-trips/" + t.Slug),
		"provider":    ldThing{"@type": "TravelAgency", "name": s.Name, "url": s.URL},
		"offers": ldThing{
			"@type":         "Offer",
			"price":         fmt.Sprintf("%.2f", t.PriceEUR),
			"priceCurrency": "EUR",
			"availability":  "https://schema.org/InStock",
		},
	}
	if t.HeroImage != "" {
		ld["image"] = t.HeroImage
	}
	if t.DurationHours > 0 {
		ld["duration"] = fmt.Sprintf("PT%dH", t.DurationHours)
	}
	return ld
}

// PlaceArticle marks a place page up as an article about a tourist attraction.
func PlaceArticle(s Site, p domain.Place) ldThing {
	url := s.abs("/place/" + p.Slug)
	ld := ldThing{
		"@context":       "https://schema.org",
		"@type":          "Article",
		"headline":       p.Title,
		"description":    p.Excerpt,
		"articleSection": firstNonEmpty(p.Category, "Places"),
		"publisher": ldThing{
			"@type": "Organization",
			"name":  s.Name,
			"logo":  ldThing{"@type": "ImageObject", "url": s.abs("/favicon.svg")},
		},
		"mainEntityOfPage": ldThing{"@type": "WebPage", "@id": url},
		"about": ldThing{
			"@type":   "TouristAttraction",
			"name":    p.Title,
			"url":     url,
			"address": p.Address,
		},
	}
	if p.HeroImage != "" {
		ld["image"] = p.HeroImage
	}
	if n := len(strings.Fields(p.Body)); n > 0 {
		ld["wordCount"] = n
	}
	return ld
}

// Crumb is one step of a breadcrumb trail; Path is site relative.
type Crumb struct {
	Name string
	Path string
}

func Breadcrumbs(s Site, crumbs ...Crumb) ldThing {
	items := make([]ldThing, 0, len(crumbs))
	for i, c := range crumbs {
		items = append(items, ldThing{
			"@type":    "ListItem",
			"position": i + 1,
			"name":     c.Name,
			"item":     s.abs(c.Path),
		})
	}
	return ldThing{
		"@context":        "https://schema.org",
		"@type":           "BreadcrumbList",
		"itemListElement": items,
	}
}

// JSONLD serializes v for a <script type="application/ld+json"> block.
// encoding/json escapes <, > and & so the payload cannot close the script element.
func JSONLD(v any) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}
