package app

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

type ChangeFreq string

const (
	Weekly  ChangeFreq = "weekly"
	Monthly ChangeFreq = "monthly"
)

type SitemapEntry struct {
	Loc        string
	LastMod    time.Time
	ChangeFreq ChangeFreq
	Priority   float64
}

type staticPage struct {
	path     string
	freq     ChangeFreq
	priority float64
}

// staticPages are the fixed routes this server serves.
var staticPages = []staticPage{
	{"", Weekly, 1.0},
	{"/journeys", Weekly, 0.9},
	{"/day-trips", Weekly, 0.9},
	{"/places", Weekly, 0.9},
}

// SitemapService lists every public URL of the site.
type SitemapService struct {
	content *ContentService
	siteURL string
	now     func() time.Time
}

func NewSitemapService(c *ContentService, siteURL string) *SitemapService {
	return &SitemapService{content: c, siteURL: strings.TrimRight(siteURL, "/"), now: time.Now}
}

// Entries returns the static pages followed by journeys, day trips, regions,
// destinations and places. A source that cannot be read contributes nothing.
func (s *SitemapService) Entries(ctx context.Context) []SitemapEntry {
	now := s.now().UTC()
	entry := func(path string, freq ChangeFreq, prio float64) SitemapEntry {
		return SitemapEntry{Loc: s.siteURL + path, LastMod: now, ChangeFreq: freq, Priority: prio}
	}

	var journeys, trips, regions, destinations, places []SitemapEntry
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for _, j := range s.content.ListJourneys(gctx) {
			journeys = append(journeys, entry("/journeys/"+j.Slug, Weekly, 0.8))
		}
		return nil
	})
	g.Go(func() error {
		for _, t := range s.content.ListDayTrips(gctx) {
			trips = append(trips, entry("/day-trips/"+t.Slug, Weekly, 0.8))
		}
		return nil
	})
	g.Go(func() error {
		for _, r := range s.content.ListRegions(gctx) {
			regions = append(regions, entry("/places/"+r.Slug, Weekly, 0.8))
		}
		return nil
	})
	g.Go(func() error {
		for _, d := range s.content.ListDestinations(gctx) {
			destinations = append(destinations, entry("/destination/"+d.Slug, Weekly, 0.7))
		}
		return nil
	})
	g.Go(func() error {
		for _, p := range s.content.ListPlaces(gctx) {
			places = append(places, entry("/place/"+p.Slug, Monthly, 0.6))
		}
		return nil
	})
	_ = g.Wait()

	out := make([]SitemapEntry, 0, len(staticPages)+len(journeys)+len(trips)+len(regions)+len(destinations)+len(places))
	for _, p := range staticPages {
		out = append(out, entry(p.path, p.freq, p.priority))
	}
	for _, part := range [][]SitemapEntry{journeys, trips, regions, destinations, places} {
		out = append(out, part...)
	}
	return out
}

// RobotsTxt is served at /robots.txt.
func (s *SitemapService) RobotsTxt() string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	for _, p := range []string{"/admin/", "/api/", "/client/", "/proposal/"} {
		b.WriteString("Disallow: " + p + "\n")
	}
	b.WriteString("\nSitemap: " + s.siteURL + "/sitemap.xml\n")
	return b.String()
}
