package app

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"slow_travel/internal/domain"
)

// ContentService reads the content spreadsheet. Every call re-fetches from the store.
//
// Reads never fail: a store error is logged and the caller sees an empty result,
// so a flaky spreadsheet degrades pages to "nothing here yet" instead of a 500.
type ContentService struct {
	store domain.TabStore
}

func NewContentService(s domain.TabStore) *ContentService {
	return &ContentService{store: s}
}

// Records returns the rows of tab keyed by its header row, or nil on any error.
func (s *ContentService) Records(ctx context.Context, tab string) []Record {
	return toRecords(s.values(ctx, tab))
}

// values fetches tab with its header row. Header drift is logged, not fatal:
// rows still map, with missing columns reading as "".
func (s *ContentService) values(ctx context.Context, tab string) [][]string {
	values, err := s.store.Values(ctx, tab)
	if err != nil {
		log.Error().Err(err).Str("tab", tab).Msg("fetch tab failed")
		return nil
	}
	if len(values) > 0 {
		if missing := domain.HeaderDrift(tab, values[0]); len(missing) > 0 {
			log.Warn().Str("tab", tab).Strs("missing", missing).Msg("tab header drifted")
		}
	}
	return values
}

func sortByOrder[T any](xs []T, order func(T) int) {
	slices.SortStableFunc(xs, func(a, b T) int { return cmp.Compare(order(a), order(b)) })
}

/********** regions **********/

func (s *ContentService) ListRegions(ctx context.Context) []domain.Region {
	recs := s.Records(ctx, domain.TabRegions)
	out := make([]domain.Region, 0, len(recs))
	for _, r := range recs {
		if reg := mapRegion(r); reg.Slug != "" {
			out = append(out, reg)
		}
	}
	sortByOrder(out, func(r domain.Region) int { return r.Order })
	return out
}

func (s *ContentService) RegionBySlug(ctx context.Context, slug string) (domain.Region, bool) {
	for _, r := range s.ListRegions(ctx) {
		if r.Slug == slug {
			return r, true
		}
	}
	return domain.Region{}, false
}

/********** destinations **********/

// ListDestinations returns published destinations in display order.
func (s *ContentService) ListDestinations(ctx context.Context) []domain.Destination {
	recs := s.Records(ctx, domain.TabDestinations)
	out := make([]domain.Destination, 0, len(recs))
	for _, r := range recs {
		if d := mapDestination(r); d.Published {
			out = append(out, d)
		}
	}
	sortByOrder(out, func(d domain.Destination) int { return d.Order })
	return out
}

func (s *ContentService) DestinationBySlug(ctx context.Context, slug string) (domain.Destination, bool) {
	for _, d := range s.ListDestinations(ctx) {
		if d.Slug == slug {
			return d, true
		}
	}
	return domain.Destination{}, false
}

// DestinationsOfRegion matches regionSlug against every region a destination lists.
func (s *ContentService) DestinationsOfRegion(ctx context.Context, regionSlug string) []domain.Destination {
	var out []domain.Destination
	for _, d := range s.ListDestinations(ctx) {
		if containsFold(d.Regions, regionSlug) {
			out = append(out, d)
		}
	}
	return out
}

/********** places **********/

func (s *ContentService) ListPlaces(ctx context.Context) []domain.Place {
	recs := s.Records(ctx, domain.TabPlaces)
	out := make([]domain.Place, 0, len(recs))
	for _, r := range recs {
		if p := mapPlace(r); p.Published {
			out = append(out, p)
		}
	}
	sortByOrder(out, func(p domain.Place) int { return p.Order })
	return out
}

func (s *ContentService) PlaceBySlug(ctx context.Context, slug string) (domain.Place, bool) {
	for _, p := range s.ListPlaces(ctx) {
		if p.Slug == slug {
			return p, true
		}
	}
	return domain.Place{}, false
}

func (s *ContentService) PlacesOfDestination(ctx context.Context, destinationSlug string) []domain.Place {
	var out []domain.Place
	for _, p := range s.ListPlaces(ctx) {
		if strings.EqualFold(p.Destination, destinationSlug) {
			out = append(out, p)
		}
	}
	return out
}

func (s *ContentService) FeaturedPlaces(ctx context.Context) []domain.Place {
	var out []domain.Place
	for _, p := range s.ListPlaces(ctx) {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// ListPlaceImages returns the gallery of one place; rows without a URL are skipped.
func (s *ContentService) ListPlaceImages(ctx context.Context, placeSlug string) []domain.PlaceImage {
	var out []domain.PlaceImage
	values := s.values(ctx, domain.TabPlaceImages)
	if len(values) < 2 {
		return nil
	}
	for _, row := range values[1:] {
		img := mapPlaceImage(row)
		if img.PlaceSlug == placeSlug && img.URL != "" {
			out = append(out, img)
		}
	}
	sortByOrder(out, func(i domain.PlaceImage) int { return i.Order })
	return out
}

/********** day trips & add-ons **********/

func (s *ContentService) ListDayTrips(ctx context.Context) []domain.DayTrip {
	recs := s.Records(ctx, domain.TabDayTrips)
	out := make([]domain.DayTrip, 0, len(recs))
	for _, r := range recs {
		if t := mapDayTrip(r); t.Published {
			out = append(out, t)
		}
	}
	return out
}

func (s *ContentService) ListAddons(ctx context.Context) []domain.Addon {
	return publishedAddons(s.Records(ctx, domain.TabAddons))
}

// AddonsFor lists the published add-ons that can be attached to a day trip.
func (s *ContentService) AddonsFor(ctx context.Context, tripSlug string) []domain.Addon {
	return addonsFor(publishedAddons(s.Records(ctx, domain.TabAddons)), tripSlug)
}

func publishedAddons(recs []Record) []domain.Addon {
	out := make([]domain.Addon, 0, len(recs))
	for _, r := range recs {
		if a := mapAddon(r); a.Published {
			out = append(out, a)
		}
	}
	return out
}

func addonsFor(all []domain.Addon, tripSlug string) []domain.Addon {
	var out []domain.Addon
	for _, a := range all {
		if a.AppliesToTrip(tripSlug) {
			out = append(out, a)
		}
	}
	return out
}

// DayTripBySlug loads a published day trip with its route narrative and add-ons.
// The three tabs are fetched concurrently.
func (s *ContentService) DayTripBySlug(ctx context.Context, slug string) (domain.DayTripDetail, []domain.Addon, bool) {
	var trips, addons, library []Record
	var g errgroup.Group
	g.Go(func() error { trips = s.Records(ctx, domain.TabDayTrips); return nil })
	g.Go(func() error { addons = s.Records(ctx, domain.TabAddons); return nil })
	g.Go(func() error { library = s.Records(ctx, domain.TabContentLibrary); return nil })
	_ = g.Wait()

	var detail domain.DayTripDetail
	found := false
	for _, r := range trips {
		if t := mapDayTrip(r); t.Slug == slug && t.Published {
			detail.DayTrip, found = t, true
			break
		}
	}
	if !found {
		return domain.DayTripDetail{}, nil, false
	}

	detail.RouteNarrative = domain.RouteNarrative{FromCity: "Marrakech"}
	for _, r := range library {
		if rn := mapRouteNarrative(r); rn.RouteID != "" && rn.RouteID == detail.DayTrip.RouteID {
			detail.RouteNarrative = rn
			break
		}
	}
	return detail, addonsFor(publishedAddons(addons), slug), true
}

/********** settings & journeys **********/

// Setting returns a Website_Settings value, "" when the key is absent.
func (s *ContentService) Setting(ctx context.Context, key string) string {
	for _, r := range s.Records(ctx, domain.TabSettings) {
		if st := mapSetting(r); st.Key == key {
			return st.Value
		}
	}
	return ""
}

func (s *ContentService) ListJourneys(ctx context.Context) []domain.Journey {
	recs := s.Records(ctx, domain.TabJourneys)
	out := make([]domain.Journey, 0, len(recs))
	for _, r := range recs {
		if j := mapJourney(r); j.Published && j.Slug != "" {
			out = append(out, j)
		}
	}
	return out
}

func (s *ContentService) JourneyBySlug(ctx context.Context, slug string) (domain.Journey, bool) {
	for _, j := range s.ListJourneys(ctx) {
		if strings.EqualFold(j.Slug, slug) {
			return j, true
		}
	}
	return domain.Journey{}, false
}

// RelatedJourneys returns at most limit journeys passing through destination.
func (s *ContentService) RelatedJourneys(ctx context.Context, destination string, limit int) []domain.Journey {
	var out []domain.Journey
	for _, j := range s.ListJourneys(ctx) {
		if len(out) == limit {
			break
		}
		if containsFold(j.Destinations, destination) {
			out = append(out, j)
		}
	}
	return out
}

/********** write path **********/

// AppendRecord appends one positional row to tab.
func (s *ContentService) AppendRecord(ctx context.Context, tab string, row []string) error {
	if err := s.store.Append(ctx, tab, [][]string{row}); err != nil {
		return fmt.Errorf("append to %s: %w", tab, err)
	}
	return nil
}

// UpdateRow overwrites the 1-based sheet row rowIndex. There is no version check:
// two writers resolving the same index will race and the last one wins.
func (s *ContentService) UpdateRow(ctx context.Context, tab string, rowIndex int, values []string) error {
	if err := s.store.UpdateRow(ctx, tab, rowIndex, values); err != nil {
		return fmt.Errorf("update %s row %d: %w", tab, rowIndex, err)
	}
	return nil
}

// NextSequentialID scans the id column of tab for ids starting with prefix and
// returns prefix followed by max+1, zero padded to three digits. Nothing is reserved,
// so concurrent callers can be handed the same id.
func (s *ContentService) NextSequentialID(ctx context.Context, prefix, tab string) string {
	highest := 0
	for _, r := range s.Records(ctx, tab) {
		id := r["id"]
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(id, prefix))
		if err != nil {
			continue
		}
		if n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s%03d", prefix, highest+1)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(strings.TrimSpace(v), s) {
			return true
		}
	}
	return false
}
