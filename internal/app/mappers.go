package app

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"slow_travel/internal/domain"
)

// Record is one spreadsheet row keyed by the tab's header row.
// It never leaves this package: mappers below turn it into typed domain values.
type Record map[string]string

/********** alias registries (single source of truth) **********/

// Some tabs were edited by hand over the years and carry either casing.
var journeyAliases = map[string][]string{
	"slug":         {"slug", "Slug"},
	"title":        {"title", "Title"},
	"duration":     {"duration", "Duration"},
	"description":  {"description", "Description"},
	"heroImage":    {"heroImage", "Hero_Image_URL", "hero_image"},
	"destinations": {"destinations", "Destinations"},
	"published":    {"published", "Published"},
}

var settingAliases = map[string][]string{
	"key":   {"Key", "key"},
	"value": {"Value", "value"},
}

/********** tiny helpers **********/

// OrderSentinel is the sort position of rows whose order cell is missing or not a number.
const OrderSentinel = 999

// ParseFlag reads a publish/featured cell. Only true, yes and 1 (any case) count.
func ParseFlag(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return true
	}
	return false
}

// ParseOrder reads an order cell, falling back to OrderSentinel. NaN, infinities
// and values outside the int range fall back too.
func ParseOrder(s string) int {
	f, ok := finite(s)
	if !ok || f >= math.MaxInt || f < math.MinInt {
		return OrderSentinel
	}
	return int(f)
}

// finite parses a decimal cell, rejecting NaN and ±Inf.
func finite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseFloat(s string) float64 {
	f, _ := finite(s)
	return f
}

func parseInt(s string) int {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, ok := finite(s); ok && f < math.MaxInt && f >= math.MinInt {
		return int(f)
	}
	return 0
}

// normalizeText turns the literal <br> the editors type into real line breaks.
func normalizeText(s string) string {
	return strings.ReplaceAll(s, "<br>", "\n")
}

// splitList splits on sep, trims items and drops empty ones.
func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

// firstNonEmptyAlias: first non-empty cell for a named alias set.
func firstNonEmptyAlias(r Record, aliases map[string][]string, key string) string {
	for _, h := range aliases[key] {
		if v := r[h]; v != "" {
			return v
		}
	}
	return ""
}

/********** drive URLs **********/

const driveThumbnailURL = "https://drive.google.com/thumbnail?id=%s&sz=w1600"

// Checked in order; the first pattern that matches supplies the file id.
var drivePatterns = []*regexp.Regexp{
	regexp.MustCompile(`/file/d/([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`[?&]id=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`uc\?.*id=([a-zA-Z0-9_-]+)`),
}

// DriveThumbnailURL rewrites Google Drive sharing links to a fixed-width thumbnail
// URL that can be embedded directly. Anything else is returned unchanged.
func DriveThumbnailURL(url string) string {
	if url == "" {
		return ""
	}
	for _, re := range drivePatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return fmt.Sprintf(driveThumbnailURL, m[1])
		}
	}
	return url
}

/********** row -> record **********/

// toRecords maps every data row onto the header row. Short rows are padded with "".
func toRecords(values [][]string) []Record {
	if len(values) < 2 {
		return nil
	}
	headers := values[0]
	out := make([]Record, 0, len(values)-1)
	for _, row := range values[1:] {
		rec := make(Record, len(headers))
		for i, h := range headers {
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}

/********** entity mappers **********/

func mapRegion(r Record) domain.Region {
	return domain.Region{
		Slug:        strings.TrimSpace(r["slug"]),
		Title:       r["title"],
		Subtitle:    normalizeText(r["subtitle"]),
		HeroImage:   DriveThumbnailURL(r["heroImage"]),
		Description: normalizeText(r["description"]),
		Order:       ParseOrder(r["order"]),
	}
}

func mapDestination(r Record) domain.Destination {
	return domain.Destination{
		Slug:        strings.TrimSpace(r["slug"]),
		Title:       r["title"],
		Subtitle:    normalizeText(r["subtitle"]),
		Regions:     splitList(r["region"], ","),
		HeroImage:   DriveThumbnailURL(r["heroImage"]),
		HeroCaption: normalizeText(r["heroCaption"]),
		Excerpt:     normalizeText(r["excerpt"]),
		Body:        normalizeText(r["body"]),
		Published:   ParseFlag(r["published"]),
		Featured:    ParseFlag(r["featured"]),
		Order:       ParseOrder(r["order"]),
	}
}

func mapPlace(r Record) domain.Place {
	return domain.Place{
		Slug:         strings.TrimSpace(r["slug"]),
		Title:        r["title"],
		Destination:  strings.TrimSpace(r["destination"]),
		Category:     r["category"],
		Address:      normalizeText(r["address"]),
		OpeningHours: normalizeText(r["opening_hours"]),
		Fees:         normalizeText(r["fees"]),
		Notes:        normalizeText(r["notes"]),
		HeroImage:    DriveThumbnailURL(r["heroImage"]),
		HeroCaption:  normalizeText(r["heroCaption"]),
		Excerpt:      normalizeText(r["excerpt"]),
		Body:         normalizeText(r["body"]),
		Sources:      splitList(r["sources"], ";;"),
		Tags:         splitList(r["tags"], ","),
		Published:    ParseFlag(r["published"]),
		Featured:     ParseFlag(r["featured"]),
		Order:        ParseOrder(r["order"]),
	}
}

// mapPlaceImage reads columns A..D by position; the header wording is free.
func mapPlaceImage(row []string) domain.PlaceImage {
	return domain.PlaceImage{
		PlaceSlug: strings.TrimSpace(cell(row, 0)),
		Order:     ParseOrder(cell(row, 1)),
		URL:       DriveThumbnailURL(strings.TrimSpace(cell(row, 2))),
		Caption:   cell(row, 3),
	}
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func mapDayTrip(r Record) domain.DayTrip {
	return domain.DayTrip{
		Slug:             strings.TrimSpace(r["Slug"]),
		RouteID:          r["Route_ID"],
		Title:            r["Title"],
		ShortDescription: normalizeText(r["Short_Description"]),
		DurationHours:    parseInt(r["Duration_Hours"]),
		PriceMAD:         parseFloat(r["Final_Price_MAD"]),
		PriceEUR:         parseFloat(r["Final_Price_EUR"]),
		DepartureCity:    orDefault(r["Departure_City"], "Marrakech"),
		Category:         r["Category"],
		HeroImage:        DriveThumbnailURL(r["Hero_Image_URL"]),
		Includes:         splitList(r["Includes"], "|"),
		Excludes:         splitList(r["Excludes"], "|"),
		MeetingPoint:     r["Meeting_Point"],
		Published:        ParseFlag(r["Published"]),
	}
}

func mapRouteNarrative(r Record) domain.RouteNarrative {
	return domain.RouteNarrative{
		RouteID:    r["Route_ID"],
		Narrative:  normalizeText(r["Route_Narrative"]),
		FromCity:   orDefault(r["From_City"], "Marrakech"),
		ToCity:     r["To_City"],
		ViaCities:  r["Via_Cities"],
		TravelTime: r["Travel_Time_Hours"],
		Activities: r["Activities"],
		Difficulty: r["Difficulty_Level"],
		Region:     r["Region"],
		RouteImage: DriveThumbnailURL(r["Image_URL_1"]),
	}
}

func mapAddon(r Record) domain.Addon {
	return domain.Addon{
		ID:          strings.TrimSpace(r["Addon_ID"]),
		Name:        r["Addon_Name"],
		Description: normalizeText(r["Description"]),
		PriceMAD:    parseFloat(r["Final_Price_MAD_PP"]),
		PriceEUR:    parseFloat(r["Final_Price_EUR_PP"]),
		AppliesTo:   splitList(r["Applies_To"], "|"),
		Published:   ParseFlag(r["Published"]),
	}
}

func mapJourney(r Record) domain.Journey {
	return domain.Journey{
		Slug:         strings.TrimSpace(firstNonEmptyAlias(r, journeyAliases, "slug")),
		Title:        firstNonEmptyAlias(r, journeyAliases, "title"),
		Duration:     firstNonEmptyAlias(r, journeyAliases, "duration"),
		Description:  normalizeText(firstNonEmptyAlias(r, journeyAliases, "description")),
		HeroImage:    DriveThumbnailURL(firstNonEmptyAlias(r, journeyAliases, "heroImage")),
		Destinations: splitList(firstNonEmptyAlias(r, journeyAliases, "destinations"), ","),
		Published:    ParseFlag(firstNonEmptyAlias(r, journeyAliases, "published")),
	}
}

func mapSetting(r Record) domain.Setting {
	return domain.Setting{
		Key:   strings.TrimSpace(firstNonEmptyAlias(r, settingAliases, "key")),
		Value: firstNonEmptyAlias(r, settingAliases, "value"),
	}
}
