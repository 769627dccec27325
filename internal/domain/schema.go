package domain

import "strings"

// Tab names in the content spreadsheet.
const (
	TabRegions        = "Regions"
	TabDestinations   = "Destinations"
	TabPlaces         = "Places"
	TabPlaceImages    = "Place_Images"
	TabDayTrips       = "Day_Trips"
	TabAddons         = "Day_Trip_Addons"
	TabContentLibrary = "Content_Library"
	TabSettings       = "Website_Settings"
	TabJourneys       = "Website_Journeys"
	TabBookings       = "Day_Trip_Bookings"
)

// SettingDayTripsHero is the Website_Settings key holding the day trips hero image.
const SettingDayTripsHero = "day_trips_hero_image"

// TabNewsletter lives in the second (nexus) spreadsheet.
const TabNewsletter = "Newsletter_Subscribers"

// Schema lists the header columns each tab is expected to carry, in sheet order.
// Columns are positional: reordering them in the sheet is a breaking change.
var Schema = map[string][]string{
	TabRegions: {"slug", "title", "subtitle", "heroImage", "description", "order"},
	TabDestinations: {
		"slug", "title", "subtitle", "region", "heroImage", "heroCaption",
		"excerpt", "body", "published", "featured", "order",
	},
	TabPlaces: {
		"slug", "title", "destination", "category", "address", "opening_hours", "fees",
		"notes", "heroImage", "heroCaption", "excerpt", "body", "sources", "tags",
		"published", "featured", "order",
	},
	TabPlaceImages: {"place_slug", "image_order", "image_url", "caption"},
	TabDayTrips: {
		"Slug", "Route_ID", "Title", "Short_Description", "Duration_Hours",
		"Final_Price_MAD", "Final_Price_EUR", "Departure_City", "Category",
		"Hero_Image_URL", "Includes", "Excludes", "Meeting_Point", "Published",
	},
	TabAddons: {
		"Addon_ID", "Addon_Name", "Description", "Final_Price_MAD_PP",
		"Final_Price_EUR_PP", "Applies_To", "Published",
	},
	TabContentLibrary: {
		"Route_ID", "Route_Narrative", "From_City", "To_City", "Via_Cities",
		"Travel_Time_Hours", "Activities", "Difficulty_Level", "Region", "Image_URL_1",
	},
	TabSettings: {"Key", "Value"},
	TabJourneys: {"slug", "title", "duration", "description", "heroImage", "destinations", "published"},
	TabBookings: {
		"booking_id", "created_at", "trip_slug", "trip_title", "trip_date", "guests",
		"base_price_mad", "addons", "addons_price_mad", "total_mad", "total_eur",
		"guest_name", "guest_email", "guest_phone", "pickup_location", "notes",
		"paypal_transaction_id", "status",
	},
	TabNewsletter: {"email", "brand", "created_at", "status", "unsubscribe_token", "unsubscribed_at"},
}

// ContentTabs are the read-mostly tabs a mirror copies.
var ContentTabs = []string{
	TabRegions, TabDestinations, TabPlaces, TabPlaceImages, TabDayTrips,
	TabAddons, TabContentLibrary, TabSettings, TabJourneys,
}

// positional tabs are read or written by column index, so only their width matters.
var positional = map[string]bool{
	TabPlaceImages: true,
	TabBookings:    true,
	TabNewsletter:  true,
}

// HeaderDrift compares a fetched header row with Schema[tab] and returns the
// expected columns it lacks. Names compare case-insensitively. Positional tabs
// report the columns past the header's width. Unknown tabs never drift.
func HeaderDrift(tab string, header []string) []string {
	want, ok := Schema[tab]
	if !ok {
		return nil
	}
	if positional[tab] {
		if len(header) >= len(want) {
			return nil
		}
		return append([]string(nil), want[len(header):]...)
	}
	have := make(map[string]bool, len(header))
	for _, h := range header {
		have[strings.ToLower(strings.TrimSpace(h))] = true
	}
	var missing []string
	for _, c := range want {
		if !have[strings.ToLower(c)] {
			missing = append(missing, c)
		}
	}
	return missing
}
