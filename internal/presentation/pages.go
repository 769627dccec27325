package presentation

import "slow_travel/internal/domain"

type HomeData struct {
	Regions  []domain.Region
	Featured []domain.Place
	Journeys []domain.Journey
}

type RegionsData struct {
	Regions []domain.Region
}

type RegionData struct {
	Region       domain.Region
	Destinations []domain.Destination
}

type DestinationData struct {
	Destination domain.Destination
	Region      domain.Region
	HasRegion   bool
	Places      []domain.Place
	Journeys    []domain.Journey
}

type PlaceData struct {
	Place          domain.Place
	Destination    domain.Destination
	HasDestination bool
	Gallery        Gallery
}

type DayTripsData struct {
	HeroImage string
	Trips     []domain.DayTrip
}

type DayTripData struct {
	Trip         domain.DayTripDetail
	Addons       []domain.Addon
	EarliestDate string
	MinGuests    int
	MaxGuests    int
}

type JourneysData struct {
	Journeys []domain.Journey
}

// JourneyData resolves the journey's destination list; names without a
// published destination stay in Stops as plain text.
type JourneyData struct {
	Journey      domain.Journey
	Destinations []domain.Destination
	Stops        []string
}

// MessageData backs simple result pages (newsletter, errors).
type MessageData struct {
	Heading string
	Message string
	OK      bool
}
