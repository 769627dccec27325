package domain

import "time"

// BookingStatusConfirmed is the only status a booking is ever written with.
const BookingStatusConfirmed = "confirmed"

// BookingRequest is the snapshot posted by the wizard once payment is captured.
type BookingRequest struct {
	TripSlug           string  `json:"tripSlug"`
	TripTitle          string  `json:"tripTitle"`
	TripDate           string  `json:"tripDate"`
	Guests             int     `json:"guests"`
	BasePriceMAD       float64 `json:"basePriceMAD"`
	Addons             string  `json:"addons"` // comma separated add-on names
	AddonsPriceMAD     float64 `json:"addonsPriceMAD"`
	TotalMAD           float64 `json:"totalMAD"`
	TotalEUR           float64 `json:"totalEUR"`
	GuestName          string  `json:"guestName"`
	GuestEmail         string  `json:"guestEmail"`
	GuestPhone         string  `json:"guestPhone"`
	PickupLocation     string  `json:"pickupLocation"`
	Notes              string  `json:"notes"`
	PaymentTransaction string  `json:"paypalTransactionId"`
}

type Booking struct {
	ID        string
	CreatedAt time.Time
	Status    string
	BookingRequest
}

type SubscriptionStatus string

const (
	SubscriptionActive       SubscriptionStatus = "active"
	SubscriptionUnsubscribed SubscriptionStatus = "unsubscribed"
)

type NewsletterSubscription struct {
	Email            string
	Brand            string
	CreatedAt        string
	Status           SubscriptionStatus
	UnsubscribeToken string
	UnsubscribedAt   string
}
