package app

import (
	"fmt"
	"strings"
	"time"

	"slow_travel/internal/domain"
)

// Step is a booking wizard state. Navigation is strictly linear.
type Step int

const (
	StepDateAndGuests Step = iota + 1
	StepAddOns
	StepContactDetails
	StepPayment
	StepConfirmed
)

var stepNames = map[Step]string{
	StepDateAndGuests:  "date_and_guests",
	StepAddOns:         "add_ons",
	StepContactDetails: "contact_details",
	StepPayment:        "payment",
	StepConfirmed:      "confirmed",
}

func (s Step) String() string {
	if n, ok := stepNames[s]; ok {
		return n
	}
	return fmt.Sprintf("step(%d)", int(s))
}

const (
	MinGuests     = 1
	MaxGuests     = 3 // one car
	DefaultGuests = 2
	MinNotice     = 48 * time.Hour
	DateLayout    = "2006-01-02"
)

type Contact struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	PickupLocation string `json:"pickupLocation"`
	Notes          string `json:"notes"`
}

// Wizard is the booking state of one visitor for one day trip. It is a plain value
// so it can be stored between requests; all transitions go through its methods.
type Wizard struct {
	ID        string         `json:"id"`
	Trip      domain.DayTrip `json:"trip"`
	Available []domain.Addon `json:"available"`

	Step           Step     `json:"step"`
	Date           string   `json:"date"`
	Guests         int      `json:"guests"`
	SelectedAddons []string `json:"selectedAddons"`
	Contact        Contact  `json:"contact"`

	// Payment widget mount: the order is tied to the key it was created for.
	PaymentKey    string `json:"paymentKey,omitempty"`
	OrderID       string `json:"orderId,omitempty"`
	TransactionID string `json:"transactionId,omitempty"`
	BookingID     string `json:"bookingId,omitempty"`
}

func NewWizard(id string, trip domain.DayTrip, available []domain.Addon) *Wizard {
	w := &Wizard{ID: id, Trip: trip, Available: available}
	w.Reset()
	return w
}

// Reset clears everything the visitor entered and returns to the first step.
func (w *Wizard) Reset() {
	w.Step = StepDateAndGuests
	w.Date = ""
	w.Guests = DefaultGuests
	w.SelectedAddons = nil
	w.Contact = Contact{}
	w.Unmount()
	w.TransactionID = ""
	w.BookingID = ""
}

func (w *Wizard) requireStep(s Step) error {
	if w.Step != s {
		return fmt.Errorf("%w: at %s, need %s", domain.ErrInvalidTransition, w.Step, s)
	}
	return nil
}

// Captured reports whether money was taken for this wizard. From then on only
// Submit and Close are allowed.
func (w *Wizard) Captured() bool { return w.TransactionID != "" }

func (w *Wizard) requireUncaptured() error {
	if w.Captured() {
		return fmt.Errorf("%w: payment %s already captured", domain.ErrInvalidTransition, w.TransactionID)
	}
	return nil
}

/********** field setters **********/

func (w *Wizard) SetDateAndGuests(date string, guests int) error {
	if err := w.requireStep(StepDateAndGuests); err != nil {
		return err
	}
	w.Date = strings.TrimSpace(date)
	w.Guests = guests
	return nil
}

// SetAddons replaces the selection. Unknown ids and duplicates are dropped.
func (w *Wizard) SetAddons(ids []string) error {
	if err := w.requireStep(StepAddOns); err != nil {
		return err
	}
	w.SelectedAddons = nil
	for _, id := range ids {
		if w.isAvailable(id) && !w.isSelected(id) {
			w.SelectedAddons = append(w.SelectedAddons, id)
		}
	}
	return nil
}

func (w *Wizard) SetContact(c Contact) error {
	if err := w.requireStep(StepContactDetails); err != nil {
		return err
	}
	w.Contact = c
	return nil
}

func (w *Wizard) isAvailable(id string) bool {
	for _, a := range w.Available {
		if a.ID == id {
			return true
		}
	}
	return false
}

func (w *Wizard) isSelected(id string) bool {
	for _, s := range w.SelectedAddons {
		if s == id {
			return true
		}
	}
	return false
}

/********** navigation **********/

// EarliestTripDate is the first bookable calendar day: the day now+48h falls on.
func EarliestTripDate(now time.Time) time.Time {
	t := now.UTC().Add(MinNotice)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func (w *Wizard) validateDateAndGuests(now time.Time) error {
	ie := domain.NewInputError()
	if w.Date == "" {
		ie.Add("date", "select a date")
	} else if d, err := time.Parse(DateLayout, w.Date); err != nil {
		ie.Add("date", "use YYYY-MM-DD")
	} else if d.Before(EarliestTripDate(now)) {
		ie.Add("date", "minimum 48 hours notice required")
	}
	if w.Guests < MinGuests || w.Guests > MaxGuests {
		ie.Add("guests", fmt.Sprintf("between %d and %d guests", MinGuests, MaxGuests))
	}
	return ie.OrNil()
}

func (w *Wizard) validateContact() error {
	ie := domain.NewInputError()
	if strings.TrimSpace(w.Contact.Name) == "" {
		ie.Add("name", "required")
	}
	if strings.TrimSpace(w.Contact.Email) == "" {
		ie.Add("email", "required")
	}
	if strings.TrimSpace(w.Contact.PickupLocation) == "" {
		ie.Add("pickupLocation", "required")
	}
	return ie.OrNil()
}

// Next moves one step forward if the current step's guard passes. Leaving Payment
// is not possible through Next: only a recorded booking confirms.
func (w *Wizard) Next(now time.Time) error {
	switch w.Step {
	case StepDateAndGuests:
		if err := w.validateDateAndGuests(now); err != nil {
			return err
		}
		w.Step = StepAddOns
	case StepAddOns:
		w.Step = StepContactDetails
	case StepContactDetails:
		if err := w.validateContact(); err != nil {
			return err
		}
		w.Step = StepPayment
	default:
		return fmt.Errorf("%w: no next step from %s", domain.ErrInvalidTransition, w.Step)
	}
	return nil
}

// Back moves one step backward. Leaving Payment drops the mounted order; a
// captured payment pins the wizard to Payment.
func (w *Wizard) Back() error {
	switch w.Step {
	case StepAddOns:
		w.Step = StepDateAndGuests
	case StepContactDetails:
		w.Step = StepAddOns
	case StepPayment:
		if err := w.requireUncaptured(); err != nil {
			return err
		}
		w.Unmount()
		w.Step = StepContactDetails
	default:
		return fmt.Errorf("%w: no previous step from %s", domain.ErrInvalidTransition, w.Step)
	}
	return nil
}

/********** pricing & payment **********/

// Selected returns the chosen add-ons in selection order.
func (w *Wizard) Selected() []domain.Addon {
	out := make([]domain.Addon, 0, len(w.SelectedAddons))
	for _, id := range w.SelectedAddons {
		for _, a := range w.Available {
			if a.ID == id {
				out = append(out, a)
				break
			}
		}
	}
	return out
}

func (w *Wizard) Quote() Quote {
	return PriceTrip(w.Trip, w.Selected(), w.Guests)
}

// paymentKey identifies the state a payment order is created for.
func (w *Wizard) paymentKey() string {
	return strings.Join([]string{
		w.Trip.Slug, w.Date, fmt.Sprint(w.Guests), FormatAmount(w.Quote().Total.EUR),
	}, "|")
}

// NeedsMount reports whether a new payment order must be created for the current state.
func (w *Wizard) NeedsMount() bool {
	return w.Step == StepPayment && !w.Captured() && (w.OrderID == "" || w.PaymentKey != w.paymentKey())
}

// Mount records the order created for the current state.
func (w *Wizard) Mount(orderID string) {
	w.PaymentKey = w.paymentKey()
	w.OrderID = orderID
}

func (w *Wizard) Unmount() {
	w.PaymentKey = ""
	w.OrderID = ""
}

// PaymentDescription is the purchase description shown by the payment provider.
func (w *Wizard) PaymentDescription() string {
	return fmt.Sprintf("%s - %s - %d guest(s)", w.Trip.Title, w.Date, w.Guests)
}

// Snapshot builds the booking record for a captured payment.
func (w *Wizard) Snapshot() domain.BookingRequest {
	q := w.Quote()
	names := make([]string, 0, len(w.SelectedAddons))
	for _, a := range w.Selected() {
		names = append(names, a.Name)
	}
	return domain.BookingRequest{
		TripSlug:           w.Trip.Slug,
		TripTitle:          w.Trip.Title,
		TripDate:           w.Date,
		Guests:             w.Guests,
		BasePriceMAD:       q.Base.MAD,
		Addons:             strings.Join(names, ", "),
		AddonsPriceMAD:     q.Addons.MAD,
		TotalMAD:           q.Total.MAD,
		TotalEUR:           q.Total.EUR,
		GuestName:          w.Contact.Name,
		GuestEmail:         w.Contact.Email,
		GuestPhone:         w.Contact.Phone,
		PickupLocation:     w.Contact.PickupLocation,
		Notes:              w.Contact.Notes,
		PaymentTransaction: w.TransactionID,
	}
}

// Confirm finishes the wizard once the booking is recorded.
func (w *Wizard) Confirm(bookingID string) error {
	if err := w.requireStep(StepPayment); err != nil {
		return err
	}
	if w.TransactionID == "" {
		return fmt.Errorf("%w: no captured payment", domain.ErrInvalidTransition)
	}
	w.BookingID = bookingID
	w.Unmount()
	w.Step = StepConfirmed
	return nil
}
