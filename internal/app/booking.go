package app

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"slow_travel/internal/domain"
)

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

// BookingService writes confirmed bookings to the bookings tab.
//
// The booking id comes from the clock, not from the payment: recording the same
// capture twice yields two rows with two ids.
type BookingService struct {
	content *ContentService
	now     func() time.Time
}

func NewBookingService(c *ContentService) *BookingService {
	return &BookingService{content: c, now: time.Now}
}

// WithClock swaps the time source. Tests use it to get deterministic ids.
func (s *BookingService) WithClock(now func() time.Time) *BookingService {
	s.now = now
	return s
}

func (s *BookingService) Record(ctx context.Context, req domain.BookingRequest) (domain.Booking, error) {
	now := s.now().UTC()
	b := domain.Booking{
		ID:             fmt.Sprintf("DT-%d", now.UnixMilli()),
		CreatedAt:      now,
		Status:         domain.BookingStatusConfirmed,
		BookingRequest: req,
	}
	if err := s.content.AppendRecord(ctx, domain.TabBookings, bookingRow(b)); err != nil {
		return domain.Booking{}, fmt.Errorf("record booking %s: %w", b.ID, err)
	}
	return b, nil
}

// bookingRow lays a booking out in the tab's fixed column order.
func bookingRow(b domain.Booking) []string {
	num := func(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }
	return []string{
		b.ID,
		b.CreatedAt.Format(isoMillis),
		b.TripSlug,
		b.TripTitle,
		b.TripDate,
		strconv.Itoa(b.Guests),
		num(b.BasePriceMAD),
		b.Addons,
		num(b.AddonsPriceMAD),
		num(b.TotalMAD),
		num(b.TotalEUR),
		b.GuestName,
		b.GuestEmail,
		b.GuestPhone,
		b.PickupLocation,
		b.Notes,
		b.PaymentTransaction,
		b.Status,
	}
}
