package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"slow_travel/internal/domain"
)

// BookingFlow drives wizards stored in a SessionStore. Each method loads the
// wizard, applies one transition, and saves it back.
type BookingFlow struct {
	content  *ContentService
	sessions domain.SessionStore
	payments domain.PaymentProvider
	bookings *BookingService
	ttl      time.Duration
	now      func() time.Time
	newID    func() string
}

func NewBookingFlow(c *ContentService, s domain.SessionStore, p domain.PaymentProvider, b *BookingService, ttl time.Duration) *BookingFlow {
	return &BookingFlow{
		content:  c,
		sessions: s,
		payments: p,
		bookings: b,
		ttl:      ttl,
		now:      time.Now,
		newID:    func() string { return uuid.NewString() },
	}
}

// WithClock swaps the time source used by the date guard.
func (f *BookingFlow) WithClock(now func() time.Time) *BookingFlow {
	f.now = now
	return f
}

func sessionKey(id string) string { return "wizard:" + id }

func (f *BookingFlow) load(ctx context.Context, id string) (*Wizard, error) {
	var w Wizard
	ok, err := f.sessions.Get(ctx, sessionKey(id), &w)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", id, err)
	}
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &w, nil
}

func (f *BookingFlow) save(ctx context.Context, w *Wizard) error {
	if err := f.sessions.Set(ctx, sessionKey(w.ID), w, int(f.ttl.Seconds())); err != nil {
		return fmt.Errorf("save session %s: %w", w.ID, err)
	}
	return nil
}

// update runs fn on the stored wizard and persists the result. When fn fails
// the stored state is left untouched.
func (f *BookingFlow) update(ctx context.Context, id string, fn func(w *Wizard) error) (*Wizard, error) {
	w, err := f.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(w); err != nil {
		return w, err
	}
	return w, f.save(ctx, w)
}

// Open starts a fresh wizard for a published day trip.
func (f *BookingFlow) Open(ctx context.Context, tripSlug string) (*Wizard, error) {
	trip, addons, ok := f.content.DayTripBySlug(ctx, tripSlug)
	if !ok {
		return nil, fmt.Errorf("day trip %q: %w", tripSlug, domain.ErrNotFound)
	}
	w := NewWizard(f.newID(), trip.DayTrip, addons)
	if err := f.save(ctx, w); err != nil {
		return nil, err
	}
	log.Info().Str("session", w.ID).Str("trip", tripSlug).Msg("booking wizard opened")
	return w, nil
}

func (f *BookingFlow) Get(ctx context.Context, id string) (*Wizard, error) {
	return f.load(ctx, id)
}

// Close abandons the wizard. Reopening starts from scratch; an order that was
// created but never captured is simply forgotten.
func (f *BookingFlow) Close(ctx context.Context, id string) error {
	return f.sessions.Del(ctx, sessionKey(id))
}

func (f *BookingFlow) SetDateAndGuests(ctx context.Context, id, date string, guests int) (*Wizard, error) {
	return f.update(ctx, id, func(w *Wizard) error { return w.SetDateAndGuests(date, guests) })
}

func (f *BookingFlow) SetAddons(ctx context.Context, id string, addonIDs []string) (*Wizard, error) {
	return f.update(ctx, id, func(w *Wizard) error { return w.SetAddons(addonIDs) })
}

func (f *BookingFlow) SetContact(ctx context.Context, id string, c Contact) (*Wizard, error) {
	return f.update(ctx, id, func(w *Wizard) error { return w.SetContact(c) })
}

func (f *BookingFlow) Next(ctx context.Context, id string) (*Wizard, error) {
	return f.update(ctx, id, func(w *Wizard) error { return w.Next(f.now()) })
}

func (f *BookingFlow) Back(ctx context.Context, id string) (*Wizard, error) {
	return f.update(ctx, id, func(w *Wizard) error { return w.Back() })
}

// CreateOrder mounts the payment for the current state. Asking again without a
// change in trip, date, guests or total returns the order already created.
func (f *BookingFlow) CreateOrder(ctx context.Context, id string) (*Wizard, error) {
	return f.update(ctx, id, func(w *Wizard) error {
		if err := w.requireStep(StepPayment); err != nil {
			return err
		}
		if err := w.requireUncaptured(); err != nil {
			return err
		}
		if !w.NeedsMount() {
			return nil
		}
		orderID, err := f.payments.CreateOrder(ctx, FormatAmount(w.Quote().Total.EUR), w.PaymentDescription())
		if err != nil {
			log.Warn().Err(err).Str("session", w.ID).Msg("create payment order failed")
			return fmt.Errorf("%w: %v", domain.ErrPayment, err)
		}
		w.Mount(orderID)
		return nil
	})
}

// Capture captures the approved order and records the booking.
func (f *BookingFlow) Capture(ctx context.Context, id, orderID string) (*Wizard, error) {
	w, err := f.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := w.requireStep(StepPayment); err != nil {
		return w, err
	}
	if err := w.requireUncaptured(); err != nil {
		return w, err
	}
	if w.OrderID == "" || orderID != w.OrderID {
		return w, fmt.Errorf("%w: order %q is not the mounted order", domain.ErrInvalidTransition, orderID)
	}
	txID, err := f.payments.CaptureOrder(ctx, orderID)
	if err != nil {
		log.Warn().Err(err).Str("session", w.ID).Str("order", orderID).Msg("capture failed")
		return w, fmt.Errorf("%w: %v", domain.ErrPayment, err)
	}
	w.TransactionID = txID
	if err := f.save(ctx, w); err != nil {
		// The payment went through; keep going so the booking still gets written.
		log.Error().Err(err).Str("session", w.ID).Str("transaction", txID).Msg("save captured session failed")
	}
	return f.submit(ctx, w)
}

// Submit retries recording a captured payment whose booking write failed earlier.
// Every attempt writes a new row with a new booking id.
func (f *BookingFlow) Submit(ctx context.Context, id string) (*Wizard, error) {
	w, err := f.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := w.requireStep(StepPayment); err != nil {
		return w, err
	}
	if w.TransactionID == "" {
		return w, fmt.Errorf("%w: nothing captured yet", domain.ErrInvalidTransition)
	}
	return f.submit(ctx, w)
}

func (f *BookingFlow) submit(ctx context.Context, w *Wizard) (*Wizard, error) {
	b, err := f.bookings.Record(ctx, w.Snapshot())
	if err != nil {
		log.Error().Err(err).
			Str("session", w.ID).
			Str("transaction", w.TransactionID).
			Msg("payment captured but booking not recorded")
		return w, &domain.UnrecordedBookingError{TransactionID: w.TransactionID, Err: err}
	}
	if err := w.Confirm(b.ID); err != nil {
		return w, err
	}
	if err := f.save(ctx, w); err != nil {
		log.Warn().Err(err).Str("session", w.ID).Msg("save confirmed session failed")
	}
	log.Info().Str("session", w.ID).Str("booking", b.ID).Msg("booking confirmed")
	return w, nil
}
