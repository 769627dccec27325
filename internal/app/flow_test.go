package app_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"slow_travel/internal/app"
	"slow_travel/internal/domain"
)

// tickingClock advances by a millisecond per call so booking ids never collide.
func tickingClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Millisecond)
		return t
	}
}

type flowFixture struct {
	store    *fakeStore
	payments *fakePayments
	sessions *fakeSessions
	flow     *app.BookingFlow
}

func newFlowFixture() *flowFixture {
	store := contentFixture()
	content := app.NewContentService(store)
	payments := &fakePayments{transaction: "TX-42"}
	sessions := &fakeSessions{}
	bookings := app.NewBookingService(content).WithClock(tickingClock(wizardNow))
	flow := app.NewBookingFlow(content, sessions, payments, bookings, 30*time.Minute).
		WithClock(func() time.Time { return wizardNow })
	return &flowFixture{store: store, payments: payments, sessions: sessions, flow: flow}
}

func (fx *flowFixture) toPayment(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	w, err := fx.flow.Open(ctx, "ourika")
	must(t, err)
	id := w.ID
	_, err = fx.flow.SetDateAndGuests(ctx, id, "2026-03-20", 2)
	must(t, err)
	_, err = fx.flow.Next(ctx, id)
	must(t, err)
	_, err = fx.flow.SetAddons(ctx, id, []string{"AO-001"})
	must(t, err)
	_, err = fx.flow.Next(ctx, id)
	must(t, err)
	_, err = fx.flow.SetContact(ctx, id, app.Contact{Name: "Ana", Email: "ana@example.com", PickupLocation: "Riad Kniza"})
	must(t, err)
	_, err = fx.flow.Next(ctx, id)
	must(t, err)
	return id
}

func TestFlow_OpenUnknownTrip(t *testing.T) {
	fx := newFlowFixture()
	if _, err := fx.flow.Open(context.Background(), "nowhere"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := fx.flow.Get(context.Background(), "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session not found, got %v", err)
	}
}

func TestFlow_HappyPath(t *testing.T) {
	fx := newFlowFixture()
	ctx := context.Background()
	id := fx.toPayment(t)

	w, err := fx.flow.CreateOrder(ctx, id)
	must(t, err)
	if w.OrderID != "ORDER-1" || fx.payments.lastAmount != "140.00" {
		t.Fatalf("unexpected order: %+v amount=%s", w, fx.payments.lastAmount)
	}
	// asking again mounts nothing new
	w, err = fx.flow.CreateOrder(ctx, id)
	must(t, err)
	if fx.payments.orders != 1 || w.OrderID != "ORDER-1" {
		t.Fatalf("expected a single order, got %d", fx.payments.orders)
	}

	w, err = fx.flow.Capture(ctx, id, "ORDER-1")
	must(t, err)
	if w.Step != app.StepConfirmed || !strings.HasPrefix(w.BookingID, "DT-") {
		t.Fatalf("unexpected state: %+v", w)
	}

	rows := fx.store.rows(domain.TabBookings)
	if len(rows) != 2 {
		t.Fatalf("expected one booking row, got %d", len(rows)-1)
	}
	row := rows[1]
	if len(row) != 18 || row[0] != w.BookingID || row[16] != "TX-42" || row[17] != "confirmed" || row[10] != "140" {
		t.Fatalf("unexpected row: %v", row)
	}
}

func TestFlow_CaptureRejectsForeignOrder(t *testing.T) {
	fx := newFlowFixture()
	ctx := context.Background()
	id := fx.toPayment(t)
	_, err := fx.flow.CreateOrder(ctx, id)
	must(t, err)

	if _, err := fx.flow.Capture(ctx, id, "ORDER-999"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestFlow_PaymentErrorStaysInPayment(t *testing.T) {
	fx := newFlowFixture()
	ctx := context.Background()
	id := fx.toPayment(t)
	fx.payments.createErr = errBoom

	if _, err := fx.flow.CreateOrder(ctx, id); !errors.Is(err, domain.ErrPayment) {
		t.Fatalf("expected payment error, got %v", err)
	}
	w, err := fx.flow.Get(ctx, id)
	must(t, err)
	if w.Step != app.StepPayment || w.OrderID != "" {
		t.Fatalf("unexpected state after failed order: %+v", w)
	}
}

func TestFlow_UnrecordedBookingKeepsTransaction(t *testing.T) {
	fx := newFlowFixture()
	ctx := context.Background()
	id := fx.toPayment(t)
	_, err := fx.flow.CreateOrder(ctx, id)
	must(t, err)

	fx.store.fail[domain.TabBookings] = errBoom
	_, err = fx.flow.Capture(ctx, id, "ORDER-1")
	var unrecorded *domain.UnrecordedBookingError
	if !errors.As(err, &unrecorded) || !errors.Is(err, domain.ErrBookingNotRecorded) {
		t.Fatalf("expected unrecorded booking error, got %v", err)
	}
	if !strings.Contains(err.Error(), "TX-42") {
		t.Fatalf("message must carry the transaction id: %q", err.Error())
	}

	w, err := fx.flow.Get(ctx, id)
	must(t, err)
	if w.Step != app.StepPayment || w.TransactionID != "TX-42" {
		t.Fatalf("expected payment step with transaction kept: %+v", w)
	}

	// store recovers; a resubmit records the booking
	delete(fx.store.fail, domain.TabBookings)
	w, err = fx.flow.Submit(ctx, id)
	must(t, err)
	if w.Step != app.StepConfirmed {
		t.Fatalf("expected confirmed, got %s", w.Step)
	}
}

func TestFlow_DuplicateSubmissionsGetDistinctIDs(t *testing.T) {
	fx := newFlowFixture()
	ctx := context.Background()
	bookings := app.NewBookingService(app.NewContentService(fx.store)).WithClock(tickingClock(wizardNow))

	req := domain.BookingRequest{TripSlug: "ourika", PaymentTransaction: "TX-42"}
	a, err := bookings.Record(ctx, req)
	must(t, err)
	b, err := bookings.Record(ctx, req)
	must(t, err)
	if a.ID == b.ID {
		t.Fatalf("expected distinct ids, both %s", a.ID)
	}
	if got := len(fx.store.rows(domain.TabBookings)) - 1; got != 2 {
		t.Fatalf("expected two rows, got %d", got)
	}
}

func TestFlow_CloseForgetsSession(t *testing.T) {
	fx := newFlowFixture()
	ctx := context.Background()
	id := fx.toPayment(t)
	must(t, fx.flow.Close(ctx, id))
	if _, err := fx.flow.Get(ctx, id); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected session gone, got %v", err)
	}

	w, err := fx.flow.Open(ctx, "ourika")
	must(t, err)
	if w.Step != app.StepDateAndGuests || w.Date != "" {
		t.Fatalf("reopen should start fresh: %+v", w)
	}
}

func TestFlow_CapturedPaymentPinsWizard(t *testing.T) {
	fx := newFlowFixture()
	ctx := context.Background()
	id := fx.toPayment(t)
	_, err := fx.flow.CreateOrder(ctx, id)
	must(t, err)

	fx.store.fail[domain.TabBookings] = errBoom
	if _, err := fx.flow.Capture(ctx, id, "ORDER-1"); !errors.Is(err, domain.ErrBookingNotRecorded) {
		t.Fatalf("expected unrecorded booking, got %v", err)
	}

	if _, err := fx.flow.Back(ctx, id); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("back after capture: expected invalid transition, got %v", err)
	}
	if _, err := fx.flow.CreateOrder(ctx, id); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("second order: expected invalid transition, got %v", err)
	}
	fx.payments.transaction = "TX-99"
	if _, err := fx.flow.Capture(ctx, id, "ORDER-1"); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("second capture: expected invalid transition, got %v", err)
	}
	if fx.payments.orders != 1 {
		t.Fatalf("orders created = %d", fx.payments.orders)
	}

	w, err := fx.flow.Get(ctx, id)
	must(t, err)
	if w.Step != app.StepPayment || w.TransactionID != "TX-42" || w.NeedsMount() {
		t.Fatalf("expected pinned payment step with TX-42: %+v", w)
	}

	delete(fx.store.fail, domain.TabBookings)
	w, err = fx.flow.Submit(ctx, id)
	must(t, err)
	if w.Step != app.StepConfirmed || w.TransactionID != "TX-42" {
		t.Fatalf("unexpected state after submit: %+v", w)
	}
	if got := fx.store.rows(domain.TabBookings)[1][16]; got != "TX-42" {
		t.Fatalf("booking row transaction = %q", got)
	}
}
