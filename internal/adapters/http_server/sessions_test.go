package httpserver_test

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"slow_travel/internal/domain"
)

type sessionBody struct {
	Wizard struct {
		ID             string   `json:"id"`
		Step           int      `json:"step"`
		Guests         int      `json:"guests"`
		SelectedAddons []string `json:"selectedAddons"`
		OrderID        string   `json:"orderId"`
		TransactionID  string   `json:"transactionId"`
		BookingID      string   `json:"bookingId"`
	} `json:"wizard"`
	Quote struct {
		Total struct {
			MAD float64 `json:"mad"`
			EUR float64 `json:"eur"`
		} `json:"total"`
	} `json:"quote"`
	StepName string `json:"stepName"`
}

type problemBody struct {
	Title         string              `json:"title"`
	Status        int                 `json:"status"`
	Detail        string              `json:"detail"`
	Errors        map[string][]string `json:"errors"`
	TransactionID string              `json:"transactionId"`
}

func (fx *fixture) session(t *testing.T, method, path string, body any, wantStatus int) sessionBody {
	t.Helper()
	res, raw := fx.do(t, method, "/api/booking-sessions"+path, body)
	if res.StatusCode != wantStatus {
		t.Fatalf("%s %s: status = %d, want %d: %s", method, path, res.StatusCode, wantStatus, raw)
	}
	var out sessionBody
	decode(t, raw, &out)
	return out
}

func (fx *fixture) problem(t *testing.T, method, path string, body any, wantStatus int) problemBody {
	t.Helper()
	res, raw := fx.do(t, method, "/api/booking-sessions"+path, body)
	if res.StatusCode != wantStatus {
		t.Fatalf("%s %s: status = %d, want %d: %s", method, path, res.StatusCode, wantStatus, raw)
	}
	if ct := res.Header.Get("Content-Type"); ct != "application/problem+json" {
		t.Fatalf("%s %s: content type = %q", method, path, ct)
	}
	var out problemBody
	decode(t, raw, &out)
	return out
}

// toPayment walks a fresh session up to the payment step and returns its id.
func (fx *fixture) toPayment(t *testing.T) string {
	t.Helper()
	s := fx.session(t, http.MethodPost, "", map[string]string{"tripSlug": "ourika"}, http.StatusCreated)
	id := "/" + s.Wizard.ID
	fx.session(t, http.MethodPut, id+"/trip", map[string]any{"date": "2026-03-20", "guests": 2}, 200)
	fx.session(t, http.MethodPost, id+"/next", nil, 200)
	fx.session(t, http.MethodPut, id+"/addons", map[string]any{"addonIds": []string{"AO-001"}}, 200)
	fx.session(t, http.MethodPost, id+"/next", nil, 200)
	fx.session(t, http.MethodPut, id+"/contact", map[string]string{
		"name": "Ana", "email": "ana@example.com", "pickupLocation": "Riad Kniza",
	}, 200)
	s = fx.session(t, http.MethodPost, id+"/next", nil, 200)
	if s.Wizard.Step != 4 || s.StepName != "Payment" {
		t.Fatalf("expected payment step, got %d %q", s.Wizard.Step, s.StepName)
	}
	return s.Wizard.ID
}

func TestBookingSession_HappyPath(t *testing.T) {
	fx := newFixture(t)

	s := fx.session(t, http.MethodPost, "", map[string]string{"tripSlug": "ourika"}, http.StatusCreated)
	if s.Wizard.ID == "" || s.Wizard.Step != 1 || s.Wizard.Guests != 2 || s.StepName != "Date & guests" {
		t.Fatalf("unexpected open: %+v", s)
	}
	if s.Quote.Total.EUR != 100 {
		t.Fatalf("opening quote = %v", s.Quote.Total.EUR)
	}
	if ttl := fx.redis.TTL("slowtravel:wizard:" + s.Wizard.ID); ttl <= 0 {
		t.Fatalf("session ttl = %v", ttl)
	}

	id := fx.toPayment(t)
	s = fx.session(t, http.MethodGet, "/"+id, nil, 200)
	if s.Quote.Total.EUR != 140 || s.Quote.Total.MAD != 1540 {
		t.Fatalf("quote = %+v", s.Quote.Total)
	}

	s = fx.session(t, http.MethodPost, "/"+id+"/payment/order", nil, 200)
	if s.Wizard.OrderID != "ORDER-1" {
		t.Fatalf("order = %q", s.Wizard.OrderID)
	}
	// asking again without a change keeps the mounted order
	s = fx.session(t, http.MethodPost, "/"+id+"/payment/order", nil, 200)
	if s.Wizard.OrderID != "ORDER-1" || fx.payments.orders != 1 {
		t.Fatalf("order remounted: %q after %d orders", s.Wizard.OrderID, fx.payments.orders)
	}

	s = fx.session(t, http.MethodPost, "/"+id+"/payment/capture", map[string]string{"orderId": "ORDER-1"}, 200)
	if s.Wizard.Step != 5 || !strings.HasPrefix(s.Wizard.BookingID, "DT-") || s.Wizard.TransactionID != "TX-ORDER-1" {
		t.Fatalf("unexpected confirmation: %+v", s.Wizard)
	}

	rows := fx.content.rows(domain.TabBookings)
	if len(rows) != 2 {
		t.Fatalf("booking rows = %d", len(rows))
	}
	if rows[1][0] != s.Wizard.BookingID || rows[1][7] != "Lunch" || rows[1][10] != "140" || rows[1][16] != "TX-ORDER-1" {
		t.Fatalf("booking row = %v", rows[1])
	}
}

func TestBookingSession_Validation(t *testing.T) {
	fx := newFixture(t)

	p := fx.problem(t, http.MethodPost, "", map[string]string{}, http.StatusUnprocessableEntity)
	if len(p.Errors["tripSlug"]) == 0 {
		t.Fatalf("errors = %v", p.Errors)
	}
	fx.problem(t, http.MethodPost, "", map[string]string{"tripSlug": "hidden"}, http.StatusNotFound)

	s := fx.session(t, http.MethodPost, "", map[string]string{"tripSlug": "ourika"}, http.StatusCreated)
	id := "/" + s.Wizard.ID

	// too soon and too many guests: both reported, step unchanged
	fx.session(t, http.MethodPut, id+"/trip", map[string]any{"date": "2026-03-11", "guests": 4}, 200)
	p = fx.problem(t, http.MethodPost, id+"/next", nil, http.StatusUnprocessableEntity)
	if len(p.Errors["date"]) == 0 || len(p.Errors["guests"]) == 0 {
		t.Fatalf("errors = %v", p.Errors)
	}
	if !strings.Contains(p.Detail, "minimum 48 hours notice required") {
		t.Fatalf("detail = %q", p.Detail)
	}
	s = fx.session(t, http.MethodGet, id, nil, 200)
	if s.Wizard.Step != 1 {
		t.Fatalf("step = %d", s.Wizard.Step)
	}

	// setters only apply to their own step
	fx.problem(t, http.MethodPut, id+"/contact", map[string]string{"name": "Ana"}, http.StatusConflict)
	fx.problem(t, http.MethodPost, id+"/back", nil, http.StatusConflict)
	fx.problem(t, http.MethodPost, id+"/payment/order", nil, http.StatusConflict)

	res, _ := fx.do(t, http.MethodPut, "/api/booking-sessions"+id+"/trip", "garbage")
	if res.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad body status = %d", res.StatusCode)
	}
}

func TestBookingSession_CloseAndMissing(t *testing.T) {
	fx := newFixture(t)

	p := fx.problem(t, http.MethodGet, "/does-not-exist", nil, http.StatusNotFound)
	if p.Title != "Session not found" {
		t.Fatalf("title = %q", p.Title)
	}

	id := fx.toPayment(t)
	res, body := fx.do(t, http.MethodDelete, "/api/booking-sessions/"+id, nil)
	if res.StatusCode != 200 || strings.TrimSpace(string(body)) != `{"closed":true}` {
		t.Fatalf("close: %d %s", res.StatusCode, body)
	}
	fx.problem(t, http.MethodGet, "/"+id, nil, http.StatusNotFound)

	// reopening starts from scratch
	s := fx.session(t, http.MethodPost, "", map[string]string{"tripSlug": "ourika"}, http.StatusCreated)
	if s.Wizard.Step != 1 || s.Wizard.ID == id || len(s.Wizard.SelectedAddons) != 0 {
		t.Fatalf("reopened = %+v", s.Wizard)
	}
}

func TestBookingSession_PaymentFailures(t *testing.T) {
	fx := newFixture(t)
	id := fx.toPayment(t)

	fx.problem(t, http.MethodPost, "/"+id+"/payment/capture", map[string]string{"orderId": "ORDER-1"}, http.StatusConflict)

	fx.payments.createErr = errors.New("paypal down")
	p := fx.problem(t, http.MethodPost, "/"+id+"/payment/order", nil, http.StatusPaymentRequired)
	if p.Detail != "Payment failed. Please try again." {
		t.Fatalf("detail = %q", p.Detail)
	}
	fx.payments.createErr = nil

	s := fx.session(t, http.MethodPost, "/"+id+"/payment/order", nil, 200)
	fx.problem(t, http.MethodPost, "/"+id+"/payment/capture", map[string]string{"orderId": "ORDER-999"}, http.StatusConflict)

	fx.payments.captureErr = errors.New("declined")
	fx.problem(t, http.MethodPost, "/"+id+"/payment/capture", map[string]string{"orderId": s.Wizard.OrderID}, http.StatusPaymentRequired)
	if rows := fx.content.rows(domain.TabBookings); len(rows) != 1 {
		t.Fatalf("no booking expected, got %d rows", len(rows))
	}
}

func TestBookingSession_UnrecordedThenSubmit(t *testing.T) {
	fx := newFixture(t)
	id := fx.toPayment(t)
	s := fx.session(t, http.MethodPost, "/"+id+"/payment/order", nil, 200)

	fx.content.setFail(domain.TabBookings, errSheetDown)
	p := fx.problem(t, http.MethodPost, "/"+id+"/payment/capture", map[string]string{"orderId": s.Wizard.OrderID}, http.StatusInternalServerError)
	if p.TransactionID != "TX-ORDER-1" || !strings.Contains(p.Detail, "TX-ORDER-1") {
		t.Fatalf("problem = %+v", p)
	}

	// a captured payment pins the session: no way back, no second order
	fx.problem(t, http.MethodPost, "/"+id+"/back", nil, http.StatusConflict)
	fx.problem(t, http.MethodPost, "/"+id+"/payment/order", nil, http.StatusConflict)

	fx.content.setFail(domain.TabBookings, nil)
	s = fx.session(t, http.MethodPost, "/"+id+"/payment/submit", nil, 200)
	if s.Wizard.Step != 5 || s.Wizard.BookingID == "" {
		t.Fatalf("after submit: %+v", s.Wizard)
	}
	if rows := fx.content.rows(domain.TabBookings); len(rows) != 2 {
		t.Fatalf("booking rows = %d", len(rows))
	}
}
