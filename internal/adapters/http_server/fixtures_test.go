package httpserver_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	httpserver "slow_travel/internal/adapters/http_server"
	redisad "slow_travel/internal/adapters/redis"
	"slow_travel/internal/app"
	"slow_travel/internal/domain"
	"slow_travel/internal/presentation"
)

var testNow = time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

// memStore is an in-memory spreadsheet; tabs in fail return their error.
type memStore struct {
	mu   sync.Mutex
	tabs map[string][][]string
	fail map[string]error
}

func newMemStore() *memStore {
	return &memStore{tabs: map[string][][]string{}, fail: map[string]error{}}
}

func (m *memStore) with(tab string, rows ...[]string) *memStore {
	m.tabs[tab] = rows
	return m
}

func (m *memStore) setFail(tab string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[tab] = err
}

func (m *memStore) Values(ctx context.Context, tab string) ([][]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[tab]; err != nil {
		return nil, err
	}
	out := make([][]string, len(m.tabs[tab]))
	copy(out, m.tabs[tab])
	return out, nil
}

func (m *memStore) Append(ctx context.Context, tab string, rows [][]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[tab]; err != nil {
		return err
	}
	m.tabs[tab] = append(m.tabs[tab], rows...)
	return nil
}

func (m *memStore) UpdateRow(ctx context.Context, tab string, rowIndex int, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail[tab]; err != nil {
		return err
	}
	if rowIndex < 1 || rowIndex > len(m.tabs[tab]) {
		return fmt.Errorf("row %d out of range", rowIndex)
	}
	m.tabs[tab][rowIndex-1] = values
	return nil
}

func (m *memStore) rows(tab string) [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tabs[tab]
}

type stubPayments struct {
	mu         sync.Mutex
	orders     int
	createErr  error
	captureErr error
}

func (p *stubPayments) CreateOrder(ctx context.Context, amount, description string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.createErr != nil {
		return "", p.createErr
	}
	p.orders++
	return fmt.Sprintf("ORDER-%d", p.orders), nil
}

func (p *stubPayments) CaptureOrder(ctx context.Context, orderID string) (string, error) {
	if p.captureErr != nil {
		return "", p.captureErr
	}
	return "TX-" + orderID, nil
}

var errSheetDown = errors.New("sheet unavailable")

func contentTabs() *memStore {
	return newMemStore().
		with(domain.TabRegions,
			domain.Schema[domain.TabRegions],
			[]string{"imperial-cities", "Imperial Cities", "Old capitals", "", "Four royal cities.", "1"},
		).
		with(domain.TabDestinations,
			domain.Schema[domain.TabDestinations],
			[]string{"marrakech", "Marrakech", "The red city", "imperial-cities", "", "", "Souks and gardens", "## Medina\n\nWalk slowly.", "TRUE", "TRUE", "1"},
		).
		with(domain.TabPlaces,
			domain.Schema[domain.TabPlaces],
			[]string{"bahia-palace", "Bahia Palace", "marrakech", "Palace", "Riad Zitoun el Jdid", "9-17", "70 MAD", "", "", "", "A palace.", "## History\n\nBuilt in the 1860s.", "", "palace,medina", "TRUE", "TRUE", "1"},
			[]string{"draft-place", "Draft", "marrakech", "", "", "", "", "", "", "", "", "", "", "", "FALSE", "", "2"},
		).
		with(domain.TabPlaceImages,
			domain.Schema[domain.TabPlaceImages],
			[]string{"bahia-palace", "2", "https://img.example/2.jpg", ""},
			[]string{"bahia-palace", "1", "https://img.example/1.jpg", "Courtyard"},
		).
		with(domain.TabDayTrips,
			domain.Schema[domain.TabDayTrips],
			[]string{"ourika", "R1", "Ourika Valley", "Waterfalls and lunch", "8", "1100", "100", "", "Mountains", "", "Driver|Fuel", "Lunch", "Your riad", "TRUE"},
			[]string{"hidden", "R2", "Hidden", "", "6", "900", "80", "", "", "", "", "", "", "no"},
		).
		with(domain.TabAddons,
			domain.Schema[domain.TabAddons],
			[]string{"AO-001", "Lunch", "Berber lunch", "220", "20", "ourika|imlil", "yes"},
			[]string{"AO-002", "Guide", "Local guide", "330", "30", "ourika", "1"},
			[]string{"AO-003", "Hammam", "", "440", "40", "imlil", "true"},
		).
		with(domain.TabContentLibrary,
			domain.Schema[domain.TabContentLibrary],
			[]string{"R1", "Up the valley.", "", "Setti Fatma", "", "1.5", "", "Easy", "", ""},
		).
		with(domain.TabSettings,
			domain.Schema[domain.TabSettings],
			[]string{domain.SettingDayTripsHero, "https://drive.google.com/file/d/XYZ/view"},
		).
		with(domain.TabJourneys,
			domain.Schema[domain.TabJourneys],
			[]string{"imperial-route", "Imperial Route", "8 days", "Fes to Marrakech", "", "fes,marrakech", "TRUE"},
		).
		with(domain.TabBookings, domain.Schema[domain.TabBookings])
}

type fixture struct {
	content  *memStore
	nexus    *memStore
	payments *stubPayments
	redis    *miniredis.Miniredis
	srv      *httptest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		content:  contentTabs(),
		nexus:    newMemStore().with(domain.TabNewsletter, domain.Schema[domain.TabNewsletter]),
		payments: &stubPayments{},
		redis:    miniredis.RunT(t),
	}

	sessions := redisad.New(fx.redis.Addr(), "", 0)
	t.Cleanup(func() { _ = sessions.Close() })

	clock := func() time.Time { return testNow }
	content := app.NewContentService(fx.content)
	bookings := app.NewBookingService(content).WithClock(tick(testNow))
	flow := app.NewBookingFlow(content, sessions, fx.payments, bookings, 30*time.Minute).WithClock(clock)

	views, err := presentation.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	srv := httpserver.New()
	srv.MountStatic(presentation.Static())
	srv.MountHandlers(&httpserver.Handlers{
		Content:    content,
		Flow:       flow,
		Bookings:   bookings,
		Newsletter: app.NewNewsletterService(app.NewContentService(fx.nexus), "slow-morocco"),
		Sitemap:    app.NewSitemapService(content, "https://example.com/"),
		Views:      views,
		Site: presentation.Site{
			Name: "Slow Morocco", URL: "https://example.com",
			Locality: "Marrakech", Country: "MA", CountryName: "Morocco",
			PayPalClientID: "client-123",
		},
		Now: clock,
	})
	fx.srv = httptest.NewServer(srv.Mux())
	t.Cleanup(fx.srv.Close)
	return fx
}

// tick advances a millisecond per call so booking ids never collide.
func tick(start time.Time) func() time.Time {
	t := start
	var mu sync.Mutex
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Millisecond)
		return t
	}
}

func (fx *fixture) do(t *testing.T, method, path string, body any, header ...string) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = strings.NewReader(string(b))
	}
	req, err := http.NewRequest(method, fx.srv.URL+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	out, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return res, out
}

func decode(t *testing.T, b []byte, dst any) {
	t.Helper()
	if err := json.Unmarshal(b, dst); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
}
