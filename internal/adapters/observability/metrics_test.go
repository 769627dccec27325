package observability_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"slow_travel/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so the vectors show up in the output
	observability.ObserveHTTP("/api/day-trips", "GET", 200, 12*time.Millisecond)
	observability.ObserveExternal("sheets", "values.get", 200, 30*time.Millisecond)
	observability.ObserveSession("redis", "hit")
	observability.ObserveBooking("recorded")

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, name := range []string{
		"slowtravel_http_requests_total",
		"slowtravel_external_requests_total",
		"slowtravel_session_events_total",
		`slowtravel_bookings_total{outcome="recorded"}`,
	} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}

func TestNewLogger_ConsoleInDev(t *testing.T) {
	l := observability.NewLogger("dev")
	l.Info().Msg("smoke")
	l = observability.NewLogger("production")
	l.Info().Msg("smoke")
}
