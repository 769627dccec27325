package app_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"slow_travel/internal/domain"
)

// ---- fakes ----

// fakeStore is an in-memory spreadsheet. Tabs listed in fail return err.
type fakeStore struct {
	mu   sync.Mutex
	tabs map[string][][]string
	fail map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{tabs: map[string][][]string{}, fail: map[string]error{}}
}

func (f *fakeStore) with(tab string, rows ...[]string) *fakeStore {
	f.tabs[tab] = rows
	return f
}

func (f *fakeStore) Values(ctx context.Context, tab string) ([][]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[tab]; err != nil {
		return nil, err
	}
	out := make([][]string, len(f.tabs[tab]))
	copy(out, f.tabs[tab])
	return out, nil
}

func (f *fakeStore) Append(ctx context.Context, tab string, rows [][]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[tab]; err != nil {
		return err
	}
	f.tabs[tab] = append(f.tabs[tab], rows...)
	return nil
}

func (f *fakeStore) UpdateRow(ctx context.Context, tab string, rowIndex int, values []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fail[tab]; err != nil {
		return err
	}
	if rowIndex < 1 || rowIndex > len(f.tabs[tab]) {
		return fmt.Errorf("row %d out of range", rowIndex)
	}
	f.tabs[tab][rowIndex-1] = values
	return nil
}

func (f *fakeStore) rows(tab string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tabs[tab]
}

// fakeSessions round-trips through JSON the way the redis store does.
type fakeSessions struct {
	store map[string][]byte
}

func (c *fakeSessions) Get(ctx context.Context, key string, dst any) (bool, error) {
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *fakeSessions) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.store[key] = b
	return nil
}

func (c *fakeSessions) Del(ctx context.Context, key string) error {
	delete(c.store, key)
	return nil
}

type fakePayments struct {
	orders      int
	lastAmount  string
	lastDesc    string
	createErr   error
	captureErr  error
	transaction string
}

func (p *fakePayments) CreateOrder(ctx context.Context, amount, description string) (string, error) {
	if p.createErr != nil {
		return "", p.createErr
	}
	p.orders++
	p.lastAmount, p.lastDesc = amount, description
	return fmt.Sprintf("ORDER-%d", p.orders), nil
}

func (p *fakePayments) CaptureOrder(ctx context.Context, orderID string) (string, error) {
	if p.captureErr != nil {
		return "", p.captureErr
	}
	return p.transaction, nil
}

var errBoom = errors.New("boom")

// ---- fixtures ----

var dayTripsTab = [][]string{
	{"Slug", "Route_ID", "Title", "Short_Description", "Duration_Hours", "Final_Price_MAD", "Final_Price_EUR", "Departure_City", "Published"},
	{"ourika", "R1", "Ourika Valley", "Waterfalls<br>and lunch", "8", "1100", "100", "", "TRUE"},
	{"hidden", "R2", "Hidden", "", "6", "900", "80", "", "no"},
}

var addonsTab = [][]string{
	{"Addon_ID", "Addon_Name", "Description", "Final_Price_MAD_PP", "Final_Price_EUR_PP", "Applies_To", "Published"},
	{"AO-001", "Lunch", "Berber lunch", "220", "20", "ourika|imlil", "yes"},
	{"AO-002", "Guide", "Local guide", "330", "30", "ourika", "1"},
	{"AO-003", "Hammam", "", "440", "40", "imlil", "true"},
	{"AO-004", "Draft", "", "10", "1", "ourika", "false"},
}

var libraryTab = [][]string{
	{"Route_ID", "Route_Narrative", "From_City", "To_City"},
	{"R1", "Up the valley.", "", "Setti Fatma"},
}

func contentFixture() *fakeStore {
	return newFakeStore().
		with(domain.TabDayTrips, dayTripsTab...).
		with(domain.TabAddons, addonsTab...).
		with(domain.TabContentLibrary, libraryTab...).
		with(domain.TabBookings, domain.Schema[domain.TabBookings])
}
