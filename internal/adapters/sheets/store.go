package sheetsad

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/spf13/cast"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"slow_travel/internal/adapters/observability"
	"slow_travel/internal/domain"
)

// Store is a domain.TabStore backed by one Google spreadsheet. The API client is
// built on first use so a missing credential only fails the calls that need it.
type Store struct {
	sheetID string
	creds   string // base64 service account JSON
	opts    []option.ClientOption
	rl      *rate.Limiter

	mu  sync.Mutex
	svc *sheets.Service
}

// New returns a store for sheetID. rps bounds outbound calls; <= 0 means 5.
// Extra options are appended after the credentials (tests point the endpoint elsewhere).
func New(sheetID, credsBase64 string, rps int, opts ...option.ClientOption) *Store {
	if rps <= 0 {
		rps = 5
	}
	return &Store{
		sheetID: sheetID,
		creds:   credsBase64,
		opts:    opts,
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
	}
}

func (s *Store) service(ctx context.Context) (*sheets.Service, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.svc != nil {
		return s.svc, nil
	}
	if s.sheetID == "" {
		return nil, fmt.Errorf("%w: spreadsheet id missing", domain.ErrNotConfigured)
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsScope)}
	if s.creds != "" {
		raw, err := base64.StdEncoding.DecodeString(s.creds)
		if err != nil {
			return nil, fmt.Errorf("%w: decode service account: %v", domain.ErrNotConfigured, err)
		}
		opts = append(opts, option.WithCredentialsJSON(raw))
	} else if len(s.opts) == 0 {
		return nil, fmt.Errorf("%w: service account missing", domain.ErrNotConfigured)
	}
	opts = append(opts, s.opts...)

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("sheets client: %w", err)
	}
	s.svc = svc
	return svc, nil
}

// Values reads the whole tab, header row included. Cells come back as strings.
func (s *Store) Values(ctx context.Context, tab string) ([][]string, error) {
	svc, err := s.service(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.rl.Wait(ctx); err != nil {
		return nil, err
	}
	start := time.Now()
	resp, err := svc.Spreadsheets.Values.Get(s.sheetID, tab+"!A1:ZZ").Context(ctx).Do()
	observability.ObserveExternal("sheets", "values.get", statusOf(err), time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", tab, err)
	}

	out := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = cast.ToString(c)
		}
		out = append(out, cells)
	}
	return out, nil
}

// Append writes rows after the last non-empty row of tab, values stored as typed.
func (s *Store) Append(ctx context.Context, tab string, rows [][]string) error {
	svc, err := s.service(ctx)
	if err != nil {
		return err
	}
	if err := s.rl.Wait(ctx); err != nil {
		return err
	}
	start := time.Now()
	_, err = svc.Spreadsheets.Values.Append(s.sheetID, tab+"!A:ZZ", valueRange(rows)).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	observability.ObserveExternal("sheets", "values.append", statusOf(err), time.Since(start))
	if err != nil {
		return fmt.Errorf("append %s: %w", tab, err)
	}
	return nil
}

// UpdateRow overwrites the 1-based row rowIndex starting at column A.
func (s *Store) UpdateRow(ctx context.Context, tab string, rowIndex int, values []string) error {
	if rowIndex < 1 {
		return fmt.Errorf("update %s: invalid row %d", tab, rowIndex)
	}
	svc, err := s.service(ctx)
	if err != nil {
		return err
	}
	if err := s.rl.Wait(ctx); err != nil {
		return err
	}
	rng := fmt.Sprintf("%s!A%d:ZZ%d", tab, rowIndex, rowIndex)
	start := time.Now()
	_, err = svc.Spreadsheets.Values.Update(s.sheetID, rng, valueRange([][]string{values})).
		ValueInputOption("RAW").
		Context(ctx).Do()
	observability.ObserveExternal("sheets", "values.update", statusOf(err), time.Since(start))
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func valueRange(rows [][]string) *sheets.ValueRange {
	vr := &sheets.ValueRange{Values: make([][]interface{}, len(rows))}
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, c := range row {
			cells[j] = c
		}
		vr.Values[i] = cells
	}
	return vr
}

func statusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return gerr.Code
	}
	return 0
}
