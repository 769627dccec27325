package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"slow_travel/internal/domain"
)

// ErrEmptyTab means the source returned no header row; the local copy is kept.
var ErrEmptyTab = errors.New("tab is empty")

type MirrorService struct {
	source domain.TabStore
	target domain.TabMirror
}

func NewMirrorService(src domain.TabStore, dst domain.TabMirror) *MirrorService {
	return &MirrorService{source: src, target: dst}
}

// MirrorResult is the outcome of copying one tab.
type MirrorResult struct {
	Tab     string
	Rows    int      // data rows, header excluded
	Missing []string // schema columns absent from the source header
	Err     error
}

// MirrorTab copies one tab wholesale. A failed or empty read leaves the previous
// copy in place; every attempt is logged to the target.
func (s *MirrorService) MirrorTab(ctx context.Context, tab string) MirrorResult {
	rows, err := s.source.Values(ctx, tab)
	if err == nil && len(rows) == 0 {
		err = ErrEmptyTab
	}
	if err != nil {
		s.logRun(ctx, tab, 0, err)
		return MirrorResult{Tab: tab, Err: fmt.Errorf("read %s: %w", tab, err)}
	}

	// A drifted header is still copied so the mirror matches what the site reads.
	missing := domain.HeaderDrift(tab, rows[0])
	if len(missing) > 0 {
		log.Warn().Str("tab", tab).Strs("missing", missing).Msg("tab header drifted")
	}
	if err := s.target.ReplaceTab(ctx, tab, rows); err != nil {
		s.logRun(ctx, tab, 0, err)
		return MirrorResult{Tab: tab, Missing: missing, Err: fmt.Errorf("replace %s: %w", tab, err)}
	}
	n := len(rows) - 1
	s.logRun(ctx, tab, n, nil)
	return MirrorResult{Tab: tab, Rows: n, Missing: missing}
}

func (s *MirrorService) logRun(ctx context.Context, tab string, n int, err error) {
	if lerr := s.target.LogMirror(ctx, tab, n, err); lerr != nil {
		log.Warn().Err(lerr).Str("tab", tab).Msg("record mirror run failed")
	}
}

// MirrorAll copies tabs with at most workers in flight. Results come back in tab order.
func (s *MirrorService) MirrorAll(ctx context.Context, tabs []string, workers int) ([]MirrorResult, error) {
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))
	var (
		wg  sync.WaitGroup
		mu  sync.Mutex
		out = make([]MirrorResult, 0, len(tabs))
	)

	for _, tab := range tabs {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return out, err
		}
		wg.Add(1)
		go func(tab string) {
			defer wg.Done()
			defer sem.Release(1)

			res := s.MirrorTab(ctx, tab)
			if res.Err != nil {
				log.Warn().Err(res.Err).Str("tab", tab).Msg("mirror failed")
			} else {
				log.Info().Str("tab", tab).Int("rows", res.Rows).Msg("mirror ok")
			}
			mu.Lock()
			out = append(out, res)
			mu.Unlock()
		}(tab)
	}
	wg.Wait()

	order := make(map[string]int, len(tabs))
	for i, t := range tabs {
		order[t] = i
	}
	sort.Slice(out, func(i, j int) bool { return order[out[i].Tab] < order[out[j].Tab] })
	return out, nil
}
