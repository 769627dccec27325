package redisad_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	redisad "slow_travel/internal/adapters/redis"
)

type wizardState struct {
	ID    string `json:"id"`
	Step  int    `json:"step"`
	Date  string `json:"date"`
	Addon []string
}

func TestSessionStore_RoundTripAndTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	s := redisad.New(mr.Addr(), "", 0)
	defer s.Close()
	ctx := context.Background()

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	var got wizardState
	ok, err := s.Get(ctx, "wizard:abc", &got)
	if err != nil || ok {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	in := wizardState{ID: "abc", Step: 3, Date: "2026-03-20", Addon: []string{"AO-001"}}
	if err := s.Set(ctx, "wizard:abc", in, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if ttl := mr.TTL("slowtravel:wizard:abc"); ttl != 60*time.Second {
		t.Fatalf("unexpected ttl %v", ttl)
	}

	ok, err = s.Get(ctx, "wizard:abc", &got)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.Step != 3 || got.Date != "2026-03-20" || len(got.Addon) != 1 {
		t.Fatalf("unexpected state: %+v", got)
	}

	mr.FastForward(61 * time.Second)
	if ok, _ := s.Get(ctx, "wizard:abc", &got); ok {
		t.Fatalf("session should have expired")
	}
}

func TestSessionStore_Del(t *testing.T) {
	mr := miniredis.RunT(t)
	s := redisad.New(mr.Addr(), "", 0)
	defer s.Close()
	ctx := context.Background()

	if err := s.Set(ctx, "wizard:x", wizardState{ID: "x"}, 60); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Del(ctx, "wizard:x"); err != nil {
		t.Fatalf("del: %v", err)
	}
	if mr.Exists("slowtravel:wizard:x") {
		t.Fatalf("key still present")
	}
}
