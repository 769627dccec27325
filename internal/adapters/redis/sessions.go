package redisad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"slow_travel/internal/adapters/observability"
)

// SessionStore keeps booking wizard state as JSON values with a TTL.
// Every write refreshes the TTL, so an idle wizard expires on its own.
type SessionStore struct {
	c      *redis.Client
	prefix string
}

func New(addr, pass string, db int) *SessionStore {
	return NewWithClient(redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}))
}

func NewWithClient(c *redis.Client) *SessionStore {
	return &SessionStore{c: c, prefix: "slowtravel:"}
}

func (r *SessionStore) Ping(ctx context.Context) error { return r.c.Ping(ctx).Err() }

func (r *SessionStore) Close() error { return r.c.Close() }

func (r *SessionStore) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.ObserveSession("redis", "miss")
		return false, nil
	}
	if err != nil {
		return false, err
	}
	observability.ObserveSession("redis", "hit")
	return true, json.Unmarshal(v, dst)
}

func (r *SessionStore) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", key, err)
	}
	observability.ObserveSession("redis", "set")
	return r.c.Set(ctx, r.prefix+key, b, time.Duration(ttlSec)*time.Second).Err()
}

func (r *SessionStore) Del(ctx context.Context, key string) error {
	observability.ObserveSession("redis", "del")
	return r.c.Del(ctx, r.prefix+key).Err()
}
