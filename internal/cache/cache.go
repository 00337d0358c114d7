package cache

import (
	"context"
	"errors"

	"github.com/launchset/gym-booking/domain"
)

// Entry is a cached checkout result plus the fingerprint of the request that produced it.
type Entry struct {
	Fingerprint string                       `json:"fingerprint"`
	Session     domain.CheckoutSessionResult `json:"session"`
}

// SessionCache remembers checkout results by idempotency key.
type SessionCache interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry *Entry) error
}

var ErrCacheMiss = errors.New("cache miss")

// NopCache is used when no Redis is configured; every lookup misses.
type NopCache struct{}

func (NopCache) Get(context.Context, string) (*Entry, error) {
	return nil, ErrCacheMiss
}

func (NopCache) Set(context.Context, string, *Entry) error {
	return nil
}
