// Package cache stores serialized calculation results so repeated requests
// with identical inputs skip recomputation. Results are pure functions of
// their inputs, so entries never need invalidating, only expiring.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Cache is a byte store with per-entry expiry.
type Cache interface {
	// Get returns the stored value and whether it was found.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key for ttl. A ttl of zero never expires.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Key derives a stable cache key from a calculation kind and its canonical
// request payload.
func Key(kind string, payload []byte) string {
	return kind + ":" + strconv.FormatUint(xxhash.Sum64(payload), 16)
}

// Outcome describes how Fetch produced its value.
type Outcome string

// Fetch outcomes.
const (
	Hit   Outcome = "hit"
	Miss  Outcome = "miss"
	Error Outcome = "error"
)

// Fetched is the outcome of Fetch. CacheErr is set when the cache itself
// failed; the value is still valid in that case.
type Fetched[T any] struct {
	Value    T
	Outcome  Outcome
	CacheErr error
}

// Fetch returns the cached value for key, or computes, stores and returns it.
// Cache failures never fail the call. Only an error from compute is returned.
func Fetch[T any](ctx context.Context, c Cache, key string, ttl time.Duration, compute func() (T, error)) (Fetched[T], error) {
	raw, found, err := c.Get(ctx, key)
	if err == nil && found {
		var cached T
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return Fetched[T]{Value: cached, Outcome: Hit}, nil
		}
	}

	fetched := Fetched[T]{Outcome: Miss}
	if err != nil {
		fetched.Outcome = Error
		fetched.CacheErr = err
	}

	value, computeErr := compute()
	if computeErr != nil {
		return fetched, computeErr
	}
	fetched.Value = value

	encoded, err := json.Marshal(value)
	if err == nil {
		err = c.Set(ctx, key, encoded, ttl)
	}
	if err != nil {
		fetched.Outcome = Error
		fetched.CacheErr = err
	}
	return fetched, nil
}
