// Package cache memoises source rows read from the price store.
// Values are stored msgpack-encoded, so every Get decodes a fresh copy and
// callers never share mutable state with the cache.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Backend names accepted by configuration
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendNone   = "none"
)

// Cache is a key/value store with per-entry expiry.
// A ttl of zero means the entry never expires.
type Cache interface {
	// Get decodes the entry for key into dst. It reports false on a miss or an expired entry.
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Purge removes every entry and returns how many were removed.
	Purge(ctx context.Context) (int64, error)
	// DeleteExpired removes expired entries and returns how many were removed.
	DeleteExpired(ctx context.Context) (int64, error)
}

// Key builds a cache key from query parameters.
func Key(parts ...string) string {
	return strings.Join(parts, "|")
}

func encode(value interface{}) ([]byte, error) {
	data, err := msgpack.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cache value: %w", err)
	}
	return data, nil
}

func decode(data []byte, dst interface{}) error {
	if err := msgpack.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to decode cache value: %w", err)
	}
	return nil
}

// expiresAt converts a ttl into a unix timestamp; zero means never.
func expiresAt(now time.Time, ttl time.Duration) int64 {
	if ttl <= 0 {
		return 0
	}
	return now.Add(ttl).Unix()
}

func expired(expires int64, now time.Time) bool {
	return expires != 0 && expires <= now.Unix()
}
