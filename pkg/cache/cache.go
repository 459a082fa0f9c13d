// Package cache stores serialized topologies and layouts between runs.
//
// Three backends implement [Cache]:
//
//   - [NullCache]: never stores anything (caching disabled)
//   - [FileCache]: one JSON file per key, for the CLI
//   - [RedisCache]: shared cache for the HTTP server
//
// Keys come from a [Keyer] so that the same content always maps to the
// same entry. Values are opaque bytes; [GetJSON] and [SetJSON] handle the
// common JSON case.
package cache

import (
	"context"
	"encoding/json"
	"time"
)

// Default entry lifetimes.
const (
	TTLTopology = 10 * time.Minute
	TTLLayout   = 24 * time.Hour
	TTLRender   = 24 * time.Hour
	TTLHTTP     = 5 * time.Minute
)

// Cache is a byte-oriented key/value store with per-entry TTL.
type Cache interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// GetJSON reads key and decodes it into v. An entry that fails to decode
// is treated as a miss.
func GetJSON(ctx context.Context, c Cache, key string, v any) (bool, error) {
	data, ok, err := c.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		_ = c.Delete(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetJSON encodes v and stores it under key.
func SetJSON(ctx context.Context, c Cache, key string, v any, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}
