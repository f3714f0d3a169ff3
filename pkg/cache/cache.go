// Package cache stores derived artifacts (payloads, layouts, rendered SVG)
// keyed by content hash.
//
// # Backends
//
//   - [FileCache]: one JSON file per entry under a directory, for the CLI
//   - [RedisCache]: shared cache for the API server
//   - [NullCache]: caching disabled
//
// All backends satisfy [Cache]. [Instrument] wraps any backend so hits,
// misses and writes reach the observability cache hooks.
//
// # Keys
//
// A [Keyer] derives keys from what an artifact depends on, so a changed
// registry or changed render options never return a stale entry:
//
//	k := cache.NewDefaultKeyer()
//	key := k.LayoutKey(payloadHash, cache.LayoutKeyOpts{VizType: "radial", Width: 800, Height: 600})
//
// Keys are "<type>:<sha256>"; the type prefix is what the hooks report.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the value and true on a hit, or nil and false on a miss.
	// Expired entries are misses.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A non-positive ttl means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Default time-to-live per entry type. Payloads and layouts are keyed by
// content hash and never go stale; the TTLs only bound disk and memory use.
const (
	TTLPayload  = 24 * time.Hour
	TTLLayout   = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
	TTLProps    = 7 * 24 * time.Hour
)
