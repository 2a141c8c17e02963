// Package cache stores opaque byte payloads under string keys.
//
// Backends:
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: a shared Redis instance, for the catalog server
//   - [NullCache]: stores nothing
//
// Keys are built by a [Keyer] so that every layer agrees on the namespace
// a payload lives in. The package also holds the retry helpers the registry
// clients use for transient failures.
package cache

import (
	"context"
	"time"
)

// Cache is a byte-oriented key/value store with per-entry expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the payload for key. A missing or expired entry is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of zero means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey is the key of a cached registry response.
	HTTPKey(namespace, key string) string

	// DefinitionKey is the key of a cached package definition from source.
	DefinitionKey(source, name string) string
}

// DefaultKeyer produces "http:<namespace>:<key>" and hashed
// "definition:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// HTTPKey implements Keyer.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// DefinitionKey implements Keyer.
func (DefaultKeyer) DefinitionKey(source, name string) string {
	return hashKey("definition", source, name)
}
