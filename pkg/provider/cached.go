package provider

import (
	"context"
	"encoding/json"
	"time"

	"github.com/filearts/corral/pkg/cache"
)

// Cached stores the definitions another provider returns in a cache, keyed
// by [cache.Keyer.DefinitionKey]. Failures are not cached.
type Cached struct {
	inner  Provider
	cache  cache.Cache
	keyer  cache.Keyer
	source string
	ttl    time.Duration
}

// NewCached wraps p. source distinguishes providers sharing one cache; a nil
// keyer uses [cache.NewDefaultKeyer].
func NewCached(p Provider, c cache.Cache, keyer cache.Keyer, source string, ttl time.Duration) *Cached {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Cached{inner: p, cache: c, keyer: keyer, source: source, ttl: ttl}
}

// Fetch implements Provider.
func (c *Cached) Fetch(ctx context.Context, name string) (*Definition, error) {
	key := c.keyer.DefinitionKey(c.source, name)
	if data, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		var def Definition
		if json.Unmarshal(data, &def) == nil {
			return &def, nil
		}
	}

	def, err := c.inner.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(def); err == nil {
		_ = c.cache.Set(ctx, key, data, c.ttl)
	}
	return def, nil
}
