package cache

// ScopedKeyer wraps a Keyer with a prefix, so several catalogs can share one
// backend without their entries colliding.
//
//	staging := NewScopedKeyer(NewDefaultKeyer(), "staging:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for registry response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// DefinitionKey generates a prefixed key for package definition caching.
func (k *ScopedKeyer) DefinitionKey(source, name string) string {
	return k.prefix + k.inner.DefinitionKey(source, name)
}
