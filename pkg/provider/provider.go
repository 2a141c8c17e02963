// Package provider defines where package metadata comes from.
//
// # Overview
//
// A [Provider] maps a package name to a [Definition]: every published
// version of the package with its declared dependencies and the script and
// stylesheet URLs it contributes to a page. The resolver in [markup] asks a
// Provider at most once per package name.
//
// # Implementations
//
//   - [Static]: in-memory definitions, for tests and the catalog server
//   - [LoadFile]: a catalog file in JSON, YAML or TOML
//   - [NewCatalog]: an HTTP catalog registry (see [catalog])
//   - [NewNPM]: the npm registry, with assets mapped to jsDelivr URLs
//   - [mongo.Provider]: a MongoDB collection
//   - [Chain]: the first provider that knows the package wins
//   - [Counting]: counts fetches, for asserting memoization
//
// [markup]: github.com/filearts/corral/pkg/markup
// [catalog]: github.com/filearts/corral/pkg/integrations/catalog
// [mongo.Provider]: github.com/filearts/corral/pkg/provider/mongo.Provider
package provider

import (
	"context"
	"slices"
	"sync"

	cerrors "github.com/filearts/corral/pkg/errors"
	"github.com/filearts/corral/pkg/ref"
)

// Provider fetches the definition of a package by name.
//
// Implementations should return an error carrying
// [cerrors.ErrCodePackageNotFound] when the package does not exist so that
// [Chain] can fall through to the next provider.
type Provider interface {
	Fetch(ctx context.Context, name string) (*Definition, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, name string) (*Definition, error)

// Fetch calls f.
func (f ProviderFunc) Fetch(ctx context.Context, name string) (*Definition, error) {
	return f(ctx, name)
}

// Definition is the metadata of one package.
type Definition struct {
	Name     string    `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	Versions []Version `json:"versions" yaml:"versions" toml:"versions" bson:"versions"`
}

// Version describes one published version of a package.
type Version struct {
	Semver       string       `json:"semver" yaml:"semver" toml:"semver" bson:"semver"`
	Dependencies []Dependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty" toml:"dependencies,omitempty" bson:"dependencies,omitempty"`
	Scripts      []string     `json:"scripts,omitempty" yaml:"scripts,omitempty" toml:"scripts,omitempty" bson:"scripts,omitempty"`
	Styles       []string     `json:"styles,omitempty" yaml:"styles,omitempty" toml:"styles,omitempty" bson:"styles,omitempty"`
}

// Dependency is a dependency declared by a version. An empty Range means any
// version.
type Dependency struct {
	Name  string `json:"name" yaml:"name" toml:"name" bson:"name"`
	Range string `json:"range,omitempty" yaml:"range,omitempty" toml:"range,omitempty" bson:"range,omitempty"`
}

// Ref returns the dependency as a package reference string.
func (d Dependency) Ref() string {
	return d.Name + "@" + d.Range
}

// SortVersions returns a copy of versions ordered by descending semver
// precedence. Versions that do not parse sort last in their original order.
func SortVersions(versions []Version) []Version {
	out := slices.Clone(versions)
	slices.SortStableFunc(out, func(a, b Version) int {
		return ref.Compare(b.Semver, a.Semver)
	})
	return out
}

// NotFound returns the error providers use for unknown packages.
func NotFound(name string) error {
	return cerrors.New(cerrors.ErrCodePackageNotFound, "package %s not found", name)
}

// IsNotFound reports whether err means the package does not exist.
func IsNotFound(err error) bool {
	return cerrors.Is(err, cerrors.ErrCodePackageNotFound) || cerrors.Is(err, cerrors.ErrCodeNotFound)
}

// Static serves definitions from memory. The zero value is an empty catalog.
// Static is safe for concurrent use.
type Static struct {
	mu   sync.RWMutex
	defs map[string]*Definition
}

// NewStatic creates a Static provider holding defs, keyed by their Name.
func NewStatic(defs ...*Definition) *Static {
	s := &Static{}
	for _, d := range defs {
		s.Add(d)
	}
	return s
}

// Add registers or replaces a definition.
func (s *Static) Add(def *Definition) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.defs == nil {
		s.defs = make(map[string]*Definition)
	}
	s.defs[def.Name] = def
}

// Names returns the registered package names in sorted order.
func (s *Static) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.defs))
	for name := range s.defs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Fetch returns a copy of the named definition.
func (s *Static) Fetch(ctx context.Context, name string) (*Definition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	def, ok := s.defs[name]
	s.mu.RUnlock()
	if !ok {
		return nil, NotFound(name)
	}
	out := *def
	out.Versions = slices.Clone(def.Versions)
	return &out, nil
}

// Chain asks each provider in turn and returns the first definition found.
// Errors other than not-found stop the chain.
type Chain []Provider

// Fetch implements Provider.
func (c Chain) Fetch(ctx context.Context, name string) (*Definition, error) {
	for _, p := range c {
		def, err := p.Fetch(ctx, name)
		if err == nil {
			return def, nil
		}
		if !IsNotFound(err) {
			return nil, err
		}
	}
	return nil, NotFound(name)
}

// Counting wraps a provider and records how often each name is fetched.
type Counting struct {
	Provider Provider

	mu     sync.Mutex
	counts map[string]int
}

// NewCounting wraps p.
func NewCounting(p Provider) *Counting {
	return &Counting{Provider: p}
}

// Fetch implements Provider.
func (c *Counting) Fetch(ctx context.Context, name string) (*Definition, error) {
	c.mu.Lock()
	if c.counts == nil {
		c.counts = make(map[string]int)
	}
	c.counts[name]++
	c.mu.Unlock()
	return c.Provider.Fetch(ctx, name)
}

// Count returns how many times name was fetched.
func (c *Counting) Count(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counts[name]
}

// Total returns the number of fetches across all names.
func (c *Counting) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.counts {
		n += v
	}
	return n
}
