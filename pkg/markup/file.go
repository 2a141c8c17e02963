// Package markup keeps the asset tags of an HTML document in sync with a tree
// of package dependencies.
//
// # Overview
//
// A [File] owns a parsed document and a dependency graph. Adding a package
// reference resolves the package through a [provider.Provider], recursively
// resolves the dependencies of the selected version, and rewrites the
// document so each package's script and stylesheet tags sit directly before
// the tags of the package that pulled it in:
//
//	f, _ := markup.New(catalog)
//	_ = f.AddDependency(ctx, "bootstrap@^3.0.0")
//	fmt.Println(f.String())
//
// # Version Selection
//
// Every package uses the highest published version satisfying the range it
// was most recently requested with. Metadata is fetched once per package
// name for the lifetime of the graph; requesting a package again with a
// different range only reselects among the versions already known.
//
// # Tag Placement
//
// Tags carry their provenance:
//
//	<script data-require="jquery@^2.0.0" data-semver="2.1.0" src="jquery.js"></script>
//
// A package's tags are placed, in order of preference, before the first tag
// of its most recently linked parent that has tags, in place of its own
// previous tags, or at a structural position in the head. Placement is
// idempotent: updating a package twice without a resolution change leaves the
// document byte-identical.
//
// # Concurrency
//
// A File may be used from multiple goroutines. Provider fetches for distinct
// packages run concurrently; every graph and document mutation happens under
// one mutex.
package markup

import (
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/filearts/corral/pkg/dom"
	cerrors "github.com/filearts/corral/pkg/errors"
	"github.com/filearts/corral/pkg/provider"
)

// File is an HTML document together with the dependency graph whose tags it
// carries.
type File struct {
	provider provider.Provider
	logger   *log.Logger

	mu       sync.Mutex
	doc      *dom.Document
	packages map[string]*Package
	ordering []*Package
	waits    waitGraph
	gen      int // bumped by Reset
}

// Option configures a File.
type Option func(*File)

// WithLogger sets the logger used for resolution diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(f *File) {
		if l != nil {
			f.logger = l
		}
	}
}

// New creates a File backed by p holding the default skeleton document.
func New(p provider.Provider, opts ...Option) (*File, error) {
	if p == nil {
		return nil, cerrors.New(cerrors.ErrCodeInvalidInput, "markup file requires a package provider")
	}
	f := &File{provider: p, logger: log.Default()}
	for _, opt := range opts {
		opt(f)
	}
	if err := f.Reset(""); err != nil {
		return nil, err
	}
	return f, nil
}

// Reset discards every package and reloads the document from markup. Empty
// markup loads [dom.DefaultMarkup]. Resolutions still in flight when Reset
// is called finish without touching the new graph or document.
func (f *File) Reset(markup string) error {
	doc, err := dom.Parse(markup)
	if err != nil {
		return cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "parse markup")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doc = doc
	f.packages = make(map[string]*Package)
	f.ordering = nil
	f.waits = waitGraph{}
	f.gen++
	return nil
}

// String renders the current document.
func (f *File) String() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.doc.String()
}

// Package returns a snapshot of the named package.
func (f *File) Package(name string) (PackageInfo, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.packages[name]
	if !ok {
		return PackageInfo{}, false
	}
	return p.info(), true
}

// Packages returns a snapshot of every known package keyed by name.
func (f *File) Packages() map[string]PackageInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot()
}

// Ordering returns the package names of the ordering list. Dependencies come
// before the packages that pulled them in.
func (f *File) Ordering() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.ordering))
	for i, p := range f.ordering {
		names[i] = p.name
	}
	return names
}

func (f *File) snapshot() map[string]PackageInfo {
	out := make(map[string]PackageInfo, len(f.packages))
	for name, p := range f.packages {
		out[name] = p.info()
	}
	return out
}

// getOrCreate returns the node for name, creating it with the any-version
// range on first reference. Caller holds f.mu.
func (f *File) getOrCreate(name string) *Package {
	p, ok := f.packages[name]
	if !ok {
		p = newPackage(name)
		f.packages[name] = p
	}
	return p
}

// owns reports whether p belongs to the current graph, that is, no Reset
// happened since p was created. Caller holds f.mu.
func (f *File) owns(p *Package) bool {
	return f.packages[p.name] == p
}

// insertOrdered lists p at the lowest index of its listed parents, or at the
// end when none is listed. Caller holds f.mu.
func (f *File) insertOrdered(p *Package) {
	if slices.Contains(f.ordering, p) {
		return
	}
	at := len(f.ordering)
	for _, parent := range p.parents.list {
		if i := slices.Index(f.ordering, parent); i >= 0 && i < at {
			at = i
		}
	}
	f.ordering = slices.Insert(f.ordering, at, p)
}

// sortedPackages returns the known packages ordered by name. Caller holds f.mu.
func (f *File) sortedPackages() []*Package {
	pkgs := make([]*Package, 0, len(f.packages))
	for _, p := range f.packages {
		pkgs = append(pkgs, p)
	}
	slices.SortFunc(pkgs, func(a, b *Package) int {
		return strings.Compare(a.name, b.name)
	})
	return pkgs
}
