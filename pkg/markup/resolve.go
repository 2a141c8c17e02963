package markup

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	cerrors "github.com/filearts/corral/pkg/errors"
	"github.com/filearts/corral/pkg/observability"
	"github.com/filearts/corral/pkg/provider"
	"github.com/filearts/corral/pkg/ref"
)

// call is a future shared by every goroutine interested in one outcome.
type call struct {
	done chan struct{}
	err  error // set before done is closed
}

func newCall() *call {
	return &call{done: make(chan struct{})}
}

func (c *call) wait(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// errDiscarded ends a resolution whose graph was replaced by Reset.
var errDiscarded = errors.New("graph was reset")

// waitGraph records which resolution passes are blocked on which. An edge
// from a to b counts how many times a is waiting for b's pass to finish.
type waitGraph map[*Package]map[*Package]int

func (g waitGraph) add(from, to *Package) {
	if g[from] == nil {
		g[from] = make(map[*Package]int)
	}
	g[from][to]++
}

func (g waitGraph) remove(from, to *Package) {
	m := g[from]
	if m == nil {
		return
	}
	if m[to]--; m[to] <= 0 {
		delete(m, to)
	}
	if len(m) == 0 {
		delete(g, from)
	}
}

// reaches reports whether from is to or transitively waits on it.
func (g waitGraph) reaches(from, to *Package) bool {
	seen := map[*Package]bool{}
	stack := []*Package{from}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if p == to {
			return true
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		for next := range g[p] {
			stack = append(stack, next)
		}
	}
	return false
}

// AddDependency resolves the package reference s with its transitive
// dependencies and places the resulting tags in the document.
//
// An unparsable reference fails with INVALID_REFERENCE before any fetch. A
// provider failure fails with METADATA_FETCH and leaves the graph as it was;
// calling AddDependency again retries the fetch. A range matching no
// published version is not an error. When the File is Reset before the
// resolution finishes, its result is dropped and AddDependency returns nil.
func (f *File) AddDependency(ctx context.Context, s string) error {
	r, err := ref.Parse(s)
	if err != nil {
		return err
	}
	p, err := f.resolve(ctx, r, nil)
	if errors.Is(err, errDiscarded) {
		return nil
	}
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.owns(p) {
		return nil
	}
	f.updateTags(ctx, p, true, map[*Package]bool{})
	return nil
}

// ResolveAll resolves every known package again against the range it was
// last requested with and returns a snapshot of the graph. Packages whose
// earlier resolution failed are retried. Tags are not touched; follow with
// [File.RefreshAll] to rewrite them.
func (f *File) ResolveAll(ctx context.Context) (map[string]PackageInfo, error) {
	f.mu.Lock()
	gen := f.gen
	pkgs := f.sortedPackages()
	refs := make([]ref.Ref, len(pkgs))
	for i, p := range pkgs {
		refs[i] = ref.Ref{Name: p.name, TextRange: p.textRange, Range: p.rng}
	}
	f.mu.Unlock()

	for _, r := range refs {
		f.mu.Lock()
		reset := f.gen != gen
		f.mu.Unlock()
		if reset {
			break
		}
		if _, err := f.resolve(ctx, r, nil); err != nil && !errors.Is(err, errDiscarded) {
			return nil, err
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot(), nil
}

// resolve returns the node for r once its first resolution pass is complete,
// starting that pass if nobody has. waiter is the package whose pass asked
// for r, or nil for a root request.
//
// A second request for a known package reuses the fetched versions and only
// reselects against the new range; it never walks dependencies again. When
// waiting on the running pass would close a cycle of passes waiting on each
// other, the request waits for the metadata only.
func (f *File) resolve(ctx context.Context, r ref.Ref, waiter *Package) (*Package, error) {
	f.mu.Lock()
	if waiter != nil && !f.owns(waiter) {
		f.mu.Unlock()
		return nil, errDiscarded
	}
	p := f.getOrCreate(r.Name)

	if c := p.pass; c != nil {
		cyclic := waiter != nil && f.waits.reaches(p, waiter)
		if waiter != nil && !cyclic {
			f.waits.add(waiter, p)
		}
		f.mu.Unlock()

		var err error
		if cyclic {
			err = f.ensureFetched(ctx, p)
		} else {
			err = c.wait(ctx)
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		if waiter != nil && !cyclic {
			f.waits.remove(waiter, p)
		}
		if err != nil {
			return nil, err
		}
		if !f.owns(p) {
			return nil, errDiscarded
		}
		p.setRange(r)
		if !cyclic && len(p.matching) > 0 {
			// The pass is over; list a package it left out for lack of a
			// match.
			f.insertOrdered(p)
		}
		return p, nil
	}

	c := newCall()
	p.pass = c
	if waiter != nil {
		f.waits.add(waiter, p)
	}
	f.mu.Unlock()

	start := time.Now()
	err := f.runPass(ctx, p, r)

	f.mu.Lock()
	if waiter != nil {
		f.waits.remove(waiter, p)
	}
	selected := ""
	if err != nil {
		p.pass = nil
		c.err = err
	} else {
		// A cyclic request may have reselected p meanwhile; the
		// dependencies just resolved belong to r's selection.
		p.setRange(r)
		if v := p.selected(); v != nil {
			selected = v.Semver
		}
	}
	f.mu.Unlock()
	close(c.done)

	observability.Resolve().OnResolve(ctx, r.Name, r.TextRange, selected, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	f.logger.Debug("resolved package", "package", r.Name, "range", r.TextRange, "version", selected)
	return p, nil
}

// runPass fetches p, selects a version for r and resolves the selected
// version's dependencies before listing p in the ordering. A package with no
// matching version is not listed.
func (f *File) runPass(ctx context.Context, p *Package, r ref.Ref) error {
	if err := f.ensureFetched(ctx, p); err != nil {
		return err
	}

	f.mu.Lock()
	p.setRange(r)
	var deps []provider.Dependency
	if v := p.selected(); v != nil {
		deps = v.Dependencies
	}
	f.mu.Unlock()

	if err := f.resolveDependencies(ctx, p, deps); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.owns(p) {
		return errDiscarded
	}
	p.setRange(r)
	if len(p.matching) > 0 {
		f.insertOrdered(p)
	}
	return nil
}

// resolveDependencies resolves and links each dependency of parent.
//
// Metadata for all dependencies is fetched concurrently first; the
// dependencies are then resolved one at a time in declaration order so the
// ordering list does not depend on fetch timing.
func (f *File) resolveDependencies(ctx context.Context, parent *Package, deps []provider.Dependency) error {
	refs := make([]ref.Ref, 0, len(deps))
	for _, dep := range deps {
		r, err := ref.Parse(dep.Ref())
		if err != nil {
			f.logger.Warn("skipping invalid dependency", "package", parent.name, "dependency", dep.Ref(), "err", err)
			continue
		}
		refs = append(refs, r)
	}

	f.mu.Lock()
	if !f.owns(parent) {
		f.mu.Unlock()
		return errDiscarded
	}
	prefetch := make([]*Package, len(refs))
	for i, r := range refs {
		prefetch[i] = f.getOrCreate(r.Name)
	}
	f.mu.Unlock()

	var g errgroup.Group
	for _, child := range prefetch {
		g.Go(func() error {
			return f.ensureFetched(ctx, child)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	children := make([]*Package, 0, len(refs))
	for _, r := range refs {
		child, err := f.resolve(ctx, r, parent)
		if err != nil {
			return err
		}
		children = append(children, child)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.owns(parent) {
		return errDiscarded
	}
	for _, child := range children {
		parent.children.add(child)
		child.parents.add(parent)
	}
	return nil
}

// ensureFetched loads p's versions through the provider unless they are
// already known. Concurrent callers share one in-flight fetch. On failure
// nothing is recorded and a later call fetches again.
func (f *File) ensureFetched(ctx context.Context, p *Package) error {
	f.mu.Lock()
	if p.fetched {
		f.mu.Unlock()
		return nil
	}
	if c := p.fetching; c != nil {
		f.mu.Unlock()
		return c.wait(ctx)
	}
	c := newCall()
	p.fetching = c
	f.mu.Unlock()

	hooks := observability.Resolve()
	hooks.OnFetchStart(ctx, p.name)
	start := time.Now()
	def, err := f.provider.Fetch(ctx, p.name)
	if err == nil && def == nil {
		err = provider.NotFound(p.name)
	}

	f.mu.Lock()
	p.fetching = nil
	if err != nil {
		c.err = cerrors.Wrap(cerrors.ErrCodeMetadataFetch, err, "fetch metadata for %s", p.name)
	} else {
		p.versions = provider.SortVersions(def.Versions)
		p.fetched = true
		p.setRange(ref.Ref{Name: p.name, TextRange: p.textRange, Range: p.rng})
	}
	f.mu.Unlock()
	close(c.done)

	versions := 0
	if def != nil {
		versions = len(def.Versions)
	}
	hooks.OnFetchComplete(ctx, p.name, versions, time.Since(start), err)
	if c.err != nil {
		f.logger.Debug("metadata fetch failed", "package", p.name, "err", err)
	}
	return c.err
}
