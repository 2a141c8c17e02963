package markup

import (
	"slices"

	"github.com/Masterminds/semver/v3"
	"golang.org/x/net/html"

	"github.com/filearts/corral/pkg/provider"
	"github.com/filearts/corral/pkg/ref"
)

// Package is the graph node for one package name. All fields are guarded by
// the owning File's mutex; callers outside this package see [PackageInfo]
// snapshots instead.
type Package struct {
	name      string
	textRange string
	rng       *semver.Constraints

	versions []provider.Version // descending precedence
	matching []provider.Version // subsequence of versions satisfying rng

	scripts []*html.Node
	styles  []*html.Node

	parents  edgeSet
	children edgeSet

	fetched  bool
	fetching *call // in-flight metadata fetch
	pass     *call // first resolution pass, nil until started or after failure
}

func newPackage(name string) *Package {
	r := ref.Ref{Name: name, TextRange: ref.AnyRange}
	r.Range, _ = ref.ParseRange(ref.AnyRange)
	p := &Package{name: name}
	p.setRange(r)
	return p
}

// setRange records the most recently requested range and recomputes the
// matching versions against it.
func (p *Package) setRange(r ref.Ref) {
	p.textRange = r.TextRange
	p.rng = r.Range
	p.matching = nil
	for _, v := range p.versions {
		if ref.Satisfies(p.rng, v.Semver) {
			p.matching = append(p.matching, v)
		}
	}
}

// selected returns the highest matching version, or nil.
func (p *Package) selected() *provider.Version {
	if len(p.matching) == 0 {
		return nil
	}
	return &p.matching[0]
}

// PackageInfo is a read-only snapshot of a package node.
type PackageInfo struct {
	Name      string
	TextRange string
	Versions  []string // all known versions, highest first
	Matching  []string // versions satisfying TextRange, highest first
	Selected  string   // Matching[0], or empty
	Scripts   []string // script URLs currently placed in the document
	Styles    []string // stylesheet URLs currently placed in the document
	Parents   []string
	Children  []string
}

func (p *Package) info() PackageInfo {
	info := PackageInfo{
		Name:      p.name,
		TextRange: p.textRange,
		Versions:  semvers(p.versions),
		Matching:  semvers(p.matching),
		Scripts:   attrs(p.scripts, "src"),
		Styles:    attrs(p.styles, "href"),
		Parents:   p.parents.names(),
		Children:  p.children.names(),
	}
	if v := p.selected(); v != nil {
		info.Selected = v.Semver
	}
	return info
}

func semvers(vs []provider.Version) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.Semver
	}
	return out
}

func attrs(nodes []*html.Node, key string) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		for _, a := range n.Attr {
			if a.Key == key {
				out = append(out, a.Val)
			}
		}
	}
	return out
}

// edgeSet is an insertion-ordered set of packages keyed by identity.
type edgeSet struct {
	list []*Package
}

// add appends p unless it is already present and reports whether it was added.
func (s *edgeSet) add(p *Package) bool {
	if slices.Contains(s.list, p) {
		return false
	}
	s.list = append(s.list, p)
	return true
}

func (s *edgeSet) len() int { return len(s.list) }

func (s *edgeSet) names() []string {
	out := make([]string, len(s.list))
	for i, p := range s.list {
		out[i] = p.name
	}
	return out
}
