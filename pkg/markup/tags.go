package markup

import (
	"context"
	"slices"

	"golang.org/x/net/html"

	"github.com/filearts/corral/pkg/dom"
	cerrors "github.com/filearts/corral/pkg/errors"
	"github.com/filearts/corral/pkg/observability"
	"github.com/filearts/corral/pkg/ref"
)

// Provenance attributes written on every synthesized tag.
const (
	AttrRequire = "data-require"
	AttrSemver  = "data-semver"
)

// UpdateOptions controls [File.UpdateTags].
type UpdateOptions struct {
	// Children also updates every package reachable through dependency edges.
	Children bool
}

// assetClass describes one kind of tag a package contributes.
type assetClass struct {
	provenance string // selector for tags placed by any package
	head       string // selector for hand-written tags of the class
	tags       func(*Package) *[]*html.Node
}

var (
	scriptClass = assetClass{
		provenance: "script[" + AttrRequire + "]",
		head:       "head script",
		tags:       func(p *Package) *[]*html.Node { return &p.scripts },
	}
	styleClass = assetClass{
		provenance: "link[" + AttrRequire + "]",
		head:       "head link[rel=stylesheet]",
		tags:       func(p *Package) *[]*html.Node { return &p.styles },
	}
)

// synthesizeTags builds the detached script and link elements for p's
// selected version.
func synthesizeTags(p *Package) (scripts, styles []*html.Node) {
	v := p.selected()
	if v == nil {
		return nil, nil
	}
	require := p.name + "@" + p.textRange
	for _, url := range v.Scripts {
		scripts = append(scripts, dom.NewElement("script",
			html.Attribute{Key: AttrRequire, Val: require},
			html.Attribute{Key: AttrSemver, Val: v.Semver},
			html.Attribute{Key: "src", Val: url},
		))
	}
	for _, url := range v.Styles {
		styles = append(styles, dom.NewElement("link",
			html.Attribute{Key: AttrRequire, Val: require},
			html.Attribute{Key: AttrSemver, Val: v.Semver},
			html.Attribute{Key: "rel", Val: "stylesheet"},
			html.Attribute{Key: "href", Val: url},
		))
	}
	return scripts, styles
}

// UpdateTags rewrites the tags of the package named by s, which may be a
// bare name or a full reference; only the name is used.
//
// It fails with INVALID_NODE when the package is not in the graph.
func (f *File) UpdateTags(ctx context.Context, s string, opts UpdateOptions) error {
	r, err := ref.Parse(s)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.packages[r.Name]
	if !ok {
		return cerrors.New(cerrors.ErrCodeInvalidNode, "unable to update tags of unknown package %s", r.Name)
	}
	f.updateTags(ctx, p, opts.Children, map[*Package]bool{})
	return nil
}

// RefreshAll rewrites the tags of every listed package, dependents first.
func (f *File) RefreshAll(ctx context.Context) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range slices.Backward(f.ordering) {
		f.updateTags(ctx, p, false, map[*Package]bool{})
	}
}

// updateTags places p's tags and, with children set, those of every package
// below it. Caller holds f.mu.
func (f *File) updateTags(ctx context.Context, p *Package, children bool, seen map[*Package]bool) {
	if seen[p] {
		return
	}
	seen[p] = true

	scripts, styles := synthesizeTags(p)
	f.place(p, scriptClass, scripts)
	f.place(p, styleClass, styles)
	observability.Resolve().OnPlace(ctx, p.name, len(scripts), len(styles))

	if !children {
		return
	}
	for _, child := range p.children.list {
		f.updateTags(ctx, child, true, seen)
	}
}

// place swaps p's current tags of one class for next.
//
// The anchor is, in order: the first tag of the most recently linked parent
// holding tags of the class, p's own previous tags, the first tag placed by
// any package, the first hand-written tag of the class in the head, the last
// element in the head, the head itself, and finally the document root.
func (f *File) place(p *Package, class assetClass, next []*html.Node) {
	prev := class.tags(p)
	old := *prev
	*prev = next

	if len(next) == 0 {
		dom.RemoveIndented(old)
		return
	}

	for _, parent := range slices.Backward(p.parents.list) {
		if tags := *class.tags(parent); len(tags) > 0 && tags[0].Parent != nil {
			dom.InsertBefore(tags[0], next)
			dom.RemoveIndented(old)
			return
		}
	}

	if len(old) > 0 && old[0].Parent != nil {
		dom.InsertBefore(old[0], next)
		dom.RemoveIndented(old)
		return
	}
	dom.RemoveIndented(old)

	if nodes := f.doc.Find(class.provenance); len(nodes) > 0 {
		dom.InsertBefore(nodes[0], next)
		return
	}
	if nodes := f.doc.Find(class.head); len(nodes) > 0 {
		dom.InsertBefore(nodes[0], next)
		return
	}
	head := f.doc.Head()
	if head == nil {
		dom.AppendIndented(f.doc.Root(), next, dom.DefaultIndent)
		return
	}
	if children := dom.ElementChildren(head); len(children) > 0 {
		dom.InsertAfter(children[len(children)-1], next)
		return
	}
	dom.AppendIndented(head, next, dom.DefaultIndent)
}
