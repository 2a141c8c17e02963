// Package render provides visualizations of resolved package graphs.
//
// The [nodelink] subpackage renders traditional directed graph diagrams
// using Graphviz. Nodes appear as boxes connected by arrows.
//
//	dot := nodelink.ToDOT(f.Packages(), f.Ordering(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [nodelink]: github.com/filearts/corral/pkg/render/nodelink
package render
