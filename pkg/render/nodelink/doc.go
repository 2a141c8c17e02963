// Package nodelink renders resolved package graphs as node-link diagrams.
//
// # Overview
//
// This package produces directed graph visualizations using Graphviz, where
// each package appears as a box labelled name@version and every dependency
// edge as an arrow from dependent to dependency.
//
// # Usage
//
// Convert a [markup.File] snapshot to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(f.Packages(), f.Ordering(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # DOT Format
//
// The generated DOT uses top-to-bottom layout (rankdir=TB) with rounded box
// nodes. Packages whose range matched no published version are drawn with
// dashed outlines and grey fill, labelled with the requested range.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
//
// [markup.File]: github.com/filearts/corral/pkg/markup.File
package nodelink
