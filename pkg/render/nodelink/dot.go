package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/filearts/corral/pkg/markup"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the requested range and asset counts in node labels.
	// When false, only name@version is shown.
	Detailed bool
}

// ToDOT converts a resolved package graph to Graphviz DOT format.
// Nodes are emitted in ordering order, followed by any package missing from
// it in name order. Packages without a selected version are drawn dashed.
func ToDOT(pkgs map[string]markup.PackageInfo, ordering []string, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	names := nodeOrder(pkgs, ordering)
	for _, name := range names {
		p := pkgs[name]
		fmt.Fprintf(&buf, "  %q [%s];\n", name, strings.Join(fmtAttrs(p, fmtLabel(p, opts.Detailed)), ", "))
	}

	buf.WriteString("\n")
	for _, name := range names {
		for _, child := range pkgs[name].Children {
			fmt.Fprintf(&buf, "  %q -> %q;\n", name, child)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeOrder(pkgs map[string]markup.PackageInfo, ordering []string) []string {
	names := make([]string, 0, len(pkgs))
	for _, name := range ordering {
		if _, ok := pkgs[name]; ok && !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(pkgs)) {
		if !slices.Contains(names, name) {
			names = append(names, name)
		}
	}
	return names
}

func fmtLabel(p markup.PackageInfo, detailed bool) string {
	version := p.Selected
	if version == "" {
		version = p.TextRange
	}
	label := p.Name + "@" + version
	if !detailed {
		return label
	}

	parts := []string{
		"range: " + p.TextRange,
		fmt.Sprintf("scripts: %d", len(p.Scripts)),
		fmt.Sprintf("styles: %d", len(p.Styles)),
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(p markup.PackageInfo, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if p.Selected == "" {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey", "fontcolor=black")
	}
	return attrs
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
