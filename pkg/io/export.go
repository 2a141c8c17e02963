package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/filearts/corral/pkg/markup"
)

type graph struct {
	Ordering []string `json:"ordering"`
	Nodes    []node   `json:"nodes"`
	Edges    []edge   `json:"edges"`
}

type node struct {
	ID       string   `json:"id"`
	Range    string   `json:"range"`
	Version  string   `json:"version,omitempty"`
	Versions []string `json:"versions,omitempty"`
	Scripts  []string `json:"scripts,omitempty"`
	Styles   []string `json:"styles,omitempty"`
}

type edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// WriteJSON encodes a resolved package graph as JSON and writes it to w.
// Nodes are sorted by name; edges follow each parent's link order.
func WriteJSON(pkgs map[string]markup.PackageInfo, ordering []string, w io.Writer) error {
	names := make([]string, 0, len(pkgs))
	for name := range pkgs {
		names = append(names, name)
	}
	slices.Sort(names)

	out := graph{Ordering: ordering, Nodes: make([]node, 0, len(names)), Edges: []edge{}}
	if out.Ordering == nil {
		out.Ordering = []string{}
	}
	for _, name := range names {
		p := pkgs[name]
		out.Nodes = append(out.Nodes, node{
			ID:       name,
			Range:    p.TextRange,
			Version:  p.Selected,
			Versions: p.Versions,
			Scripts:  p.Scripts,
			Styles:   p.Styles,
		})
		for _, child := range p.Children {
			out.Edges = append(out.Edges, edge{From: name, To: child})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a resolved package graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(pkgs map[string]markup.PackageInfo, ordering []string, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(pkgs, ordering, f)
}
