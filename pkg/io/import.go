package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/filearts/corral/pkg/markup"
)

// ReadJSON decodes a graph written by [WriteJSON]. Edges must name known
// nodes and node IDs must be unique.
func ReadJSON(r io.Reader) (map[string]markup.PackageInfo, []string, error) {
	var in graph
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, nil, fmt.Errorf("decode: %w", err)
	}

	pkgs := make(map[string]markup.PackageInfo, len(in.Nodes))
	for _, n := range in.Nodes {
		if n.ID == "" {
			return nil, nil, fmt.Errorf("node with empty id")
		}
		if _, dup := pkgs[n.ID]; dup {
			return nil, nil, fmt.Errorf("duplicate node %q", n.ID)
		}
		info := markup.PackageInfo{
			Name:      n.ID,
			TextRange: n.Range,
			Selected:  n.Version,
			Versions:  n.Versions,
			Scripts:   n.Scripts,
			Styles:    n.Styles,
		}
		if n.Version != "" {
			info.Matching = []string{n.Version}
		}
		pkgs[n.ID] = info
	}

	for _, e := range in.Edges {
		if _, ok := pkgs[e.From]; !ok {
			return nil, nil, fmt.Errorf("edge from unknown node %q", e.From)
		}
		if _, ok := pkgs[e.To]; !ok {
			return nil, nil, fmt.Errorf("edge to unknown node %q", e.To)
		}
		from := pkgs[e.From]
		if slices.Contains(from.Children, e.To) {
			continue
		}
		from.Children = append(from.Children, e.To)
		pkgs[e.From] = from

		to := pkgs[e.To]
		to.Parents = append(to.Parents, e.From)
		pkgs[e.To] = to
	}

	for _, name := range in.Ordering {
		if _, ok := pkgs[name]; !ok {
			return nil, nil, fmt.Errorf("ordering names unknown node %q", name)
		}
	}
	return pkgs, in.Ordering, nil
}

// ImportJSON reads a graph from a JSON file at path.
func ImportJSON(path string) (map[string]markup.PackageInfo, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
