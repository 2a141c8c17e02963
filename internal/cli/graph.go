package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	corralio "github.com/filearts/corral/pkg/io"
	"github.com/filearts/corral/pkg/markup"
	"github.com/filearts/corral/pkg/render/nodelink"
)

// Graph output formats.
const (
	formatDOT  = "dot"
	formatSVG  = "svg"
	formatJSON = "json"
)

// graphCommand creates the graph command.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph <file.html|graph.json>",
		Short: "Export the dependency graph of an HTML file",
		Long: `Graph resolves the packages referenced by the data-require attributes of an
HTML file and writes the dependency graph as Graphviz DOT, SVG or JSON. A .json
input is a graph exported earlier with --format json and is rendered without
resolving anything.`,
		Example: `  corral graph index.html
  corral graph index.html --format svg -o deps.svg
  corral graph index.html --format json -o deps.json && corral graph deps.json --format svg`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains([]string{formatDOT, formatSVG, formatJSON}, format) {
				return fmt.Errorf("unknown format %q (want dot, svg or json)", format)
			}
			ctx, cancel := c.withTimeout(cmd.Context())
			defer cancel()

			var (
				pkgs     map[string]markup.PackageInfo
				ordering []string
				err      error
			)
			if strings.EqualFold(filepath.Ext(args[0]), ".json") {
				pkgs, ordering, err = corralio.ImportJSON(args[0])
			} else {
				pkgs, ordering, err = c.resolveFile(ctx, args[0])
			}
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case formatJSON:
				var b strings.Builder
				if err := corralio.WriteJSON(pkgs, ordering, &b); err != nil {
					return err
				}
				data = []byte(b.String())
			case formatSVG:
				data, err = nodelink.RenderSVG(ctx, nodelink.ToDOT(pkgs, ordering, nodelink.Options{Detailed: detailed}))
				if err != nil {
					return err
				}
			default:
				data = []byte(nodelink.ToDOT(pkgs, ordering, nodelink.Options{Detailed: detailed}))
			}

			if output == "" {
				_, err := c.stdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", formatDOT, "output format: dot, svg or json")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "include ranges and asset counts in node labels")
	return cmd
}

// resolveFile resolves every package referenced by the HTML file at path.
func (c *CLI) resolveFile(ctx context.Context, path string) (map[string]markup.PackageInfo, []string, error) {
	content, err := readDocument(path, false)
	if err != nil {
		return nil, nil, err
	}
	refs, stripped, err := markup.Scan(content)
	if err != nil {
		return nil, nil, err
	}

	e, err := c.newEnv(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer e.Close()

	f, err := e.newFile(loggerFromContext(ctx))
	if err != nil {
		return nil, nil, err
	}
	if err := f.Reset(stripped); err != nil {
		return nil, nil, err
	}
	for _, r := range slices.Backward(mergeRefs(refs, e.cfg.Dependencies)) {
		if err := f.AddDependency(ctx, r); err != nil {
			return nil, nil, err
		}
	}
	return f.Packages(), f.Ordering(), nil
}
