package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filearts/corral/pkg/markup"
	"github.com/filearts/corral/pkg/ref"
)

// addCommand creates the add command.
func (c *CLI) addCommand() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "add <file.html> <package[@range]>...",
		Short: "Add packages and their dependencies to an HTML file",
		Long: `Add resolves each package reference with its dependencies and rewrites the
file so that every selected version contributes its script and stylesheet tags.
A missing file starts from an empty HTML skeleton.`,
		Example: `  corral add index.html jquery@^2.0.0 bootstrap@3
  corral add --dry-run index.html angular@1.2.x`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, refs := args[0], args[1:]
			for _, r := range refs {
				if _, err := ref.Parse(r); err != nil {
					return err
				}
			}

			ctx, cancel := c.withTimeout(cmd.Context())
			defer cancel()
			logger := loggerFromContext(ctx)

			content, err := readDocument(path, true)
			if err != nil {
				return err
			}
			e, err := c.newEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			f, err := e.newFile(logger)
			if err != nil {
				return err
			}
			if err := f.Reset(content); err != nil {
				return err
			}

			prog := newProgress(logger)
			for _, r := range refs {
				if err := f.AddDependency(ctx, r); err != nil {
					return err
				}
			}
			prog.done(fmt.Sprintf("Resolved %d packages", len(f.Ordering())))

			if dryRun {
				fmt.Fprint(c.stdout(), f.String())
				return nil
			}
			if err := writeDocument(path, f.String()); err != nil {
				return err
			}
			for _, r := range refs {
				printResolved(f, ref.MustParse(r).Name)
			}
			printFile(path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the result instead of writing the file")
	return cmd
}

// printResolved reports the version selected for name.
func printResolved(f *markup.File, name string) {
	info, ok := f.Package(name)
	if !ok {
		return
	}
	if info.Selected == "" {
		printWarning("%s@%s matches none of %d versions", info.Name, info.TextRange, len(info.Versions))
		return
	}
	printSuccess("%s@%s %s %s", info.Name, info.TextRange, iconArrow, StyleHighlight.Render(info.Selected))
}
