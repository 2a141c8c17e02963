package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/filearts/corral/pkg/markup"
	"github.com/filearts/corral/pkg/ref"
)

// syncCommand creates the sync command.
func (c *CLI) syncCommand() *cobra.Command {
	var (
		dryRun bool
		check  bool
	)

	cmd := &cobra.Command{
		Use:   "sync <file.html>",
		Short: "Re-resolve the packages of an HTML file and rewrite its tags",
		Long: `Sync reads the package references recorded in the data-require attributes of
the file, adds the dependencies listed in the project file, resolves everything
again and rewrites the tags. Tags keep their relative order as long as the
packages' dependencies did not change.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			ctx, cancel := c.withTimeout(cmd.Context())
			defer cancel()
			logger := loggerFromContext(ctx)

			content, err := readDocument(path, false)
			if err != nil {
				return err
			}
			refs, stripped, err := markup.Scan(content)
			if err != nil {
				return err
			}

			e, err := c.newEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()
			refs = mergeRefs(refs, e.cfg.Dependencies)

			f, err := e.newFile(logger)
			if err != nil {
				return err
			}
			if err := f.Reset(stripped); err != nil {
				return err
			}

			prog := newProgress(logger)
			for _, r := range slices.Backward(refs) {
				if err := f.AddDependency(ctx, r); err != nil {
					return err
				}
			}
			f.RefreshAll(ctx)
			prog.done(fmt.Sprintf("Resolved %d packages", len(f.Ordering())))

			out := f.String()
			switch {
			case check:
				if out != content {
					return fmt.Errorf("%s is out of date", path)
				}
				printSuccess("%s is up to date", path)
				return nil
			case dryRun:
				fmt.Fprint(c.stdout(), out)
				return nil
			}

			if out == content {
				printInfo("%s is up to date", path)
				return nil
			}
			if err := writeDocument(path, out); err != nil {
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
	cmd.Flags().BoolVar(&check, "check", false, "fail if the file is not up to date, without writing")
	return cmd
}

// mergeRefs appends the configured references whose package is not already
// named by refs.
func mergeRefs(refs, configured []string) []string {
	names := make(map[string]bool, len(refs))
	for _, r := range refs {
		if parsed, err := ref.Parse(r); err == nil {
			names[parsed.Name] = true
		}
	}
	for _, r := range configured {
		parsed, err := ref.Parse(r)
		if err != nil || names[parsed.Name] {
			continue
		}
		names[parsed.Name] = true
		refs = append(refs, r)
	}
	return refs
}
