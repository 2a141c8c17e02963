package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/filearts/corral/pkg/markup"
	"github.com/filearts/corral/pkg/provider"
)

// initCommand creates the init command.
func (c *CLI) initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init <file.html>",
		Short: "Write an empty HTML skeleton",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			f, err := markup.New(provider.NewStatic())
			if err != nil {
				return err
			}
			if err := writeDocument(path, f.String()); err != nil {
				return err
			}
			printSuccess("Created %s", path)
			printNextStep("Add a package", "corral add "+path+" jquery")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")
	return cmd
}
