package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/filearts/corral/pkg/provider"
	"github.com/filearts/corral/pkg/provider/mongo"
)

// catalogCommand creates the catalog command.
func (c *CLI) catalogCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect and publish package definitions",
	}

	cmd.AddCommand(c.catalogShowCommand())
	cmd.AddCommand(c.catalogImportCommand())

	return cmd
}

// catalogShowCommand creates the "catalog show" subcommand.
func (c *CLI) catalogShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <package>",
		Short: "Print a package definition from the configured sources",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd.Context())
			defer cancel()

			e, err := c.newEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			def, err := e.provider.Fetch(ctx, args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(c.stdout())
			enc.SetIndent("", "  ")
			return enc.Encode(def)
		},
	}
}

// catalogImportCommand creates the "catalog import" subcommand.
func (c *CLI) catalogImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <catalog-file>",
		Short: "Store the packages of a catalog file in MongoDB",
		Long: `Import reads a catalog file and upserts every package into the MongoDB
collection named by mongo_uri, mongo_database and mongo_collection in the
project file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := c.withTimeout(cmd.Context())
			defer cancel()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cfg.Providers.MongoURI == "" {
				return fmt.Errorf("mongo_uri is not set in the project file")
			}

			s, err := provider.LoadFile(args[0])
			if err != nil {
				return err
			}
			m, err := mongo.Connect(ctx, cfg.Providers.MongoURI, cfg.Providers.MongoDatabase, cfg.Providers.MongoCollection)
			if err != nil {
				return err
			}
			defer m.Close(ctx)

			if err := m.EnsureIndex(ctx); err != nil {
				return err
			}
			names := s.Names()
			for _, name := range names {
				def, err := s.Fetch(ctx, name)
				if err != nil {
					return err
				}
				if err := m.Put(ctx, def); err != nil {
					return err
				}
			}
			printSuccess("Imported %d packages", len(names))
			printDetail("Collection: %s.%s", cfg.Providers.MongoDatabase, cfg.Providers.MongoCollection)
			return nil
		},
	}
}
