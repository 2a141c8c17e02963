package cli

import (
	"github.com/spf13/cobra"

	"github.com/filearts/corral/pkg/provider"
	"github.com/filearts/corral/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		catalogFile string
		addr        string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a package catalog over HTTP",
		Long: `Serve publishes package definitions at GET /packages/{name}. With --catalog
the definitions come from a catalog file; otherwise the sources of the project
file are served. Point catalog_url of another project at this server to use it.`,
		Example: `  corral serve --catalog catalog.yaml --addr :8080`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			e, err := c.newEnv(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			p := e.provider
			if catalogFile != "" {
				if p, err = provider.LoadFile(catalogFile); err != nil {
					return err
				}
			}
			if addr == "" {
				addr = e.cfg.Server.Addr
			}

			srv := server.New(p, server.Options{
				Logger:   logger,
				Cache:    e.cache,
				Keyer:    e.keyer,
				CacheTTL: e.cfg.Cache.TTL,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&catalogFile, "catalog", "", "catalog file to serve (json, yaml or toml)")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from project file, :8080)")
	return cmd
}
