package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/filearts/corral/pkg/buildinfo"
	"github.com/filearts/corral/pkg/cache"
	"github.com/filearts/corral/pkg/config"
	"github.com/filearts/corral/pkg/integrations/catalog"
	"github.com/filearts/corral/pkg/integrations/npm"
	"github.com/filearts/corral/pkg/markup"
	"github.com/filearts/corral/pkg/provider"
	"github.com/filearts/corral/pkg/provider/mongo"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "corral"

	// defaultTimeout bounds a whole resolution run.
	defaultTimeout = 2 * time.Minute
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	noCache    bool
	refresh    bool
	timeout    time.Duration

	// out receives command output; nil means stdout.
	out io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), timeout: defaultTimeout}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "corral",
		Short: "Corral keeps the script and stylesheet tags of an HTML page in sync with its packages",
		Long: `Corral resolves front-end package references such as jquery@^2.0.0 together
with their dependencies and writes the matching <script> and <link> tags into an
HTML document, dependencies before the packages that need them.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			if c.Logger.GetLevel() <= log.DebugLevel {
				installLogHooks(c.Logger)
			}
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "project file (default ./corral.toml or $"+config.EnvPath+")")
	root.PersistentFlags().BoolVar(&c.noCache, "no-cache", false, "disable the metadata cache")
	root.PersistentFlags().BoolVar(&c.refresh, "refresh", false, "bypass cached metadata")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", defaultTimeout, "overall time limit for resolution")

	// Register all subcommands
	root.AddCommand(c.addCommand())
	root.AddCommand(c.syncCommand())
	root.AddCommand(c.initCommand())
	root.AddCommand(c.graphCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.catalogCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) stdout() io.Writer {
	if c.out != nil {
		return c.out
	}
	return os.Stdout
}

// =============================================================================
// Environment Factory
// =============================================================================

// env bundles what a command needs to resolve packages.
type env struct {
	cfg      config.Config
	cache    cache.Cache
	keyer    cache.Keyer
	provider provider.Provider
	closers  []func()
}

func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// newFile creates an empty markup file backed by the environment's provider.
func (e *env) newFile(logger *log.Logger) (*markup.File, error) {
	return markup.New(e.provider, markup.WithLogger(logger))
}

func (c *CLI) loadConfig() (config.Config, error) {
	return config.Load(c.configPath)
}

// newEnv loads the project file and builds the cache and provider chain.
func (c *CLI) newEnv(ctx context.Context) (*env, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg}

	e.cache, e.keyer, err = c.newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	e.closers = append(e.closers, func() { e.cache.Close() })

	e.provider, err = c.newProvider(ctx, e)
	if err != nil {
		e.Close()
		return nil, err
	}
	return e, nil
}

func (c *CLI) newCache(ctx context.Context, cfg config.Config) (cache.Cache, cache.Keyer, error) {
	keyer := cache.NewDefaultKeyer()
	if c.noCache || cfg.Cache.Disabled {
		return cache.NewNullCache(), keyer, nil
	}
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, "")
		if err != nil {
			return nil, nil, err
		}
		return rc, cache.NewScopedKeyer(keyer, cfg.Cache.Prefix), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), keyer, nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, nil, err
	}
	return fc, keyer, nil
}

// newProvider chains the configured sources in precedence order.
func (c *CLI) newProvider(ctx context.Context, e *env) (provider.Provider, error) {
	p := e.cfg.Providers
	ttl := e.cfg.Cache.TTL
	var chain provider.Chain

	if p.CatalogFile != "" {
		s, err := provider.LoadFile(p.CatalogFile)
		if err != nil {
			return nil, err
		}
		chain = append(chain, s)
	}
	if p.CatalogURL != "" {
		client := catalog.NewClient(p.CatalogURL, e.cache, ttl)
		client.SetKeyer(e.keyer)
		chain = append(chain, provider.NewCatalog(client, c.refresh))
	}
	if p.MongoURI != "" {
		m, err := mongo.Connect(ctx, p.MongoURI, p.MongoDatabase, p.MongoCollection)
		if err != nil {
			return nil, err
		}
		e.closers = append(e.closers, func() { _ = m.Close(context.Background()) })
		chain = append(chain, provider.NewCached(m, e.cache, e.keyer, "mongo", ttl))
	}
	if p.UseNPM() {
		client := npm.NewClient(e.cache, ttl)
		client.SetKeyer(e.keyer)
		chain = append(chain, provider.NewNPM(client, c.refresh))
	}

	if len(chain) == 0 {
		return nil, fmt.Errorf("no package source configured: set catalog_file, catalog_url, mongo_uri or npm in %s", config.FileName)
	}
	if len(chain) == 1 {
		return chain[0], nil
	}
	return chain, nil
}

// withTimeout applies the --timeout flag to ctx.
func (c *CLI) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/corral/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
