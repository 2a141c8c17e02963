// Package config loads the corral.toml project file.
//
// A project file lists the packages a page depends on and where their
// metadata comes from:
//
//	dependencies = ["jquery@^2.0.0", "bootstrap@3"]
//
//	[providers]
//	catalog_file = "catalog.yaml"
//	catalog_url  = "https://catalog.example.com"
//	npm          = true
//
//	[cache]
//	ttl       = "24h"
//	redis_url = "redis://localhost:6379/0"
//
// Providers are consulted in the order catalog_file, catalog_url, mongo_uri,
// npm; the first that knows a package wins.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	cerrors "github.com/filearts/corral/pkg/errors"
	"github.com/filearts/corral/pkg/ref"
)

const (
	// FileName is the project file looked up in the working directory.
	FileName = "corral.toml"

	// EnvPath names an environment variable overriding the project file path.
	EnvPath = "CORRAL_CONFIG"

	DefaultCacheTTL    = 24 * time.Hour
	DefaultServerAddr  = ":8080"
	DefaultMongoDB     = "corral"
	DefaultMongoColl   = "packages"
	DefaultRedisPrefix = "corral:"
)

// Config is the decoded project file.
type Config struct {
	Dependencies []string  `toml:"dependencies"`
	Providers    Providers `toml:"providers"`
	Cache        Cache     `toml:"cache"`
	Server       Server    `toml:"server"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// Providers selects the metadata sources.
type Providers struct {
	CatalogFile     string `toml:"catalog_file"`
	CatalogURL      string `toml:"catalog_url"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
	NPM             *bool  `toml:"npm"`
}

// UseNPM reports whether the npm registry is consulted.
func (p Providers) UseNPM() bool {
	return p.NPM == nil || *p.NPM
}

// Cache configures response caching.
type Cache struct {
	TTL      time.Duration `toml:"ttl"`
	Disabled bool          `toml:"disabled"`
	RedisURL string        `toml:"redis_url"`
	Prefix   string        `toml:"prefix"`
}

// Server configures corral serve.
type Server struct {
	Addr string `toml:"addr"`
}

// WithDefaults returns a copy of c with zero values replaced by defaults.
func (c Config) WithDefaults() Config {
	cfg := c
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}
	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = DefaultRedisPrefix
	}
	if cfg.Providers.MongoDatabase == "" {
		cfg.Providers.MongoDatabase = DefaultMongoDB
	}
	if cfg.Providers.MongoCollection == "" {
		cfg.Providers.MongoCollection = DefaultMongoColl
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	return cfg
}

// Default returns the configuration used when no project file exists.
func Default() Config {
	return Config{}.WithDefaults()
}

// Load reads the project file at path. An empty path falls back to
// $CORRAL_CONFIG and then to corral.toml in the working directory; a
// missing corral.toml yields [Default]. A path given explicitly must exist.
//
// A relative catalog_file is resolved against the project file's directory.
func Load(path string) (Config, error) {
	explicit := true
	if path == "" {
		path = os.Getenv(EnvPath)
	}
	if path == "" {
		path, explicit = FileName, false
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if !explicit {
				return Default(), nil
			}
			return Config{}, cerrors.Wrap(cerrors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return Config{}, cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "decode %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, cerrors.New(cerrors.ErrCodeInvalidConfig, "%s: unknown key %q", path, undecoded[0].String())
	}

	cfg.Path = path
	if f := cfg.Providers.CatalogFile; f != "" && !filepath.IsAbs(f) {
		cfg.Providers.CatalogFile = filepath.Join(filepath.Dir(path), f)
	}
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that every dependency parses and URLs are usable.
func (c Config) Validate() error {
	for _, d := range c.Dependencies {
		if _, err := ref.Parse(d); err != nil {
			return cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "dependency %q", d)
		}
	}
	if u := c.Providers.CatalogURL; u != "" {
		if err := cerrors.ValidateURL(u); err != nil {
			return cerrors.Wrap(cerrors.ErrCodeInvalidConfig, err, "catalog_url")
		}
	}
	if c.Cache.TTL < 0 {
		return cerrors.New(cerrors.ErrCodeInvalidConfig, "cache ttl must not be negative")
	}
	return nil
}
