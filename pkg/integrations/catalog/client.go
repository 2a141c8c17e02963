package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/filearts/corral/pkg/cache"
	"github.com/filearts/corral/pkg/integrations"
)

// Package is a package document as served by a catalog server.
type Package struct {
	Name     string    `json:"name"`
	Versions []Version `json:"versions"`
}

type Version struct {
	Semver       string       `json:"semver"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
	Scripts      []string     `json:"scripts,omitempty"`
	Styles       []string     `json:"styles,omitempty"`
}

type Dependency struct {
	Name  string `json:"name"`
	Range string `json:"range,omitempty"`
}

type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a client for the catalog server at baseURL. Responses
// are cached in c for cacheTTL; c may be nil.
func NewClient(baseURL string, c cache.Cache, cacheTTL time.Duration) *Client {
	baseURL = strings.TrimSuffix(baseURL, "/")
	return &Client{
		Client:  integrations.NewClient(c, "catalog:"+baseURL+":", cacheTTL, map[string]string{"Accept": "application/json"}),
		baseURL: baseURL,
	}
}

func (c *Client) FetchPackage(ctx context.Context, name string, refresh bool) (*Package, error) {
	var pkg Package
	err := c.Cached(ctx, name, refresh, &pkg, func() error {
		return c.fetch(ctx, name, &pkg)
	})
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

func (c *Client) fetch(ctx context.Context, name string, pkg *Package) error {
	if err := c.Get(ctx, integrations.JoinURL(c.baseURL, "packages", name), pkg); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: catalog package %s", err, name)
		}
		return err
	}
	if pkg.Name == "" {
		pkg.Name = name
	}
	return nil
}
