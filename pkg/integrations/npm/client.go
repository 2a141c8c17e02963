package npm

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/filearts/corral/pkg/cache"
	"github.com/filearts/corral/pkg/integrations"
)

const (
	registryURL = "https://registry.npmjs.org"
	cdnURL      = "https://cdn.jsdelivr.net/npm"
)

type PackageInfo struct {
	Name     string
	Latest   string
	Versions []VersionInfo
}

type VersionInfo struct {
	Version      string
	Dependencies []Dependency
	Scripts      []string
	Styles       []string
}

type Dependency struct {
	Name  string
	Range string
}

type Client struct {
	*integrations.Client
	baseURL string
	cdnURL  string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a registry other than registry.npmjs.org.
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// WithCDN changes the base used to build asset URLs.
func WithCDN(url string) Option {
	return func(c *Client) { c.cdnURL = strings.TrimSuffix(url, "/") }
}

func NewClient(c cache.Cache, cacheTTL time.Duration, opts ...Option) *Client {
	client := &Client{
		Client:  integrations.NewClient(c, "npm:", cacheTTL, nil),
		baseURL: registryURL,
		cdnURL:  cdnURL,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

func (c *Client) FetchPackage(ctx context.Context, pkg string, refresh bool) (*PackageInfo, error) {
	pkg = strings.ToLower(strings.TrimSpace(pkg))

	var info PackageInfo
	err := c.Cached(ctx, pkg, refresh, &info, func() error {
		return c.fetch(ctx, pkg, &info)
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) fetch(ctx context.Context, pkg string, info *PackageInfo) error {
	var data registryResponse
	if err := c.Get(ctx, integrations.JoinURL(c.baseURL, pkg), &data); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return fmt.Errorf("%w: npm package %s", err, pkg)
		}
		return err
	}

	*info = PackageInfo{Name: data.Name, Latest: data.DistTags.Latest}
	for version, v := range data.Versions {
		info.Versions = append(info.Versions, VersionInfo{
			Version:      version,
			Dependencies: dependencies(v.Dependencies),
			Scripts:      c.assets(data.Name, version, v.script()),
			Styles:       c.assets(data.Name, version, v.Style),
		})
	}
	slices.SortFunc(info.Versions, func(a, b VersionInfo) int {
		return strings.Compare(a.Version, b.Version)
	})
	return nil
}

// assets maps a path inside the published tarball to its CDN URL.
func (c *Client) assets(name, version, path string) []string {
	path = strings.TrimPrefix(strings.TrimSpace(path), "./")
	if path == "" {
		return nil
	}
	return []string{fmt.Sprintf("%s/%s@%s/%s", c.cdnURL, name, version, path)}
}

func dependencies(m map[string]string) []Dependency {
	deps := make([]Dependency, 0, len(m))
	for name, rng := range m {
		deps = append(deps, Dependency{Name: name, Range: rng})
	}
	slices.SortFunc(deps, func(a, b Dependency) int { return strings.Compare(a.Name, b.Name) })
	return deps
}

func extractString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return ""
}

type registryResponse struct {
	Name     string                    `json:"name"`
	DistTags distTags                  `json:"dist-tags"`
	Versions map[string]versionDetails `json:"versions"`
}

type distTags struct {
	Latest string `json:"latest"`
}

type versionDetails struct {
	Dependencies map[string]string `json:"dependencies"`
	JSDelivr     string            `json:"jsdelivr"`
	Unpkg        string            `json:"unpkg"`
	Browser      any               `json:"browser"`
	Main         string            `json:"main"`
	Style        string            `json:"style"`
}

// script picks the browser entry point, preferring CDN-specific fields.
// An object-valued browser field is a module replacement map and is ignored.
func (v versionDetails) script() string {
	for _, s := range []string{v.JSDelivr, v.Unpkg, extractString(v.Browser), v.Main} {
		if s != "" {
			return s
		}
	}
	return ""
}
