package provider

import (
	"context"
	"errors"

	cerrors "github.com/filearts/corral/pkg/errors"
	"github.com/filearts/corral/pkg/integrations"
	"github.com/filearts/corral/pkg/integrations/catalog"
	"github.com/filearts/corral/pkg/integrations/npm"
)

// CatalogProvider fetches definitions from a catalog server.
type CatalogProvider struct {
	client  *catalog.Client
	refresh bool
}

// NewCatalog adapts a catalog client. With refresh set, cached responses
// are bypassed.
func NewCatalog(client *catalog.Client, refresh bool) *CatalogProvider {
	return &CatalogProvider{client: client, refresh: refresh}
}

// Fetch implements Provider.
func (p *CatalogProvider) Fetch(ctx context.Context, name string) (*Definition, error) {
	if err := cerrors.ValidatePackageName(name); err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodePackageNotFound, err, "catalog package %s", name)
	}
	pkg, err := p.client.FetchPackage(ctx, name, p.refresh)
	if err != nil {
		return nil, registryError(err, "catalog", name)
	}

	def := &Definition{Name: pkg.Name}
	for _, v := range pkg.Versions {
		ver := Version{Semver: v.Semver, Scripts: v.Scripts, Styles: v.Styles}
		for _, d := range v.Dependencies {
			ver.Dependencies = append(ver.Dependencies, Dependency{Name: d.Name, Range: d.Range})
		}
		def.Versions = append(def.Versions, ver)
	}
	return def, nil
}

// NPMProvider fetches definitions from the npm registry.
type NPMProvider struct {
	client  *npm.Client
	refresh bool
}

// NewNPM adapts an npm client. Every published version becomes a Version;
// versions without a browser entry point contribute no tags.
func NewNPM(client *npm.Client, refresh bool) *NPMProvider {
	return &NPMProvider{client: client, refresh: refresh}
}

// Fetch implements Provider.
func (p *NPMProvider) Fetch(ctx context.Context, name string) (*Definition, error) {
	if err := cerrors.ValidateNpmPackageName(name); err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodePackageNotFound, err, "npm package %s", name)
	}
	pkg, err := p.client.FetchPackage(ctx, name, p.refresh)
	if err != nil {
		return nil, registryError(err, "npm", name)
	}

	def := &Definition{Name: pkg.Name}
	for _, v := range pkg.Versions {
		ver := Version{Semver: v.Version, Scripts: v.Scripts, Styles: v.Styles}
		for _, d := range v.Dependencies {
			ver.Dependencies = append(ver.Dependencies, Dependency{Name: d.Name, Range: d.Range})
		}
		def.Versions = append(def.Versions, ver)
	}
	return def, nil
}

func registryError(err error, source, name string) error {
	switch {
	case errors.Is(err, integrations.ErrNotFound):
		return cerrors.Wrap(cerrors.ErrCodePackageNotFound, err, "%s package %s not found", source, name)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return cerrors.Wrap(cerrors.ErrCodeNetwork, err, "%s package %s", source, name)
	}
}
