package provider

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	cerrors "github.com/filearts/corral/pkg/errors"
	"github.com/filearts/corral/pkg/ref"
)

// Catalog is the on-disk layout of a catalog file:
//
//	[[packages]]
//	name = "jquery"
//
//	  [[packages.versions]]
//	  semver = "2.1.0"
//	  scripts = ["https://code.jquery.com/jquery-2.1.0.js"]
type Catalog struct {
	Packages []*Definition `json:"packages" yaml:"packages" toml:"packages"`
}

// LoadFile reads a catalog file and serves its packages from memory. The
// format follows the extension: .json, .yaml/.yml or .toml.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, cerrors.Wrap(cerrors.ErrCodeFileNotFound, err, "catalog %s", path)
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	cat, err := ParseCatalog(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return NewStatic(cat.Packages...), nil
}

// ParseCatalog decodes catalog data in the format named by ext and checks
// that every package has a valid, unique name and every version a semver.
func ParseCatalog(data []byte, ext string) (*Catalog, error) {
	var cat Catalog
	var err error
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&cat)
	case "yaml", "yml":
		err = yaml.Unmarshal(data, &cat)
	case "toml":
		_, err = toml.Decode(string(data), &cat)
	default:
		return nil, cerrors.New(cerrors.ErrCodeInvalidFormat, "unsupported catalog format %q", ext)
	}
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidCatalog, err, "decode catalog")
	}
	if err := cat.validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Catalog) validate() error {
	seen := make(map[string]bool, len(c.Packages))
	for i, def := range c.Packages {
		if def == nil {
			return cerrors.New(cerrors.ErrCodeInvalidCatalog, "package %d is empty", i)
		}
		if err := cerrors.ValidatePackageName(def.Name); err != nil {
			return cerrors.Wrap(cerrors.ErrCodeInvalidCatalog, err, "package %d", i)
		}
		if strings.Contains(def.Name, "@") {
			return cerrors.New(cerrors.ErrCodeInvalidCatalog, "package name %q cannot contain '@'", def.Name)
		}
		if seen[def.Name] {
			return cerrors.New(cerrors.ErrCodeInvalidCatalog, "duplicate package %s", def.Name)
		}
		seen[def.Name] = true
		for _, v := range def.Versions {
			if _, err := ref.ParseVersion(v.Semver); err != nil {
				return cerrors.Wrap(cerrors.ErrCodeInvalidCatalog, err, "package %s", def.Name)
			}
		}
	}
	return nil
}
