package npm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"github.com/filearts/corral/pkg/cache"
	"github.com/filearts/corral/pkg/integrations"
)

const jqueryDoc = `{
  "name": "jquery",
  "dist-tags": {"latest": "2.1.0"},
  "versions": {
    "2.1.0": {"main": "./dist/jquery.js", "jsdelivr": "dist/jquery.min.js"},
    "1.9.1": {"main": "dist/jquery.js", "dependencies": {"sizzle": "^1.0.0", "b-helper": "~2"}},
    "0.1.0": {"browser": {"./lib/node.js": false}, "style": "theme.css"}
  }
}`

func newTestServer(t *testing.T) (*httptest.Server, *int) {
	t.Helper()
	hits := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if r.URL.Path != "/jquery" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(jqueryDoc))
	}))
	t.Cleanup(server.Close)
	return server, &hits
}

func TestFetchPackage(t *testing.T) {
	server, _ := newTestServer(t)
	client := NewClient(nil, time.Hour, WithBaseURL(server.URL), WithCDN("https://cdn.test/npm/"))

	info, err := client.FetchPackage(context.Background(), " JQuery ", false)
	if err != nil {
		t.Fatalf("FetchPackage() error: %v", err)
	}
	if info.Name != "jquery" || info.Latest != "2.1.0" {
		t.Errorf("identity = %s@%s, want jquery@2.1.0", info.Name, info.Latest)
	}

	var versions []string
	for _, v := range info.Versions {
		versions = append(versions, v.Version)
	}
	if want := []string{"0.1.0", "1.9.1", "2.1.0"}; !slices.Equal(versions, want) {
		t.Fatalf("versions = %v, want %v", versions, want)
	}

	tests := []struct {
		version string
		scripts []string
		styles  []string
		deps    []Dependency
	}{
		{"0.1.0", nil, []string{"https://cdn.test/npm/jquery@0.1.0/theme.css"}, []Dependency{}},
		{"1.9.1", []string{"https://cdn.test/npm/jquery@1.9.1/dist/jquery.js"}, nil,
			[]Dependency{{Name: "b-helper", Range: "~2"}, {Name: "sizzle", Range: "^1.0.0"}}},
		{"2.1.0", []string{"https://cdn.test/npm/jquery@2.1.0/dist/jquery.min.js"}, nil, []Dependency{}},
	}
	for i, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			v := info.Versions[i]
			if !slices.Equal(v.Scripts, tt.scripts) {
				t.Errorf("Scripts = %v, want %v", v.Scripts, tt.scripts)
			}
			if !slices.Equal(v.Styles, tt.styles) {
				t.Errorf("Styles = %v, want %v", v.Styles, tt.styles)
			}
			if !slices.Equal(v.Dependencies, tt.deps) {
				t.Errorf("Dependencies = %v, want %v", v.Dependencies, tt.deps)
			}
		})
	}
}

func TestFetchPackageNotFound(t *testing.T) {
	server, _ := newTestServer(t)
	client := NewClient(nil, time.Hour, WithBaseURL(server.URL))

	_, err := client.FetchPackage(context.Background(), "missing", false)
	if !errors.Is(err, integrations.ErrNotFound) {
		t.Errorf("FetchPackage() error = %v, want ErrNotFound", err)
	}
}

func TestFetchPackageCached(t *testing.T) {
	server, hits := newTestServer(t)
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error: %v", err)
	}
	client := NewClient(c, time.Hour, WithBaseURL(server.URL))

	for range 2 {
		if _, err := client.FetchPackage(context.Background(), "jquery", false); err != nil {
			t.Fatalf("FetchPackage() error: %v", err)
		}
	}
	if *hits != 1 {
		t.Errorf("registry hits = %d, want 1", *hits)
	}

	if _, err := client.FetchPackage(context.Background(), "jquery", true); err != nil {
		t.Fatalf("FetchPackage(refresh) error: %v", err)
	}
	if *hits != 2 {
		t.Errorf("registry hits after refresh = %d, want 2", *hits)
	}
}
