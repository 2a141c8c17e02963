package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/filearts/corral/pkg/cache"
	cerrors "github.com/filearts/corral/pkg/errors"
	"github.com/filearts/corral/pkg/integrations/catalog"
	"github.com/filearts/corral/pkg/provider"
)

func newTestServer(t *testing.T, p provider.Provider, opts Options) *httptest.Server {
	t.Helper()
	opts.Logger = log.New(io.Discard)
	ts := httptest.NewServer(New(p, opts))
	t.Cleanup(ts.Close)
	return ts
}

func catalogFixture() *provider.Static {
	return provider.NewStatic(
		&provider.Definition{Name: "jquery", Versions: []provider.Version{{Semver: "2.1.0", Scripts: []string{"jquery.js"}}}},
		&provider.Definition{Name: "bootstrap", Versions: []provider.Version{{
			Semver:       "3.3.7",
			Scripts:      []string{"bootstrap.js"},
			Styles:       []string{"bootstrap.css"},
			Dependencies: []provider.Dependency{{Name: "jquery", Range: "^2.0.0"}},
		}}},
	)
}

func TestRoutes(t *testing.T) {
	broken := provider.ProviderFunc(func(context.Context, string) (*provider.Definition, error) {
		return nil, cerrors.New(cerrors.ErrCodeNetwork, "upstream down")
	})

	tests := []struct {
		name     string
		provider provider.Provider
		path     string
		status   int
		code     cerrors.Code
	}{
		{"health", catalogFixture(), "/healthz", http.StatusOK, ""},
		{"list", catalogFixture(), "/packages", http.StatusOK, ""},
		{"list unsupported", broken, "/packages", http.StatusNotImplemented, cerrors.ErrCodeUnsupported},
		{"package", catalogFixture(), "/packages/jquery", http.StatusOK, ""},
		{"missing", catalogFixture(), "/packages/nope", http.StatusNotFound, cerrors.ErrCodePackageNotFound},
		{"invalid name", catalogFixture(), "/packages/a..b", http.StatusBadRequest, cerrors.ErrCodeInvalidPackage},
		{"upstream failure", broken, "/packages/jquery", http.StatusBadGateway, cerrors.ErrCodeNetwork},
		{"unknown route", catalogFixture(), "/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t, tt.provider, Options{})
			resp, err := http.Get(ts.URL + tt.path)
			if err != nil {
				t.Fatalf("GET %s: %v", tt.path, err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if _, err := uuid.Parse(resp.Header.Get(HeaderRequestID)); err != nil {
				t.Errorf("X-Request-ID = %q is not a uuid", resp.Header.Get(HeaderRequestID))
			}
			if tt.code != "" {
				var body errorBody
				if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
					t.Fatalf("decode error body: %v", err)
				}
				if body.Code != tt.code {
					t.Errorf("code = %s, want %s", body.Code, tt.code)
				}
			}
		})
	}
}

func TestRequestIDEchoed(t *testing.T) {
	ts := newTestServer(t, catalogFixture(), Options{})

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/healthz", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()

	if got := resp.Header.Get(HeaderRequestID); got != "abc-123" {
		t.Errorf("X-Request-ID = %q, want abc-123", got)
	}
}

func TestCatalogClientRoundTrip(t *testing.T) {
	ts := newTestServer(t, catalogFixture(), Options{})
	p := provider.NewCatalog(catalog.NewClient(ts.URL, nil, time.Hour), false)

	def, err := p.Fetch(context.Background(), "bootstrap")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	v := def.Versions[0]
	if v.Semver != "3.3.7" || v.Styles[0] != "bootstrap.css" || v.Dependencies[0].Ref() != "jquery@^2.0.0" {
		t.Errorf("Fetch() = %+v", def)
	}

	if _, err := p.Fetch(context.Background(), "nope"); !provider.IsNotFound(err) {
		t.Errorf("Fetch(nope) error = %v, want not found", err)
	}
}

func TestServerCache(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	counting := provider.NewCounting(catalogFixture())
	ts := newTestServer(t, counting, Options{Cache: c, CacheTTL: time.Hour})

	for range 3 {
		resp, err := http.Get(ts.URL + "/packages/jquery")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
	}
	if counting.Count("jquery") != 1 {
		t.Errorf("provider fetches = %d, want 1", counting.Count("jquery"))
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := New(catalogFixture(), Options{Logger: log.New(io.Discard)})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("ListenAndServe() did not return after cancel")
	}
}
