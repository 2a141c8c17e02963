package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	cerrors "github.com/filearts/corral/pkg/errors"
	"github.com/filearts/corral/pkg/integrations/catalog"
	"github.com/filearts/corral/pkg/integrations/npm"
)

func TestCatalogProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/packages/bootstrap":
			w.Write([]byte(`{"name":"bootstrap","versions":[{"semver":"3.3.7","scripts":["b.js"],"dependencies":[{"name":"jquery","range":"^2"}]}]}`))
		case "/packages/down":
			w.WriteHeader(http.StatusBadRequest)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	p := NewCatalog(catalog.NewClient(server.URL, nil, time.Hour), false)

	def, err := p.Fetch(context.Background(), "bootstrap")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if def.Versions[0].Dependencies[0].Ref() != "jquery@^2" || def.Versions[0].Scripts[0] != "b.js" {
		t.Errorf("Fetch() = %+v", def)
	}

	if _, err := p.Fetch(context.Background(), "missing"); !IsNotFound(err) {
		t.Errorf("Fetch(missing) error = %v, want not found", err)
	}
	if _, err := p.Fetch(context.Background(), "down"); !cerrors.Is(err, cerrors.ErrCodeNetwork) {
		t.Errorf("Fetch(down) error = %v, want NETWORK_ERROR", err)
	}
	if _, err := p.Fetch(context.Background(), "../etc"); !IsNotFound(err) {
		t.Errorf("Fetch(../etc) error = %v, want not found", err)
	}
}

func TestNPMProvider(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bootstrap" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(`{"name":"bootstrap","dist-tags":{"latest":"3.3.7"},"versions":{
			"3.3.7":{"main":"dist/js/bootstrap.js","style":"dist/css/bootstrap.css","dependencies":{"jquery":">=1.9.1"}}}}`))
	}))
	defer server.Close()

	client := npm.NewClient(nil, time.Hour, npm.WithBaseURL(server.URL))
	p := NewNPM(client, false)

	def, err := p.Fetch(context.Background(), "bootstrap")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	v := def.Versions[0]
	if v.Semver != "3.3.7" {
		t.Errorf("Semver = %s", v.Semver)
	}
	if want := "https://cdn.jsdelivr.net/npm/bootstrap@3.3.7/dist/js/bootstrap.js"; len(v.Scripts) != 1 || v.Scripts[0] != want {
		t.Errorf("Scripts = %v, want [%s]", v.Scripts, want)
	}
	if want := "https://cdn.jsdelivr.net/npm/bootstrap@3.3.7/dist/css/bootstrap.css"; len(v.Styles) != 1 || v.Styles[0] != want {
		t.Errorf("Styles = %v, want [%s]", v.Styles, want)
	}
	if len(v.Dependencies) != 1 || v.Dependencies[0].Ref() != "jquery@>=1.9.1" {
		t.Errorf("Dependencies = %v", v.Dependencies)
	}

	if _, err := p.Fetch(context.Background(), "missing"); !IsNotFound(err) {
		t.Errorf("Fetch(missing) error = %v, want not found", err)
	}
	if _, err := p.Fetch(context.Background(), "Upper"); !IsNotFound(err) {
		t.Errorf("Fetch(Upper) error = %v, want not found", err)
	}
}
