package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	cerrors "github.com/filearts/corral/pkg/errors"
	"github.com/filearts/corral/pkg/provider"
)

func TestConnectInvalidURI(t *testing.T) {
	_, err := Connect(context.Background(), "invalid://host", "", "")
	if err == nil {
		t.Fatal("Connect() should fail for an invalid URI")
	}
	if !cerrors.Is(err, cerrors.ErrCodeInvalidConfig) {
		t.Errorf("Connect() error = %v, want INVALID_CONFIG", err)
	}
}

// TestProviderRoundTrip needs a running server; set CORRAL_TEST_MONGO_URI to run it.
func TestProviderRoundTrip(t *testing.T) {
	uri := os.Getenv("CORRAL_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("CORRAL_TEST_MONGO_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	p, err := Connect(ctx, uri, "corral_test", "packages_"+time.Now().Format("150405"))
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	defer func() {
		_ = p.coll.Drop(ctx)
		_ = p.Close(ctx)
	}()

	if err := p.EnsureIndex(ctx); err != nil {
		t.Fatalf("EnsureIndex() error: %v", err)
	}
	def := &provider.Definition{Name: "jquery", Versions: []provider.Version{
		{Semver: "2.1.0", Scripts: []string{"jquery.js"}},
	}}
	if err := p.Put(ctx, def); err != nil {
		t.Fatalf("Put() error: %v", err)
	}

	got, err := p.Fetch(ctx, "jquery")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if len(got.Versions) != 1 || got.Versions[0].Scripts[0] != "jquery.js" {
		t.Errorf("Fetch() = %+v", got)
	}

	if _, err := p.Fetch(ctx, "missing"); !provider.IsNotFound(err) {
		t.Errorf("Fetch(missing) error = %v, want not found", err)
	}
}
