package config

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	cerrors "github.com/filearts/corral/pkg/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestConfigWithDefaults(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantTTL time.Duration
		addr    string
	}{
		{"zero", Config{}, DefaultCacheTTL, DefaultServerAddr},
		{"negative ttl", Config{Cache: Cache{TTL: -time.Second}}, DefaultCacheTTL, DefaultServerAddr},
		{"preserves", Config{Cache: Cache{TTL: time.Minute}, Server: Server{Addr: ":9000"}}, time.Minute, ":9000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.cfg.WithDefaults()
			if got.Cache.TTL != tt.wantTTL {
				t.Errorf("TTL = %v, want %v", got.Cache.TTL, tt.wantTTL)
			}
			if got.Server.Addr != tt.addr {
				t.Errorf("Addr = %q, want %q", got.Server.Addr, tt.addr)
			}
			if got.Providers.MongoDatabase != DefaultMongoDB || got.Cache.Prefix != DefaultRedisPrefix {
				t.Errorf("defaults not applied: %+v", got)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
dependencies = ["jquery@^2.0.0", "bootstrap"]

[providers]
catalog_file = "catalog.yaml"
npm = false

[cache]
ttl = "1h30m"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !slices.Equal(cfg.Dependencies, []string{"jquery@^2.0.0", "bootstrap"}) {
		t.Errorf("Dependencies = %v", cfg.Dependencies)
	}
	if want := filepath.Join(filepath.Dir(path), "catalog.yaml"); cfg.Providers.CatalogFile != want {
		t.Errorf("CatalogFile = %q, want %q", cfg.Providers.CatalogFile, want)
	}
	if cfg.Providers.UseNPM() {
		t.Error("UseNPM() = true, want false")
	}
	if cfg.Cache.TTL != 90*time.Minute {
		t.Errorf("TTL = %v, want 1h30m", cfg.Cache.TTL)
	}
	if cfg.Path != path {
		t.Errorf("Path = %q, want %q", cfg.Path, path)
	}
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, `dependencies = ["angular@1.2.x"]`)
	t.Setenv(EnvPath, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(cfg.Dependencies) != 1 || !cfg.Providers.UseNPM() {
		t.Errorf("Load() = %+v", cfg)
	}
}

func TestLoadMissing(t *testing.T) {
	t.Setenv(EnvPath, "")
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() without project file error: %v", err)
	}
	if cfg.Path != "" || cfg.Cache.TTL != DefaultCacheTTL {
		t.Errorf("Load() = %+v, want defaults", cfg)
	}

	if _, err := Load("nope.toml"); !cerrors.Is(err, cerrors.ErrCodeFileNotFound) {
		t.Errorf("Load(nope.toml) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"syntax", `dependencies = [`},
		{"unknown key", `colour = "blue"`},
		{"bad dependency", `dependencies = ["@1.0.0"]`},
		{"bad url", "[providers]\ncatalog_url = \"ftp://example.com\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if !cerrors.Is(err, cerrors.ErrCodeInvalidConfig) {
				t.Errorf("Load() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}
