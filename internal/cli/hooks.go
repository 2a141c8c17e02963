package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/filearts/corral/pkg/observability"
)

// logHooks reports resolver, cache and HTTP events at debug level.
type logHooks struct {
	logger *log.Logger
}

// installLogHooks routes every observability event to l.
func installLogHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetResolveHooks(h)
	observability.SetCacheHooks(h)
	observability.SetHTTPHooks(h)
}

func (h logHooks) OnFetchStart(_ context.Context, pkg string) {
	h.logger.Debug("fetch", "package", pkg)
}

func (h logHooks) OnFetchComplete(_ context.Context, pkg string, versions int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("fetch failed", "package", pkg, "duration", d.Round(time.Millisecond), "err", err)
		return
	}
	h.logger.Debug("fetched", "package", pkg, "versions", versions, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnResolve(_ context.Context, pkg, rng, selected string, d time.Duration, err error) {
	if err != nil {
		return
	}
	if selected == "" {
		h.logger.Warn("no version matches", "package", pkg, "range", rng)
	}
}

func (h logHooks) OnPlace(_ context.Context, pkg string, scripts, styles int) {
	h.logger.Debug("tags", "package", pkg, "scripts", scripts, "styles", styles)
}

func (h logHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h logHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h logHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h logHooks) OnRequest(_ context.Context, method, host, path string) {
	h.logger.Debug("http", "method", method, "host", host, "path", path)
}

func (h logHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.logger.Debug("http done", "host", host, "path", path, "status", status, "duration", d.Round(time.Millisecond))
}

func (h logHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.logger.Debug("http error", "host", host, "path", path, "err", err)
}
