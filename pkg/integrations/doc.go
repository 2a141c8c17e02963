// Package integrations provides HTTP clients for package metadata sources.
//
// # Overview
//
// This package contains low-level API clients for fetching the published
// versions of front-end packages. Each source has its own subpackage:
//
//   - [npm]: the npm registry, with asset URLs served from jsDelivr
//   - [catalog]: a corral catalog server (see corral serve)
//
// # Client Pattern
//
// All clients follow a consistent pattern:
//
//	client := npm.NewClient(c, 24*time.Hour)                  // cache and TTL
//	pkg, err := client.FetchPackage(ctx, "jquery", false)     // false = use cache
//
// Clients handle:
//   - HTTP requests with retry on network errors and 5xx responses
//   - Response caching through any [cache.Cache] backend
//   - API-specific parsing and normalization
//
// # Shared Infrastructure
//
// The [Client] type provides the shared HTTP functionality used by every
// source client. Requests and cache lookups report through the hooks in
// [observability].
//
// [npm]: github.com/filearts/corral/pkg/integrations/npm
// [catalog]: github.com/filearts/corral/pkg/integrations/catalog
// [cache.Cache]: github.com/filearts/corral/pkg/cache.Cache
// [observability]: github.com/filearts/corral/pkg/observability
package integrations
