// Package npm provides an HTTP client for the npm registry API.
//
// # Overview
//
// This package fetches package metadata from the npm registry
// (https://registry.npmjs.org) and describes every published version as a
// set of browser assets served by jsDelivr.
//
// # Usage
//
//	client := npm.NewClient(c, 24*time.Hour)
//
//	pkg, err := client.FetchPackage(ctx, "jquery", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, v := range pkg.Versions {
//	    fmt.Println(v.Version, v.Scripts)
//	}
//
// # Assets
//
// The script of a version is taken from the first non-empty of its
// "jsdelivr", "unpkg", "browser" and "main" fields; the stylesheet from
// "style". Paths are turned into URLs of the form
//
//	https://cdn.jsdelivr.net/npm/{name}@{version}/{path}
//
// # Caching
//
// Responses are cached to reduce load on the registry. The cache TTL is set
// when creating the client. Pass refresh=true to bypass the cache.
//
// Only "dependencies" are reported; devDependencies, peerDependencies, and
// optionalDependencies are not included.
package npm
