// Package catalog provides an HTTP client for corral catalog servers.
//
// A catalog server (see corral serve) publishes package definitions at
//
//	GET {base}/packages/{name}
//
// as JSON documents with a name and a list of versions, each carrying its
// semver, dependencies, scripts and styles.
//
//	client := catalog.NewClient("http://localhost:8080", c, time.Hour)
//	pkg, err := client.FetchPackage(ctx, "jquery", false)
package catalog
