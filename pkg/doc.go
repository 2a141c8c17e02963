// Package pkg provides the libraries behind the corral command.
//
// # Overview
//
// Corral keeps the <script> and <link> tags of an HTML page in step with the
// front-end packages the page uses. Packages are named by references such as
// jquery@^2.0.0; corral fetches their published versions, picks the highest
// version each range allows, follows dependencies and writes one tag per
// asset so that every package loads after what it depends on.
//
// # Architecture
//
//	package reference (jquery@^2.0.0)
//	         ↓
//	    [ref] (parse name and semver range)
//	         ↓
//	    [provider] (package definitions: static, file, catalog, npm, mongo)
//	         ↓
//	    [markup] (dependency graph + tag placement in the document)
//	         ↓
//	    HTML, DOT, SVG or JSON output
//
// # Quick Start
//
//	p := provider.NewStatic(&provider.Definition{
//	    Name:     "jquery",
//	    Versions: []provider.Version{{Semver: "2.1.0", Scripts: []string{"jquery.js"}}},
//	})
//	f, _ := markup.New(p)
//	_ = f.AddDependency(ctx, "jquery@^2.0.0")
//	fmt.Println(f.String())
//
// # Main Packages
//
// [markup] owns the document and the package graph. [dom] wraps the HTML
// tree it edits.
//
// [provider] defines where package definitions come from. [integrations]
// holds the HTTP clients for the npm registry and corral catalog servers,
// and [cache] the file, Redis and null caches they share.
//
// [server] serves a catalog over HTTP. [render/nodelink] draws the graph
// with Graphviz and [io] exchanges it as JSON.
//
// [config] reads corral.toml. [errors] carries the error codes used
// throughout and [observability] the hook interfaces the CLI logs through.
//
// [markup]: https://pkg.go.dev/github.com/filearts/corral/pkg/markup
// [dom]: https://pkg.go.dev/github.com/filearts/corral/pkg/dom
// [ref]: https://pkg.go.dev/github.com/filearts/corral/pkg/ref
// [provider]: https://pkg.go.dev/github.com/filearts/corral/pkg/provider
// [integrations]: https://pkg.go.dev/github.com/filearts/corral/pkg/integrations
// [cache]: https://pkg.go.dev/github.com/filearts/corral/pkg/cache
// [server]: https://pkg.go.dev/github.com/filearts/corral/pkg/server
// [render/nodelink]: https://pkg.go.dev/github.com/filearts/corral/pkg/render/nodelink
// [io]: https://pkg.go.dev/github.com/filearts/corral/pkg/io
// [config]: https://pkg.go.dev/github.com/filearts/corral/pkg/config
// [errors]: https://pkg.go.dev/github.com/filearts/corral/pkg/errors
// [observability]: https://pkg.go.dev/github.com/filearts/corral/pkg/observability
package pkg
