// Package io provides JSON import and export for resolved package graphs.
//
// # JSON Format
//
//	{
//	  "ordering": ["jquery", "bootstrap"],
//	  "nodes": [
//	    {"id": "bootstrap", "range": "*", "version": "3.3.7", "scripts": ["bootstrap.js"]},
//	    {"id": "jquery", "range": "^2.0.0", "version": "2.1.0", "scripts": ["jquery.js"]}
//	  ],
//	  "edges": [
//	    {"from": "bootstrap", "to": "jquery"}
//	  ]
//	}
//
// The ordering lists dependencies before dependents, as [markup.File.Ordering]
// does. A node without a version matched no published version.
//
// Use [ExportJSON] or [WriteJSON] to write a [markup.File] snapshot and
// [ImportJSON] or [ReadJSON] to read one back, e.g. to render it later with
// the nodelink package.
//
// [markup.File.Ordering]: github.com/filearts/corral/pkg/markup.File.Ordering
// [markup.File]: github.com/filearts/corral/pkg/markup.File
package io
