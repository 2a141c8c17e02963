package nodelink

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/filearts/corral/pkg/markup"
)

func graph() (map[string]markup.PackageInfo, []string) {
	pkgs := map[string]markup.PackageInfo{
		"jquery":    {Name: "jquery", TextRange: "^2.0.0", Selected: "2.1.0", Scripts: []string{"jquery.js"}, Parents: []string{"bootstrap"}},
		"bootstrap": {Name: "bootstrap", TextRange: "*", Selected: "3.3.7", Scripts: []string{"b.js"}, Styles: []string{"b.css"}, Children: []string{"jquery"}},
		"ghost":     {Name: "ghost", TextRange: "^9.0.0"},
	}
	return pkgs, []string{"jquery", "bootstrap"}
}

func TestToDOT(t *testing.T) {
	pkgs, ordering := graph()
	dot := ToDOT(pkgs, ordering, Options{})

	for _, want := range []string{
		"digraph G {",
		`"jquery" [label="jquery@2.1.0"];`,
		`"bootstrap" -> "jquery";`,
		`"ghost" [label="ghost@^9.0.0", style="rounded,filled,dashed"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q\n%s", want, dot)
		}
	}

	jq := strings.Index(dot, `"jquery" [`)
	bs := strings.Index(dot, `"bootstrap" [`)
	gh := strings.Index(dot, `"ghost" [`)
	if !(jq < bs && bs < gh) {
		t.Errorf("nodes not in ordering order:\n%s", dot)
	}
}

func TestToDOTDetailed(t *testing.T) {
	pkgs, ordering := graph()
	dot := ToDOT(pkgs, ordering, Options{Detailed: true})
	if !strings.Contains(dot, `label="bootstrap@3.3.7\nrange: *\nscripts: 1\nstyles: 1"`) {
		t.Errorf("ToDOT(detailed) label missing:\n%s", dot)
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(nil, nil, Options{})
	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("ToDOT(empty) = %q", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	pkgs, ordering := graph()
	svg, err := RenderSVG(context.Background(), ToDOT(pkgs, ordering, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Error("RenderSVG() output is not SVG")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 10.00 20.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 10.00 20.00" width="10" height="20"><g/></svg>`
	if got != want {
		t.Errorf("normalizeViewBox() = %q, want %q", got, want)
	}
	if string(normalizeViewBox([]byte("<svg>"))) != "<svg>" {
		t.Error("normalizeViewBox() should leave svg without viewBox alone")
	}
}
