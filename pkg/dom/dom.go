// Package dom wraps an HTML document tree with the handful of primitives the
// tag placement engine needs: parse, serialize, selector queries, and
// whitespace-aware insertion and removal.
//
// # Formatting policy
//
// Inserted elements copy the indentation of the line their anchor sits on.
// The indentation is the trailing line of the whitespace directly preceding
// the anchor, so
//
//	<head>
//	    <script src="b.js"></script>
//	</head>
//
// gets new tags inserted before b.js as "\n    "-separated siblings. Removing
// an element also drops the whitespace in front of it so no blank lines pile
// up. Text with content is never copied or removed.
//
// The tree is an x/net/html tree; [goquery] is only used for parsing,
// rendering and selector matching.
package dom

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultMarkup is the skeleton used when a document is created from nothing.
const DefaultMarkup = "<!DOCTYPE html><html><head></head><body></body></html>"

// DefaultIndent is used when appending into an element with no indentation
// to copy.
const DefaultIndent = "  "

// Document is a mutable HTML tree.
//
// Document is not safe for concurrent use.
type Document struct {
	doc *goquery.Document
}

// Parse builds a Document from markup. Empty markup yields [DefaultMarkup].
func Parse(markup string) (*Document, error) {
	if markup == "" {
		markup = DefaultMarkup
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}
	return &Document{doc: doc}, nil
}

// String renders the current tree.
func (d *Document) String() string {
	var buf bytes.Buffer
	if err := html.Render(&buf, d.Root()); err != nil {
		return ""
	}
	return buf.String()
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.doc.Nodes[0]
}

// Find returns the elements matching a CSS selector in document order.
func (d *Document) Find(selector string) []*html.Node {
	return d.doc.Find(selector).Nodes
}

// Head returns the head element, or nil if the document has none.
func (d *Document) Head() *html.Node {
	if nodes := d.Find("head"); len(nodes) > 0 {
		return nodes[0]
	}
	return nil
}

// NewElement creates a detached element. Attributes keep the given order,
// which is the order they render in.
func NewElement(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
		Attr:     attrs,
	}
}

// Attr returns the value of an attribute on n.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// ElementChildren returns the element children of n.
func ElementChildren(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// LeadingText returns the whitespace directly before n: the run of
// whitespace-only text siblings in front of it, plus the trailing whitespace
// of the text node that ends the run, if any.
func LeadingText(n *html.Node) string {
	var parts []string
	for prev := n.PrevSibling; prev != nil && prev.Type == html.TextNode; prev = prev.PrevSibling {
		if !isBlank(prev.Data) {
			parts = append(parts, trailingSpace(prev.Data))
			break
		}
		parts = append(parts, prev.Data)
	}
	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteString(parts[i])
	}
	return b.String()
}

// LineIndent returns the separator that puts a sibling on its own line at
// the same indentation as n: a newline followed by the last line of the text
// in front of n.
func LineIndent(n *html.Node) string {
	text := LeadingText(n)
	if i := strings.LastIndexByte(text, '\n'); i >= 0 {
		text = text[i+1:]
	}
	return "\n" + text
}

// InsertBefore inserts nodes, in order, before anchor, each one followed by
// the anchor's line indentation.
func InsertBefore(anchor *html.Node, nodes []*html.Node) {
	if anchor == nil || anchor.Parent == nil {
		return
	}
	indent := LineIndent(anchor)
	parent := anchor.Parent
	for _, n := range nodes {
		detach(n)
		parent.InsertBefore(n, anchor)
		parent.InsertBefore(text(indent), anchor)
	}
}

// InsertAfter inserts nodes, in order, after anchor, each one preceded by
// the anchor's line indentation.
func InsertAfter(anchor *html.Node, nodes []*html.Node) {
	if anchor == nil || anchor.Parent == nil {
		return
	}
	indent := LineIndent(anchor)
	parent := anchor.Parent
	next := anchor.NextSibling
	for _, n := range nodes {
		detach(n)
		parent.InsertBefore(text(indent), next)
		parent.InsertBefore(n, next)
	}
}

// AppendIndented appends nodes as the last children of parent, each one on
// its own line prefixed by indent. A trailing whitespace text node holding a
// newline, as in "<head>\n</head>", stays last; otherwise the run is closed
// with a newline.
func AppendIndented(parent *html.Node, nodes []*html.Node, indent string) {
	if parent == nil || len(nodes) == 0 {
		return
	}
	var tail *html.Node
	if last := parent.LastChild; last != nil && last.Type == html.TextNode &&
		isBlank(last.Data) && strings.Contains(last.Data, "\n") {
		tail = last
	}
	for _, n := range nodes {
		detach(n)
		parent.InsertBefore(text("\n"+indent), tail)
		parent.InsertBefore(n, tail)
	}
	if tail == nil {
		parent.AppendChild(text("\n"))
	}
}

// RemoveIndented detaches nodes from the tree together with the whitespace
// in front of each of them. Whitespace-only text siblings are removed; text
// with content loses only the line break and indentation at its end.
// Detached nodes are ignored.
func RemoveIndented(nodes []*html.Node) {
	for _, n := range nodes {
		if n.Parent == nil {
			continue
		}
		for prev := n.PrevSibling; prev != nil && prev.Type == html.TextNode; {
			p := prev.PrevSibling
			if !isBlank(prev.Data) {
				tail := trailingSpace(prev.Data)
				if i := strings.IndexByte(tail, '\n'); i >= 0 {
					prev.Data = prev.Data[:len(prev.Data)-len(tail)+i]
				}
				break
			}
			prev.Parent.RemoveChild(prev)
			prev = p
		}
		n.Parent.RemoveChild(n)
	}
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func trailingSpace(s string) string {
	return s[len(strings.TrimRightFunc(s, unicode.IsSpace)):]
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

func text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}
