package markup

import (
	"slices"

	"github.com/filearts/corral/pkg/dom"
	cerrors "github.com/filearts/corral/pkg/errors"
)

// Scan lists the package references recorded in the data-require attributes
// of markup, in document order without duplicates, and returns the markup
// with those tags removed.
//
// Resetting a File to the stripped markup and adding the references back in
// reverse order restores the tags in their original order, as long as the
// packages' dependencies did not change meanwhile.
func Scan(markup string) (refs []string, stripped string, err error) {
	doc, err := dom.Parse(markup)
	if err != nil {
		return nil, "", cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "parse markup")
	}
	tags := doc.Find("script[" + AttrRequire + "], link[" + AttrRequire + "]")
	for _, n := range tags {
		v, _ := dom.Attr(n, AttrRequire)
		if v != "" && !slices.Contains(refs, v) {
			refs = append(refs, v)
		}
	}
	dom.RemoveIndented(tags)
	return refs, doc.String(), nil
}
