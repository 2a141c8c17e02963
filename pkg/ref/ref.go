// Package ref parses package references of the form name or name@range.
//
// A reference names a package and the versions of it that are acceptable:
//
//	jquery          // any version
//	jquery@^2.0.0   // any 2.x at or above 2.0.0
//	angular@1.2.x
//
// Range syntax is whatever [semver.NewConstraint] accepts, which covers the
// npm-style caret, tilde, hyphen and comparison operators.
package ref

import (
	"strings"

	"github.com/Masterminds/semver/v3"

	cerrors "github.com/filearts/corral/pkg/errors"
)

// AnyRange is the range used when a reference carries none.
const AnyRange = "*"

// Ref is a parsed package reference.
type Ref struct {
	Name      string              // Package name, never empty
	TextRange string              // Range as written, "*" when absent
	Range     *semver.Constraints // Parsed form of TextRange
}

// Parse splits s on its first "@" into a name and a range. A leading "@"
// followed by a scope and a slash, as in "@angular/core@^12", belongs to the
// name.
//
// The name is required. A missing or empty range defaults to [AnyRange].
// Parse returns an INVALID_REFERENCE error when the name is empty or the
// range does not parse; it never panics.
func Parse(s string) (Ref, error) {
	name, textRange := cutRange(s)
	if name == "" {
		return Ref{}, cerrors.New(cerrors.ErrCodeInvalidReference, "invalid package reference %q: missing name", s)
	}
	rng, err := ParseRange(textRange)
	if err != nil {
		return Ref{}, cerrors.Wrap(cerrors.ErrCodeInvalidReference, err, "invalid package reference %q", s)
	}
	if textRange == "" {
		textRange = AnyRange
	}
	return Ref{Name: name, TextRange: textRange, Range: rng}, nil
}

func cutRange(s string) (name, textRange string) {
	if rest, ok := strings.CutPrefix(s, "@"); ok {
		scoped, r, _ := strings.Cut(rest, "@")
		if strings.Contains(scoped, "/") {
			return "@" + scoped, r
		}
	}
	name, textRange, _ = strings.Cut(s, "@")
	return name, textRange
}

// MustParse is like [Parse] but panics on error. Intended for literals.
func MustParse(s string) Ref {
	r, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return r
}

// ParseRange parses a version range. An empty string means [AnyRange].
func ParseRange(s string) (*semver.Constraints, error) {
	if s == "" {
		s = AnyRange
	}
	return semver.NewConstraint(s)
}

// ParseVersion parses a published version number.
func ParseVersion(s string) (*semver.Version, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrCodeInvalidInput, err, "invalid version %q", s)
	}
	return v, nil
}

// Matches reports whether version satisfies the reference's range.
// Versions that are not valid semver never match.
func (r Ref) Matches(version string) bool {
	return Satisfies(r.Range, version)
}

// String renders the reference as name@range.
func (r Ref) String() string {
	return r.Name + "@" + r.TextRange
}

// Satisfies reports whether version satisfies rng. A nil range matches any
// valid version.
func Satisfies(rng *semver.Constraints, version string) bool {
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	if rng == nil {
		return true
	}
	return rng.Check(v)
}

// Compare orders two version strings by semver precedence. Invalid versions
// sort below every valid one and compare equal to each other.
func Compare(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return va.Compare(vb)
}
