// Package version implements the PEP440-style version value used by pybump:
// a MAJOR.MINOR.PATCH release triple with an optional {a|b|rc}N pre-release
// suffix. Versions are immutable; every transition produces a new value.
package version

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

// ErrInvalid indicates a string that does not match the accepted
// MAJOR.MINOR.PATCH[{a|b|rc}N] grammar.
var ErrInvalid = errors.New("invalid version")

// Tag is a pre-release tag letter. Ordering is a < b < rc.
type Tag string

const (
	TagAlpha Tag = "a"
	TagBeta  Tag = "b"
	TagRC    Tag = "rc"
)

// rank returns the position of the tag in the pre-release order.
func (t Tag) rank() int {
	switch t {
	case TagAlpha:
		return 0
	case TagBeta:
		return 1
	case TagRC:
		return 2
	}
	return -1
}

// PreRelease marks a version as preceding the release of its triple.
// The zero value (empty Tag) means "no pre-release".
type PreRelease struct {
	Tag Tag
	N   int
}

// Version is a parsed release identifier. Values are comparable with ==
// and are never mutated after construction.
type Version struct {
	Major int
	Minor int
	Patch int
	Pre   PreRelease
}

// grammar is MAJOR.MINOR.PATCH with an optional pre-release suffix attached
// directly to the patch component, e.g. 1.2.3a4 or 1.2.3rc1.
var versionRe = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(?:(a|b|rc)(\d+))?$`)

// Parse constructs a Version from its string form. Any string outside the
// release[{a|b|rc}N] grammar fails with an error wrapping ErrInvalid.
func Parse(s string) (Version, error) {
	m := versionRe.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalid, s)
	}

	major, err := strconv.Atoi(m[1])
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
	}
	minor, err := strconv.Atoi(m[2])
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
	}
	patch, err := strconv.Atoi(m[3])
	if err != nil {
		return Version{}, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
	}

	v := Version{Major: major, Minor: minor, Patch: patch}
	if m[4] != "" {
		n, err := strconv.Atoi(m[5])
		if err != nil {
			return Version{}, fmt.Errorf("%w: %q: %v", ErrInvalid, s, err)
		}
		v.Pre = PreRelease{Tag: Tag(m[4]), N: n}
	}
	return v, nil
}

// MustParse is Parse for trusted literals; it panics on error.
// Intended for tests and compile-time constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String renders the canonical form: "M.m.p" or "M.m.p{tag}{n}".
// Parse(v.String()) always reproduces v.
func (v Version) String() string {
	if !v.IsPreRelease() {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
	}
	return fmt.Sprintf("%d.%d.%d%s%d", v.Major, v.Minor, v.Patch, v.Pre.Tag, v.Pre.N)
}

// IsPreRelease reports whether the version carries a pre-release marker.
func (v Version) IsPreRelease() bool {
	return v.Pre.Tag != ""
}

// Release returns the version with any pre-release marker stripped.
func (v Version) Release() Version {
	return Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
}

// Compare orders two versions: -1 if v < o, 0 if equal, +1 if v > o.
// The release triple compares lexicographically; at equal triples a version
// without a pre-release marker sorts after one with, so 1.0.0 > 1.0.0rc1.
// Between pre-releases the tag rank (a < b < rc) decides, then the number.
func (v Version) Compare(o Version) int {
	if c := cmpInt(v.Major, o.Major); c != 0 {
		return c
	}
	if c := cmpInt(v.Minor, o.Minor); c != 0 {
		return c
	}
	if c := cmpInt(v.Patch, o.Patch); c != 0 {
		return c
	}

	switch {
	case !v.IsPreRelease() && !o.IsPreRelease():
		return 0
	case !v.IsPreRelease():
		return 1
	case !o.IsPreRelease():
		return -1
	}

	if c := cmpInt(v.Pre.Tag.rank(), o.Pre.Tag.rank()); c != 0 {
		return c
	}
	return cmpInt(v.Pre.N, o.Pre.N)
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
