// Package bump computes version transitions and enforces the rules that
// keep a project's version history strictly increasing.
package bump

import (
	"errors"
	"fmt"

	"github.com/papapumpkin/pybump/internal/version"
)

// ErrInvalidTransition indicates a structurally valid version pair that
// violates the monotonicity or pre-release boundary rule.
var ErrInvalidTransition = errors.New("invalid version transition")

// Kind enumerates the bump strategies.
type Kind int

const (
	// Major increments the major component and resets minor and patch.
	Major Kind = iota
	// Minor increments the minor component and resets patch.
	Minor
	// Patch increments the patch component.
	Patch
	// Bump is the context-sensitive default: a patch bump for normal
	// releases, a pre-release number bump for pre-releases.
	Bump
	// Explicit sets the version verbatim. It is the only strategy allowed
	// to cross the pre-release boundary.
	Explicit
)

// String returns the CLI keyword for the kind.
func (k Kind) String() string {
	switch k {
	case Major:
		return "major"
	case Minor:
		return "minor"
	case Patch:
		return "patch"
	case Bump:
		return "bump"
	case Explicit:
		return "explicit"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Directive selects how the next version is derived from the current one.
// Version is set only when Kind is Explicit.
type Directive struct {
	Kind    Kind
	Version version.Version
}

// Result pairs the version before and after a transition.
type Result struct {
	Old version.Version
	New version.Version
}

// ParseDirective maps a CLI argument to a Directive. The keywords major,
// minor, patch, and bump select the corresponding strategy; any other
// string must parse as a version and becomes Explicit.
func ParseDirective(arg string) (Directive, error) {
	switch arg {
	case "major":
		return Directive{Kind: Major}, nil
	case "minor":
		return Directive{Kind: Minor}, nil
	case "patch":
		return Directive{Kind: Patch}, nil
	case "bump":
		return Directive{Kind: Bump}, nil
	}
	v, err := version.Parse(arg)
	if err != nil {
		return Directive{}, err
	}
	return Directive{Kind: Explicit, Version: v}, nil
}

// Apply computes the next version for the directive and validates the
// transition. Major, minor, and patch bumps increment against the release
// triple, discarding any pre-release marker; Validate then rejects the
// result when that discard would cross the pre-release boundary.
func Apply(current version.Version, d Directive) (Result, error) {
	var next version.Version

	switch d.Kind {
	case Major:
		next = version.Version{Major: current.Major + 1}
	case Minor:
		next = version.Version{Major: current.Major, Minor: current.Minor + 1}
	case Patch:
		next = current.Release()
		next.Patch++
	case Bump:
		if current.IsPreRelease() {
			next = current
			next.Pre.N++
		} else {
			next = current
			next.Patch++
		}
	case Explicit:
		next = d.Version
	default:
		return Result{}, fmt.Errorf("unknown bump directive %q", d.Kind)
	}

	if err := Validate(current, next, d); err != nil {
		return Result{}, err
	}
	return Result{Old: current, New: next}, nil
}

// Validate checks that a transition from old to next is legal:
//
//  1. next must be strictly greater than old under the total order;
//     equal versions and downgrades fail. Note that 1.0.0 -> 1.0.0a1 is a
//     downgrade, since a release outranks any same-triple pre-release.
//  2. A non-Explicit directive may not switch between pre-release and
//     normal release; only an explicit version crosses that boundary.
//
// Computed bumps satisfy rule 1 by construction; validating them anyway
// keeps Explicit and computed transitions on one code path.
func Validate(old, next version.Version, d Directive) error {
	if next.Compare(old) <= 0 {
		return fmt.Errorf("%w: %s -> %s: same version or downgrade not allowed",
			ErrInvalidTransition, old, next)
	}
	if d.Kind != Explicit && old.IsPreRelease() != next.IsPreRelease() {
		return fmt.Errorf("%w: %s -> %s: switching between pre-release and normal release requires an explicit version",
			ErrInvalidTransition, old, next)
	}
	return nil
}
