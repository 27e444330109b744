// Package release orchestrates a version bump: manifest read, transition
// computation, artifact naming, and the write/commit/tag sequence.
package release

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/papapumpkin/pybump/internal/bump"
	"github.com/papapumpkin/pybump/internal/gitrepo"
	"github.com/papapumpkin/pybump/internal/manifest"
	"github.com/papapumpkin/pybump/internal/version"
)

// Options control a single Run invocation.
type Options struct {
	// Dir is the working directory holding the git repository. Relative
	// manifest paths resolve against it.
	Dir string
	// ManifestPath locates pyproject.toml; empty means manifest.DefaultPath.
	ManifestPath string
	// Arg is the CLI directive argument; empty means "bump".
	Arg string
	// TestTag forces the test- tag prefix for normal releases.
	TestTag bool
	// DryRun computes and reports without writing, committing, or tagging.
	// Git preflight failures downgrade to warnings.
	DryRun bool
	// Log receives per-step diagnostics at debug level.
	Log zerolog.Logger
}

// Report describes a completed (or simulated) version bump.
type Report struct {
	ManifestPath  string
	OldVersion    string
	NewVersion    string
	CommitMessage string
	TagName       string
	DryRun        bool
	// Warnings holds the git preflight failures downgraded in dry-run mode.
	Warnings []string
}

// Render produces the human-readable success output.
func (r *Report) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Updated: %s\n", r.ManifestPath)
	fmt.Fprintf(&b, "Version: %s → %s\n", r.OldVersion, r.NewVersion)
	fmt.Fprintf(&b, "Commit: %s\n", r.CommitMessage)
	fmt.Fprintf(&b, "Tag: %s\n", r.TagName)
	if r.DryRun {
		b.WriteString("(dry run - no changes made)\n")
	}
	return b.String()
}

// Run performs the bump. All validation happens before any mutation; the
// only irreversible sequence is write manifest -> commit -> tag, and a
// failure partway through is reported rather than rolled back (git
// checkout of the manifest is the recovery path).
func Run(ctx context.Context, opts Options) (*Report, error) {
	manifestPath := opts.ManifestPath
	if manifestPath == "" {
		manifestPath = manifest.DefaultPath
	}
	if !filepath.IsAbs(manifestPath) {
		manifestPath = filepath.Join(opts.Dir, manifestPath)
	}
	if abs, err := filepath.Abs(manifestPath); err == nil {
		manifestPath = abs
	}

	m, err := manifest.Load(manifestPath)
	if err != nil {
		return nil, err
	}
	opts.Log.Debug().Str("path", manifestPath).Str("project", m.Project.Name).
		Str("version", m.Project.Version).Msg("manifest loaded")

	current, err := version.Parse(m.Project.Version)
	if err != nil {
		return nil, fmt.Errorf("manifest version: %w", err)
	}

	arg := opts.Arg
	if arg == "" {
		arg = "bump"
	}
	directive, err := bump.ParseDirective(arg)
	if err != nil {
		return nil, err
	}
	opts.Log.Debug().Stringer("directive", directive.Kind).Msg("directive parsed")

	res, err := bump.Apply(current, directive)
	if err != nil {
		return nil, err
	}
	spec := NameTag(res, opts.TestTag)
	opts.Log.Debug().Str("old", res.Old.String()).Str("new", res.New.String()).
		Str("tag", spec.TagName).Msg("transition computed")

	report := &Report{
		ManifestPath:  manifestPath,
		OldVersion:    res.Old.String(),
		NewVersion:    res.New.String(),
		CommitMessage: spec.CommitMessage,
		TagName:       spec.TagName,
		DryRun:        opts.DryRun,
	}

	// Git preflight. In dry-run mode these checks downgrade to warnings:
	// the computation itself needs no repository.
	repo, err := gitrepo.Open(ctx, opts.Dir)
	if err != nil {
		if !opts.DryRun {
			return nil, err
		}
		report.Warnings = append(report.Warnings, err.Error())
		repo = nil
	} else if err := repo.CheckClean(ctx); err != nil {
		if !opts.DryRun {
			return nil, err
		}
		report.Warnings = append(report.Warnings, err.Error())
	}

	if opts.DryRun {
		return report, nil
	}

	if err := manifest.WriteVersion(manifestPath, res.Old.String(), res.New.String()); err != nil {
		return nil, err
	}
	opts.Log.Debug().Str("path", manifestPath).Msg("manifest written")

	// No rollback past this point. On failure the manifest stays updated
	// and the error says so.
	if err := repo.Commit(ctx, spec.CommitMessage, manifestPath); err != nil {
		return nil, fmt.Errorf("manifest updated but commit failed (restore with git checkout): %w", err)
	}
	if err := repo.Tag(ctx, spec.TagName); err != nil {
		return nil, fmt.Errorf("version committed but tag creation failed: %w", err)
	}
	opts.Log.Debug().Str("tag", spec.TagName).Msg("commit and tag created")

	return report, nil
}
