// Package gitrepo wraps the git CLI for the narrow set of operations
// pybump needs: repository detection, working-tree cleanliness checks,
// staging the manifest, committing, and tagging. It never pushes.
package gitrepo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

var (
	// ErrNotARepository indicates the directory is not inside a git
	// repository (or git itself is unavailable).
	ErrNotARepository = errors.New("not a git repository")
	// ErrDirtyWorkingTree indicates staged or unstaged changes exist.
	// Untracked files do not count.
	ErrDirtyWorkingTree = errors.New("working tree has uncommitted changes")
)

// Repo executes git commands against a single working directory.
type Repo struct {
	dir string
}

// Open verifies that git is available and that dir is inside a git
// repository, returning a Repo bound to that directory.
func Open(ctx context.Context, dir string) (*Repo, error) {
	if _, err := exec.LookPath("git"); err != nil {
		return nil, fmt.Errorf("%w: git not found on PATH", ErrNotARepository)
	}
	cmd := exec.CommandContext(ctx, "git", "-C", dir, "rev-parse", "--git-dir")
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNotARepository, dir)
	}
	return &Repo{dir: dir}, nil
}

// CheckClean fails with ErrDirtyWorkingTree when the working tree has
// staged or unstaged changes. Untracked and ignored files are excluded
// from the check.
func (r *Repo) CheckClean(ctx context.Context) error {
	out, err := r.output(ctx, "status", "--porcelain")
	if err != nil {
		return fmt.Errorf("git status: %w", err)
	}

	var staged, unstaged []string
	for _, line := range strings.Split(out, "\n") {
		// Porcelain format: XY <path>. X is the index state, Y the
		// working-tree state. "??" marks untracked files.
		if len(line) < 4 || strings.HasPrefix(line, "??") {
			continue
		}
		path := strings.TrimSpace(line[3:])
		if line[0] != ' ' {
			staged = append(staged, path)
		}
		if line[1] != ' ' {
			unstaged = append(unstaged, path)
		}
	}

	switch {
	case len(staged) > 0 && len(unstaged) > 0:
		return fmt.Errorf("%w: staged: %s; unstaged: %s",
			ErrDirtyWorkingTree, strings.Join(staged, ", "), strings.Join(unstaged, ", "))
	case len(staged) > 0:
		return fmt.Errorf("%w: staged changes: %s", ErrDirtyWorkingTree, strings.Join(staged, ", "))
	case len(unstaged) > 0:
		return fmt.Errorf("%w: unstaged changes: %s", ErrDirtyWorkingTree, strings.Join(unstaged, ", "))
	}
	return nil
}

// Commit stages exactly the given paths and commits them with msg.
func (r *Repo) Commit(ctx context.Context, msg string, paths ...string) error {
	addArgs := append([]string{"add", "--"}, paths...)
	if _, err := r.output(ctx, addArgs...); err != nil {
		return fmt.Errorf("git add: %w", err)
	}
	if _, err := r.output(ctx, "commit", "-m", msg); err != nil {
		return fmt.Errorf("git commit: %w", err)
	}
	return nil
}

// Tag creates a lightweight tag at HEAD.
func (r *Repo) Tag(ctx context.Context, name string) error {
	if _, err := r.output(ctx, "tag", name); err != nil {
		return fmt.Errorf("git tag: %w", err)
	}
	return nil
}

// output runs a git command in the repo directory, returning stdout and
// folding stderr into the error on failure.
func (r *Repo) output(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", r.dir}, args...)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}
