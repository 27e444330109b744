package release

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/papapumpkin/pybump/internal/bump"
	"github.com/papapumpkin/pybump/internal/gitrepo"
	"github.com/papapumpkin/pybump/internal/manifest"
	"github.com/papapumpkin/pybump/internal/version"
)

const testManifest = `[project]
name = "demo"
version = "1.2.3"

[tool.ruff]
line-length = 100
`

// initProject creates a git repo containing a committed pyproject.toml and
// returns its directory.
func initProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	ctx := context.Background()

	run(ctx, t, dir, "git", "init")
	run(ctx, t, dir, "git", "config", "user.email", "test@test.com")
	run(ctx, t, dir, "git", "config", "user.name", "Test")

	if err := os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(testManifest), 0o644); err != nil {
		t.Fatal(err)
	}
	run(ctx, t, dir, "git", "add", "-A")
	run(ctx, t, dir, "git", "commit", "-m", "initial")

	return dir
}

func run(ctx context.Context, t *testing.T, dir string, name string, args ...string) {
	t.Helper()
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("%s %v failed: %v\n%s", name, args, err, out)
	}
}

func gitOut(ctx context.Context, t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.CommandContext(ctx, "git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("git %v: %v", args, err)
	}
	return strings.TrimSpace(string(out))
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("patch bump writes, commits, and tags", func(t *testing.T) {
		dir := initProject(t)
		report, err := Run(ctx, Options{Dir: dir, Arg: "patch", Log: zerolog.Nop()})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}

		if report.OldVersion != "1.2.3" || report.NewVersion != "1.2.4" {
			t.Errorf("versions = %s -> %s, want 1.2.3 -> 1.2.4", report.OldVersion, report.NewVersion)
		}
		if report.TagName != "v1.2.4" {
			t.Errorf("TagName = %q, want v1.2.4", report.TagName)
		}

		m, err := manifest.Load(filepath.Join(dir, "pyproject.toml"))
		if err != nil {
			t.Fatal(err)
		}
		if m.Project.Version != "1.2.4" {
			t.Errorf("manifest version = %q, want 1.2.4", m.Project.Version)
		}

		if got := gitOut(ctx, t, dir, "log", "-1", "--format=%s"); got != "1.2.4" {
			t.Errorf("commit message = %q, want 1.2.4", got)
		}
		if got := gitOut(ctx, t, dir, "tag", "-l", "v1.2.4"); got != "v1.2.4" {
			t.Errorf("tag = %q, want v1.2.4", got)
		}
		if status := gitOut(ctx, t, dir, "status", "--porcelain"); status != "" {
			t.Errorf("working tree dirty after run:\n%s", status)
		}
	})

	t.Run("default directive is bump", func(t *testing.T) {
		dir := initProject(t)
		report, err := Run(ctx, Options{Dir: dir, Log: zerolog.Nop()})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if report.NewVersion != "1.2.4" {
			t.Errorf("NewVersion = %q, want 1.2.4", report.NewVersion)
		}
	})

	t.Run("explicit pre-release tags with test prefix", func(t *testing.T) {
		dir := initProject(t)
		report, err := Run(ctx, Options{Dir: dir, Arg: "2.0.0a1", Log: zerolog.Nop()})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if report.TagName != "test-2.0.0a1" {
			t.Errorf("TagName = %q, want test-2.0.0a1", report.TagName)
		}
		if got := gitOut(ctx, t, dir, "tag", "-l", "test-2.0.0a1"); got != "test-2.0.0a1" {
			t.Errorf("tag = %q, want test-2.0.0a1", got)
		}
	})

	t.Run("dry run mutates nothing", func(t *testing.T) {
		dir := initProject(t)
		report, err := Run(ctx, Options{Dir: dir, Arg: "major", DryRun: true, Log: zerolog.Nop()})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if report.NewVersion != "2.0.0" {
			t.Errorf("NewVersion = %q, want 2.0.0", report.NewVersion)
		}
		if !report.DryRun {
			t.Error("report not marked as dry run")
		}

		m, err := manifest.Load(filepath.Join(dir, "pyproject.toml"))
		if err != nil {
			t.Fatal(err)
		}
		if m.Project.Version != "1.2.3" {
			t.Errorf("manifest version changed in dry run: %q", m.Project.Version)
		}
		if got := gitOut(ctx, t, dir, "tag", "-l"); got != "" {
			t.Errorf("tags created in dry run: %q", got)
		}
	})

	t.Run("dirty tree is fatal", func(t *testing.T) {
		dir := initProject(t)
		if err := os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(strings.Replace(testManifest, "demo", "demo2", 1)), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := Run(ctx, Options{Dir: dir, Arg: "patch", Log: zerolog.Nop()})
		if !errors.Is(err, gitrepo.ErrDirtyWorkingTree) {
			t.Errorf("Run error = %v, want ErrDirtyWorkingTree", err)
		}
	})

	t.Run("dirty tree downgrades to a warning in dry run", func(t *testing.T) {
		dir := initProject(t)
		if err := os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(strings.Replace(testManifest, "demo", "demo2", 1)), 0o644); err != nil {
			t.Fatal(err)
		}
		report, err := Run(ctx, Options{Dir: dir, Arg: "patch", DryRun: true, Log: zerolog.Nop()})
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
		if len(report.Warnings) != 1 {
			t.Fatalf("Warnings = %v, want one dirty-tree warning", report.Warnings)
		}
	})

	t.Run("missing repository is fatal outside dry run", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(testManifest), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := Run(ctx, Options{Dir: dir, Arg: "patch", Log: zerolog.Nop()})
		if !errors.Is(err, gitrepo.ErrNotARepository) {
			t.Errorf("Run error = %v, want ErrNotARepository", err)
		}

		report, err := Run(ctx, Options{Dir: dir, Arg: "patch", DryRun: true, Log: zerolog.Nop()})
		if err != nil {
			t.Fatalf("dry run in non-repo: %v", err)
		}
		if len(report.Warnings) != 1 {
			t.Errorf("Warnings = %v, want one not-a-repository warning", report.Warnings)
		}
	})

	t.Run("tag collision reports the partial state", func(t *testing.T) {
		dir := initProject(t)
		// Occupy the tag the run will want, so commit succeeds but tag
		// creation fails after the manifest write.
		run(ctx, t, dir, "git", "tag", "v1.2.4")

		_, err := Run(ctx, Options{Dir: dir, Arg: "patch", Log: zerolog.Nop()})
		if err == nil {
			t.Fatal("Run succeeded despite the colliding tag")
		}
		if !strings.Contains(err.Error(), "tag creation failed") {
			t.Errorf("error does not report the partial state: %v", err)
		}

		// No rollback: the manifest stays updated and the commit exists.
		m, err := manifest.Load(filepath.Join(dir, "pyproject.toml"))
		if err != nil {
			t.Fatal(err)
		}
		if m.Project.Version != "1.2.4" {
			t.Errorf("manifest version = %q, want the written 1.2.4", m.Project.Version)
		}
		if got := gitOut(ctx, t, dir, "log", "-1", "--format=%s"); got != "1.2.4" {
			t.Errorf("commit message = %q, want 1.2.4", got)
		}
		if status := gitOut(ctx, t, dir, "status", "--porcelain"); status != "" {
			t.Errorf("working tree dirty after partial run:\n%s", status)
		}
	})

	t.Run("downgrade rejected before any mutation", func(t *testing.T) {
		dir := initProject(t)
		_, err := Run(ctx, Options{Dir: dir, Arg: "1.0.0", Log: zerolog.Nop()})
		if !errors.Is(err, bump.ErrInvalidTransition) {
			t.Fatalf("Run error = %v, want ErrInvalidTransition", err)
		}
		m, err := manifest.Load(filepath.Join(dir, "pyproject.toml"))
		if err != nil {
			t.Fatal(err)
		}
		if m.Project.Version != "1.2.3" {
			t.Errorf("manifest mutated on rejected transition: %q", m.Project.Version)
		}
	})

	t.Run("invalid manifest version surfaces ErrInvalid", func(t *testing.T) {
		dir := initProject(t)
		bad := strings.Replace(testManifest, "1.2.3", "1.2", 1)
		if err := os.WriteFile(filepath.Join(dir, "pyproject.toml"), []byte(bad), 0o644); err != nil {
			t.Fatal(err)
		}
		run(ctx, t, dir, "git", "commit", "-am", "break version")
		_, err := Run(ctx, Options{Dir: dir, Arg: "patch", Log: zerolog.Nop()})
		if !errors.Is(err, version.ErrInvalid) {
			t.Errorf("Run error = %v, want ErrInvalid", err)
		}
	})

	t.Run("missing manifest surfaces ErrNotFound", func(t *testing.T) {
		dir := t.TempDir()
		_, err := Run(ctx, Options{Dir: dir, Arg: "patch", Log: zerolog.Nop()})
		if !errors.Is(err, manifest.ErrNotFound) {
			t.Errorf("Run error = %v, want ErrNotFound", err)
		}
	})
}
