// Package manifest reads and updates the pyproject.toml manifest. Reads go
// through a real TOML parser; the version update is a surgical in-place
// edit so that every other byte of the file, including comments and
// formatting, survives the rewrite.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// DefaultPath is the conventional manifest location, relative to the
// project root.
const DefaultPath = "pyproject.toml"

var (
	// ErrNotFound indicates the manifest file does not exist.
	ErrNotFound = errors.New("pyproject.toml not found")
	// ErrNoVersionField indicates the manifest has no project.version entry.
	ErrNoVersionField = errors.New("project.version not found in pyproject.toml")
)

// Project is the [project] table subset that pybump reads.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// Manifest is a loaded pyproject.toml.
type Manifest struct {
	Path    string
	Project Project
}

// document mirrors the top-level structure for unmarshaling. Unknown
// tables and keys are ignored.
type document struct {
	Project Project `toml:"project"`
}

// Load reads and parses the manifest at path. A missing file yields
// ErrNotFound; a manifest without a project.version entry yields
// ErrNoVersionField.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if doc.Project.Version == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoVersionField, path)
	}

	return &Manifest{Path: path, Project: doc.Project}, nil
}

// tableRe matches a TOML table header line and captures the table name.
var tableRe = regexp.MustCompile(`^\s*\[\s*([^\]\s]+)\s*\]`)

// WriteVersion replaces oldVersion with newVersion in the version entry of
// the [project] table, leaving the rest of the file byte-identical. The
// manifest must already have been loaded, so oldVersion is trusted to be
// the current on-disk value; a mismatch yields ErrNoVersionField.
func WriteVersion(path, oldVersion, newVersion string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return fmt.Errorf("reading %s: %w", path, err)
	}

	keyRe, err := regexp.Compile(`^(\s*version\s*=\s*["'])` + regexp.QuoteMeta(oldVersion) + `(["'])`)
	if err != nil {
		return fmt.Errorf("building version matcher: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	table := ""
	replaced := false
	for i, line := range lines {
		if m := tableRe.FindStringSubmatch(line); m != nil {
			table = m[1]
			continue
		}
		if table != "project" || replaced {
			continue
		}
		if keyRe.MatchString(line) {
			lines[i] = keyRe.ReplaceAllString(line, "${1}"+newVersion+"${2}")
			replaced = true
		}
	}
	if !replaced {
		return fmt.Errorf("%w: %s", ErrNoVersionField, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
