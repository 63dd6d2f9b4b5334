package vcs

import (
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/wheelhouse/cli/internal/output"
)

// describeRe splits `<tag>-<distance>-g<rev>` produced by describe --long.
// The tag itself may contain dashes, so the match anchors on the suffix.
var describeRe = regexp.MustCompile(`^(.*)-(\d+)-g([0-9a-f]+)$`)

// Git queries a git repository through short-lived git invocations.
type Git struct{}

// git runs a git subcommand anchored at root and returns trimmed stdout.
func (Git) git(root string, args ...string) (string, error) {
	cmd := exec.Command("git", append([]string{"-C", root}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// insideWorkTree reports whether root is inside a live git work tree.
func (g Git) insideWorkTree(root string) bool {
	out, err := g.git(root, "rev-parse", "--is-inside-work-tree")
	return err == nil && out == "true"
}

// Describe implements Querier. A repository without commits, or a root
// outside any work tree, yields (nil, nil).
func (g Git) Describe(root string) (*Describe, error) {
	if !g.insideWorkTree(root) {
		return nil, nil
	}

	out, err := g.git(root, "describe", "--tags", "--long", "--abbrev=7",
		"--match", "v[0-9]*", "--match", "[0-9]*")
	if err == nil {
		m := describeRe.FindStringSubmatch(out)
		if m == nil {
			return nil, fmt.Errorf("unexpected describe output %q", out)
		}
		distance, _ := strconv.Atoi(m[2])
		return &Describe{Tag: m[1], Distance: distance, ShortRev: m[3]}, nil
	}

	// No matching tag: measure distance from the root commit instead.
	output.Debug("git describe found no version tag", "root", root)
	count, err := g.git(root, "rev-list", "--count", "HEAD")
	if err != nil {
		return nil, err
	}
	rev, err := g.git(root, "rev-parse", "--short=7", "HEAD")
	if err != nil {
		return nil, err
	}
	distance, err := strconv.Atoi(count)
	if err != nil {
		return nil, fmt.Errorf("unexpected rev-list output %q", count)
	}
	return &Describe{Distance: distance, ShortRev: rev}, nil
}

// IsDirty implements Querier.
func (g Git) IsDirty(root string) (bool, error) {
	if !g.insideWorkTree(root) {
		return false, nil
	}
	out, err := g.git(root, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return out != "", nil
}

// ExportSubstitution implements Querier by parsing the archival metadata
// file that git archive populates via export-subst attributes.
func (g Git) ExportSubstitution(root string) (*Describe, error) {
	return readArchivalFile(root)
}

// ListTracked returns the repository-relative paths of all tracked files
// under root. A (nil, nil) result means root is not a live work tree and
// the caller should fall back to a filesystem walk.
func (g Git) ListTracked(root string) ([]string, error) {
	if !g.insideWorkTree(root) {
		return nil, nil
	}
	out, err := g.git(root, "ls-files", "-z")
	if err != nil {
		return nil, err
	}
	var files []string
	for _, path := range strings.Split(out, "\x00") {
		if path != "" {
			files = append(files, path)
		}
	}
	return files, nil
}
