package vcs

import (
	"fmt"
	"strings"
	"sync"

	werrors "github.com/wheelhouse/cli/internal/errors"
	"github.com/wheelhouse/cli/internal/output"
)

// Source identifies where a detected version came from.
type Source string

const (
	// SourceOverride is a manually supplied version (WHEELHOUSE_VCS_VERSION).
	SourceOverride Source = "override"

	// SourceDescribe is a version derived from live work-tree state.
	SourceDescribe Source = "vcs-describe"

	// SourceArchive is a version recovered from an export substitution.
	SourceArchive Source = "vcs-archive-substitution"
)

// VersionSpec is a detected version together with its source kind.
// Statically declared versions never reach the detector; the metadata
// resolver short-circuits them.
type VersionSpec struct {
	Value  string
	Source Source
}

// Detector derives a project version from repository state. Detection runs
// exactly once per detector; the result is cached for the rest of the build.
type Detector struct {
	// Root is the project root directory.
	Root string

	// Querier answers VCS queries. Required.
	Querier Querier

	// Override short-circuits detection when non-empty.
	Override string

	once sync.Once
	spec VersionSpec
	err  error
}

// Detect returns the detected version, running the strategy order on first
// call: manual override, live work-tree describe, export substitution.
// When no strategy produces a version the build must fail; publishing an
// indeterminate version is worse than refusing to build.
func (d *Detector) Detect() (VersionSpec, error) {
	d.once.Do(func() {
		d.spec, d.err = d.detect()
	})
	return d.spec, d.err
}

func (d *Detector) detect() (VersionSpec, error) {
	if d.Override != "" {
		return VersionSpec{Value: d.Override, Source: SourceOverride}, nil
	}

	if desc, err := d.Querier.Describe(d.Root); err != nil {
		output.Debug("vcs describe unavailable", "error", err)
	} else if desc != nil {
		dirty, err := d.Querier.IsDirty(d.Root)
		if err != nil {
			output.Debug("vcs dirty check unavailable", "error", err)
		}
		desc.Dirty = dirty
		return VersionSpec{Value: FormatVersion(desc), Source: SourceDescribe}, nil
	}

	if desc, err := d.Querier.ExportSubstitution(d.Root); err != nil {
		output.Debug("export substitution unavailable", "error", err)
	} else if desc != nil {
		return VersionSpec{Value: FormatVersion(desc), Source: SourceArchive}, nil
	}

	return VersionSpec{}, werrors.NewConfigError(
		"could not detect the project version from VCS state", "project.version",
		"build from a git checkout or archive export, or set WHEELHOUSE_VCS_VERSION")
}

// FormatVersion renders a Describe as a version string:
// the tag itself at an exact tag, `<tag>.dev<N>+g<rev>` past it, and
// `0.0.0.dev<N>+g<rev>` when no tag exists. Uncommitted modifications
// append a `dirty` local-version segment.
func FormatVersion(d *Describe) string {
	tag := strings.TrimPrefix(strings.TrimSpace(d.Tag), "v")

	switch {
	case tag != "" && d.Distance == 0:
		if d.Dirty {
			return tag + "+dirty"
		}
		return tag
	case tag != "":
		return withDirty(fmt.Sprintf("%s.dev%d+g%s", tag, d.Distance, d.ShortRev), d.Dirty)
	default:
		return withDirty(fmt.Sprintf("0.0.0.dev%d+g%s", d.Distance, d.ShortRev), d.Dirty)
	}
}

func withDirty(version string, dirty bool) string {
	if dirty {
		return version + ".dirty"
	}
	return version
}
