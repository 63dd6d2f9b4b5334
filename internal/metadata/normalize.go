package metadata

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	werrors "github.com/wheelhouse/cli/internal/errors"
)

var (
	nameRe      = regexp.MustCompile(`(?i)^[a-z0-9](?:[a-z0-9._-]*[a-z0-9])?$`)
	separatorRe = regexp.MustCompile(`[-_.]+`)

	// versionRe is the version grammar: optional epoch, dotted numeric
	// release, then optional pre/post/dev segments and a local segment.
	versionRe = regexp.MustCompile(`(?i)^v?` +
		`(?:(\d+)!)?` +
		`(\d+(?:\.\d+)*)` +
		`(?:[-_.]?(a|b|c|rc|alpha|beta|pre|preview)[-_.]?(\d+)?)?` +
		`(?:(?:-(\d+))|(?:[-_.]?(post|rev|r)[-_.]?(\d+)?))?` +
		`(?:[-_.]?dev[-_.]?(\d+)?)?` +
		`(?:\+([a-z0-9]+(?:[-_.][a-z0-9]+)*))?$`)

	// identRe matches valid script entry names.
	identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// NormalizeName canonicalizes a project name: case-folded, with runs of
// `-`, `_` and `.` collapsed to a single dash.
func NormalizeName(name string) (string, error) {
	if !nameRe.MatchString(name) {
		return "", werrors.NewConfigError(
			fmt.Sprintf("invalid project name %q", name), "project.name",
			"names may contain letters, digits, `.`, `-` and `_`, and must start and end with a letter or digit")
	}
	return separatorRe.ReplaceAllString(strings.ToLower(name), "-"), nil
}

// escapeName converts a normalized name to its filename form.
func escapeName(normalized string) string {
	return strings.ReplaceAll(normalized, "-", "_")
}

// NormalizeVersion canonicalizes a version string: leading `v` and
// whitespace stripped, release segments de-zero-padded, pre/post/dev
// spellings reduced to their canonical forms, local separators dotted.
func NormalizeVersion(version string) (string, error) {
	trimmed := strings.TrimSpace(version)
	m := versionRe.FindStringSubmatch(trimmed)
	if m == nil {
		return "", werrors.NewConfigError(
			fmt.Sprintf("invalid version %q", version), "project.version",
			"expected a numeric release with optional pre/post/dev/local segments, e.g. 1.2.3 or 1.2.3rc1")
	}
	epoch, release, preLabel, preNum := m[1], m[2], m[3], m[4]
	postImplicit, postLabel, postNum := m[5], m[6], m[7]
	devNum, local := m[8], m[9]

	var b strings.Builder

	if epoch != "" {
		if n, _ := strconv.Atoi(epoch); n > 0 {
			b.WriteString(strconv.Itoa(n))
			b.WriteString("!")
		}
	}

	segments := strings.Split(release, ".")
	for i, seg := range segments {
		n, _ := strconv.Atoi(seg)
		if i > 0 {
			b.WriteString(".")
		}
		b.WriteString(strconv.Itoa(n))
	}

	if preLabel != "" {
		b.WriteString(canonicalPreLabel(preLabel))
		b.WriteString(numberOrZero(preNum))
	}

	if postImplicit != "" {
		b.WriteString(".post")
		b.WriteString(numberOrZero(postImplicit))
	} else if postLabel != "" {
		b.WriteString(".post")
		b.WriteString(numberOrZero(postNum))
	}

	if devSegmentPresent(trimmed) {
		b.WriteString(".dev")
		b.WriteString(numberOrZero(devNum))
	}

	if local != "" {
		b.WriteString("+")
		b.WriteString(normalizeLocal(local))
	}

	return b.String(), nil
}

func canonicalPreLabel(label string) string {
	switch strings.ToLower(label) {
	case "a", "alpha":
		return "a"
	case "b", "beta":
		return "b"
	default: // c, rc, pre, preview
		return "rc"
	}
}

func numberOrZero(s string) string {
	if s == "" {
		return "0"
	}
	n, _ := strconv.Atoi(s)
	return strconv.Itoa(n)
}

func normalizeLocal(local string) string {
	lowered := strings.ToLower(local)
	return separatorRe.ReplaceAllString(lowered, ".")
}

// devSegmentPresent reports whether the version carries a dev segment
// outside the local part. The main pattern already validated placement.
func devSegmentPresent(version string) bool {
	public := version
	if i := strings.IndexByte(version, '+'); i >= 0 {
		public = version[:i]
	}
	return strings.Contains(strings.ToLower(public), "dev")
}

// validScriptName reports whether an entry name in console_scripts or
// gui_scripts is a valid identifier.
func validScriptName(name string) bool {
	return identRe.MatchString(name)
}
