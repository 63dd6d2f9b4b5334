package vcs

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ArchivalFileName is the tracked file carrying export-subst placeholders.
// git archive replaces the `$Format:...$` tokens with revision metadata at
// export time; in a live checkout the tokens are still unexpanded.
const ArchivalFileName = ".git_archival.txt"

// readArchivalFile parses the substituted archival file under root.
// It returns (nil, nil) when the file is absent or still holds
// unsubstituted placeholders.
func readArchivalFile(root string) (*Describe, error) {
	f, err := os.Open(filepath.Join(root, ArchivalFileName))
	if err != nil {
		return nil, nil
	}
	defer f.Close()

	fields := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, found := strings.Cut(scanner.Text(), ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		if strings.Contains(value, "$Format") {
			// Unexpanded placeholder: this is a checkout, not an export.
			continue
		}
		fields[strings.TrimSpace(key)] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return parseArchivalFields(fields), nil
}

// parseArchivalFields recovers the tag/distance/revision triple from
// substituted archival fields, preferring the full describe output.
func parseArchivalFields(fields map[string]string) *Describe {
	if name := fields["describe-name"]; name != "" {
		if m := describeRe.FindStringSubmatch(name); m != nil {
			distance, _ := strconv.Atoi(m[2])
			return &Describe{Tag: m[1], Distance: distance, ShortRev: m[3]}
		}
		// describe --tags without --long at an exact tag is just the tag.
		return &Describe{Tag: name}
	}

	node := fields["node"]
	short := node
	if len(short) > 7 {
		short = short[:7]
	}

	for _, ref := range strings.Split(fields["ref-names"], ",") {
		name, value, found := strings.Cut(strings.TrimSpace(ref), ": ")
		if !found || name != "tag" {
			continue
		}
		return &Describe{Tag: value, ShortRev: short}
	}

	if node == "" {
		return nil
	}
	return &Describe{ShortRev: short}
}
