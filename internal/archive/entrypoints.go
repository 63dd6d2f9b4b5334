package archive

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wheelhouse/cli/internal/metadata"
)

// EntryPointsText renders the entry-points descriptor: one `[group]`
// section per non-empty group, entries as `name = target`. Groups and
// entries are sorted so the descriptor bytes are stable.
func EntryPointsText(meta *metadata.ProjectMetadata) []byte {
	groups := make([]string, 0, len(meta.EntryPoints))
	for group, entries := range meta.EntryPoints {
		if len(entries) > 0 {
			groups = append(groups, group)
		}
	}
	sort.Strings(groups)

	var b strings.Builder
	for i, group := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "[%s]\n", group)

		entries := meta.EntryPoints[group]
		names := make([]string, 0, len(entries))
		for name := range entries {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(&b, "%s = %s\n", name, entries[name])
		}
	}
	return []byte(b.String())
}
