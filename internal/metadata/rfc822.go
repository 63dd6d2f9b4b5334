package metadata

import (
	"fmt"
	"sort"
	"strings"
)

// metadataVersion is the core-metadata format version emitted in
// PKG-INFO and METADATA manifests.
const metadataVersion = "2.1"

// CoreMetadata renders the package-identification manifest (the PKG-INFO
// body of an sdist and the METADATA body of a wheel). Field order is fixed
// so identical metadata always produces identical bytes.
func (m *ProjectMetadata) CoreMetadata() []byte {
	var b strings.Builder

	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(&b, "%s: %s\n", name, value)
		}
	}

	field("Metadata-Version", metadataVersion)
	field("Name", m.RawName)
	field("Version", m.Version)
	field("Summary", m.Summary)
	field("Keywords", strings.Join(m.Keywords, ","))

	names, contacts := splitPersons(m.Authors)
	field("Author", names)
	field("Author-email", contacts)
	names, contacts = splitPersons(m.Maintainers)
	field("Maintainer", names)
	field("Maintainer-email", contacts)

	field("License", m.License.Text)
	field("License-File", m.License.File)

	for _, classifier := range m.Classifiers {
		field("Classifier", classifier)
	}

	field("Requires-Python", m.RequiresPython)

	for _, dep := range m.Dependencies {
		field("Requires-Dist", dep)
	}
	for _, extra := range sortedKeys(m.OptionalDependencies) {
		field("Provides-Extra", extra)
		for _, dep := range m.OptionalDependencies[extra] {
			field("Requires-Dist", withExtraMarker(dep, extra))
		}
	}

	for _, label := range sortedKeys(m.URLs) {
		field("Project-URL", label+", "+m.URLs[label])
	}

	if m.Readme.Text != "" {
		field("Description-Content-Type", m.Readme.ContentType)
		b.WriteString("\n")
		b.WriteString(m.Readme.Text)
		if !strings.HasSuffix(m.Readme.Text, "\n") {
			b.WriteString("\n")
		}
	}

	return []byte(b.String())
}

// splitPersons renders persons without an email as a comma-joined name
// list and persons with one as a comma-joined address list.
func splitPersons(persons []Person) (names string, contacts string) {
	var nameList, contactList []string
	for _, p := range persons {
		switch {
		case p.Email == "":
			nameList = append(nameList, p.Name)
		case p.Name == "":
			contactList = append(contactList, p.Email)
		default:
			contactList = append(contactList, fmt.Sprintf("%s <%s>", p.Name, p.Email))
		}
	}
	return strings.Join(nameList, ", "), strings.Join(contactList, ", ")
}

// withExtraMarker appends the extra environment marker to a dependency
// specifier, combining with an existing marker when present.
func withExtraMarker(dep, extra string) string {
	marker := fmt.Sprintf(`extra == "%s"`, extra)
	if i := strings.IndexByte(dep, ';'); i >= 0 {
		existing := strings.TrimSpace(dep[i+1:])
		return fmt.Sprintf("%s; (%s) and %s", strings.TrimSpace(dep[:i]), existing, marker)
	}
	return fmt.Sprintf("%s; %s", dep, marker)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
