// Package metadata resolves and normalizes the declarative project
// description into a canonical, immutable record.
package metadata

// Person is an author or maintainer entry. Either field may be empty,
// but not both.
type Person struct {
	Name  string
	Email string
}

// Readme is the project long description.
type Readme struct {
	// File is the path of the readme file relative to the project root,
	// empty when the text was given inline.
	File string

	// Text is the long-description body.
	Text string

	// ContentType is the declared or inferred content type.
	ContentType string
}

// License is the project license declaration. File and Text are mutually
// exclusive.
type License struct {
	File string
	Text string
}

// ProjectMetadata is the canonical project record. It is constructed once
// per build invocation and treated as immutable after resolution; build
// tasks may only mutate it through the pre-metadata hook.
type ProjectMetadata struct {
	// RawName is the name as declared.
	RawName string

	// Name is the normalized name (lowercase, separator runs collapsed
	// to a single dash).
	Name string

	// Version is the normalized version string.
	Version string

	// Summary is the one-line project description.
	Summary string

	Readme  Readme
	License License

	Keywords    []string
	Authors     []Person
	Maintainers []Person
	Classifiers []string

	// RequiresPython is the interpreter version specifier.
	RequiresPython string

	// Dependencies are dependency specifiers, markers included.
	Dependencies []string

	// OptionalDependencies maps extra group name to dependency specifiers.
	OptionalDependencies map[string][]string

	// EntryPoints maps group name to entry name to target reference.
	// console_scripts and gui_scripts are folded in as groups.
	EntryPoints map[string]map[string]string

	// URLs maps label to URL.
	URLs map[string]string

	// Dynamic lists the fields that were declared dynamic in the input.
	Dynamic []string
}

// DistName returns the filename-safe distribution name: the normalized
// name with dashes replaced by underscores, as used in wheel and sdist
// filenames.
func (m *ProjectMetadata) DistName() string {
	return escapeName(m.Name)
}

// HasEntryPoints reports whether any entry-point group is non-empty.
func (m *ProjectMetadata) HasEntryPoints() bool {
	for _, group := range m.EntryPoints {
		if len(group) > 0 {
			return true
		}
	}
	return false
}
