// Package vcs detects project versions from version-control state.
//
// All interaction with the VCS executable goes through the narrow Querier
// interface so the detection logic is testable without a real repository.
// Query failures mean "no information available", never a build failure;
// the detector falls through to the next strategy.
package vcs

// Describe is the revision state recovered from a VCS query or an
// archive-export substitution.
type Describe struct {
	// Tag is the most recent version-like tag, empty when none exists.
	// The leading `v`, if any, is kept; normalization strips it.
	Tag string

	// Distance is the number of commits since Tag (or since the root
	// commit when Tag is empty).
	Distance int

	// ShortRev is the short unique revision identifier.
	ShortRev string

	// Dirty reports uncommitted modifications in the working tree.
	Dirty bool
}

// Querier answers version-control queries for a project root.
// A (nil, nil) Describe result means the information is not available.
type Querier interface {
	// Describe returns tag/distance/revision state for a live work tree.
	Describe(root string) (*Describe, error)

	// IsDirty reports whether the work tree has uncommitted changes.
	IsDirty(root string) (bool, error)

	// ExportSubstitution recovers revision state from placeholder tokens
	// substituted at archive-export time.
	ExportSubstitution(root string) (*Describe, error)
}
