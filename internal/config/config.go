// Package config provides configuration loading and management.
package config

import (
	"time"
)

// Settings represents the wheelhouse CLI configuration.
// Values come from ~/.wheelhouse/config.yaml, WHEELHOUSE_* environment
// variables, and command-line flags, in increasing precedence.
type Settings struct {
	// OutDir is the directory archives are written to.
	// Env: WHEELHOUSE_OUT_DIR, Default: "dist"
	OutDir string `json:"outDir,omitempty" mapstructure:"outDir"`

	// VCSVersion manually overrides version detection for dynamic versions.
	// Env: WHEELHOUSE_VCS_VERSION
	VCSVersion string `json:"vcsVersion,omitempty" mapstructure:"vcsVersion"`

	// SourceDateEpoch is the unix timestamp applied to archive entries for
	// reproducible builds. Env: SOURCE_DATE_EPOCH (standard, no prefix).
	SourceDateEpoch int64 `json:"sourceDateEpoch,omitempty" mapstructure:"sourceDateEpoch"`
}

// DefaultSettings returns Settings with all default values populated.
func DefaultSettings() *Settings {
	return &Settings{
		OutDir: "dist",
	}
}

// Epoch returns the timestamp archive entries are stamped with. The zero
// time means "no SOURCE_DATE_EPOCH"; archive builders then use a fixed
// epoch rather than wall-clock time, keeping output deterministic.
func (s *Settings) Epoch() time.Time {
	if s.SourceDateEpoch == 0 {
		return time.Time{}
	}
	return time.Unix(s.SourceDateEpoch, 0).UTC()
}
