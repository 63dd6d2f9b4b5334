package fileset

import (
	"fmt"

	werrors "github.com/wheelhouse/cli/internal/errors"
	"github.com/wheelhouse/cli/internal/project"
)

// Module location policies.
const (
	// LocationFlat means package directories live at the project root.
	LocationFlat = "flat"

	// LocationSrc means package directories live under src/.
	LocationSrc = "src"
)

// Config holds the backend-specific file selection options from the
// [tool.wheelhouse] table.
type Config struct {
	// TopLevelModules is the explicit list of top-level modules or
	// packages. Empty means infer from the source root.
	TopLevelModules []string

	// ModuleLocation is LocationFlat, LocationSrc, or empty (detect,
	// erroring on ambiguity).
	ModuleLocation string

	// SourceInclude are glob patterns appended to the sdist file set.
	SourceInclude []string

	// SourceExclude are glob patterns removed from the sdist file set.
	SourceExclude []string
}

// ConfigFromDoc reads the [tool.wheelhouse] options out of a parsed
// pyproject mapping.
func ConfigFromDoc(doc map[string]any) (Config, error) {
	f := project.NewFetcher(doc)
	var cfg Config
	var err error

	if cfg.TopLevelModules, err = f.StringList("tool.wheelhouse.top-level-modules"); err != nil {
		return cfg, err
	}
	if cfg.SourceInclude, err = f.StringList("tool.wheelhouse.source-include"); err != nil {
		return cfg, err
	}
	if cfg.SourceExclude, err = f.StringList("tool.wheelhouse.source-exclude"); err != nil {
		return cfg, err
	}

	location, _, err := f.String("tool.wheelhouse.module-location")
	if err != nil {
		return cfg, err
	}
	switch location {
	case "", LocationFlat, LocationSrc:
		cfg.ModuleLocation = location
	default:
		return cfg, werrors.NewConfigError(
			fmt.Sprintf("invalid module-location %q", location),
			"tool.wheelhouse.module-location", `use "flat" or "src"`)
	}

	return cfg, nil
}
