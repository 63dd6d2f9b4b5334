// Package project provides access to a parsed pyproject document.
//
// The pipeline operates on a pre-parsed mapping; TOML syntax handling is
// confined to Load at the CLI edge.
package project

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	werrors "github.com/wheelhouse/cli/internal/errors"
)

// DescriptorName is the project descriptor filename at the project root.
const DescriptorName = "pyproject.toml"

// Load parses the project descriptor under root into a generic mapping.
func Load(root string) (map[string]any, error) {
	path := filepath.Join(root, DescriptorName)
	if _, err := os.Stat(path); err != nil {
		return nil, werrors.NewNotFoundError("project descriptor not found", path, "run from a directory containing pyproject.toml")
	}

	var doc map[string]any
	if _, err := toml.DecodeFile(path, &doc); err != nil {
		return nil, &werrors.ConfigError{
			Message:  fmt.Sprintf("invalid project descriptor: %v", err),
			Location: path,
		}
	}
	return doc, nil
}
