package config

import (
	"os"
	"path/filepath"
)

// Paths contains standard filesystem paths for wheelhouse.
type Paths struct {
	// ConfigFile is the path to the config file (~/.wheelhouse/config.yaml).
	ConfigFile string

	// HomeDir is the wheelhouse home directory (~/.wheelhouse).
	HomeDir string
}

// DefaultPaths returns the default paths for wheelhouse.
func DefaultPaths() (*Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	home := filepath.Join(homeDir, ".wheelhouse")

	return &Paths{
		ConfigFile: filepath.Join(home, "config.yaml"),
		HomeDir:    home,
	}, nil
}

// GetConfigFile returns the config file path.
// If WHEELHOUSE_CONFIG is set, it takes precedence.
func GetConfigFile() (string, error) {
	if envPath := os.Getenv("WHEELHOUSE_CONFIG"); envPath != "" {
		return envPath, nil
	}

	paths, err := DefaultPaths()
	if err != nil {
		return "", err
	}

	return paths.ConfigFile, nil
}
