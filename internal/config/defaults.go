package config

import (
	"os"
	"path/filepath"
	"runtime"
	"time"
)

const (
	// SchemaVersion is the config file format version.
	SchemaVersion = "1"

	// DefaultRemoteURL is the repository serving atlas archives and last_versions.conf.
	DefaultRemoteURL = "https://gin.g-node.org/brainglobe/atlases/raw/master"

	// DefaultRemoteTimeout bounds version lookups against the remote repository.
	DefaultRemoteTimeout = 30 * time.Second

	configFilename = "config.yaml"
)

// DefaultConfigPath returns the default path for the bgatlas config directory.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "bgatlas", "config")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Roaming", "bgatlas")
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "bgatlas")
	default: // Linux, BSD, etc.
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "bgatlas")
		}
		return filepath.Join(home, ".config", "bgatlas")
	}
}

// DefaultConfigFile returns the default config file path.
func DefaultConfigFile() string {
	return filepath.Join(DefaultConfigPath(), configFilename)
}

// DefaultAtlasPath returns the default atlas home. Atlases live in ~/.brainglobe on
// every platform so that other BrainGlobe tools find them.
func DefaultAtlasPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".brainglobe")
	}

	return filepath.Join(home, ".brainglobe")
}

// DefaultLogFile returns the default rotating log file path.
func DefaultLogFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "bgatlas", "logs", "bgatlas.log")
	}

	switch runtime.GOOS {
	case "windows":
		return filepath.Join(home, "AppData", "Local", "bgatlas", "logs", "bgatlas.log")
	case "darwin":
		return filepath.Join(home, "Library", "Logs", "bgatlas", "bgatlas.log")
	default:
		if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
			return filepath.Join(xdg, "bgatlas", "bgatlas.log")
		}
		return filepath.Join(home, ".local", "state", "bgatlas", "bgatlas.log")
	}
}
