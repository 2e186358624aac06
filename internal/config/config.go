package config

import (
	"time"

	"github.com/LSeu-Open/bg-atlasapi/internal/xfs"
)

// Config holds the main configuration for the application.
type Config struct {
	Version    string        `json:"version"                yaml:"version"`
	Storage    StorageConfig `json:"storage,omitempty"      yaml:"storage,omitempty"`
	Remote     RemoteConfig  `json:"remote,omitempty"       yaml:"remote,omitempty"`
	Atlases    []string      `json:"atlases,omitempty"      yaml:"atlases,omitempty"`
	AutoUpdate bool          `json:"auto_update,omitempty"  yaml:"auto_update,omitempty"`
	Log        LogConfig     `json:"log,omitempty"          yaml:"log,omitempty"`
}

// StorageConfig holds the local directories used for atlases.
type StorageConfig struct {
	AtlasDir    string `env:"BGATLAS_ATLAS_DIR"    json:"atlas_dir,omitempty"    yaml:"atlas_dir,omitempty"`
	DownloadDir string `env:"BGATLAS_DOWNLOAD_DIR" json:"download_dir,omitempty" yaml:"download_dir,omitempty"`
}

// RemoteConfig holds the settings of the remote atlas repository.
type RemoteConfig struct {
	BaseURL string        `env:"BGATLAS_REMOTE_URL" json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `env:"BGATLAS_LOG_LEVEL" json:"level,omitempty" yaml:"level,omitempty"`
	File  string `json:"file,omitempty"  yaml:"file,omitempty"`
}

// Default returns a config populated with default values.
func Default() *Config {
	cfg := &Config{Version: SchemaVersion}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults fills unset fields and expands home-relative paths.
func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = SchemaVersion
	}
	if c.Storage.AtlasDir == "" {
		c.Storage.AtlasDir = DefaultAtlasPath()
	}
	c.Storage.AtlasDir = xfs.ExpandTilde(c.Storage.AtlasDir)

	if c.Storage.DownloadDir == "" {
		c.Storage.DownloadDir = c.Storage.AtlasDir
	}
	c.Storage.DownloadDir = xfs.ExpandTilde(c.Storage.DownloadDir)

	if c.Remote.BaseURL == "" {
		c.Remote.BaseURL = DefaultRemoteURL
	}
	if c.Remote.Timeout <= 0 {
		c.Remote.Timeout = DefaultRemoteTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.File != "" {
		c.Log.File = xfs.ExpandTilde(c.Log.File)
	}
}
