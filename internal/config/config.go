// Package config loads updater settings from an optional updater.toml file and
// DBU_* environment variables.
package config

import (
	"path/filepath"

	"github.com/markmybytes/driver-box-updater/internal/release"
)

// FileName is the settings file looked up in the installation root.
const FileName = "updater.toml"

// Environment variables that override the settings file.
const (
	EnvReleaseURL  = "DBU_RELEASE_URL"
	EnvChunkSize   = "DBU_CHUNK_SIZE"
	EnvKeepScratch = "DBU_KEEP_SCRATCH"
	EnvNoPause     = "DBU_NO_PAUSE"
)

// Settings is the full updater configuration.
type Settings struct {
	Release  ReleaseSettings  `toml:"release"`
	Download DownloadSettings `toml:"download"`
	Scratch  ScratchSettings  `toml:"scratch"`
	UI       UISettings       `toml:"ui"`
}

// ReleaseSettings selects where release archives are downloaded from.
type ReleaseSettings struct {
	BaseURL string `toml:"base_url"`
}

// DownloadSettings tunes the streamed download.
type DownloadSettings struct {
	ChunkSize int `toml:"chunk_size"`
}

// ScratchSettings controls the staging directory.
type ScratchSettings struct {
	Keep bool `toml:"keep"`
}

// UISettings controls interactive behavior.
type UISettings struct {
	Pause bool `toml:"pause"`
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{
		Release:  ReleaseSettings{BaseURL: release.DefaultBaseURL},
		Download: DownloadSettings{ChunkSize: release.DefaultChunkSize},
		UI:       UISettings{Pause: true},
	}
}

// DefaultPath returns the settings file location for an installation root.
func DefaultPath(root string) string {
	return filepath.Join(root, FileName)
}
