package messages

// Config messages for settings loading and validation.
const (
	// ConfigReadFileFmt formats settings file read errors.
	ConfigReadFileFmt       = "read settings file %s: %w"
	ConfigInvalidFileFmt    = "invalid settings file %s: %w"
	ConfigInvalidEnvFmt     = "invalid %s=%q: %w"
	ConfigBaseURLRequired   = "release.base_url is required"
	ConfigBaseURLInvalidFmt = "release.base_url %q must be an absolute http or https URL"
	ConfigChunkSizeFmt      = "download.chunk_size must be positive, got %d"
)
