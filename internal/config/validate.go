package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/markmybytes/driver-box-updater/internal/messages"
)

// Validate checks settings values.
func Validate(settings Settings) error {
	base := strings.TrimSpace(settings.Release.BaseURL)
	if base == "" {
		return fmt.Errorf("%w: %s", ErrConfigValidation, messages.ConfigBaseURLRequired)
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return fmt.Errorf("%w: "+messages.ConfigBaseURLInvalidFmt, ErrConfigValidation, base)
	}
	if settings.Download.ChunkSize <= 0 {
		return fmt.Errorf("%w: "+messages.ConfigChunkSizeFmt, ErrConfigValidation, settings.Download.ChunkSize)
	}
	return nil
}
