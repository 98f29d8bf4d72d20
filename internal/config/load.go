package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/markmybytes/driver-box-updater/internal/messages"
)

// ErrConfigValidation wraps settings that parsed but hold invalid values.
var ErrConfigValidation = errors.New("config validation failed")

// Load reads settings from path over Defaults, applies environment overrides
// from getenv, and validates the result. A missing file is only an error when
// required is set.
func Load(path string, required bool, getenv func(string) string) (Settings, error) {
	settings := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := decode(data, &settings); err != nil {
			return Settings{}, fmt.Errorf(messages.ConfigInvalidFileFmt, path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !required:
	default:
		return Settings{}, fmt.Errorf(messages.ConfigReadFileFmt, path, err)
	}

	if getenv == nil {
		getenv = os.Getenv
	}
	if err := applyEnv(&settings, getenv); err != nil {
		return Settings{}, err
	}
	if err := Validate(settings); err != nil {
		return Settings{}, err
	}
	return settings, nil
}

// decode fills only keys present in data, so unspecified fields keep their defaults.
func decode(data []byte, settings *Settings) error {
	decoder := toml.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	return decoder.Decode(settings)
}

func applyEnv(settings *Settings, getenv func(string) string) error {
	if raw := strings.TrimSpace(getenv(EnvReleaseURL)); raw != "" {
		settings.Release.BaseURL = raw
	}
	if raw := strings.TrimSpace(getenv(EnvChunkSize)); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%w: "+messages.ConfigInvalidEnvFmt, ErrConfigValidation, EnvChunkSize, raw, err)
		}
		settings.Download.ChunkSize = v
	}
	if raw := strings.TrimSpace(getenv(EnvKeepScratch)); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: "+messages.ConfigInvalidEnvFmt, ErrConfigValidation, EnvKeepScratch, raw, err)
		}
		settings.Scratch.Keep = v
	}
	if raw := strings.TrimSpace(getenv(EnvNoPause)); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%w: "+messages.ConfigInvalidEnvFmt, ErrConfigValidation, EnvNoPause, raw, err)
		}
		settings.UI.Pause = !v
	}
	return nil
}
