// Package version parses driver-box release versions.
package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Parse parses a semantic version. A leading "v" is accepted and partial
// versions such as "2" or "2.1" are completed with zeros.
func Parse(raw string) (*semver.Version, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("version is required")
	}
	v, err := semver.NewVersion(trimmed)
	if err != nil {
		return nil, fmt.Errorf("version %q must be in the form vX.Y.Z or X.Y.Z: %w", raw, err)
	}
	return v, nil
}

// IsDowngrade reports whether moving from -> to lowers the major version.
func IsDowngrade(from *semver.Version, to *semver.Version) bool {
	return from.Major() > to.Major()
}

// SameMajor reports whether both versions share a major version.
func SameMajor(from *semver.Version, to *semver.Version) bool {
	return from.Major() == to.Major()
}
