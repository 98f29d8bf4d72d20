// Package migration decides whether a driver-box config layout migration is
// needed between two releases.
package migration

import (
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"

	"github.com/markmybytes/driver-box-updater/internal/messages"
	"github.com/markmybytes/driver-box-updater/internal/version"
)

// Decision is the outcome of a migration check.
type Decision int

const (
	// NotNeeded means the config layout is unchanged between the versions.
	NotNeeded Decision = iota
	// Required means the config layout changes between the versions.
	Required
)

func (d Decision) String() string {
	switch d {
	case NotNeeded:
		return "not needed"
	case Required:
		return "required"
	default:
		return fmt.Sprintf("Decision(%d)", int(d))
	}
}

var (
	// ErrUnsupportedMigration reports a major-version jump with no migration path.
	ErrUnsupportedMigration = errors.New("unsupported config migration")
	// ErrDowngrade reports a major-version downgrade.
	ErrDowngrade = errors.New("downgrade is not supported")
)

// Check returns whether migrating the config from -> to is required.
// Upgrades from v1 to v2, and any upgrade to v3 or later, are unsupported.
func Check(from *semver.Version, to *semver.Version) (Decision, error) {
	switch {
	case version.SameMajor(from, to):
		return NotNeeded, nil
	case version.IsDowngrade(from, to):
		return NotNeeded, fmt.Errorf("%w: v%d to v%d", ErrDowngrade, from.Major(), to.Major())
	}
	if (from.Major() == 1 && to.Major() == 2) || to.Major() >= 3 {
		return NotNeeded, fmt.Errorf("%w: "+messages.MigrationUnsupportedFmt, ErrUnsupportedMigration, from.Major(), to.Major())
	}
	return Required, nil
}
