// Package update runs a driver-box update as an explicit state machine:
// snapshot, fetch, extract, swap and migration check, followed by exactly one
// of commit or rollback.
package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/charmbracelet/log"

	"github.com/markmybytes/driver-box-updater/internal/archive"
	"github.com/markmybytes/driver-box-updater/internal/install"
	"github.com/markmybytes/driver-box-updater/internal/messages"
	"github.com/markmybytes/driver-box-updater/internal/migration"
	"github.com/markmybytes/driver-box-updater/internal/release"
	"github.com/markmybytes/driver-box-updater/internal/scratch"
	"github.com/markmybytes/driver-box-updater/internal/version"
)

// ErrDowngrade reports a major-version downgrade. It is rejected before the
// installation is touched.
var ErrDowngrade = migration.ErrDowngrade

// Intent describes one requested update.
type Intent struct {
	Root       string
	From       *semver.Version
	To         *semver.Version
	BinaryType string
	WebView    bool
}

// Fetcher downloads a release archive into destDir and returns its path.
type Fetcher interface {
	Fetch(ctx context.Context, version string, binaryType string, webview bool, destDir string) (string, error)
}

// ExtractFunc unpacks archivePath into destDir.
type ExtractFunc func(archivePath string, destDir string, reporter archive.EntryReporter) error

// Options carries the collaborators of Run. Zero values fall back to the
// real filesystem, archive.Extract and discarded output.
type Options struct {
	Fetcher     Fetcher
	Extract     ExtractFunc
	Reporter    archive.EntryReporter
	System      install.System
	Out         io.Writer
	Logger      *log.Logger
	KeepScratch bool
}

// Result is the single outcome of an update.
type Result struct {
	// State is the last state reached: Committed or RolledBack once the
	// backup exists, otherwise the state the update stopped in.
	State State
	// FailedStep is the state whose step failed, or Idle on success.
	FailedStep State
	// Migration is the gate decision when the check ran.
	Migration migration.Decision
	// RollbackFailed is set when restoring the backup failed and the backup
	// directory was kept.
	RollbackFailed bool
}

// OK reports whether the update committed without error.
func (r Result) OK() bool {
	return r.State == Committed && r.FailedStep == Idle
}

type runner struct {
	intent Intent
	opts   Options
	inst   *install.Installation
	out    io.Writer
	logger *log.Logger
	result Result
}

// Run performs the update described by intent. A downgrade fails with
// ErrDowngrade before any filesystem access. A failed snapshot is returned as
// is. Any later failure rolls the installation back before returning.
func Run(ctx context.Context, intent Intent, opts Options) (Result, error) {
	if err := validateIntent(intent, opts); err != nil {
		return Result{}, err
	}
	if version.IsDowngrade(intent.From, intent.To) {
		return Result{}, fmt.Errorf("%w: "+messages.UpdateDowngradeFmt, ErrDowngrade, intent.From.Major(), intent.To.Major())
	}
	if ctx == nil {
		ctx = context.Background()
	}

	r := newRunner(intent, opts)
	inst, err := install.New(intent.Root, r.system(), r.logger)
	if err != nil {
		return r.result, err
	}
	r.inst = inst

	fmt.Fprintln(r.out, messages.UpdateBackingUp)
	meta := install.SnapshotMeta{FromVersion: intent.From.String(), ToVersion: intent.To.String()}
	if err := inst.Snapshot(meta); err != nil {
		r.result.FailedStep = BackedUp
		return r.result, err
	}
	r.transition(BackedUp)

	if err := r.apply(ctx); err != nil {
		return r.result, r.rollback(err)
	}

	fmt.Fprintln(r.out, messages.UpdateRemovingBackups)
	if err := inst.Commit(); err != nil {
		r.result.FailedStep = Committed
		r.transition(Committed)
		return r.result, fmt.Errorf(messages.UpdateStepFailedFmt, Committed.step(), err)
	}
	r.transition(Committed)
	return r.result, nil
}

func validateIntent(intent Intent, opts Options) error {
	if strings.TrimSpace(intent.Root) == "" {
		return errors.New(messages.UpdateIntentRootMissing)
	}
	if intent.From == nil || intent.To == nil {
		return errors.New(messages.UpdateIntentVersions)
	}
	if opts.Fetcher == nil {
		return errors.New(messages.UpdateFetcherRequired)
	}
	return nil
}

func newRunner(intent Intent, opts Options) *runner {
	out := opts.Out
	if out == nil {
		out = io.Discard
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &runner{intent: intent, opts: opts, out: out, logger: logger}
}

func (r *runner) system() install.System {
	if r.opts.System == nil {
		return install.RealSystem{}
	}
	return r.opts.System
}

func (r *runner) extract() ExtractFunc {
	if r.opts.Extract == nil {
		return archive.Extract
	}
	return r.opts.Extract
}

// transition moves to next unless the update already ended; Committed and
// RolledBack are each reached at most once and never left.
func (r *runner) transition(next State) {
	if r.result.State.Terminal() {
		r.logger.Warn("ignoring transition after update ended", "state", r.result.State, "to", next)
		return
	}
	r.logger.Debug("update state", "from", r.result.State, "to", next)
	r.result.State = next
}

// apply runs every step between a held backup and commit. The scratch
// directory is released before the migration check.
func (r *runner) apply(ctx context.Context) error {
	err := scratch.With(r.intent.Root, r.opts.KeepScratch, func(dir *scratch.Dir) error {
		r.logger.Debug("scratch directory acquired", "dir", dir.Path(), "keep", r.opts.KeepScratch)

		fmt.Fprintf(r.out, messages.UpdateDownloadingFmt, release.AssetName(r.intent.BinaryType, r.intent.WebView))
		archivePath, err := r.opts.Fetcher.Fetch(ctx, r.intent.To.String(), r.intent.BinaryType, r.intent.WebView, dir.Path())
		if err != nil {
			return r.fail(Fetched, err)
		}
		r.transition(Fetched)

		fmt.Fprintln(r.out, messages.UpdateUnpacking)
		if err := r.extract()(archivePath, dir.Path(), r.opts.Reporter); err != nil {
			return r.fail(Extracted, err)
		}
		r.transition(Extracted)

		fmt.Fprintln(r.out, messages.UpdateUpdating)
		if err := r.inst.Swap(dir.Path(), r.intent.WebView); err != nil {
			return r.fail(Swapped, err)
		}
		if err := r.inst.CarryForward(install.UnswappedPaths(r.intent.WebView)); err != nil {
			return r.fail(Swapped, err)
		}
		r.transition(Swapped)
		return nil
	})
	if err != nil {
		if r.result.FailedStep == Idle {
			// Acquiring the scratch directory failed before any step ran.
			return r.fail(Fetched, err)
		}
		return err
	}

	decision, err := migration.Check(r.intent.From, r.intent.To)
	if err != nil {
		return r.fail(MigrationChecked, err)
	}
	r.result.Migration = decision
	r.logger.Debug("config migration", "decision", decision)
	r.transition(MigrationChecked)
	return nil
}

func (r *runner) fail(step State, err error) error {
	r.result.FailedStep = step
	r.logger.Debug("update step failed", "step", step, "err", err)
	return fmt.Errorf(messages.UpdateStepFailedFmt, step.step(), err)
}

func (r *runner) rollback(cause error) error {
	fmt.Fprintf(r.out, messages.UpdateErrorFmt, cause)
	fmt.Fprintln(r.out, messages.UpdateRestoringStates)
	r.transition(RolledBack)
	if err := r.inst.Rollback(); err != nil {
		r.result.RollbackFailed = true
		return errors.Join(cause, fmt.Errorf(messages.UpdateRollbackFmt, err))
	}
	return cause
}
