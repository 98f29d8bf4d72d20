package install

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/markmybytes/driver-box-updater/internal/messages"
)

// ErrStaleBackup reports a backup left by an earlier update that never
// committed or rolled back. It needs manual rollback or discard.
var ErrStaleBackup = errors.New("stale update backup")

var nowFunc = time.Now

// HasBackup reports whether a backup is currently held.
func (inst *Installation) HasBackup() (bool, error) {
	return inst.exists(inst.BackupDir)
}

// Snapshot creates the backup directory and moves every present tracked path
// into it. An existing backup directory fails with ErrStaleBackup and nothing
// is touched. A failed move puts already-moved paths back and removes the
// backup directory.
func (inst *Installation) Snapshot(meta SnapshotMeta) error {
	if err := inst.sys.Mkdir(inst.BackupDir, 0o755); err != nil {
		if errors.Is(err, fs.ErrExist) {
			return inst.staleBackupError()
		}
		return fmt.Errorf(messages.InstallCreateBackupFmt, inst.BackupDir, err)
	}

	moved := make([]string, 0, len(trackedPaths))
	absent := make([]string, 0, len(trackedPaths))
	for _, name := range trackedPaths {
		ok, err := inst.exists(inst.rootPath(name))
		if err != nil {
			return inst.undoSnapshot(nil, err)
		}
		if ok {
			moved = append(moved, name)
		} else {
			absent = append(absent, name)
		}
	}
	if err := inst.writeManifest(newManifest(meta, nowFunc(), moved, absent)); err != nil {
		return inst.undoSnapshot(nil, err)
	}

	done := make([]string, 0, len(moved))
	for _, name := range moved {
		if err := inst.sys.Move(inst.rootPath(name), inst.backupPath(name)); err != nil {
			return inst.undoSnapshot(done, fmt.Errorf(messages.InstallBackupPathFmt, name, err))
		}
		inst.logger.Debug("backed up", "path", name)
		done = append(done, name)
	}
	inst.logger.Debug("snapshot created", "dir", inst.BackupDir, "moved", moved, "absent", absent)
	return nil
}

// undoSnapshot returns moved paths to the root in reverse order and drops the backup directory.
func (inst *Installation) undoSnapshot(moved []string, cause error) error {
	var undoErrs []error
	for i := len(moved) - 1; i >= 0; i-- {
		name := moved[i]
		if err := inst.sys.Move(inst.backupPath(name), inst.rootPath(name)); err != nil {
			undoErrs = append(undoErrs, fmt.Errorf(messages.InstallRestorePathFmt, name, err))
		}
	}
	if len(undoErrs) > 0 {
		// Keep the backup directory: it still holds paths that could not be put back.
		return fmt.Errorf(messages.InstallBackupUndoFailedFmt, cause, inst.BackupDir, errors.Join(undoErrs...))
	}
	if err := inst.sys.RemoveAll(inst.BackupDir); err != nil {
		return fmt.Errorf(messages.InstallBackupUndoFailedFmt, cause, inst.BackupDir, err)
	}
	return cause
}

func (inst *Installation) staleBackupError() error {
	m, err := inst.ReadManifest()
	if err != nil {
		return fmt.Errorf("%w: "+messages.InstallStaleBackupFmt, ErrStaleBackup, inst.BackupDir)
	}
	return fmt.Errorf("%w: "+messages.InstallStaleBackupDetailFmt, ErrStaleBackup, inst.BackupDir, m.CreatedAtUTC, m.FromVersion, m.ToVersion)
}

// Commit deletes the backup after a successful update.
func (inst *Installation) Commit() error {
	if err := inst.sys.RemoveAll(inst.BackupDir); err != nil {
		return fmt.Errorf(messages.InstallCommitFmt, inst.BackupDir, err)
	}
	inst.logger.Debug("backup committed", "dir", inst.BackupDir)
	return nil
}

// Rollback moves every backed-up tracked path back over whatever occupies its
// name in the root, then deletes the backup directory. Paths recorded as absent
// before the update are removed again. Per-path failures are collected and the
// backup directory is kept so the rollback can be retried.
func (inst *Installation) Rollback() error {
	var errs []error
	for _, name := range trackedPaths {
		backed := inst.backupPath(name)
		ok, err := inst.exists(backed)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if !ok {
			continue
		}
		target := inst.rootPath(name)
		if err := inst.removeInstalled(target); err != nil {
			errs = append(errs, fmt.Errorf(messages.InstallRestoreClearFmt, name, err))
			continue
		}
		if err := inst.sys.Move(backed, target); err != nil {
			errs = append(errs, fmt.Errorf(messages.InstallRestorePathFmt, name, err))
			continue
		}
		inst.logger.Debug("restored", "path", name)
	}
	errs = append(errs, inst.removeAbsentPaths()...)
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	if err := inst.sys.RemoveAll(inst.BackupDir); err != nil {
		return fmt.Errorf(messages.InstallCommitFmt, inst.BackupDir, err)
	}
	inst.logger.Debug("rollback complete", "dir", inst.BackupDir)
	return nil
}

// removeAbsentPaths clears paths the manifest recorded as absent before the
// update. Without a readable manifest nothing is removed.
func (inst *Installation) removeAbsentPaths() []error {
	m, err := inst.ReadManifest()
	if err != nil {
		inst.logger.Debug("backup manifest unavailable, keeping new paths", "err", err)
		return nil
	}
	var errs []error
	for _, name := range m.Absent {
		if !isTracked(name) {
			continue
		}
		if ok, _ := inst.exists(inst.backupPath(name)); ok {
			continue
		}
		if err := inst.removeInstalled(inst.rootPath(name)); err != nil {
			errs = append(errs, fmt.Errorf(messages.InstallRestoreClearFmt, name, err))
		}
	}
	return errs
}

// CarryForward copies backed-up paths in names back to the root when the root
// no longer has them. The backup copy stays for rollback.
func (inst *Installation) CarryForward(names []string) error {
	for _, name := range names {
		backed := inst.backupPath(name)
		ok, err := inst.exists(backed)
		if err != nil {
			return fmt.Errorf(messages.InstallCarryForwardFmt, name, err)
		}
		if !ok {
			continue
		}
		target := inst.rootPath(name)
		present, err := inst.exists(target)
		if err != nil {
			return fmt.Errorf(messages.InstallCarryForwardFmt, name, err)
		}
		if present {
			continue
		}
		if err := inst.sys.CopyTree(backed, target); err != nil {
			return fmt.Errorf(messages.InstallCarryForwardFmt, name, err)
		}
		inst.logger.Debug("carried forward", "path", name)
	}
	return nil
}

func isTracked(name string) bool {
	for _, tracked := range trackedPaths {
		if tracked == name {
			return true
		}
	}
	return false
}
