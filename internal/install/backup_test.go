package install

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRequiresRootAndSystem(t *testing.T) {
	_, err := New("", RealSystem{}, nil)
	require.Error(t, err)
	_, err = New(t.TempDir(), nil, nil)
	require.Error(t, err)
}

func TestTrackedAndSwapPaths(t *testing.T) {
	require.Equal(t, []string{"driver-box.exe", "bin", "conf"}, trackedPaths)
	require.Equal(t, []string{"driver-box.exe"}, SwapPaths(false))
	require.Equal(t, []string{"driver-box.exe", "bin"}, SwapPaths(true))
	require.Equal(t, []string{"bin", "conf"}, UnswappedPaths(false))
	require.Equal(t, []string{"conf"}, UnswappedPaths(true))
}

func TestSnapshotMovesTrackedPathsIntoBackup(t *testing.T) {
	root := t.TempDir()
	seedInstallation(t, root)
	writeTestFile(t, filepath.Join(root, "logs", "run.log"), "untracked")
	inst := newTestInstallation(t, root, RealSystem{})

	require.NoError(t, inst.Snapshot(SnapshotMeta{FromVersion: "1.0.0", ToVersion: "1.1.0"}))

	for _, name := range trackedPaths {
		_, err := os.Lstat(filepath.Join(root, name))
		require.ErrorIs(t, err, os.ErrNotExist, "%s should have moved", name)
		_, err = os.Lstat(filepath.Join(root, BackupDirName, name))
		require.NoError(t, err)
	}
	_, err := os.Stat(filepath.Join(root, "logs", "run.log"))
	require.NoError(t, err, "untracked paths stay in place")

	held, err := inst.HasBackup()
	require.NoError(t, err)
	require.True(t, held)

	m, err := inst.ReadManifest()
	require.NoError(t, err)
	require.Equal(t, "1.0.0", m.FromVersion)
	require.Equal(t, "1.1.0", m.ToVersion)
	require.Equal(t, []string{"driver-box.exe", "bin", "conf"}, m.Moved)
	require.Empty(t, m.Absent)
}

func TestSnapshotFreshInstallCreatesEmptyBackup(t *testing.T) {
	root := t.TempDir()
	inst := newTestInstallation(t, root, RealSystem{})

	require.NoError(t, inst.Snapshot(SnapshotMeta{}))

	entries, err := os.ReadDir(inst.BackupDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the manifest is written")
	require.Equal(t, manifestName, entries[0].Name())

	m, err := inst.ReadManifest()
	require.NoError(t, err)
	require.Empty(t, m.Moved)
	require.Equal(t, []string{"driver-box.exe", "bin", "conf"}, m.Absent)
}

func TestSnapshotRejectsStaleBackup(t *testing.T) {
	root := t.TempDir()
	seedInstallation(t, root)
	inst := newTestInstallation(t, root, RealSystem{})
	require.NoError(t, os.Mkdir(inst.BackupDir, 0o755))
	before := treeState(t, root)

	err := inst.Snapshot(SnapshotMeta{})
	require.ErrorIs(t, err, ErrStaleBackup)
	require.Equal(t, before, treeState(t, root), "a stale backup must block the update without changes")
}

func TestSnapshotStaleBackupReportsManifest(t *testing.T) {
	root := t.TempDir()
	seedInstallation(t, root)
	inst := newTestInstallation(t, root, RealSystem{})
	require.NoError(t, inst.Snapshot(SnapshotMeta{FromVersion: "1.0.0", ToVersion: "1.2.0"}))

	err := inst.Snapshot(SnapshotMeta{FromVersion: "1.0.0", ToVersion: "1.3.0"})
	require.ErrorIs(t, err, ErrStaleBackup)
	require.Contains(t, err.Error(), "1.0.0 -> 1.2.0")
}

func TestSnapshotUndoesMovesOnFailure(t *testing.T) {
	root := t.TempDir()
	seedInstallation(t, root)
	before := treeState(t, root)

	faults := newFaultSystem(RealSystem{})
	faults.moveErrs[normalizePath(filepath.Join(root, ConfigDirName))] = errors.New("access denied")
	inst := newTestInstallation(t, root, faults)

	err := inst.Snapshot(SnapshotMeta{})
	require.ErrorContains(t, err, "access denied")
	require.Equal(t, before, treeState(t, root))
	held, err := inst.HasBackup()
	require.NoError(t, err)
	require.False(t, held)
}

func TestSnapshotUndoFailureKeepsBackup(t *testing.T) {
	root := t.TempDir()
	seedInstallation(t, root)

	faults := newFaultSystem(RealSystem{})
	faults.moveErrs[normalizePath(filepath.Join(root, ConfigDirName))] = errors.New("access denied")
	faults.moveErrs[normalizePath(filepath.Join(root, BackupDirName, SupportDirName))] = errors.New("locked")
	inst := newTestInstallation(t, root, faults)

	err := inst.Snapshot(SnapshotMeta{})
	require.ErrorContains(t, err, "undo of backup")
	_, statErr := os.Stat(filepath.Join(root, BackupDirName, SupportDirName))
	require.NoError(t, statErr, "paths that could not be put back stay in the backup")
}

func TestSnapshotManifestWriteFailure(t *testing.T) {
	root := t.TempDir()
	seedInstallation(t, root)
	before := treeState(t, root)

	faults := newFaultSystem(RealSystem{})
	faults.writeErrs[normalizePath(filepath.Join(root, BackupDirName, manifestName))] = errors.New("disk full")
	inst := newTestInstallation(t, root, faults)

	err := inst.Snapshot(SnapshotMeta{})
	require.ErrorContains(t, err, "disk full")
	require.Equal(t, before, treeState(t, root))
}

func TestSnapshotMkdirFailure(t *testing.T) {
	root := t.TempDir()
	faults := newFaultSystem(RealSystem{})
	faults.mkdirErrs[normalizePath(filepath.Join(root, BackupDirName))] = os.ErrPermission
	inst := newTestInstallation(t, root, faults)

	err := inst.Snapshot(SnapshotMeta{})
	require.ErrorIs(t, err, os.ErrPermission)
	require.NotErrorIs(t, err, ErrStaleBackup)
}

func TestRollbackImmediatelyAfterSnapshotIsIdentity(t *testing.T) {
	root := t.TempDir()
	seedInstallation(t, root)
	before := treeState(t, root)
	inst := newTestInstallation(t, root, RealSystem{})

	require.NoError(t, inst.Snapshot(SnapshotMeta{}))
	require.NoError(t, inst.Rollback())

	require.Equal(t, before, treeState(t, root))
}

func TestRollbackOverwritesNewFiles(t *testing.T) {
	root := t.TempDir()
	seedInstallation(t, root)
	before := treeState(t, root)
	inst := newTestInstallation(t, root, RealSystem{})
	require.NoError(t, inst.Snapshot(SnapshotMeta{}))

	// Simulate a half-applied update: a new executable file and a new bin tree.
	writeTestFile(t, filepath.Join(root, ExecutableName), "new exe")
	writeTestFile(t, filepath.Join(root, SupportDirName, "new.dll"), "new")

	require.NoError(t, inst.Rollback())
	require.Equal(t, before, treeState(t, root))
}

func TestRollbackRemovesPathsAbsentBeforeUpdate(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, ExecutableName), "old exe")
	inst := newTestInstallation(t, root, RealSystem{})
	require.NoError(t, inst.Snapshot(SnapshotMeta{}))

	writeTestFile(t, filepath.Join(root, ExecutableName), "new exe")
	writeTestFile(t, filepath.Join(root, SupportDirName, "new.dll"), "new")

	require.NoError(t, inst.Rollback())
	require.Equal(t, map[string]string{ExecutableName: "old exe"}, treeState(t, root))
}

func TestRollbackWithoutManifestKeepsUnknownPaths(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, BackupDirName, ExecutableName), "old exe")
	writeTestFile(t, filepath.Join(root, SupportDirName, "new.dll"), "new")
	inst := newTestInstallation(t, root, RealSystem{})

	require.NoError(t, inst.Rollback())
	require.Equal(t, map[string]string{
		ExecutableName:              "old exe",
		SupportDirName:              "<dir>",
		SupportDirName + "/new.dll": "new",
	}, treeState(t, root))
}

func TestRollbackContinuesPastFailuresAndKeepsBackup(t *testing.T) {
	root := t.TempDir()
	seedInstallation(t, root)
	faults := newFaultSystem(RealSystem{})
	inst := newTestInstallation(t, root, faults)
	require.NoError(t, inst.Snapshot(SnapshotMeta{}))

	faults.moveErrs[normalizePath(filepath.Join(root, BackupDirName, ExecutableName))] = errors.New("exe locked")

	err := inst.Rollback()
	require.ErrorContains(t, err, "exe locked")

	data, readErr := os.ReadFile(filepath.Join(root, ConfigDirName, "setting.json"))
	require.NoError(t, readErr, "later paths are still restored")
	require.Equal(t, `{"theme":"dark"}`, string(data))
	_, statErr := os.Stat(filepath.Join(root, BackupDirName, ExecutableName))
	require.NoError(t, statErr, "the backup is kept for a retry")

	delete(faults.moveErrs, normalizePath(filepath.Join(root, BackupDirName, ExecutableName)))
	require.NoError(t, inst.Rollback())
	held, err := inst.HasBackup()
	require.NoError(t, err)
	require.False(t, held)
}

func TestCommitRemovesBackup(t *testing.T) {
	root := t.TempDir()
	seedInstallation(t, root)
	inst := newTestInstallation(t, root, RealSystem{})
	require.NoError(t, inst.Snapshot(SnapshotMeta{}))
	writeTestFile(t, filepath.Join(root, ExecutableName), "new exe")

	require.NoError(t, inst.Commit())

	held, err := inst.HasBackup()
	require.NoError(t, err)
	require.False(t, held)
	require.Equal(t, map[string]string{ExecutableName: "new exe"}, treeState(t, root))
}

func TestCommitFailure(t *testing.T) {
	root := t.TempDir()
	faults := newFaultSystem(RealSystem{})
	inst := newTestInstallation(t, root, faults)
	require.NoError(t, inst.Snapshot(SnapshotMeta{}))
	faults.removeErrs[normalizePath(inst.BackupDir)] = errors.New("busy")

	require.ErrorContains(t, inst.Commit(), "busy")
}

func TestCarryForwardCopiesUnswappedPaths(t *testing.T) {
	root := t.TempDir()
	seedInstallation(t, root)
	inst := newTestInstallation(t, root, RealSystem{})
	require.NoError(t, inst.Snapshot(SnapshotMeta{}))
	writeTestFile(t, filepath.Join(root, ExecutableName), "new exe")

	require.NoError(t, inst.CarryForward(UnswappedPaths(false)))

	data, err := os.ReadFile(filepath.Join(root, ConfigDirName, "setting.json"))
	require.NoError(t, err)
	require.Equal(t, `{"theme":"dark"}`, string(data))
	_, err = os.Stat(filepath.Join(root, SupportDirName, "webview", "EBWebView.dll"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(inst.BackupDir, ConfigDirName, "setting.json"))
	require.NoError(t, err, "backup keeps its copy")
}

func TestCarryForwardSkipsPresentAndMissingPaths(t *testing.T) {
	root := t.TempDir()
	writeTestFile(t, filepath.Join(root, ConfigDirName, "setting.json"), "old")
	inst := newTestInstallation(t, root, RealSystem{})
	require.NoError(t, inst.Snapshot(SnapshotMeta{}))
	writeTestFile(t, filepath.Join(root, ConfigDirName, "setting.json"), "from archive")

	require.NoError(t, inst.CarryForward([]string{ConfigDirName, SupportDirName}))

	data, err := os.ReadFile(filepath.Join(root, ConfigDirName, "setting.json"))
	require.NoError(t, err)
	require.Equal(t, "from archive", string(data))
	_, err = os.Stat(filepath.Join(root, SupportDirName))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestCarryForwardCopyFailure(t *testing.T) {
	root := t.TempDir()
	seedInstallation(t, root)
	faults := newFaultSystem(RealSystem{})
	inst := newTestInstallation(t, root, faults)
	require.NoError(t, inst.Snapshot(SnapshotMeta{}))
	faults.copyErrs[normalizePath(filepath.Join(inst.BackupDir, ConfigDirName))] = errors.New("no space")

	require.ErrorContains(t, inst.CarryForward([]string{ConfigDirName}), "no space")
}

func TestReadManifestRejectsInvalidContent(t *testing.T) {
	root := t.TempDir()
	inst := newTestInstallation(t, root, RealSystem{})
	writeTestFile(t, filepath.Join(inst.BackupDir, manifestName), `{"schema_version": 9}`)

	_, err := inst.ReadManifest()
	require.ErrorContains(t, err, "unsupported schema_version 9")
}

func TestManifestCreatedAtUsesClock(t *testing.T) {
	orig := nowFunc
	nowFunc = func() time.Time { return time.Date(2026, 10, 19, 8, 30, 0, 0, time.UTC) }
	t.Cleanup(func() { nowFunc = orig })

	root := t.TempDir()
	inst := newTestInstallation(t, root, RealSystem{})
	require.NoError(t, inst.Snapshot(SnapshotMeta{}))
	m, err := inst.ReadManifest()
	require.NoError(t, err)
	require.Equal(t, "2026-10-19T08:30:00Z", m.CreatedAtUTC)
}
