// Package install owns the on-disk driver-box installation: backing it up,
// swapping staged release files into place and restoring it on failure.
package install

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/markmybytes/driver-box-updater/internal/messages"
)

// Installation-relative names touched by an update.
const (
	ExecutableName = "driver-box.exe"
	SupportDirName = "bin"
	ConfigDirName  = "conf"
	BackupDirName  = ".backup"
)

// trackedPaths is shared by backup and restore; the swap set is a subset.
var trackedPaths = []string{ExecutableName, SupportDirName, ConfigDirName}

// SwapPaths returns the paths replaced from a release archive. The support
// directory is only part of WebView2 builds.
func SwapPaths(webview bool) []string {
	if webview {
		return []string{ExecutableName, SupportDirName}
	}
	return []string{ExecutableName}
}

// UnswappedPaths returns tracked paths that a swap leaves untouched.
func UnswappedPaths(webview bool) []string {
	swapped := make(map[string]struct{})
	for _, name := range SwapPaths(webview) {
		swapped[name] = struct{}{}
	}
	out := make([]string, 0, len(trackedPaths))
	for _, name := range trackedPaths {
		if _, ok := swapped[name]; !ok {
			out = append(out, name)
		}
	}
	return out
}

// Installation is a driver-box install root plus its backup location.
type Installation struct {
	Root      string
	BackupDir string
	sys       System
	logger    *log.Logger
}

// New returns an Installation rooted at root. A nil logger discards output.
func New(root string, sys System, logger *log.Logger) (*Installation, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New(messages.InstallRootRequired)
	}
	if sys == nil {
		return nil, errors.New(messages.InstallSystemRequired)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Installation{
		Root:      root,
		BackupDir: filepath.Join(root, BackupDirName),
		sys:       sys,
		logger:    logger,
	}, nil
}

func (inst *Installation) rootPath(name string) string {
	return filepath.Join(inst.Root, name)
}

func (inst *Installation) backupPath(name string) string {
	return filepath.Join(inst.BackupDir, name)
}

func (inst *Installation) exists(path string) (bool, error) {
	_, err := inst.sys.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf(messages.InstallFailedStatFmt, path, err)
}

// removeInstalled deletes path, recursively for directories. A missing path is not an error.
func (inst *Installation) removeInstalled(path string) error {
	info, err := inst.sys.Lstat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(messages.InstallFailedStatFmt, path, err)
	}
	if info.IsDir() {
		return inst.sys.RemoveAll(path)
	}
	return inst.sys.Remove(path)
}
