package install

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/markmybytes/driver-box-updater/internal/messages"
)

// ErrSwap reports a failure deleting or moving an installed path.
var ErrSwap = errors.New("swap failed")

// Swap replaces the swap set from scratchDir: each installed path is deleted,
// then the same-named staged entry, when present, is moved into place. A path
// the archive lacks stays deleted and is logged as a warning.
// A path is briefly absent between the two steps; the caller's rollback
// covers a failure in that window.
func (inst *Installation) Swap(scratchDir string, webview bool) error {
	for _, name := range SwapPaths(webview) {
		target := inst.rootPath(name)
		if err := inst.removeInstalled(target); err != nil {
			return fmt.Errorf("%w: "+messages.InstallSwapRemoveFmt, ErrSwap, name, err)
		}
		staged := filepath.Join(scratchDir, name)
		ok, err := inst.exists(staged)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrSwap, err)
		}
		if !ok {
			inst.logger.Warn("release archive has no entry, installed path removed", "path", name)
			continue
		}
		if err := inst.sys.Move(staged, target); err != nil {
			return fmt.Errorf("%w: "+messages.InstallSwapMoveFmt, ErrSwap, name, err)
		}
		inst.logger.Debug("swapped", "path", name)
	}
	return nil
}
