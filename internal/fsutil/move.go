// Package fsutil holds filesystem primitives shared by the installer: moves that
// survive volume boundaries, tree copies and atomic file writes.
package fsutil

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

var (
	renameFunc    = os.Rename
	removeAllFunc = os.RemoveAll
	placeFunc     = os.Rename
)

// Mover moves paths, copying across volumes when a rename is refused. Nil
// fields use the os functions.
type Mover struct {
	Rename    func(oldpath string, newpath string) error
	RemoveAll func(path string) error
}

// Move renames src to dst with the package defaults. See Mover.Move.
func Move(src string, dst string) error {
	return Mover{Rename: renameFunc, RemoveAll: removeAllFunc}.Move(src, dst)
}

// Move renames src to dst. Across volumes src is copied to a staging name next
// to dst, src is removed and the staged copy is renamed into place. On any
// failure src is complete again and dst is absent; if src cannot be restored
// the error names the staged copy that was kept.
func (m Mover) Move(src string, dst string) error {
	err := m.rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return err
	}

	staging := stagingPath(dst)
	_ = os.RemoveAll(staging)
	if err := CopyTree(src, staging); err != nil {
		_ = os.RemoveAll(staging)
		return fmt.Errorf("copy %s to %s: %w", src, staging, err)
	}
	if err := m.removeAll(src); err != nil {
		return restoreSource(staging, src, fmt.Errorf("remove %s after copying: %w", src, err))
	}
	if err := placeFunc(staging, dst); err != nil {
		return restoreSource(staging, src, fmt.Errorf("place %s at %s: %w", staging, dst, err))
	}
	return nil
}

func (m Mover) rename(oldpath string, newpath string) error {
	if m.Rename == nil {
		return os.Rename(oldpath, newpath)
	}
	return m.Rename(oldpath, newpath)
}

func (m Mover) removeAll(path string) error {
	if m.RemoveAll == nil {
		return os.RemoveAll(path)
	}
	return m.RemoveAll(path)
}

func stagingPath(dst string) string {
	return filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+".moving")
}

// restoreSource copies whatever src lost back from the complete staged copy,
// then drops the staged copy. cause is returned either way.
func restoreSource(staging string, src string, cause error) error {
	if err := copyMissing(staging, src); err != nil {
		return fmt.Errorf("%w; restore of %s failed, complete copy kept at %s: %v", cause, src, staging, err)
	}
	_ = os.RemoveAll(staging)
	return cause
}

// copyMissing copies entries of from that do not exist under to. Existing
// entries are left untouched.
func copyMissing(from string, to string) error {
	return filepath.WalkDir(from, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(from, path)
		if err != nil {
			return err
		}
		target := filepath.Join(to, rel)
		if _, err := os.Lstat(target); err == nil {
			return nil
		} else if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		if err := CopyTree(path, target); err != nil {
			return err
		}
		if d.IsDir() {
			return filepath.SkipDir
		}
		return nil
	})
}

// CopyTree copies a file, directory or symlink from src to dst. dst must not exist.
func CopyTree(src string, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		target, err := os.Readlink(src)
		if err != nil {
			return err
		}
		return os.Symlink(target, dst)
	case info.IsDir():
		return copyDir(src, dst, info.Mode().Perm())
	case info.Mode().IsRegular():
		return copyFile(src, dst, info.Mode().Perm())
	default:
		return fmt.Errorf("unsupported file type for %s", src)
	}
}

func copyDir(src string, dst string, perm fs.FileMode) error {
	if err := os.Mkdir(dst, perm); err != nil {
		return err
	}
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := CopyTree(filepath.Join(src, entry.Name()), filepath.Join(dst, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

func copyFile(src string, dst string, perm fs.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, perm)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}
