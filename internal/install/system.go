package install

import (
	"os"

	"github.com/markmybytes/driver-box-updater/internal/fsutil"
)

// System abstracts filesystem operations needed by the installer so tests can
// inject failures on specific paths.
type System interface {
	Lstat(name string) (os.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	Mkdir(path string, perm os.FileMode) error
	Remove(name string) error
	RemoveAll(path string) error
	Move(oldpath string, newpath string) error
	CopyTree(src string, dst string) error
	WriteFileAtomic(filename string, data []byte, perm os.FileMode) error
}

// RealSystem implements System using the OS filesystem.
type RealSystem struct{}

// Lstat returns a FileInfo describing the named file without following symlinks.
func (RealSystem) Lstat(name string) (os.FileInfo, error) {
	return os.Lstat(name)
}

// ReadFile reads the named file and returns the contents.
func (RealSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// Mkdir creates a single directory and fails if it already exists.
func (RealSystem) Mkdir(path string, perm os.FileMode) error {
	return os.Mkdir(path, perm)
}

// Remove removes a file or an empty directory.
func (RealSystem) Remove(name string) error {
	return os.Remove(name)
}

// RemoveAll removes path and any children it contains.
func (RealSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// Move renames oldpath to newpath, copying across volumes when needed.
func (RealSystem) Move(oldpath string, newpath string) error {
	return fsutil.Move(oldpath, newpath)
}

// CopyTree copies a file or directory tree to a new location.
func (RealSystem) CopyTree(src string, dst string) error {
	return fsutil.CopyTree(src, dst)
}

// WriteFileAtomic writes data to a file atomically by writing to a temp file and renaming.
func (RealSystem) WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	return fsutil.WriteFileAtomic(filename, data, perm)
}
