// Package scratch manages uniquely named staging directories for downloads.
package scratch

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io/fs"
	"math/big"
	"os"
	"path/filepath"

	"github.com/markmybytes/driver-box-updater/internal/messages"
)

const (
	nameLength   = 8
	nameAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	dirPerm      = 0o777
)

var (
	newName   = randomName
	removeAll = os.RemoveAll
)

// Dir is a scratch directory owned by a single operation.
type Dir struct {
	path string
	keep bool
}

// Acquire creates a fresh scratch directory under base. Names that already
// exist are skipped until an unused one is found.
func Acquire(base string) (*Dir, error) {
	for {
		name, err := newName()
		if err != nil {
			return nil, fmt.Errorf(messages.ScratchCreateFmt, base, err)
		}
		path := filepath.Join(base, name)
		if _, err := os.Lstat(path); err == nil {
			continue
		} else if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf(messages.ScratchStatFmt, path, err)
		}
		if err := os.Mkdir(path, dirPerm); err != nil {
			if errors.Is(err, fs.ErrExist) {
				continue
			}
			return nil, fmt.Errorf(messages.ScratchCreateFmt, base, err)
		}
		return &Dir{path: path}, nil
	}
}

// With acquires a scratch directory, runs fn, and releases the directory
// whatever fn returns. keep leaves the directory on disk.
func With(base string, keep bool, fn func(*Dir) error) error {
	dir, err := Acquire(base)
	if err != nil {
		return err
	}
	if keep {
		dir.Keep()
	}
	defer dir.Release()
	return fn(dir)
}

// Path returns the absolute scratch directory path.
func (d *Dir) Path() string {
	return d.path
}

// Keep disables removal on Release.
func (d *Dir) Keep() {
	d.keep = true
}

// Release removes the directory and its contents. Failures are ignored.
func (d *Dir) Release() {
	if d == nil || d.keep || d.path == "" {
		return
	}
	_ = removeAll(d.path)
}

func randomName() (string, error) {
	out := make([]byte, nameLength)
	limit := big.NewInt(int64(len(nameAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		out[i] = nameAlphabet[n.Int64()]
	}
	return string(out), nil
}
