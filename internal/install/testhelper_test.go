package install

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

type faultSystem struct {
	base       System
	statErrs   map[string]error
	mkdirErrs  map[string]error
	removeErrs map[string]error
	moveErrs   map[string]error
	copyErrs   map[string]error
	writeErrs  map[string]error
}

func newFaultSystem(base System) *faultSystem {
	return &faultSystem{
		base:       base,
		statErrs:   map[string]error{},
		mkdirErrs:  map[string]error{},
		removeErrs: map[string]error{},
		moveErrs:   map[string]error{},
		copyErrs:   map[string]error{},
		writeErrs:  map[string]error{},
	}
}

func (f *faultSystem) Lstat(name string) (os.FileInfo, error) {
	if err, ok := f.statErrs[normalizePath(name)]; ok {
		return nil, err
	}
	return f.base.Lstat(name)
}

func (f *faultSystem) ReadFile(name string) ([]byte, error) {
	return f.base.ReadFile(name)
}

func (f *faultSystem) Mkdir(path string, perm os.FileMode) error {
	if err, ok := f.mkdirErrs[normalizePath(path)]; ok {
		return err
	}
	return f.base.Mkdir(path, perm)
}

func (f *faultSystem) Remove(name string) error {
	if err, ok := f.removeErrs[normalizePath(name)]; ok {
		return err
	}
	return f.base.Remove(name)
}

func (f *faultSystem) RemoveAll(path string) error {
	if err, ok := f.removeErrs[normalizePath(path)]; ok {
		return err
	}
	return f.base.RemoveAll(path)
}

// Move faults are keyed by source path.
func (f *faultSystem) Move(oldpath string, newpath string) error {
	if err, ok := f.moveErrs[normalizePath(oldpath)]; ok {
		return err
	}
	return f.base.Move(oldpath, newpath)
}

func (f *faultSystem) CopyTree(src string, dst string) error {
	if err, ok := f.copyErrs[normalizePath(src)]; ok {
		return err
	}
	return f.base.CopyTree(src, dst)
}

func (f *faultSystem) WriteFileAtomic(filename string, data []byte, perm os.FileMode) error {
	if err, ok := f.writeErrs[normalizePath(filename)]; ok {
		return err
	}
	return f.base.WriteFileAtomic(filename, data, perm)
}

func normalizePath(path string) string {
	return filepath.Clean(path)
}

func newTestInstallation(t *testing.T, root string, sys System) *Installation {
	t.Helper()
	inst, err := New(root, sys, nil)
	if err != nil {
		t.Fatalf("new installation: %v", err)
	}
	return inst
}

// seedInstallation writes a typical v1 install: executable, bin and conf.
func seedInstallation(t *testing.T, root string) {
	t.Helper()
	writeTestFile(t, filepath.Join(root, ExecutableName), "old exe")
	writeTestFile(t, filepath.Join(root, SupportDirName, "webview", "EBWebView.dll"), "old dll")
	writeTestFile(t, filepath.Join(root, ConfigDirName, "setting.json"), `{"theme":"dark"}`)
	writeTestFile(t, filepath.Join(root, ConfigDirName, "drivers.json"), "[]")
}

func writeTestFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// treeState maps root-relative paths to file contents; directories map to "<dir>".
func treeState(t *testing.T, root string) map[string]string {
	t.Helper()
	state := map[string]string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			state[rel] = "<dir>"
			return nil
		}
		data, readErr := os.ReadFile(path)
		if readErr != nil {
			return readErr
		}
		state[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return state
}
