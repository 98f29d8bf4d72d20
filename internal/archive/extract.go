// Package archive unpacks release archives into a staging directory.
package archive

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/markmybytes/driver-box-updater/internal/messages"
)

// ErrExtraction reports a corrupt archive or an I/O failure while unpacking.
var ErrExtraction = errors.New("extraction failed")

// EntryReporter observes per-entry extraction progress.
type EntryReporter interface {
	StartEntries(total int)
	Entry(name string)
	FinishEntries()
}

// Extract writes every entry of the zip at archivePath under destDir,
// preserving relative paths. A failure part-way leaves destDir as is.
func Extract(archivePath string, destDir string, reporter EntryReporter) error {
	if reporter == nil {
		reporter = nopReporter{}
	}
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("%w: "+messages.ArchiveOpenFmt, ErrExtraction, archivePath, err)
	}
	defer func() { _ = r.Close() }()

	reporter.StartEntries(len(r.File))
	defer reporter.FinishEntries()
	for _, f := range r.File {
		if err := extractEntry(f, destDir); err != nil {
			return fmt.Errorf("%w: "+messages.ArchiveEntryFmt, ErrExtraction, f.Name, err)
		}
		reporter.Entry(f.Name)
	}
	return nil
}

func extractEntry(f *zip.File, destDir string) error {
	target, err := entryTarget(destDir, f.Name)
	if err != nil {
		return err
	}
	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer func() { _ = rc.Close() }()

	perm := f.Mode().Perm()
	if perm == 0 {
		perm = 0o644
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// entryTarget resolves name under destDir and rejects entries that escape it.
func entryTarget(destDir string, name string) (string, error) {
	rel := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(rel) || filepath.VolumeName(rel) != "" || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf(messages.ArchiveEntryEscapesFmt, name, destDir)
	}
	return filepath.Join(destDir, rel), nil
}

type nopReporter struct{}

func (nopReporter) StartEntries(int) {}
func (nopReporter) Entry(string)     {}
func (nopReporter) FinishEntries()   {}
