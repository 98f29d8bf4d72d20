package install

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/markmybytes/driver-box-updater/internal/messages"
)

const (
	manifestSchemaVersion = 1
	manifestName          = "manifest.json"
)

// Manifest describes a held backup. It is informational: restore walks the
// tracked path set, not this list.
type Manifest struct {
	SchemaVersion int      `json:"schema_version"`
	CreatedAtUTC  string   `json:"created_at_utc"`
	FromVersion   string   `json:"from_version,omitempty"`
	ToVersion     string   `json:"to_version,omitempty"`
	Moved         []string `json:"moved"`
	Absent        []string `json:"absent"`
}

// SnapshotMeta labels a backup with the versions of the update that created it.
type SnapshotMeta struct {
	FromVersion string
	ToVersion   string
}

func newManifest(meta SnapshotMeta, now time.Time, moved []string, absent []string) Manifest {
	return Manifest{
		SchemaVersion: manifestSchemaVersion,
		CreatedAtUTC:  now.UTC().Format(time.RFC3339),
		FromVersion:   meta.FromVersion,
		ToVersion:     meta.ToVersion,
		Moved:         moved,
		Absent:        absent,
	}
}

func validateManifest(m Manifest) error {
	if m.SchemaVersion != manifestSchemaVersion {
		return fmt.Errorf("unsupported schema_version %d", m.SchemaVersion)
	}
	if strings.TrimSpace(m.CreatedAtUTC) == "" {
		return fmt.Errorf("created_at_utc is required")
	}
	if _, err := time.Parse(time.RFC3339, m.CreatedAtUTC); err != nil {
		return fmt.Errorf("invalid created_at_utc %q: %w", m.CreatedAtUTC, err)
	}
	return nil
}

func (inst *Installation) manifestPath() string {
	return inst.backupPath(manifestName)
}

func (inst *Installation) writeManifest(m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf(messages.InstallManifestEncodeFmt, err)
	}
	data = append(data, '\n')
	path := inst.manifestPath()
	if err := inst.sys.WriteFileAtomic(path, data, 0o644); err != nil {
		return fmt.Errorf(messages.InstallFailedWriteFmt, path, err)
	}
	return nil
}

// ReadManifest reads the manifest of the held backup.
func (inst *Installation) ReadManifest() (Manifest, error) {
	path := inst.manifestPath()
	data, err := inst.sys.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf(messages.InstallFailedReadFmt, path, err)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf(messages.InstallManifestDecodeFmt, path, err)
	}
	if err := validateManifest(m); err != nil {
		return Manifest{}, fmt.Errorf(messages.InstallManifestDecodeFmt, path, err)
	}
	return m, nil
}
