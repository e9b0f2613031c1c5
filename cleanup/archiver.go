package cleanup

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"opslab/adjanitor/activedirectory"
)

const snapshotTimeFormat = "20060102-150405"

// SnapshotFilename builds the conventional snapshot file name,
// <prefix>_<yyyyMMdd-HHmmss>.json.
func SnapshotFilename(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s.json", prefix, t.Format(snapshotTimeFormat))
}

// Archive joins each selected computer with the recovery keys stored under it
// and writes the result to destination. It performs no directory mutation;
// it exists to guarantee a recovery point before the decommission stage runs.
// An empty selection is legal and produces a readable empty snapshot. A write
// failure is fatal: the caller must not proceed to decommission without a
// snapshot on disk.
func (s *Service) Archive(selected []activedirectory.Computer, destination string) (*Snapshot, error) {
	// One bulk query for all recovery objects keeps the directory cost flat
	// regardless of selection size.
	keys, err := s.directory.RecoveryKeys()
	if err != nil {
		return nil, fmt.Errorf("querying recovery keys: %w", err)
	}

	snapshot := &Snapshot{
		CreatedAt: time.Now().UTC(),
		Computers: make([]ArchivedComputer, 0, len(selected)),
	}

	for i, computer := range selected {
		s.progress.Step(i+1, len(selected), computer.Name)

		archived := ArchivedComputer{Computer: computer}
		for _, key := range keys {
			if key.BelongsTo(computer.DN) {
				archived.RecoveryKeys = append(archived.RecoveryKeys, key)
			}
		}
		snapshot.Computers = append(snapshot.Computers, archived)
	}

	if err := writeSnapshot(snapshot, destination); err != nil {
		return nil, err
	}
	return snapshot, nil
}

func writeSnapshot(snapshot *Snapshot, destination string) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	if dir := filepath.Dir(destination); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating snapshot directory: %w", err)
		}
	}

	// Recovery passwords are in here; keep the file owner-readable only.
	if err := os.WriteFile(destination, data, 0o600); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", destination, err)
	}
	return nil
}

// LoadSnapshot reads a snapshot previously written by Archive. Every field
// written is recovered; the decommission stage selects from the result.
func LoadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot %s: %w", path, err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("decoding snapshot %s: %w", path, err)
	}
	return &snapshot, nil
}
