// Package archive persists fetched codebase trees as JSON files.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/mcrae/bitbucket-mcp/apps/server/internal/bitbucket"
)

// Snapshot is the on-disk schema written by save_codebase_to_file.
type Snapshot struct {
	Workspace  string              `json:"workspace"`
	Repository string              `json:"repository"`
	Timestamp  time.Time           `json:"timestamp"`
	Structure  *bitbucket.TreeNode `json:"structure"`
}

// Write serializes snap as indented JSON to filename, replacing any
// existing file.
func Write(filename string, snap Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filename, err)
	}
	return nil
}

// Read loads a snapshot previously written by Write.
func Read(filename string) (Snapshot, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read %s: %w", filename, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parse %s: %w", filename, err)
	}
	return snap, nil
}
