// Package progress persists the resume cursor between enrichment runs.
package progress

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Cursor marks how far a previous run got through its input.
type Cursor struct {
	NextIndex int `json:"next_index"`
}

// Load reads the cursor from path. A missing, unreadable, or malformed
// file reads as index 0 so a fresh run starts from the beginning.
func Load(path string) int {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil {
		return 0
	}
	if c.NextIndex < 0 {
		return 0
	}
	return c.NextIndex
}

// Save writes the cursor to path, creating parent directories.
func Save(path string, nextIndex int) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create progress dir: %w", err)
		}
	}
	data, err := json.Marshal(Cursor{NextIndex: nextIndex})
	if err != nil {
		return fmt.Errorf("marshal progress: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write progress: %w", err)
	}
	return nil
}
