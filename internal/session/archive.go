package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chintak/qrganize/internal/keypoints"
)

// Snapshot is the durable record of one finished panel session.
type Snapshot struct {
	SavedAt    time.Time            `json:"savedAt"`
	Title      string               `json:"title"`
	SourceURL  string               `json:"sourceUrl,omitempty"`
	Provider   string               `json:"provider"`
	Model      string               `json:"model"`
	KeyPoints  []keypoints.KeyPoint `json:"keyPoints,omitempty"`
	DirectText string               `json:"directText,omitempty"`
	QA         []QAEntry            `json:"qa,omitempty"`
}

// SaveSnapshot writes the snapshot as pretty JSON into dir, named by
// its timestamp, and returns the path. The write goes through a temp
// file so a crash cannot leave a torn archive.
func SaveSnapshot(dir string, snap Snapshot) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now()
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, fmt.Sprintf("session-%s.json", snap.SavedAt.Format("20060102-150405")))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}

// LoadSnapshot reads an archived session back.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse session archive: %w", err)
	}
	return snap, nil
}
