// Package archive writes the per-run audit snapshot: every processed item of
// a run, serialized to a timestamped JSON file under the output directory.
// The core never reads these files back.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"redditqueue/internal/queue"
)

// Writer stores one snapshot per run under dir.
type Writer struct {
	dir   string
	clock func() time.Time
}

// NewWriter creates a writer rooted at dir.
func NewWriter(dir string, clock func() time.Time) *Writer {
	if clock == nil {
		clock = time.Now
	}
	return &Writer{dir: dir, clock: clock}
}

// Write stores items as queue_<stamp>.json and returns the path. The stamp
// is UTC so consecutive runs sort lexicographically.
func (w *Writer) Write(items []queue.ProcessedItem) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	if items == nil {
		items = []queue.ProcessedItem{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal run snapshot: %w", err)
	}

	stamp := w.clock().UTC().Format("20060102_150405")
	path := filepath.Join(w.dir, fmt.Sprintf("queue_%s.json", stamp))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write run snapshot: %w", err)
	}

	return path, nil
}
