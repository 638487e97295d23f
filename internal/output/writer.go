// Package output persists run results: the JSON output file the dedup
// index consumes on later runs, and an optional Markdown digest.
package output

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/scrapex/scrapex/pkg/models"
)

// Writer flushes collected posts, merged after any records loaded from
// prior output files, to a single JSON array per run.
type Writer struct {
	path     string // empty means a timestamped default
	prefix   string
	existing []models.Post
	flushed  []models.Post
}

// NewWriter creates a writer. existing holds prior records to carry into
// the output, preserving the merged-file behavior across runs.
func NewWriter(path, prefix string, existing []models.Post) *Writer {
	if prefix == "" {
		prefix = "post_data"
	}
	return &Writer{path: path, prefix: prefix, existing: existing}
}

// Flush writes existing + collected posts and returns the output path.
// Nothing is written when there is nothing to write; a partial collection
// is always written, whatever the stop reason.
func (w *Writer) Flush(posts []models.Post, reason models.StopReason) (string, error) {
	w.flushed = posts
	all := make([]models.Post, 0, len(w.existing)+len(posts))
	all = append(all, w.existing...)
	all = append(all, posts...)
	if len(all) == 0 {
		log.Info().Str("reason", string(reason)).Msg("Nothing collected, no output written")
		return "", nil
	}

	path := w.path
	if path == "" {
		path = TimestampedFilename(w.prefix, time.Now())
	}
	if err := writeJSONAtomic(path, all); err != nil {
		return "", err
	}

	log.Info().
		Str("path", path).
		Int("total", len(all)).
		Int("existing", len(w.existing)).
		Int("new", len(posts)).
		Str("reason", string(reason)).
		Msg("Posts saved")
	return path, nil
}

// Flushed returns the newly collected posts from the last Flush, for
// post-run artifacts like the Markdown report.
func (w *Writer) Flushed() []models.Post {
	return w.flushed
}

// TimestampedFilename builds the default per-run output name.
func TimestampedFilename(prefix string, t time.Time) string {
	return fmt.Sprintf("%s_%s.json", prefix, t.Format("20060102_1504"))
}

// writeJSONAtomic writes via a temp file and rename so a crash mid-write
// never leaves a truncated output behind.
func writeJSONAtomic(path string, v interface{}) error {
	blob, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, blob, 0644); err != nil {
		return fmt.Errorf("write temp output: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("finalize output: %w", err)
	}
	return nil
}

// WriteJSON writes posts to path without merging, used by the offline merge
// command.
func WriteJSON(path string, posts []models.Post) error {
	return writeJSONAtomic(path, posts)
}
