// Package store persists the people and events lists as whole JSON
// documents. Each store loads its document into memory once, treats the
// in-memory list as the single source of truth for the session, and
// rewrites the full document after every mutation. One active session at a
// time is assumed; there are no incremental writes and no locking beyond
// the store's own mutex.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/kshore/metbook/internal/metrics"
)

// ErrNotFound is returned when the requested record does not exist.
var ErrNotFound = errors.New("record not found")

// writeDocument overwrites path with the JSON encoding of v. Writes are
// whole-document: a crash between mutation and save is the only window in
// which memory and disk disagree.
func writeDocument(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	metrics.Inc(metrics.SavesTotal)
	return nil
}

// readDocument reads path, reporting exists=false for a missing file so the
// caller can initialize an empty store instead of erroring.
func readDocument(path string) (data []byte, exists bool, err error) {
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, true, nil
}

// removeFile deletes a photo file best-effort: a file that is already
// missing is treated as already absent, not an error.
func removeFile(path string, logger *slog.Logger) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("removing photo file", "path", path, "error", err)
	}
}

// fileExists reports whether path currently exists on disk.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
