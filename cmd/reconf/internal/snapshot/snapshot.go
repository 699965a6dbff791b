// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package snapshot

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Snapshot is an immutable record of one file's state at capture time.
//
// # Description
//
// Holds the exact byte content read at capture time, not a diff.
// Restoring from a Snapshot always writes Content back byte-for-byte.
// Once created, a Snapshot is never mutated.
type Snapshot struct {
	// Path is the absolute path the snapshot restores to.
	Path string

	// Content is the verbatim file content at capture time.
	Content []byte

	// Mode is the file mode at capture time, reapplied on restore.
	Mode fs.FileMode

	// CapturedAt records when the content was read. Informational only;
	// never used for ordering or conflict detection.
	CapturedAt time.Time
}

// Engine captures and restores file contents.
//
// # Description
//
// Engine provides the single-file Capture/Restore primitives and the
// batch operations built on them (see batch.go). It holds no state
// between calls: each batch operation owns its own Batch.
//
// # Thread Safety
//
// Safe for concurrent use. Batch operations are internally sequential.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a snapshot engine.
//
// # Description
//
// The logger is an explicitly injected reporting dependency; the engine
// never touches a process-wide logging singleton beyond the nil fallback.
//
// # Inputs
//
//   - logger: Destination for progress and error reporting. A nil logger
//     falls back to slog.Default().
//
// # Outputs
//
//   - *Engine: Ready-to-use engine.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		logger: logger.With("component", "snapshot.Engine"),
	}
}

// Capture reads the full current contents of a file.
//
// # Description
//
// Reads the file at path and returns a Snapshot holding its verbatim
// content, mode, and a capture timestamp. The read has no side effects:
// the file is neither locked nor modified.
//
// # Inputs
//
//   - path: Absolute path to an existing, readable file.
//
// # Outputs
//
//   - *Snapshot: The captured state.
//   - error: A *CaptureError naming the path and cause if the read failed.
//
// # Example
//
//	snap, err := eng.Capture("/etc/app/config.yaml")
//	if err != nil {
//	    return err
//	}
func (e *Engine) Capture(path string) (*Snapshot, error) {
	if !filepath.IsAbs(path) {
		recordCapture(context.Background(), false)
		return nil, &CaptureError{Path: path, Err: fmt.Errorf("path must be absolute")}
	}

	e.logger.Debug("capturing file", "path", path)

	info, err := os.Stat(path)
	if err != nil {
		recordCapture(context.Background(), false)
		return nil, &CaptureError{Path: path, Err: err}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		recordCapture(context.Background(), false)
		return nil, &CaptureError{Path: path, Err: err}
	}

	recordCapture(context.Background(), true)
	e.logger.Debug("captured file", "path", path, "bytes", len(content))

	return &Snapshot{
		Path:       path,
		Content:    content,
		Mode:       info.Mode().Perm(),
		CapturedAt: time.Now(),
	}, nil
}

// Restore overwrites the file at snap.Path with snap.Content.
//
// # Description
//
// Truncate-and-replace semantics: on success the file's contents are
// byte-identical to the snapshot. Restore is terminal, not chainable; it
// does not back up what it overwrites. A failed restore leaves the
// snapshot valid, so the caller may retry.
//
// # Inputs
//
//   - snap: A previously captured Snapshot.
//
// # Outputs
//
//   - error: A *RestoreError naming the path and cause if the write failed.
func (e *Engine) Restore(snap *Snapshot) error {
	e.logger.Debug("restoring file", "path", snap.Path, "bytes", len(snap.Content))

	mode := snap.Mode
	if mode == 0 {
		mode = 0644
	}

	if err := os.WriteFile(snap.Path, snap.Content, mode); err != nil {
		recordRestore(context.Background(), false)
		return &RestoreError{Path: snap.Path, Err: err}
	}

	recordRestore(context.Background(), true)
	e.logger.Debug("restored file", "path", snap.Path)
	return nil
}
