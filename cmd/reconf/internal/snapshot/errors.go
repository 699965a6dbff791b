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
	"fmt"
	"strings"
)

// =============================================================================
// Single-File Errors
// =============================================================================

// CaptureError reports a failed read of one file during capture.
//
// # Description
//
// Wraps the underlying I/O error (file missing, unreadable, permission
// denied) together with the offending path. Capture performs no partial
// writes, so a CaptureError never implies on-disk damage.
//
// # Example
//
//	var capErr *snapshot.CaptureError
//	if errors.As(err, &capErr) {
//	    fmt.Println("could not read", capErr.Path)
//	}
type CaptureError struct {
	// Path is the file that could not be read.
	Path string

	// Err is the underlying I/O error.
	Err error
}

// Error returns a formatted message including path and cause.
func (e *CaptureError) Error() string {
	return fmt.Sprintf("capturing %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *CaptureError) Unwrap() error {
	return e.Err
}

// RestoreError reports a failed write of one file during restore.
//
// # Description
//
// Wraps the underlying I/O error (permission denied, path removed, disk
// full) together with the path being restored. The snapshot itself is
// never consumed or invalidated by a failed restore; the caller may retry.
type RestoreError struct {
	// Path is the file that could not be written.
	Path string

	// Err is the underlying I/O error.
	Err error
}

// Error returns a formatted message including path and cause.
func (e *RestoreError) Error() string {
	return fmt.Sprintf("restoring %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *RestoreError) Unwrap() error {
	return e.Err
}

// =============================================================================
// Batch Errors
// =============================================================================

// BatchCaptureError reports an aborted batch capture.
//
// # Description
//
// Returned by CaptureAll when capturing one path failed. Every snapshot
// accumulated before the failure has already been rolled back, so nothing
// from this call remains in effect. The whole operation is safe to retry.
type BatchCaptureError struct {
	// FailedPath is the path whose capture failed.
	FailedPath string

	// RolledBack is the number of snapshots that had been taken before the
	// failure, each of which was restored before this error was returned.
	RolledBack int

	// Err is the capture failure that aborted the batch.
	Err *CaptureError
}

// Error returns a formatted message including the failed path and the
// number of rolled-back snapshots.
func (e *BatchCaptureError) Error() string {
	return fmt.Sprintf("batch capture aborted at %s after %d snapshot(s): %v",
		e.FailedPath, e.RolledBack, e.Err)
}

// Unwrap returns the wrapped CaptureError for errors.Is/As.
func (e *BatchCaptureError) Unwrap() error {
	return e.Err
}

// BatchRestoreError aggregates every failure from a batch restore.
//
// # Description
//
// Returned by RestoreAll after every snapshot in the batch has been
// attempted. The caller must treat this as "best-effort restore
// incomplete" and surface the full failure list so an operator can
// manually recover the named files. No rollback is attempted: each failed
// file keeps its current (mutated) content for inspection.
type BatchRestoreError struct {
	// Attempted is the total number of snapshots in the batch. Every one
	// was attempted regardless of earlier failures.
	Attempted int

	// Failures holds one entry per failed restore, in batch order.
	Failures []*RestoreError
}

// Error returns a multi-path summary of every failed restore.
func (e *BatchRestoreError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "restored %d of %d file(s); %d failed:",
		e.Attempted-len(e.Failures), e.Attempted, len(e.Failures))
	for _, f := range e.Failures {
		sb.WriteString("\n  ")
		sb.WriteString(f.Error())
	}
	return sb.String()
}

// Unwrap returns the individual restore failures for errors.Is/As.
func (e *BatchRestoreError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Paths returns the path of every failed restore, in batch order.
func (e *BatchRestoreError) Paths() []string {
	paths := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		paths[i] = f.Path
	}
	return paths
}
