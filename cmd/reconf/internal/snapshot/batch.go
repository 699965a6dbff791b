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
	"errors"

	"github.com/google/uuid"
)

// Batch is an ordered sequence of snapshots captured together.
//
// # Description
//
// Contains exactly one Snapshot per input path, in the order the paths
// were supplied to CaptureAll. A Batch is never returned partially
// populated: CaptureAll either returns a full batch or fails after
// rolling back whatever was captured so far.
//
// Duplicate paths are permitted and kept as independent entries; no
// deduplication is performed.
type Batch struct {
	// ID identifies the batch in logs. Informational only.
	ID string

	// Snapshots holds one entry per input path, in input order.
	Snapshots []*Snapshot
}

// Len returns the number of snapshots in the batch.
func (b *Batch) Len() int {
	return len(b.Snapshots)
}

// Paths returns the snapshot paths in batch order.
func (b *Batch) Paths() []string {
	paths := make([]string, len(b.Snapshots))
	for i, snap := range b.Snapshots {
		paths[i] = snap.Path
	}
	return paths
}

// CaptureAll captures every path into a new batch, all or nothing.
//
// # Description
//
// Processes paths strictly in input order, capturing each and
// accumulating the results. The moment any single capture fails, the
// remainder of the batch is abandoned and every snapshot already
// accumulated is restored before the failure is re-signaled.
//
// Capture itself has no on-disk side effects today, so the rollback is
// purely defensive and symmetric. It is kept as a hard invariant so the
// ordering guarantee survives if capture ever gains side effects.
//
// # Inputs
//
//   - paths: Ordered sequence of absolute file paths. Duplicates are
//     captured independently, in order.
//
// # Outputs
//
//   - *Batch: One snapshot per input path, in input order.
//   - error: A *BatchCaptureError wrapping the underlying *CaptureError,
//     including the failed path and the count of rolled-back snapshots.
//
// # Example
//
//	batch, err := eng.CaptureAll([]string{cfgPath, envPath})
//	if err != nil {
//	    return err // disk untouched; the whole call is safe to retry
//	}
func (e *Engine) CaptureAll(paths []string) (*Batch, error) {
	batch := &Batch{
		ID:        uuid.NewString(),
		Snapshots: make([]*Snapshot, 0, len(paths)),
	}

	e.logger.Info("capturing batch", "batch_id", batch.ID, "files", len(paths))

	for _, path := range paths {
		snap, err := e.Capture(path)
		if err != nil {
			rolledBack := e.rollback(batch)

			var capErr *CaptureError
			if !errors.As(err, &capErr) {
				capErr = &CaptureError{Path: path, Err: err}
			}

			recordBatchCapture(context.Background(), len(paths), false)
			e.logger.Error("batch capture aborted",
				"batch_id", batch.ID,
				"failed_path", path,
				"rolled_back", rolledBack,
				"error", err)

			return nil, &BatchCaptureError{
				FailedPath: path,
				RolledBack: rolledBack,
				Err:        capErr,
			}
		}
		batch.Snapshots = append(batch.Snapshots, snap)
	}

	recordBatchCapture(context.Background(), len(paths), true)
	e.logger.Info("captured batch", "batch_id", batch.ID, "files", batch.Len())
	return batch, nil
}

// rollback restores every snapshot accumulated so far and returns how
// many restore calls were issued. Failures are logged, not propagated:
// capture never mutated the files, so a failed defensive restore cannot
// make the tree worse.
func (e *Engine) rollback(batch *Batch) int {
	if batch.Len() == 0 {
		return 0
	}

	e.logger.Warn("rolling back partial batch",
		"batch_id", batch.ID, "snapshots", batch.Len())
	recordRollback(context.Background(), batch.Len())

	for _, snap := range batch.Snapshots {
		if err := e.Restore(snap); err != nil {
			e.logger.Warn("rollback restore failed",
				"batch_id", batch.ID, "path", snap.Path, "error", err)
		}
	}
	return batch.Len()
}

// RestoreAll restores every snapshot in the batch, best effort.
//
// # Description
//
// Processes every snapshot in batch order. A failed restore on one file
// does NOT stop processing: every snapshot is attempted regardless of
// earlier failures, and every error is collected. A restore failure means
// the caller's tree is already mutated, so restoring as many files as
// possible minimizes damage even if the batch cannot be fully undone.
//
// # Inputs
//
//   - batch: Typically the exact Batch returned by a prior CaptureAll.
//
// # Outputs
//
//   - error: nil if every restore succeeded; otherwise a
//     *BatchRestoreError aggregating every per-file failure. The caller
//     must surface the full list so an operator can manually recover the
//     named files.
func (e *Engine) RestoreAll(batch *Batch) error {
	e.logger.Info("restoring batch", "batch_id", batch.ID, "files", batch.Len())

	var failures []*RestoreError
	for _, snap := range batch.Snapshots {
		if err := e.Restore(snap); err != nil {
			var restErr *RestoreError
			if !errors.As(err, &restErr) {
				restErr = &RestoreError{Path: snap.Path, Err: err}
			}
			failures = append(failures, restErr)
			e.logger.Error("restore failed",
				"batch_id", batch.ID, "path", snap.Path, "error", err)
		}
	}

	recordBatchRestore(context.Background(), batch.Len(), len(failures))

	if len(failures) > 0 {
		return &BatchRestoreError{
			Attempted: batch.Len(),
			Failures:  failures,
		}
	}

	e.logger.Info("restored batch", "batch_id", batch.ID, "files", batch.Len())
	return nil
}
