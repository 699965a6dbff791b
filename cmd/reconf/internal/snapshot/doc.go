// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package snapshot provides in-memory file backup and restore for
// destructive multi-file operations.
//
// # Overview
//
// Before reconf rewrites configuration across a project, it captures the
// verbatim contents of every target file. If the rewrite fails partway
// through, the captured contents are written back so the working tree is
// never left in a worse state than before the operation began.
//
// # Components
//
//   - Engine: single-file Capture and Restore primitives
//   - Batch: an ordered group of snapshots captured together
//   - CaptureAll: all-or-nothing batch capture with rollback on failure
//   - RestoreAll: best-effort batch restore with full error aggregation
//
// # Failure Asymmetry
//
// CaptureAll stops at the first failure and rolls back, because at that
// point nothing on disk has been touched and the whole operation can be
// retried. RestoreAll never stops early: a restore failure means the tree
// is already mutated, so restoring as many files as possible minimizes
// damage. This asymmetry is intentional; do not unify the two policies.
//
// # Lifecycle
//
// Snapshots live only in process memory for the duration of one CLI
// invocation. They are owned by the caller and discarded by letting them
// go out of scope. There is no on-disk persistence and no explicit
// destroy operation.
//
// # Example
//
//	eng := snapshot.NewEngine(logger)
//	batch, err := eng.CaptureAll(paths)
//	if err != nil {
//	    return err // nothing was changed; safe to retry
//	}
//	if err := rewrite(paths); err != nil {
//	    if restoreErr := eng.RestoreAll(batch); restoreErr != nil {
//	        // surface every failed path to the operator
//	        return errors.Join(err, restoreErr)
//	    }
//	    return err // tree fully reverted
//	}
//
// # Thread Safety
//
// Engine is stateless between calls and safe for concurrent use, but the
// batch operations are strictly sequential: ordering determines which
// snapshots exist at the moment a rollback is triggered.
package snapshot
