// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package snapshot

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// blockPath replaces a regular file with a directory so that restoring
// it reliably fails, regardless of the uid the tests run under.
func blockPath(t *testing.T, path string) {
	t.Helper()
	if err := os.Remove(path); err != nil {
		t.Fatalf("Failed to remove %s: %v", path, err)
	}
	if err := os.Mkdir(path, 0755); err != nil {
		t.Fatalf("Failed to block %s: %v", path, err)
	}
}

// =============================================================================
// CaptureAll Tests
// =============================================================================

func TestEngine_CaptureAll(t *testing.T) {
	tmpDir := t.TempDir()
	a := writeTestFile(t, tmpDir, "a.txt", "1")
	b := writeTestFile(t, tmpDir, "b.txt", "2")
	c := writeTestFile(t, tmpDir, "c.txt", "3")

	eng := NewEngine(nil)

	batch, err := eng.CaptureAll([]string{a, b, c})
	if err != nil {
		t.Fatalf("CaptureAll failed: %v", err)
	}

	if batch.Len() != 3 {
		t.Fatalf("batch.Len() = %d, want 3", batch.Len())
	}
	if batch.ID == "" {
		t.Error("batch.ID should be set")
	}

	// Input order is preserved.
	wantPaths := []string{a, b, c}
	wantContents := []string{"1", "2", "3"}
	for i, snap := range batch.Snapshots {
		if snap.Path != wantPaths[i] {
			t.Errorf("snapshot[%d].Path = %q, want %q", i, snap.Path, wantPaths[i])
		}
		if string(snap.Content) != wantContents[i] {
			t.Errorf("snapshot[%d].Content = %q, want %q", i, snap.Content, wantContents[i])
		}
	}
}

func TestEngine_CaptureAll_DuplicatePaths(t *testing.T) {
	tmpDir := t.TempDir()
	a := writeTestFile(t, tmpDir, "a.txt", "same")

	eng := NewEngine(nil)

	// Duplicates are captured independently, in order; no dedup.
	batch, err := eng.CaptureAll([]string{a, a})
	if err != nil {
		t.Fatalf("CaptureAll failed: %v", err)
	}
	if batch.Len() != 2 {
		t.Fatalf("batch.Len() = %d, want 2", batch.Len())
	}
	for i, snap := range batch.Snapshots {
		if snap.Path != a || string(snap.Content) != "same" {
			t.Errorf("snapshot[%d] = {%q %q}, unexpected", i, snap.Path, snap.Content)
		}
	}
}

func TestEngine_CaptureAll_AbortsOnFirstFailure(t *testing.T) {
	tmpDir := t.TempDir()
	a := writeTestFile(t, tmpDir, "a.txt", "1")
	missing := filepath.Join(tmpDir, "missing.txt")
	c := writeTestFile(t, tmpDir, "c.txt", "3")

	eng := NewEngine(nil)

	batch, err := eng.CaptureAll([]string{a, missing, c})
	if err == nil {
		t.Fatal("CaptureAll should fail when a path is missing")
	}
	if batch != nil {
		t.Error("CaptureAll must never return a partial batch")
	}

	var batchErr *BatchCaptureError
	if !errors.As(err, &batchErr) {
		t.Fatalf("error = %T, want *BatchCaptureError", err)
	}
	if batchErr.FailedPath != missing {
		t.Errorf("FailedPath = %q, want %q", batchErr.FailedPath, missing)
	}
	// Exactly the first snapshot existed at the moment of failure, and a
	// rollback restore was issued for it.
	if batchErr.RolledBack != 1 {
		t.Errorf("RolledBack = %d, want 1", batchErr.RolledBack)
	}

	// The wrapped CaptureError is reachable via errors.As.
	var capErr *CaptureError
	if !errors.As(err, &capErr) {
		t.Fatal("BatchCaptureError should wrap a *CaptureError")
	}
	if capErr.Path != missing {
		t.Errorf("wrapped CaptureError.Path = %q, want %q", capErr.Path, missing)
	}

	// Capture never mutates: the earlier file is untouched on disk.
	content, _ := os.ReadFile(a)
	if string(content) != "1" {
		t.Errorf("a.txt = %q after aborted capture, want %q", content, "1")
	}
}

func TestEngine_CaptureAll_FirstPathFails(t *testing.T) {
	tmpDir := t.TempDir()
	missing := filepath.Join(tmpDir, "missing.txt")

	eng := NewEngine(nil)

	_, err := eng.CaptureAll([]string{missing})
	var batchErr *BatchCaptureError
	if !errors.As(err, &batchErr) {
		t.Fatalf("error = %T, want *BatchCaptureError", err)
	}
	if batchErr.RolledBack != 0 {
		t.Errorf("RolledBack = %d, want 0 when the first capture fails", batchErr.RolledBack)
	}
}

// =============================================================================
// RestoreAll Tests
// =============================================================================

func TestEngine_RestoreAll_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	a := writeTestFile(t, tmpDir, "a.txt", "1")
	b := writeTestFile(t, tmpDir, "b.txt", "2")

	eng := NewEngine(nil)

	batch, err := eng.CaptureAll([]string{a, b})
	if err != nil {
		t.Fatalf("CaptureAll failed: %v", err)
	}

	// Destructive edits.
	for _, path := range []string{a, b} {
		if err := os.WriteFile(path, []byte("X"), 0644); err != nil {
			t.Fatalf("Failed to overwrite %s: %v", path, err)
		}
	}

	if err := eng.RestoreAll(batch); err != nil {
		t.Fatalf("RestoreAll failed: %v", err)
	}

	contentA, _ := os.ReadFile(a)
	contentB, _ := os.ReadFile(b)
	if string(contentA) != "1" {
		t.Errorf("a.txt = %q, want %q", contentA, "1")
	}
	if string(contentB) != "2" {
		t.Errorf("b.txt = %q, want %q", contentB, "2")
	}
}

func TestEngine_RestoreAll_AttemptsEverySnapshot(t *testing.T) {
	tmpDir := t.TempDir()
	a := writeTestFile(t, tmpDir, "a.txt", "1")
	b := writeTestFile(t, tmpDir, "b.txt", "2")
	c := writeTestFile(t, tmpDir, "c.txt", "3")

	eng := NewEngine(nil)

	batch, err := eng.CaptureAll([]string{a, b, c})
	if err != nil {
		t.Fatalf("CaptureAll failed: %v", err)
	}

	// Destructive edits on all three, then make the middle file
	// unrestorable.
	for _, path := range []string{a, b, c} {
		if err := os.WriteFile(path, []byte("edited"), 0644); err != nil {
			t.Fatalf("Failed to overwrite %s: %v", path, err)
		}
	}
	blockPath(t, b)

	err = eng.RestoreAll(batch)
	if err == nil {
		t.Fatal("RestoreAll should fail when one restore fails")
	}

	var batchErr *BatchRestoreError
	if !errors.As(err, &batchErr) {
		t.Fatalf("error = %T, want *BatchRestoreError", err)
	}

	// Every snapshot was attempted.
	if batchErr.Attempted != 3 {
		t.Errorf("Attempted = %d, want 3", batchErr.Attempted)
	}
	// Only the blocked file is named.
	if len(batchErr.Failures) != 1 {
		t.Fatalf("Failures = %d, want 1", len(batchErr.Failures))
	}
	if got := batchErr.Paths(); len(got) != 1 || got[0] != b {
		t.Errorf("Paths() = %v, want [%s]", got, b)
	}

	// Files 1 and 3 were restored despite the failure in the middle.
	contentA, _ := os.ReadFile(a)
	contentC, _ := os.ReadFile(c)
	if string(contentA) != "1" {
		t.Errorf("a.txt = %q, want %q", contentA, "1")
	}
	if string(contentC) != "3" {
		t.Errorf("c.txt = %q, want %q", contentC, "3")
	}

	// The failed path keeps its current state for operator inspection.
	info, statErr := os.Stat(b)
	if statErr != nil || !info.IsDir() {
		t.Error("failed path should be left in its mutated state")
	}
}

func TestEngine_RestoreAll_EmptyBatch(t *testing.T) {
	eng := NewEngine(nil)

	if err := eng.RestoreAll(&Batch{ID: "empty"}); err != nil {
		t.Errorf("RestoreAll of empty batch should succeed, got %v", err)
	}
}

// =============================================================================
// Error Formatting Tests
// =============================================================================

func TestBatchRestoreError_NamesEveryPath(t *testing.T) {
	err := &BatchRestoreError{
		Attempted: 3,
		Failures: []*RestoreError{
			{Path: "/tmp/a.txt", Err: os.ErrPermission},
			{Path: "/tmp/b.txt", Err: os.ErrNotExist},
		},
	}

	msg := err.Error()
	for _, path := range []string{"/tmp/a.txt", "/tmp/b.txt"} {
		if !strings.Contains(msg, path) {
			t.Errorf("error message should name %s: %q", path, msg)
		}
	}

	// errors.Is reaches the individual causes through multi-unwrap.
	if !errors.Is(err, os.ErrPermission) {
		t.Error("errors.Is should find os.ErrPermission")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("errors.Is should find os.ErrNotExist")
	}
}
