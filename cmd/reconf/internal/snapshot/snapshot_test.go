// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package snapshot

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}
	return path
}

// =============================================================================
// Capture Tests
// =============================================================================

func TestEngine_Capture(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeTestFile(t, tmpDir, "config.yaml", "name: reconf\n")

	eng := NewEngine(nil)

	snap, err := eng.Capture(path)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if snap.Path != path {
		t.Errorf("snap.Path = %q, want %q", snap.Path, path)
	}
	if string(snap.Content) != "name: reconf\n" {
		t.Errorf("snap.Content = %q, want %q", snap.Content, "name: reconf\n")
	}
	if snap.CapturedAt.IsZero() {
		t.Error("snap.CapturedAt should be set")
	}

	// Capture must not modify the file.
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to re-read file: %v", err)
	}
	if string(content) != "name: reconf\n" {
		t.Errorf("file content changed by capture: %q", content)
	}
}

func TestEngine_Capture_MissingFile(t *testing.T) {
	eng := NewEngine(nil)

	_, err := eng.Capture("/nonexistent/path/that/does/not/exist")
	if err == nil {
		t.Fatal("Capture should fail for missing file")
	}

	var capErr *CaptureError
	if !errors.As(err, &capErr) {
		t.Fatalf("error = %T, want *CaptureError", err)
	}
	if capErr.Path != "/nonexistent/path/that/does/not/exist" {
		t.Errorf("capErr.Path = %q, unexpected", capErr.Path)
	}
	if !strings.Contains(err.Error(), capErr.Path) {
		t.Errorf("error message should include the offending path: %q", err.Error())
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error should unwrap to os.ErrNotExist, got %v", err)
	}
}

func TestEngine_Capture_RelativePath(t *testing.T) {
	eng := NewEngine(nil)

	_, err := eng.Capture("relative/config.yaml")
	if err == nil {
		t.Fatal("Capture should reject relative paths")
	}

	var capErr *CaptureError
	if !errors.As(err, &capErr) {
		t.Fatalf("error = %T, want *CaptureError", err)
	}
}

func TestEngine_Capture_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeTestFile(t, tmpDir, "app.env", "PORT=8080\n")

	eng := NewEngine(nil)

	first, err := eng.Capture(path)
	if err != nil {
		t.Fatalf("first Capture failed: %v", err)
	}
	second, err := eng.Capture(path)
	if err != nil {
		t.Fatalf("second Capture failed: %v", err)
	}

	// Unmodified file: identical content, timestamps may differ.
	if !bytes.Equal(first.Content, second.Content) {
		t.Errorf("captures of unchanged file differ: %q vs %q",
			first.Content, second.Content)
	}
}

// =============================================================================
// Restore Tests
// =============================================================================

func TestEngine_Restore_RoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeTestFile(t, tmpDir, "config.yaml", "replicas: 1\n")

	eng := NewEngine(nil)

	snap, err := eng.Capture(path)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	// Destructive edit.
	if err := os.WriteFile(path, []byte("replicas: 5\n"), 0644); err != nil {
		t.Fatalf("Failed to overwrite file: %v", err)
	}

	if err := eng.Restore(snap); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read restored file: %v", err)
	}
	if !bytes.Equal(content, snap.Content) {
		t.Errorf("restored content = %q, want %q", content, snap.Content)
	}
}

func TestEngine_Restore_Truncates(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeTestFile(t, tmpDir, "short.txt", "ab")

	eng := NewEngine(nil)

	snap, err := eng.Capture(path)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	// Replace with much longer content; restore must not leave a tail.
	if err := os.WriteFile(path, []byte(strings.Repeat("x", 4096)), 0644); err != nil {
		t.Fatalf("Failed to overwrite file: %v", err)
	}

	if err := eng.Restore(snap); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	content, _ := os.ReadFile(path)
	if string(content) != "ab" {
		t.Errorf("restore should truncate, got %d bytes", len(content))
	}
}

func TestEngine_Restore_RecreatesRemovedFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeTestFile(t, tmpDir, "doomed.txt", "keep me")

	eng := NewEngine(nil)

	snap, err := eng.Capture(path)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	if err := os.Remove(path); err != nil {
		t.Fatalf("Failed to remove file: %v", err)
	}

	if err := eng.Restore(snap); err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read restored file: %v", err)
	}
	if string(content) != "keep me" {
		t.Errorf("restored content = %q, want %q", content, "keep me")
	}
}

func TestEngine_Restore_FailureKeepsSnapshotValid(t *testing.T) {
	tmpDir := t.TempDir()
	path := writeTestFile(t, tmpDir, "victim.txt", "original")

	eng := NewEngine(nil)

	snap, err := eng.Capture(path)
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}

	// Turn the path into a directory so the write reliably fails.
	if err := os.Remove(path); err != nil {
		t.Fatalf("Failed to remove file: %v", err)
	}
	if err := os.Mkdir(path, 0755); err != nil {
		t.Fatalf("Failed to create blocking directory: %v", err)
	}

	err = eng.Restore(snap)
	if err == nil {
		t.Fatal("Restore should fail when the path is a directory")
	}

	var restErr *RestoreError
	if !errors.As(err, &restErr) {
		t.Fatalf("error = %T, want *RestoreError", err)
	}
	if restErr.Path != path {
		t.Errorf("restErr.Path = %q, want %q", restErr.Path, path)
	}

	// The snapshot is not consumed by a failed restore: retry succeeds
	// once the obstruction is gone.
	if err := os.Remove(path); err != nil {
		t.Fatalf("Failed to remove blocking directory: %v", err)
	}
	if err := eng.Restore(snap); err != nil {
		t.Fatalf("retry Restore failed: %v", err)
	}
	content, _ := os.ReadFile(path)
	if string(content) != "original" {
		t.Errorf("retried restore content = %q, want %q", content, "original")
	}
}
