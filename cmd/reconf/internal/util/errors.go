// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package util

import (
	"fmt"
	"strings"
)

// CommandError reports a failed git subprocess with its stderr attached.
//
// The preflight gate shells out to git and surfaces failures to the
// user verbatim; carrying the command line, exit code, and trimmed
// stderr in one error keeps those messages actionable.
//
// # Thread Safety
//
// CommandError is immutable after creation and safe for concurrent reads.
//
// # Example
//
//	err := util.NewCommandError("git status --porcelain", 128, "not a git repository", execErr)
//	fmt.Println(err) // "git status --porcelain (exit 128): not a git repository"
type CommandError struct {
	// Command is the command line that was executed.
	Command string

	// ExitCode is the process exit code (-1 if the process never ran).
	ExitCode int

	// Stderr is the trimmed standard error output.
	Stderr string

	// Wrapped is the underlying error from os/exec (may be nil).
	Wrapped error
}

// Error formats the failure as "command (exit N): detail". Stderr
// takes priority over the wrapped error as the detail; with neither,
// only the command and exit code are shown.
func (e *CommandError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s (exit %d): %s", e.Command, e.ExitCode, e.Stderr)
	}
	if e.Wrapped != nil {
		return fmt.Sprintf("%s (exit %d): %v", e.Command, e.ExitCode, e.Wrapped)
	}
	return fmt.Sprintf("%s (exit %d)", e.Command, e.ExitCode)
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (e *CommandError) Unwrap() error {
	return e.Wrapped
}

var _ error = (*CommandError)(nil)

// NewCommandError builds a CommandError, trimming surrounding
// whitespace from stderr so git's trailing newline does not leak
// into user-facing messages.
func NewCommandError(cmd string, exitCode int, stderr string, wrapped error) *CommandError {
	return &CommandError{
		Command:  cmd,
		ExitCode: exitCode,
		Stderr:   strings.TrimSpace(stderr),
		Wrapped:  wrapped,
	}
}
