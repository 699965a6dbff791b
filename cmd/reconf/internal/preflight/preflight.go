// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package preflight gates destructive reconf runs on repository cleanliness.
//
// # Overview
//
// Before reconf rewrites files, the CLI asks this package whether the
// target paths sit inside a version-controlled tree and whether all of
// them are already committed. Destructive runs are only permitted against
// a clean, recoverable tree: the in-memory snapshot engine protects one
// invocation, but only committed state survives a process crash.
//
// The snapshot engine has no dependency on this package; it is consulted
// by the CLI alone.
package preflight

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// Status is the repository cleanliness verdict for a set of paths.
//
// # Description
//
// Answers the two questions the CLI asks before a destructive run: is
// this a git repository at all, and are all target paths committed.
type Status struct {
	// IsRepo is true when the paths sit inside a git working tree.
	IsRepo bool

	// AllCommitted is true when every target path is tracked and has no
	// staged, unstaged, or untracked changes.
	AllCommitted bool

	// DirtyPaths lists the target paths that are not fully committed,
	// in input order.
	DirtyPaths []string
}

// CheckError represents a fatal issue that blocks a destructive run.
//
// # Description
//
// Contains structured error information for programmatic handling and
// human-readable messages for display.
type CheckError struct {
	// Code is a machine-readable error identifier.
	Code string

	// Message is a human-readable description of the error.
	Message string

	// Details contains additional information, such as affected files
	// or remediation steps.
	Details []string
}

// Error implements the error interface.
func (e *CheckError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// CheckWarning represents a non-fatal issue.
type CheckWarning struct {
	// Code is a machine-readable warning identifier.
	Code string

	// Message is a human-readable description of the warning.
	Message string
}

// Result contains the outcomes of the precondition check.
//
// # Description
//
// Aggregates the cleanliness verdict with any errors and warnings. If
// Passed is false, at least one error is present and the destructive
// operation should not proceed.
type Result struct {
	// Passed is true if the run may proceed.
	Passed bool

	// Status is the underlying cleanliness verdict.
	Status Status

	// Errors are fatal issues that block execution.
	Errors []CheckError

	// Warnings are non-fatal issues the user should be aware of.
	Warnings []CheckWarning
}

// FirstError returns the first error, or nil if no errors.
func (r *Result) FirstError() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return &r.Errors[0]
}

// FormatErrors returns a human-readable multi-line error summary.
func (r *Result) FormatErrors() string {
	if len(r.Errors) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Precondition check failed:\n\n")

	for i, err := range r.Errors {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", err.Code, err.Message))
		for _, detail := range err.Details {
			sb.WriteString(fmt.Sprintf("    %s\n", detail))
		}
	}

	return sb.String()
}

// Config configures guard behavior.
type Config struct {
	// Force converts the dirty-tree failure into a warning (dangerous).
	// Use only when you accept that uncommitted changes to the target
	// files cannot be recovered after a crash.
	Force bool
}

// Guard performs the repository precondition check.
//
// # Description
//
// Validates that the target paths are committed before reconf is allowed
// to rewrite them. This prevents data loss from rewrites overwriting the
// user's uncommitted work.
//
// # Thread Safety
//
// All methods are safe for concurrent use.
type Guard struct {
	git    GitClient
	config Config
	logger *slog.Logger
}

// NewGuard creates a new precondition guard.
//
// # Inputs
//
//   - git: Git client for repository operations. Must not be nil.
//   - config: Configuration options.
//   - logger: Logger for diagnostic output (nil uses slog.Default()).
//
// # Outputs
//
//   - *Guard: Ready-to-use guard.
//
// # Panics
//
//   - Panics if git is nil.
func NewGuard(git GitClient, config Config, logger *slog.Logger) *Guard {
	if git == nil {
		panic("preflight: git client must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Guard{
		git:    git,
		config: config,
		logger: logger.With("component", "preflight"),
	}
}

// CheckPaths reports the cleanliness verdict for the given paths.
//
// # Description
//
// Determines whether the paths sit inside a git repository and whether
// each one is fully committed. A path is dirty when git reports staged,
// unstaged, or untracked changes for it.
//
// # Inputs
//
//   - ctx: Context for timeout and cancellation.
//   - paths: Absolute paths the caller intends to rewrite.
//
// # Outputs
//
//   - *Status: The verdict. When IsRepo is false, AllCommitted is false
//     and DirtyPaths is empty.
//   - error: Non-nil only if the inspection itself failed.
func (g *Guard) CheckPaths(ctx context.Context, paths []string) (*Status, error) {
	if !g.git.IsGitRepository(ctx) {
		return &Status{IsRepo: false}, nil
	}

	root, err := g.git.RepoRoot(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving repository root: %w", err)
	}

	gitStatus, err := g.git.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting git status: %w", err)
	}

	dirty := make(map[string]struct{})
	for _, group := range [][]string{
		gitStatus.StagedFiles,
		gitStatus.ModifiedFiles,
		gitStatus.UntrackedFiles,
	} {
		for _, rel := range group {
			dirty[filepath.Join(root, rel)] = struct{}{}
		}
	}

	status := &Status{IsRepo: true}
	for _, path := range paths {
		if _, ok := dirty[filepath.Clean(path)]; ok {
			status.DirtyPaths = append(status.DirtyPaths, path)
		}
	}
	status.AllCommitted = len(status.DirtyPaths) == 0

	g.logger.Debug("checked paths",
		"paths", len(paths),
		"dirty", len(status.DirtyPaths),
		"all_committed", status.AllCommitted)

	return status, nil
}

// Gate runs the precondition check and decides whether to proceed.
//
// # Description
//
// Wraps CheckPaths in a pass/fail decision with coded errors and
// remediation details. With Force set, dirty paths produce a warning
// instead of blocking the run. A tree outside version control always
// blocks: there is no recoverable state to fall back to.
//
// # Inputs
//
//   - ctx: Context for timeout and cancellation.
//   - paths: Absolute paths the caller intends to rewrite.
//
// # Outputs
//
//   - *Result: Check outcomes including errors and warnings.
//   - error: Non-nil only if the check itself failed (not if it didn't pass).
func (g *Guard) Gate(ctx context.Context, paths []string) (*Result, error) {
	status, err := g.CheckPaths(ctx, paths)
	if err != nil {
		return nil, err
	}

	result := &Result{Passed: true, Status: *status}

	if !status.IsRepo {
		result.Passed = false
		result.Errors = append(result.Errors, CheckError{
			Code:    "NOT_GIT_REPO",
			Message: "Target paths are not inside a git repository.",
			Details: []string{
				"reconf refuses to rewrite files it cannot recover.",
				"Initialize a repository first: git init && git add -A && git commit",
			},
		})
		return result, nil
	}

	if len(status.DirtyPaths) > 0 {
		if g.config.Force {
			result.Warnings = append(result.Warnings, CheckWarning{
				Code: "DIRTY_FORCED",
				Message: fmt.Sprintf("Proceeding with %d uncommitted target file(s) (--force).",
					len(status.DirtyPaths)),
			})
			g.logger.Warn("proceeding with dirty target files",
				"dirty_count", len(status.DirtyPaths),
				"force", true)
		} else {
			result.Passed = false

			details := make([]string, 0, len(status.DirtyPaths)+4)
			details = append(details, "Uncommitted target files:")
			for _, p := range status.DirtyPaths {
				details = append(details, fmt.Sprintf("  %s", p))
			}
			details = append(details, "")
			details = append(details, "Options:")
			details = append(details, "  1. Commit your changes: git add -A && git commit")
			details = append(details, "  2. Force continue:      pass --force")

			result.Errors = append(result.Errors, CheckError{
				Code: "DIRTY_PATHS",
				Message: fmt.Sprintf("%d target file(s) have uncommitted changes.",
					len(status.DirtyPaths)),
				Details: details,
			})
		}
	}

	return result, nil
}
