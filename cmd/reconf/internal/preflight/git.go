// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package preflight

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/AleutianAI/reconf/cmd/reconf/internal/util"
)

// GitClient abstracts the git operations the guard needs.
//
// # Description
//
// Kept narrow so tests can substitute a stub without a real repository.
type GitClient interface {
	// IsGitRepository reports whether the path is inside a git repository.
	IsGitRepository(ctx context.Context) bool

	// RepoRoot returns the absolute path of the working tree root.
	RepoRoot(ctx context.Context) (string, error)

	// Status returns the parsed working tree status.
	Status(ctx context.Context) (*GitStatus, error)
}

// GitStatus is the parsed output of `git status --porcelain`.
type GitStatus struct {
	// IsClean is true when the working tree has no changes at all.
	IsClean bool

	// StagedFiles are paths with changes staged in the index,
	// relative to the repository root.
	StagedFiles []string

	// ModifiedFiles are paths with unstaged worktree changes,
	// relative to the repository root.
	ModifiedFiles []string

	// UntrackedFiles are paths git does not track,
	// relative to the repository root.
	UntrackedFiles []string
}

// DefaultGitClient implements GitClient using the git command line.
//
// # Description
//
// Executes git commands with configurable timeout and working directory.
// All operations are performed in the configured repository path.
//
// # Thread Safety
//
// All methods are safe for concurrent use.
type DefaultGitClient struct {
	repoPath string
	timeout  time.Duration
}

// NewGitClient creates a new git client for the specified directory.
//
// # Description
//
// Creates a client that executes git commands in the given directory.
//
// # Inputs
//
//   - repoPath: Absolute path to the directory to inspect.
//   - timeout: Maximum duration for each git operation. Non-positive
//     values default to 30 seconds.
//
// # Outputs
//
//   - *DefaultGitClient: Ready-to-use git client.
//   - error: Non-nil if repoPath is not absolute.
func NewGitClient(repoPath string, timeout time.Duration) (*DefaultGitClient, error) {
	if !filepath.IsAbs(repoPath) {
		return nil, fmt.Errorf("repoPath must be absolute: %s", repoPath)
	}

	return &DefaultGitClient{
		repoPath: repoPath,
		timeout:  util.EnforceDefaultTimeout(timeout, util.DefaultGitTimeout),
	}, nil
}

// run executes a git command and returns stdout.
func (g *DefaultGitClient) run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = g.repoPath

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", fmt.Errorf("git %s: timeout after %v", args[0], g.timeout)
		}
		exitCode := -1
		if cmd.ProcessState != nil {
			exitCode = cmd.ProcessState.ExitCode()
		}
		return "", util.NewCommandError("git "+args[0], exitCode, stderr.String(), err)
	}

	return strings.TrimSpace(stdout.String()), nil
}

// runSilent executes a git command and returns only success/failure.
func (g *DefaultGitClient) runSilent(ctx context.Context, args ...string) error {
	_, err := g.run(ctx, args...)
	return err
}

// IsGitRepository checks if the path is inside a git repository.
//
// # Description
//
// Uses `git rev-parse --git-dir` to determine if inside a git repository.
func (g *DefaultGitClient) IsGitRepository(ctx context.Context) bool {
	err := g.runSilent(ctx, "rev-parse", "--git-dir")
	return err == nil
}

// RepoRoot returns the absolute path of the working tree root.
//
// # Description
//
// Uses `git rev-parse --show-toplevel`. Needed to translate the
// root-relative paths in porcelain output back to absolute paths.
//
// # Outputs
//
//   - string: Absolute working tree root.
//   - error: Non-nil if not a git repository.
func (g *DefaultGitClient) RepoRoot(ctx context.Context) (string, error) {
	root, err := g.run(ctx, "rev-parse", "--show-toplevel")
	if err != nil {
		return "", fmt.Errorf("getting repository root: %w", err)
	}
	return root, nil
}

// Status returns the current git status.
//
// # Description
//
// Parses `git status --porcelain` into a structured GitStatus.
//
// # Inputs
//
//   - ctx: Context for timeout and cancellation.
//
// # Outputs
//
//   - *GitStatus: Current repository status.
//   - error: Non-nil if status fails.
func (g *DefaultGitClient) Status(ctx context.Context) (*GitStatus, error) {
	output, err := g.run(ctx, "status", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("getting status: %w", err)
	}

	return parsePorcelain(output), nil
}

// parsePorcelain parses `git status --porcelain` output.
//
// Format: "XY path" where X is the index status and Y the worktree status.
func parsePorcelain(output string) *GitStatus {
	status := &GitStatus{IsClean: output == ""}
	if output == "" {
		return status
	}

	for _, line := range strings.Split(output, "\n") {
		if len(line) < 4 {
			continue
		}

		x := line[0]
		y := line[1]
		file := strings.TrimSpace(line[3:])

		// Renames are reported as "old -> new"; the new path is what
		// exists in the working tree.
		if idx := strings.Index(file, " -> "); idx >= 0 {
			file = file[idx+4:]
		}

		// Staged changes (index)
		if x != ' ' && x != '?' {
			status.StagedFiles = append(status.StagedFiles, file)
		}

		// Unstaged changes (worktree)
		if y != ' ' && y != '?' {
			status.ModifiedFiles = append(status.ModifiedFiles, file)
		}

		// Untracked files
		if x == '?' && y == '?' {
			status.UntrackedFiles = append(status.UntrackedFiles, file)
		}
	}

	return status
}

// Compile-time interface check
var _ GitClient = (*DefaultGitClient)(nil)
