// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/AleutianAI/reconf/cmd/reconf/internal/rewrite"
	"github.com/AleutianAI/reconf/cmd/reconf/internal/snapshot"
	"github.com/AleutianAI/reconf/pkg/ux"
	"github.com/spf13/cobra"
)

// newPrompter picks the confirmation strategy for this run.
//
// --yes auto-approves. Otherwise a prompt is only possible on a real
// terminal; piped stdin gets a prompter that rejects, so destructive
// runs never proceed silently in scripts.
func newPrompter() UserPrompter {
	if flagYes {
		return NewAutoApprovePrompter()
	}
	if ux.IsInteractive() {
		return NewInteractivePrompter()
	}
	return NewNonInteractivePrompter()
}

func runApply(cmd *cobra.Command, args []string) {
	start := time.Now()
	cfg := OutputConfig{JSON: flagJSON, Quiet: flagQuiet}
	ctx := cmd.Context()

	absRoot, rewriter, changes, err := resolvePlan(flagRules, flagRoot)
	if err != nil {
		os.Exit(OutputResult(cfg, "apply", start, nil, false, err))
	}

	result := ApplyResult{RuleFile: flagRules, Root: absRoot}

	if len(changes) == 0 {
		ux.Muted("No files match the rules; nothing to do.")
		os.Exit(OutputResult(cfg, "apply", start, result, false, nil))
	}

	targets := rewrite.TargetPaths(changes)

	// Git precondition: refuse to overwrite uncommitted work.
	gate, err := checkPreflight(ctx, absRoot, targets, flagForce)
	if err != nil {
		os.Exit(OutputResult(cfg, "apply", start, nil, false, err))
	}
	for _, warning := range gate.Warnings {
		ux.Warning(warning.Message)
	}
	if !gate.Passed {
		if !cfg.JSON {
			fmt.Fprint(os.Stderr, gate.FormatErrors())
		}
		os.Exit(OutputResult(cfg, "apply", start, result, true, nil))
	}

	if flagDryRun {
		ux.Title(fmt.Sprintf("Dry run: %d file(s) would be rewritten", len(changes)))
		for _, change := range changes {
			ux.FileStatus(change.Path, ux.IconPending, "")
		}
		os.Exit(OutputResult(cfg, "apply", start, result, false, nil))
	}

	prompter := newPrompter()
	approved, err := prompter.Confirm(ctx, fmt.Sprintf("Rewrite %d file(s) under %s?", len(changes), absRoot))
	if err != nil {
		if errors.Is(err, ErrNonInteractive) {
			err = fmt.Errorf("%w (pass --yes to approve non-interactively)", err)
		}
		os.Exit(OutputResult(cfg, "apply", start, nil, false, err))
	}
	if !approved {
		ux.Muted("Aborted.")
		os.Exit(OutputResult(cfg, "apply", start, result, true, nil))
	}

	engine := snapshot.NewEngine(appLogger.Slog())

	batch, err := engine.CaptureAll(targets)
	if err != nil {
		os.Exit(OutputResult(cfg, "apply", start, nil, false,
			fmt.Errorf("snapshotting targets: %w", err)))
	}
	result.BatchID = batch.ID

	applyErr := ux.WithSpinner(fmt.Sprintf("Rewriting %d file(s)", len(changes)), func() error {
		return rewriter.Apply(changes)
	})

	if applyErr != nil {
		exitRolledBack(cfg, "apply", start, &result, engine, batch, applyErr)
	}

	result.Rewritten = targets
	if !cfg.JSON && !cfg.Quiet {
		for _, change := range changes {
			ux.FileStatus(change.Path, ux.IconSuccess, "")
		}
		ux.Summary(len(changes), 0, len(changes))
	}
	os.Exit(OutputResult(cfg, "apply", start, result, false, nil))
}

// exitRolledBack restores the snapshot batch after a failed apply and
// exits. Restore failures are surfaced per path so the operator knows
// exactly which files need manual recovery from git.
func exitRolledBack(cfg OutputConfig, cmd string, start time.Time, result *ApplyResult, engine *snapshot.Engine, batch *snapshot.Batch, applyErr error) {
	ux.Error(fmt.Sprintf("rewrite failed: %v", applyErr))

	restoreErr := engine.RestoreAll(batch)
	if restoreErr == nil {
		result.RolledBack = true
		ux.Success(fmt.Sprintf("restored all %d file(s) from snapshots", batch.Len()))
		os.Exit(OutputResult(cfg, cmd, start, result, false, applyErr))
	}

	var batchErr *snapshot.BatchRestoreError
	if errors.As(restoreErr, &batchErr) {
		result.Unrestored = batchErr.Paths()
		ux.Error(fmt.Sprintf("rollback incomplete: %d of %d file(s) could not be restored", len(batchErr.Failures), batchErr.Attempted))
		for _, failure := range batchErr.Failures {
			ux.FileStatus(failure.Path, ux.IconError, failure.Err.Error())
		}
		ux.Warning("recover the files above manually, e.g. git checkout -- <path>")
	}
	os.Exit(OutputResult(cfg, cmd, start, result, false, applyErr))
}
