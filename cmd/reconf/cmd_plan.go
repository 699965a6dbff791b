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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AleutianAI/reconf/cmd/reconf/internal/preflight"
	"github.com/AleutianAI/reconf/cmd/reconf/internal/rewrite"
	"github.com/AleutianAI/reconf/pkg/ux"
	"github.com/spf13/cobra"
)

// resolvePlan loads the rule file and resolves it against the project
// root. Shared by plan and apply.
func resolvePlan(rulePath, root string) (string, *rewrite.Rewriter, []rewrite.Change, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", nil, nil, fmt.Errorf("resolving root: %w", err)
	}

	rules, err := rewrite.LoadRules(rulePath)
	if err != nil {
		return "", nil, nil, err
	}

	rewriter, err := rewrite.NewRewriter(absRoot, rules, appLogger.Slog())
	if err != nil {
		return "", nil, nil, err
	}

	changes, err := rewriter.Plan()
	if err != nil {
		return "", nil, nil, err
	}

	return absRoot, rewriter, changes, nil
}

// checkPreflight runs the git precondition check against the target
// paths. A nil status means the root is not inside a git repository
// query path at all (the guard reports that in the status itself).
func checkPreflight(ctx context.Context, root string, paths []string, force bool) (*preflight.Result, error) {
	git, err := preflight.NewGitClient(root, 0)
	if err != nil {
		return nil, err
	}

	guard := preflight.NewGuard(git, preflight.Config{Force: force}, appLogger.Slog())
	return guard.Gate(ctx, paths)
}

func runPlan(cmd *cobra.Command, args []string) {
	start := time.Now()
	cfg := OutputConfig{JSON: flagJSON, Quiet: flagQuiet}

	absRoot, _, changes, err := resolvePlan(flagRules, flagRoot)
	if err != nil {
		os.Exit(OutputResult(cfg, "plan", start, nil, false, err))
	}

	result := PlanResult{
		RuleFile: flagRules,
		Root:     absRoot,
		Files:    make([]PlannedFile, 0, len(changes)),
	}
	for _, change := range changes {
		result.Files = append(result.Files, PlannedFile{
			Path: change.Path,
			Keys: change.Keys(),
		})
	}

	// Plan never blocks on preflight, but it reports the verdict so the
	// user knows whether apply would proceed.
	gate, err := checkPreflight(cmd.Context(), absRoot, rewrite.TargetPaths(changes), false)
	if err == nil {
		result.Preflight = &PreflightState{
			IsRepo:       gate.Status.IsRepo,
			AllCommitted: gate.Status.AllCommitted,
			DirtyPaths:   gate.Status.DirtyPaths,
		}
	}

	if !cfg.JSON && !cfg.Quiet {
		printPlan(&result, gate)
	}

	os.Exit(OutputResult(cfg, "plan", start, result, false, nil))
}

// printPlan renders the human-readable plan output.
func printPlan(result *PlanResult, gate *preflight.Result) {
	ux.Title(fmt.Sprintf("Plan: %d file(s) to rewrite", len(result.Files)))
	ux.Info(fmt.Sprintf("rules: %s", result.RuleFile))

	if len(result.Files) == 0 {
		ux.Muted("No files match the rules.")
		return
	}

	for _, file := range result.Files {
		ux.FileStatus(file.Path, ux.IconPending, fmt.Sprintf("%d key(s)", len(file.Keys)))
		for _, key := range file.Keys {
			ux.Muted("    " + key)
		}
	}

	if gate == nil {
		return
	}
	switch {
	case !gate.Status.IsRepo:
		ux.Warning("project is not inside a git repository; apply will refuse to run")
	case !gate.Status.AllCommitted:
		ux.Warning(fmt.Sprintf("%d target file(s) have uncommitted changes; apply will refuse without --force", len(gate.Status.DirtyPaths)))
	default:
		ux.Success("all target files are committed")
	}
}
