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
	"fmt"

	"github.com/AleutianAI/reconf/pkg/logging"
	"github.com/AleutianAI/reconf/pkg/ux"
	"github.com/spf13/cobra"
)

// Version information, set at build time via -ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

var (
	rootCmd = &cobra.Command{
		Use:   "reconf",
		Short: "Rewrite configuration values across a project, safely",
		Long: `reconf applies declarative rewrite rules to configuration files
(YAML and dotenv) across a project tree.

Every apply run snapshots the target files in memory first. If any
rewrite fails, the already-modified files are restored from their
snapshots so the tree is never left half-edited. A git precondition
check refuses to touch files with uncommitted changes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("reconf %s (commit %s, built %s)\n", version, commit, buildDate)
		},
	}

	// Persistent flags shared by all commands.
	flagPersonality string
	flagJSON        bool
	flagQuiet       bool
	flagVerbose     bool

	// Flags shared by plan and apply.
	flagRules string
	flagRoot  string

	// Apply-only flags.
	flagForce  bool
	flagYes    bool
	flagDryRun bool

	planCmd = &cobra.Command{
		Use:   "plan",
		Short: "Show which files the rules would rewrite, without writing",
		Long: `Resolves the rule file against the project tree and prints every
file that would be rewritten, together with the keys each file would
receive. Also reports the git precondition state so a following apply
run holds no surprises.`,
		Run: runPlan,
	}

	applyCmd = &cobra.Command{
		Use:   "apply",
		Short: "Apply the rewrite rules to the project tree",
		Long: `Rewrites every file the rules match. Before writing, the targets
are checked against git (uncommitted changes block the run unless
--force) and captured into an in-memory snapshot batch. If any rewrite
fails, every already-written file is restored from its snapshot.`,
		Run: runApply,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagPersonality, "personality", "", "output style: full, standard, minimal, machine")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output results as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress output, exit code only")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")

	for _, cmd := range []*cobra.Command{planCmd, applyCmd} {
		cmd.Flags().StringVarP(&flagRules, "rules", "r", "reconf.yaml", "path to the rule file")
		cmd.Flags().StringVar(&flagRoot, "root", ".", "project root the rules are resolved against")
	}

	applyCmd.Flags().BoolVar(&flagForce, "force", false, "proceed despite uncommitted changes to target files")
	applyCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "skip the confirmation prompt")
	applyCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "run the full pipeline without writing files")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if flagPersonality != "" {
			ux.SetPersonalityLevel(ux.ParsePersonalityLevel(flagPersonality))
		}
		if flagJSON || flagQuiet {
			ux.SetPersonalityLevel(ux.PersonalityMachine)
		}

		level := logging.LevelWarn
		if flagVerbose {
			level = logging.LevelDebug
		}
		appLogger = logging.New(logging.Config{
			Level:   level,
			Service: "cli",
			JSON:    flagJSON,
			Quiet:   flagQuiet,
		})
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(applyCmd)
}
