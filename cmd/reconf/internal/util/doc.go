// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package util provides foundational utilities for the reconf CLI.
//
// This package contains low-level utilities that have no dependencies on
// other internal packages. All utilities depend only on the Go standard
// library, making this a leaf package in the dependency graph.
//
// # Overview
//
//   - Timeout Management: Enforce minimum and default timeouts to prevent
//     hangs when shelling out to git
//   - Command Errors: Rich error wrapping for command execution failures
//
// # Key Types
//
// Timeout utilities:
//
//	timeout := util.EnforceDefaultTimeout(requested, util.DefaultGitTimeout)
//
// Command errors:
//
//	err := util.NewCommandError("git status", 128, stderr, originalErr)
//	if cmdErr, ok := err.(*util.CommandError); ok {
//	    fmt.Println(cmdErr.Stderr)
//	}
//
// # Thread Safety
//
// All types in this package are immutable after creation and safe for
// concurrent use from multiple goroutines.
package util
