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
	"os"

	"github.com/AleutianAI/reconf/pkg/logging"
	"github.com/AleutianAI/reconf/pkg/ux"
)

// appLogger is the process-wide logger, configured in PersistentPreRun
// and handed to every component as an explicit dependency.
var appLogger *logging.Logger

func main() {
	ux.InitPersonality()

	if err := rootCmd.Execute(); err != nil {
		ux.Error(err.Error())
		os.Exit(CLIExitError)
	}
}
