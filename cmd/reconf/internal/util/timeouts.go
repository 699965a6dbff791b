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

import "time"

// DefaultGitTimeout bounds every git subprocess. Status checks on
// large repositories can take seconds; anything past this indicates
// a hung command.
const DefaultGitTimeout = 30 * time.Second

// EnforceDefaultTimeout substitutes defaultVal when the requested
// timeout is zero or negative, so a zero-value config never produces
// an unbounded git call.
func EnforceDefaultTimeout(requested, defaultVal time.Duration) time.Duration {
	if requested <= 0 {
		return defaultVal
	}
	return requested
}
