// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rewrite applies configuration rewrite rules across a project
// tree. It is the destructive operation that the snapshot engine guards:
// the CLI captures every target file before Apply touches the disk.
package rewrite

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule sets one configuration key to a value in every matching file.
//
// # Description
//
// Keys use dotted paths for YAML documents ("server.port") and plain
// names for dotenv files ("PORT"). Files are shell globs resolved
// relative to the project root.
//
// # Example
//
//	- key: server.port
//	  value: "9090"
//	  files:
//	    - "config/*.yaml"
type Rule struct {
	// Key is the configuration key to set.
	Key string `yaml:"key"`

	// Value is the new value, written as a YAML scalar or env value.
	Value string `yaml:"value"`

	// Files are glob patterns selecting the files to rewrite,
	// relative to the project root.
	Files []string `yaml:"files"`
}

// RuleSet is the parsed contents of a reconf rule file.
type RuleSet struct {
	// Rules are applied in order. Later rules win on conflicting keys.
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads and validates a rule file.
//
// # Inputs
//
//   - path: Path to a YAML rule file (conventionally reconf.yaml).
//
// # Outputs
//
//   - *RuleSet: The parsed, validated rules.
//   - error: Non-nil if the file is unreadable, malformed, or invalid.
func LoadRules(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rule file %s: %w", path, err)
	}

	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing rule file %s: %w", path, err)
	}

	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rule file %s: %w", path, err)
	}

	return &rs, nil
}

// Validate checks the rule set for structural problems.
//
// # Description
//
// Every rule needs a non-empty key and at least one file pattern.
// Dotted keys must not contain empty segments.
func (rs *RuleSet) Validate() error {
	if len(rs.Rules) == 0 {
		return fmt.Errorf("no rules defined")
	}

	for i, rule := range rs.Rules {
		if rule.Key == "" {
			return fmt.Errorf("rule %d: key is required", i+1)
		}
		for _, part := range strings.Split(rule.Key, ".") {
			if part == "" {
				return fmt.Errorf("rule %d: key %q has an empty segment", i+1, rule.Key)
			}
		}
		if len(rule.Files) == 0 {
			return fmt.Errorf("rule %d (%s): at least one file pattern is required", i+1, rule.Key)
		}
		for _, pattern := range rule.Files {
			if pattern == "" {
				return fmt.Errorf("rule %d (%s): empty file pattern", i+1, rule.Key)
			}
		}
	}

	return nil
}
