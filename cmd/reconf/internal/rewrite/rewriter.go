// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rewrite

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Change is every edit planned for one file.
type Change struct {
	// Path is the absolute path of the file to rewrite.
	Path string

	// Rules are the rules that apply to this file, in rule order.
	Rules []Rule
}

// Keys returns the keys this change sets, in rule order.
func (c *Change) Keys() []string {
	keys := make([]string, len(c.Rules))
	for i, rule := range c.Rules {
		keys[i] = rule.Key
	}
	return keys
}

// Rewriter resolves rules against a project tree and applies them.
//
// # Description
//
// Plan resolves every rule's globs to concrete files without touching
// the disk; Apply performs the writes. The caller is expected to
// snapshot Plan's target paths before calling Apply.
//
// # Thread Safety
//
// Rewriter is immutable after construction and safe for concurrent use.
type Rewriter struct {
	root   string
	rules  *RuleSet
	logger *slog.Logger
}

// NewRewriter creates a rewriter for the given project root.
//
// # Inputs
//
//   - root: Absolute path of the project tree.
//   - rules: A validated rule set.
//   - logger: Diagnostic logger (nil uses slog.Default()).
//
// # Outputs
//
//   - *Rewriter: Ready-to-use rewriter.
//   - error: Non-nil if root is not absolute or rules is nil.
func NewRewriter(root string, rules *RuleSet, logger *slog.Logger) (*Rewriter, error) {
	if !filepath.IsAbs(root) {
		return nil, fmt.Errorf("root must be absolute: %s", root)
	}
	if rules == nil {
		return nil, fmt.Errorf("rules are required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Rewriter{
		root:   root,
		rules:  rules,
		logger: logger.With("component", "rewrite.Rewriter"),
	}, nil
}

// Plan resolves every rule to the concrete files it will rewrite.
//
// # Description
//
// Globs are resolved relative to the project root; only existing
// regular files match. Rules that match no file are logged as warnings
// and skipped. The returned changes are sorted by path, each carrying
// its applicable rules in rule order.
//
// # Outputs
//
//   - []Change: One entry per target file.
//   - error: Non-nil if a glob pattern is malformed.
func (r *Rewriter) Plan() ([]Change, error) {
	perFile := make(map[string][]Rule)

	for _, rule := range r.rules.Rules {
		matched := 0
		for _, pattern := range rule.Files {
			paths, err := filepath.Glob(filepath.Join(r.root, pattern))
			if err != nil {
				return nil, fmt.Errorf("bad file pattern %q: %w", pattern, err)
			}
			for _, path := range paths {
				info, err := os.Stat(path)
				if err != nil || !info.Mode().IsRegular() {
					continue
				}
				perFile[path] = append(perFile[path], rule)
				matched++
			}
		}
		if matched == 0 {
			r.logger.Warn("rule matched no files", "key", rule.Key, "patterns", rule.Files)
		}
	}

	paths := make([]string, 0, len(perFile))
	for path := range perFile {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	changes := make([]Change, 0, len(paths))
	for _, path := range paths {
		changes = append(changes, Change{Path: path, Rules: perFile[path]})
	}

	r.logger.Info("planned rewrite", "rules", len(r.rules.Rules), "files", len(changes))
	return changes, nil
}

// TargetPaths returns the paths of the given changes, in change order.
func TargetPaths(changes []Change) []string {
	paths := make([]string, len(changes))
	for i, c := range changes {
		paths[i] = c.Path
	}
	return paths
}

// Apply writes every planned change to disk.
//
// # Description
//
// Files are rewritten in plan order. Apply stops at the first failure
// and returns it: the caller holds snapshots of every target and is
// responsible for restoring them.
//
// # Inputs
//
//   - changes: The plan returned by Plan.
//
// # Outputs
//
//   - error: Non-nil on the first file that could not be rewritten.
func (r *Rewriter) Apply(changes []Change) error {
	for _, change := range changes {
		if err := r.applyFile(change); err != nil {
			return fmt.Errorf("rewriting %s: %w", change.Path, err)
		}
		r.logger.Info("rewrote file", "path", change.Path, "keys", len(change.Rules))
	}
	return nil
}

// applyFile rewrites a single file in place, preserving its mode.
func (r *Rewriter) applyFile(change Change) error {
	info, err := os.Stat(change.Path)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(change.Path)
	if err != nil {
		return err
	}

	var rewritten []byte
	if isEnvFile(change.Path) {
		rewritten = applyEnv(content, change.Rules)
	} else {
		rewritten, err = applyYAML(content, change.Rules)
		if err != nil {
			return err
		}
	}

	return os.WriteFile(change.Path, rewritten, info.Mode().Perm())
}

// isEnvFile reports whether the path is a dotenv-style file.
func isEnvFile(path string) bool {
	base := filepath.Base(path)
	return base == ".env" || strings.HasPrefix(base, ".env.") ||
		strings.HasSuffix(base, ".env")
}

// =============================================================================
// YAML Rewriting
// =============================================================================

// applyYAML sets every rule's dotted key in a YAML document, preserving
// comments and the order of untouched keys via the yaml.v3 node API.
func applyYAML(content []byte, rules []Rule) ([]byte, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	if doc.Kind == 0 || len(doc.Content) == 0 {
		// Empty document: start from a fresh mapping.
		doc = yaml.Node{
			Kind:    yaml.DocumentNode,
			Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
		}
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("top-level YAML node is not a mapping")
	}

	for _, rule := range rules {
		setMappingPath(root, strings.Split(rule.Key, "."), rule.Value)
	}

	return yaml.Marshal(&doc)
}

// setMappingPath descends into the mapping along the key parts, creating
// intermediate mappings as needed, and sets the final scalar value.
func setMappingPath(node *yaml.Node, parts []string, value string) {
	key := parts[0]

	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value != key {
			continue
		}
		child := node.Content[i+1]
		if len(parts) == 1 {
			// Leave the tag empty so the encoder re-infers the scalar type.
			*child = yaml.Node{Kind: yaml.ScalarNode, Value: value}
			return
		}
		if child.Kind != yaml.MappingNode {
			*child = yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		}
		setMappingPath(child, parts[1:], value)
		return
	}

	keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
	if len(parts) == 1 {
		node.Content = append(node.Content, keyNode,
			&yaml.Node{Kind: yaml.ScalarNode, Value: value})
		return
	}

	child := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	node.Content = append(node.Content, keyNode, child)
	setMappingPath(child, parts[1:], value)
}

// =============================================================================
// Dotenv Rewriting
// =============================================================================

// applyEnv sets every rule's key in a dotenv-style file. Existing
// assignments are replaced in place (including "export KEY=" forms);
// missing keys are appended at the end.
func applyEnv(content []byte, rules []Rule) []byte {
	lines := strings.Split(string(content), "\n")

	for _, rule := range rules {
		replaced := false
		for i, line := range lines {
			trimmed := strings.TrimSpace(line)
			rest, hadExport := strings.CutPrefix(trimmed, "export ")
			if !strings.HasPrefix(rest, rule.Key+"=") {
				continue
			}
			if hadExport {
				lines[i] = "export " + rule.Key + "=" + rule.Value
			} else {
				lines[i] = rule.Key + "=" + rule.Value
			}
			replaced = true
			break
		}
		if !replaced {
			assignment := rule.Key + "=" + rule.Value
			// Keep the trailing newline convention: insert before a final
			// empty line if there is one.
			if n := len(lines); n > 0 && lines[n-1] == "" {
				lines = append(lines[:n-1], assignment, "")
			} else {
				lines = append(lines, assignment)
			}
		}
	}

	return []byte(strings.Join(lines, "\n"))
}
