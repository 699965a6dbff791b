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
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRules_ParsesRuleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reconf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`rules:
  - key: server.port
    value: "9090"
    files:
      - "*.yaml"
  - key: DB_HOST
    value: db.internal
    files:
      - ".env"
`), 0o644))

	rs, err := LoadRules(path)
	require.NoError(t, err)
	require.Len(t, rs.Rules, 2)
	assert.Equal(t, "server.port", rs.Rules[0].Key)
	assert.Equal(t, "9090", rs.Rules[0].Value)
	assert.Equal(t, []string{"*.yaml"}, rs.Rules[0].Files)
	assert.Equal(t, "DB_HOST", rs.Rules[1].Key)
}

func TestLoadRules_MissingFile(t *testing.T) {
	_, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadRules_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reconf.yaml")
	require.NoError(t, os.WriteFile(path, []byte("rules: [unterminated\n"), 0o644))

	_, err := LoadRules(path)
	require.Error(t, err)
}

func TestRuleSetValidate(t *testing.T) {
	tests := []struct {
		name    string
		rules   RuleSet
		wantErr string
	}{
		{
			name:    "empty rule set",
			rules:   RuleSet{},
			wantErr: "no rules",
		},
		{
			name: "missing key",
			rules: RuleSet{Rules: []Rule{
				{Value: "x", Files: []string{"*.yaml"}},
			}},
			wantErr: "key",
		},
		{
			name: "empty dotted segment",
			rules: RuleSet{Rules: []Rule{
				{Key: "server..port", Value: "1", Files: []string{"*.yaml"}},
			}},
			wantErr: "key",
		},
		{
			name: "no file patterns",
			rules: RuleSet{Rules: []Rule{
				{Key: "a", Value: "1"},
			}},
			wantErr: "file pattern",
		},
		{
			name: "valid",
			rules: RuleSet{Rules: []Rule{
				{Key: "a.b", Value: "1", Files: []string{"*.yaml"}},
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rules.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
