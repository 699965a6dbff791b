// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"os"
	"sync"
	"testing"
)

func TestParsePersonalityLevel(t *testing.T) {
	tests := []struct {
		input string
		want  PersonalityLevel
	}{
		{"full", PersonalityFull},
		{"FULL", PersonalityFull},
		{"f", PersonalityFull},
		{"standard", PersonalityStandard},
		{"std", PersonalityStandard},
		{"s", PersonalityStandard},
		{"minimal", PersonalityMinimal},
		{"min", PersonalityMinimal},
		{"m", PersonalityMinimal},
		{"machine", PersonalityMachine},
		{"quiet", PersonalityMachine},
		{"q", PersonalityMachine},
		// Anything unrecognized falls back to standard
		{"", PersonalityStandard},
		{"verbose", PersonalityStandard},
	}

	for _, tt := range tests {
		if got := ParsePersonalityLevel(tt.input); got != tt.want {
			t.Errorf("ParsePersonalityLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestSetPersonalityLevel(t *testing.T) {
	withLevel(t, PersonalityMinimal, func() {
		if got := GetPersonality().Level; got != PersonalityMinimal {
			t.Errorf("GetPersonality().Level = %v, want %v", got, PersonalityMinimal)
		}
	})
}

func TestInitPersonality_EnvOverride(t *testing.T) {
	orig := GetPersonality().Level
	defer SetPersonalityLevel(orig)

	t.Setenv("RECONF_PERSONALITY", "minimal")
	InitPersonality()

	if got := GetPersonality().Level; got != PersonalityMinimal {
		t.Errorf("level after InitPersonality = %v, want %v", got, PersonalityMinimal)
	}
}

func TestInitPersonality_NonTerminal(t *testing.T) {
	orig := GetPersonality().Level
	defer SetPersonalityLevel(orig)

	os.Unsetenv("RECONF_PERSONALITY")
	InitPersonality()

	// Under go test stdout is a pipe, so TTY detection picks machine
	// mode; on a real terminal it picks full.
	got := GetPersonality().Level
	if got != PersonalityMachine && got != PersonalityFull {
		t.Errorf("level after InitPersonality = %v, want machine or full", got)
	}
}

func TestIsInteractive_MachineMode(t *testing.T) {
	withLevel(t, PersonalityMachine, func() {
		if IsInteractive() {
			t.Error("IsInteractive() = true in machine mode, want false")
		}
	})
}

func TestShouldShowProgress(t *testing.T) {
	tests := []struct {
		level PersonalityLevel
		want  bool
	}{
		{PersonalityFull, true},
		{PersonalityStandard, true},
		{PersonalityMinimal, true},
		{PersonalityMachine, false},
	}

	for _, tt := range tests {
		withLevel(t, tt.level, func() {
			if got := ShouldShowProgress(); got != tt.want {
				t.Errorf("ShouldShowProgress() at %v = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestPersonalityConcurrentAccess(t *testing.T) {
	orig := GetPersonality().Level
	defer SetPersonalityLevel(orig)

	levels := []PersonalityLevel{PersonalityFull, PersonalityStandard, PersonalityMinimal, PersonalityMachine}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(level PersonalityLevel) {
			defer wg.Done()
			SetPersonalityLevel(level)
		}(levels[i%len(levels)])
		go func() {
			defer wg.Done()
			_ = GetPersonality()
		}()
	}
	wg.Wait()
}
