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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNonInteractive is returned when a prompt is required but the
// prompter refuses to read input (e.g. piped stdin without --yes).
var ErrNonInteractive = errors.New("interactive prompt required but running non-interactively")

// UserPrompter abstracts user confirmation so commands can be tested
// without a TTY.
//
// # Description
//
// Commands that perform destructive rewrites ask for confirmation
// through this interface. The concrete prompter is chosen at startup
// from the --yes flag and whether stdin is a terminal.
type UserPrompter interface {
	// Confirm asks a yes/no question. Only "y"/"yes" (any case) count
	// as yes; everything else, including EOF, is no.
	Confirm(ctx context.Context, prompt string) (bool, error)

	// IsInteractive reports whether this prompter actually reads input.
	IsInteractive() bool
}

// InteractivePrompter reads answers from an io.Reader (stdin by default).
type InteractivePrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewInteractivePrompter creates a prompter bound to stdin/stdout.
func NewInteractivePrompter() *InteractivePrompter {
	return NewInteractivePrompterWithIO(os.Stdin, os.Stdout)
}

// NewInteractivePrompterWithIO creates a prompter with explicit streams,
// used by tests.
func NewInteractivePrompterWithIO(reader io.Reader, writer io.Writer) *InteractivePrompter {
	return &InteractivePrompter{
		reader: bufio.NewReader(reader),
		writer: writer,
	}
}

// Confirm asks a yes/no question and defaults to no.
func (p *InteractivePrompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	fmt.Fprintf(p.writer, "%s [y/N]: ", prompt)

	// EOF counts as an empty answer, which is a no.
	line, err := p.reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading response: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// IsInteractive returns true.
func (p *InteractivePrompter) IsInteractive() bool {
	return true
}

// NonInteractivePrompter rejects every prompt. It is the default when
// stdin is not a terminal and --yes was not passed: destructive
// operations must never silently proceed.
type NonInteractivePrompter struct{}

// NewNonInteractivePrompter creates a prompter that refuses all prompts.
func NewNonInteractivePrompter() *NonInteractivePrompter {
	return &NonInteractivePrompter{}
}

// Confirm returns ErrNonInteractive.
func (p *NonInteractivePrompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	return false, fmt.Errorf("%w: %s", ErrNonInteractive, prompt)
}

// IsInteractive returns false.
func (p *NonInteractivePrompter) IsInteractive() bool {
	return false
}

// AutoApprovePrompter answers yes to everything. Chosen by --yes.
type AutoApprovePrompter struct{}

// NewAutoApprovePrompter creates a prompter that approves all prompts.
func NewAutoApprovePrompter() *AutoApprovePrompter {
	return &AutoApprovePrompter{}
}

// Confirm always returns true.
func (p *AutoApprovePrompter) Confirm(ctx context.Context, prompt string) (bool, error) {
	return true, nil
}

// IsInteractive returns false.
func (p *AutoApprovePrompter) IsInteractive() bool {
	return false
}

var (
	_ UserPrompter = (*InteractivePrompter)(nil)
	_ UserPrompter = (*NonInteractivePrompter)(nil)
	_ UserPrompter = (*AutoApprovePrompter)(nil)
)
