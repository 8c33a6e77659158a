// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package lint

import (
	"errors"
	"fmt"
)

// Sentinel errors for the lint package.
var (
	// ErrLinterNotInstalled indicates the linter binary was not found in PATH.
	ErrLinterNotInstalled = errors.New("linter not installed")

	// ErrLinterTimeout indicates the linter exceeded its configured timeout.
	ErrLinterTimeout = errors.New("linter timeout")

	// ErrLinterFailed indicates the linter exited non-zero or could not run.
	ErrLinterFailed = errors.New("linter execution failed")
)

// LinterError wraps errors from a linter run with context.
//
// Thread Safety: Immutable after creation.
type LinterError struct {
	// Linter is the command line that failed (e.g., "npx eslint").
	Linter string

	// WorkDir is where the linter ran.
	WorkDir string

	// Err is the underlying error.
	Err error

	// Output contains any stderr output from the linter.
	Output string
}

// Error implements the error interface.
func (e *LinterError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("%s (in %s): %v: %s", e.Linter, e.WorkDir, e.Err, e.Output)
	}
	return fmt.Sprintf("%s (in %s): %v", e.Linter, e.WorkDir, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *LinterError) Unwrap() error {
	return e.Err
}

// NewLinterError creates a new LinterError.
//
// Inputs:
//
//	linter - Command that was run (e.g., "npx eslint")
//	workDir - Directory it ran in
//	err - The underlying error
func NewLinterError(linter, workDir string, err error) *LinterError {
	return &LinterError{
		Linter:  linter,
		WorkDir: workDir,
		Err:     err,
	}
}

// WithOutput returns a copy of the error with stderr output attached.
func (e *LinterError) WithOutput(output string) *LinterError {
	clone := *e
	clone.Output = output
	return &clone
}
