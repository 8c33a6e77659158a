// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package execx runs external tools behind a small seam so callers can be
// tested without npm or npx on the PATH.
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Command describes one external process invocation.
type Command struct {
	Name string
	Args []string
	Dir  string
}

// String renders the command line for logs and errors.
func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result is the captured output of a finished process.
//
// Stdout and Stderr are populated even when Run returns an error, since
// tools like npm print useful data and still exit non-zero.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes external commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
	LookPath(file string) (string, error)
}

// ExitError reports a process that ran and exited non-zero.
type ExitError struct {
	Command  string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("%s exited with status %d: %s", e.Command, e.ExitCode, strings.TrimSpace(e.Stderr))
	}
	return fmt.Sprintf("%s exited with status %d", e.Command, e.ExitCode)
}

// IsExitError reports whether err is, or wraps, an *ExitError.
func IsExitError(err error) bool {
	var ee *ExitError
	return errors.As(err, &ee)
}

// OSRunner runs commands with os/exec.
type OSRunner struct{}

// Run executes cmd and waits for it to finish.
//
// A non-zero exit yields an *ExitError alongside the captured output. A
// process that could not be started yields the underlying error and an
// empty Result.
func (OSRunner) Run(ctx context.Context, cmd Command) (Result, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := c.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}

	if ctx.Err() != nil {
		return res, fmt.Errorf("%s: %w", cmd, ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, &ExitError{
			Command:  cmd.String(),
			ExitCode: res.ExitCode,
			Stderr:   stderr.String(),
		}
	}
	return Result{}, fmt.Errorf("%s failed: %w", cmd, err)
}

// LookPath searches PATH for file.
func (OSRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

// RunnerFunc adapts a function to the Runner interface. LookPath always
// succeeds and echoes its argument.
type RunnerFunc func(ctx context.Context, cmd Command) (Result, error)

// Run calls f(ctx, cmd).
func (f RunnerFunc) Run(ctx context.Context, cmd Command) (Result, error) {
	return f(ctx, cmd)
}

// LookPath returns file unchanged.
func (f RunnerFunc) LookPath(file string) (string, error) {
	return file, nil
}
