// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package deps reports outdated npm dependencies for a manifest.
//
// The checker shells out to `npm outdated --json` in the manifest's
// directory. npm exits 1 whenever something is outdated, so the exit code
// alone says nothing about success: a run succeeds when stdout holds a
// parsable outdated document (or is empty with exit 0).
package deps

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/mod/semver"

	"github.com/AleutianAI/techdebt/pkg/execx"
	"github.com/AleutianAI/techdebt/services/telemetry"
)

var tracer = otel.Tracer("techdebt.deps")

// Sentinel errors for the deps package.
var (
	// ErrNoOutput indicates npm exited non-zero without printing a document.
	ErrNoOutput = errors.New("package manager produced no output")

	// ErrParseOutput indicates stdout was not an outdated document.
	ErrParseOutput = errors.New("failed to parse outdated output")

	// ErrCheckTimeout indicates the package manager exceeded its timeout.
	ErrCheckTimeout = errors.New("dependency check timeout")
)

// =============================================================================
// TYPES
// =============================================================================

// Bump classifies the distance between the current and latest versions.
type Bump string

const (
	BumpMajor   Bump = "major"
	BumpMinor   Bump = "minor"
	BumpPatch   Bump = "patch"
	BumpNone    Bump = "none"
	BumpUnknown Bump = "unknown"
)

// Outdated is one entry of the outdated document.
type Outdated struct {
	Current  string `json:"current"`
	Wanted   string `json:"wanted"`
	Latest   string `json:"latest"`
	Location string `json:"location,omitempty"`
	Bump     Bump   `json:"bump"`
}

// Report is the result of checking one manifest.
type Report struct {
	// Manifest is the package.json that was checked.
	Manifest string `json:"manifest"`

	// Packages maps package name to its outdated entry.
	Packages map[string]Outdated `json:"packages"`

	// Err is set when the check itself failed. Packages is then empty.
	Err error `json:"-"`
}

// Failed reports whether the check could not be completed.
//
// A successful check with nothing outdated is not a failure.
func (r Report) Failed() bool {
	return r.Err != nil
}

// Names returns the outdated package names in sorted order.
func (r Report) Names() []string {
	names := make([]string, 0, len(r.Packages))
	for name := range r.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ErrorString returns Err as text, or "" when unset.
func (r Report) ErrorString() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// =============================================================================
// CHECKER
// =============================================================================

// Checker runs the package manager's outdated command.
//
// Thread Safety: Safe for concurrent use.
type Checker struct {
	command string
	args    []string
	timeout time.Duration
	exec    execx.Runner
	logger  *slog.Logger
}

// Option configures the Checker.
type Option func(*Checker)

// WithExec sets the process runner.
func WithExec(exec execx.Runner) Option {
	return func(c *Checker) { c.exec = exec }
}

// WithTimeout sets the per-check timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Checker) { c.timeout = d }
}

// WithCommand overrides the package manager command line.
func WithCommand(name string, args ...string) Option {
	return func(c *Checker) {
		c.command = name
		c.args = append([]string(nil), args...)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Checker) { c.logger = logger }
}

// NewChecker creates a checker that runs `npm outdated --json`.
func NewChecker(opts ...Option) *Checker {
	c := &Checker{
		command: "npm",
		args:    []string{"outdated", "--json"},
		timeout: 2 * time.Minute,
		exec:    execx.OSRunner{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check reports outdated dependencies for manifestPath.
//
// Description:
//
//	Runs the outdated command in the manifest's directory and decodes
//	its JSON. Each entry gets a Bump classification. Failures are
//	returned in Report.Err rather than as a Go error so the caller can
//	keep going and report them.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	manifestPath - Path to a package.json.
//
// Outputs:
//
//	Report - Always carries Manifest. Packages is non-nil.
func (c *Checker) Check(ctx context.Context, manifestPath string) Report {
	ctx, span := tracer.Start(ctx, "deps.Checker.Check",
		trace.WithAttributes(attribute.String("deps.manifest", manifestPath)),
	)
	defer span.End()

	report := Report{Manifest: manifestPath, Packages: map[string]Outdated{}}

	pkgs, err := c.run(ctx, filepath.Dir(manifestPath))
	if err != nil {
		report.Err = err
		telemetry.RecordError(span, err)
		c.logger.Warn("Dependency check failed",
			slog.String("manifest", manifestPath),
			slog.String("error", err.Error()),
		)
		return report
	}

	report.Packages = pkgs
	span.SetAttributes(attribute.Int("deps.outdated_count", len(pkgs)))
	c.logger.Debug("Dependency check completed",
		slog.String("manifest", manifestPath),
		slog.Int("outdated", len(pkgs)),
	)
	return report
}

func (c *Checker) run(ctx context.Context, dir string) (map[string]Outdated, error) {
	cmdCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cmd := execx.Command{Name: c.command, Args: c.args, Dir: dir}
	res, runErr := c.exec.Run(cmdCtx, cmd)

	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return nil, fmt.Errorf("%s: %w", cmd, ErrCheckTimeout)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	stdout := bytes.TrimSpace(res.Stdout)
	if runErr != nil && !execx.IsExitError(runErr) {
		return nil, runErr
	}
	if len(stdout) == 0 {
		if runErr != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoOutput, runErr)
		}
		return map[string]Outdated{}, nil
	}

	pkgs, err := ParseOutdated(stdout)
	if err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("%w (%v)", err, runErr)
		}
		return nil, err
	}
	return pkgs, nil
}

// =============================================================================
// PARSING
// =============================================================================

// ParseOutdated decodes an `npm outdated --json` document.
//
// Entries that npm reports as an array (one per workspace location) are
// collapsed to their first element. An npm error document
// ({"error": {...}}) is rejected.
func ParseOutdated(data []byte) (map[string]Outdated, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseOutput, err)
	}

	if errDoc, ok := raw["error"]; ok {
		var npmErr struct {
			Code    string `json:"code"`
			Summary string `json:"summary"`
		}
		if json.Unmarshal(errDoc, &npmErr) == nil && (npmErr.Code != "" || npmErr.Summary != "") {
			return nil, fmt.Errorf("%w: npm error %s: %s", ErrParseOutput, npmErr.Code, npmErr.Summary)
		}
	}

	out := make(map[string]Outdated, len(raw))
	for name, msg := range raw {
		entry, err := decodeEntry(msg)
		if err != nil {
			return nil, fmt.Errorf("%w: package %q: %v", ErrParseOutput, name, err)
		}
		entry.Bump = Classify(entry.Current, entry.Latest)
		out[name] = entry
	}
	return out, nil
}

func decodeEntry(msg json.RawMessage) (Outdated, error) {
	trimmed := bytes.TrimSpace(msg)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var entries []Outdated
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return Outdated{}, err
		}
		if len(entries) == 0 {
			return Outdated{}, errors.New("empty entry list")
		}
		return entries[0], nil
	}

	var entry Outdated
	if err := json.Unmarshal(trimmed, &entry); err != nil {
		return Outdated{}, err
	}
	return entry, nil
}

// Classify returns the bump between two npm version strings.
func Classify(current, latest string) Bump {
	c, l := canonical(current), canonical(latest)
	if !semver.IsValid(c) || !semver.IsValid(l) {
		return BumpUnknown
	}
	switch {
	case semver.Major(c) != semver.Major(l):
		return BumpMajor
	case semver.MajorMinor(c) != semver.MajorMinor(l):
		return BumpMinor
	case semver.Compare(c, l) != 0:
		return BumpPatch
	default:
		return BumpNone
	}
}

// canonical turns "1.2.3" into "v1.2.3" for x/mod/semver.
func canonical(v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}
