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
	"context"
	"errors"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/AleutianAI/techdebt/pkg/execx"
)

// =============================================================================
// LINT RUNNER
// =============================================================================

// Runner executes ESLint for a scanned project.
//
// Description:
//
//	Resolves the project directory and glob patterns from the scanned
//	sources, checks for a flat config, and runs the linter through an
//	execx.Runner so tests never need npm installed.
//
// Thread Safety: Safe for concurrent use.
type Runner struct {
	config LinterConfig
	exec   execx.Runner
	logger *slog.Logger
}

// Option configures the Runner.
type Option func(*Runner)

// WithConfig sets a custom linter configuration.
func WithConfig(config LinterConfig) Option {
	return func(r *Runner) {
		r.config = config.Clone()
	}
}

// WithExec sets the process runner.
func WithExec(exec execx.Runner) Option {
	return func(r *Runner) {
		r.exec = exec
	}
}

// WithTimeout overrides the linter timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(r *Runner) {
		r.config.Timeout = d
	}
}

// WithSubtree overrides the source subtree name.
func WithSubtree(subtree string) Option {
	return func(r *Runner) {
		r.config.Subtree = subtree
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new lint runner.
//
// Inputs:
//
//	opts - Optional configuration options
//
// Outputs:
//
//	*Runner - The configured runner. Defaults to DefaultLinterConfig and
//	          execx.OSRunner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		config: DefaultLinterConfig(),
		exec:   execx.OSRunner{},
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Config returns a copy of the runner's configuration.
func (r *Runner) Config() LinterConfig {
	return r.config.Clone()
}

// Available reports whether the linter command is on PATH.
func (r *Runner) Available() bool {
	_, err := r.exec.LookPath(r.config.Command)
	return err == nil
}

// Run lints the project that files belong to.
//
// Description:
//
//	Computes the work dir and patterns, then runs the linter once. The
//	linter is only invoked when at least one pattern applies and a
//	config file exists in the work dir.
//
// Inputs:
//
//	ctx - Context for cancellation. The configured timeout is applied
//	      on top of it.
//	files - Source files in scan order (TypeScript first, then JavaScript).
//	fallbackDir - Used as the work dir when none can be derived from
//	              files; usually the scan root.
//
// Outputs:
//
//	Result - Never nil-valued; failures are carried in Status and Err.
//
// Thread Safety: Safe for concurrent use.
func (r *Runner) Run(ctx context.Context, files []string, fallbackDir string) Result {
	ctx, span := startLintSpan(ctx, len(files))
	defer span.End()

	res := r.run(ctx, files, fallbackDir)

	setLintSpanResult(span, res)
	recordLintMetrics(ctx, res)

	r.logger.Debug("Lint completed",
		slog.String("status", string(res.Status)),
		slog.String("work_dir", res.WorkDir),
		slog.Any("patterns", res.Patterns),
		slog.Duration("duration", res.Duration),
	)
	return res
}

func (r *Runner) run(ctx context.Context, files []string, fallbackDir string) Result {
	if len(files) == 0 {
		return Result{Status: StatusSkipped}
	}

	workDir := WorkDir(files, r.config.Subtree, fallbackDir)
	patterns := Patterns(files, r.config.Subtree, r.config.Globs)
	res := Result{WorkDir: workDir, Patterns: patterns}

	if len(patterns) == 0 {
		res.Status = StatusNoFiles
		return res
	}

	if !hasConfigFile(workDir, r.config.ConfigFiles) {
		res.Status = StatusNoConfig
		res.ConfigFile = r.config.primaryConfigFile()
		r.logger.Warn("ESLint config not found",
			slog.String("work_dir", workDir),
			slog.Any("config_files", r.config.ConfigFiles),
		)
		return res
	}

	if _, err := r.exec.LookPath(r.config.Command); err != nil {
		res.Status = StatusFailed
		res.Err = NewLinterError(r.config.commandLine(), workDir, ErrLinterNotInstalled)
		return res
	}

	output, duration, err := r.executeLinter(ctx, workDir, patterns)
	res.Duration = duration
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
		return res
	}

	res.Status = StatusOK
	res.Output = output
	return res
}

// executeLinter runs the configured command with patterns in workDir.
func (r *Runner) executeLinter(ctx context.Context, workDir string, patterns []string) (string, time.Duration, error) {
	args := make([]string, 0, len(r.config.Args)+len(patterns))
	args = append(args, r.config.Args...)
	args = append(args, patterns...)

	cmdCtx := ctx
	if r.config.Timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, r.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	out, err := r.exec.Run(cmdCtx, execx.Command{
		Name: r.config.Command,
		Args: args,
		Dir:  workDir,
	})
	duration := time.Since(start)

	linter := r.config.commandLine()

	// Check for timeout
	if errors.Is(cmdCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
		return "", duration, NewLinterError(linter, workDir, ErrLinterTimeout).
			WithOutput(string(out.Stderr))
	}

	// Check for context cancellation
	if ctx.Err() != nil {
		return "", duration, ctx.Err()
	}

	// ESLint exits 1 when it reports errors; the run still counts as failed.
	if err != nil {
		lerr := NewLinterError(linter, workDir, errors.Join(ErrLinterFailed, err))
		if len(out.Stderr) > 0 {
			lerr = lerr.WithOutput(strings.TrimSpace(string(out.Stderr)))
		}
		return "", duration, lerr
	}

	return string(out.Stdout), duration, nil
}

// =============================================================================
// PROJECT LAYOUT HELPERS
// =============================================================================

// WorkDir derives the directory the linter runs in.
//
// Description:
//
//	Takes the directory of the first file and cuts it at the first
//	occurrence of subtree, so "/p/src/components/a.js" yields "/p/". An
//	empty result falls back to fallbackDir, then to ".".
func WorkDir(files []string, subtree, fallbackDir string) string {
	var dir string
	if len(files) > 0 {
		dir = filepath.Dir(files[0])
		if dir == "." {
			dir = ""
		}
		if subtree != "" {
			if idx := strings.Index(dir, subtree); idx >= 0 {
				dir = dir[:idx]
			}
		}
	}
	if dir == "" {
		dir = fallbackDir
	}
	if dir == "" {
		dir = "."
	}
	return dir
}

// Patterns returns the linter glob patterns for files.
//
// Description:
//
//	Each glob is kept, in order, when some file's base name matches the
//	glob's final element, and is prefixed with subtree. With the default
//	globs a JavaScript pattern comes first when any .js file is present,
//	then a TypeScript pattern when any .ts file is present. Empty globs
//	are ignored; none left means DefaultGlobs.
func Patterns(files []string, subtree string, globs []string) []string {
	var set []string
	for _, g := range globs {
		if g != "" {
			set = append(set, g)
		}
	}
	if len(set) == 0 {
		set = DefaultGlobs()
	}

	prefix := ""
	if subtree != "" {
		prefix = subtree + "/"
	}

	var patterns []string
	seen := make(map[string]bool, len(set))
	for _, glob := range set {
		if seen[glob] {
			continue
		}
		seen[glob] = true
		if anyBaseMatches(files, path.Base(glob)) {
			patterns = append(patterns, prefix+glob)
		}
	}
	return patterns
}

func anyBaseMatches(files []string, pattern string) bool {
	for _, f := range files {
		if ok, _ := doublestar.Match(pattern, path.Base(filepath.ToSlash(f))); ok {
			return true
		}
	}
	return false
}

func hasConfigFile(dir string, names []string) bool {
	if len(names) == 0 {
		names = []string{DefaultConfigFile}
	}
	for _, name := range names {
		info, err := os.Stat(filepath.Join(dir, name))
		if err == nil && !info.IsDir() {
			return true
		}
	}
	return false
}
