// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package analyzer asks a language model for a tech-debt narrative on a
// handful of source files.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/techdebt/services/llm"
	"github.com/AleutianAI/techdebt/services/telemetry"
)

var tracer = otel.Tracer("techdebt.analyzer")

// =============================================================================
// OPTIONS
// =============================================================================

// Options bounds how much work one analysis does.
type Options struct {
	// MaxFiles is how many files, from the front of the list, are analyzed.
	MaxFiles int

	// MaxLines keeps only the first lines of each file.
	MaxLines int

	// MaxChars caps the line-limited content, in characters.
	MaxChars int

	// MaxLintChars caps the lint context sent with every file.
	MaxLintChars int

	// MaxTokens caps the model's reply.
	MaxTokens int

	// Concurrency is how many requests may be in flight. 1 is sequential.
	Concurrency int

	// RequestsPerMinute paces requests client-side. 0 disables pacing.
	RequestsPerMinute int

	// Timeout bounds each request. 0 disables it.
	Timeout time.Duration

	Logger *slog.Logger
}

// DefaultOptions returns the limits used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		MaxFiles:     3,
		MaxLines:     200,
		MaxChars:     4000,
		MaxLintChars: 2000,
		MaxTokens:    500,
		Concurrency:  1,
		Timeout:      time.Minute,
	}
}

// withDefaults fills zero-valued limits from DefaultOptions.
func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.MaxFiles <= 0 {
		o.MaxFiles = def.MaxFiles
	}
	if o.MaxLines <= 0 {
		o.MaxLines = def.MaxLines
	}
	if o.MaxChars <= 0 {
		o.MaxChars = def.MaxChars
	}
	if o.MaxLintChars <= 0 {
		o.MaxLintChars = def.MaxLintChars
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = def.MaxTokens
	}
	if o.Concurrency <= 0 {
		o.Concurrency = def.Concurrency
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// =============================================================================
// FINDING
// =============================================================================

// Finding is the analysis of one file.
type Finding struct {
	// File is the analyzed path.
	File string `json:"file"`

	// Text is "### <file>\n<narrative>" on success.
	Text string `json:"text,omitempty"`

	// Err is set when the file could not be read or the request failed.
	Err error `json:"-"`
}

// Failed reports whether the file produced no narrative.
func (f Finding) Failed() bool {
	return f.Err != nil
}

// ErrorString returns Err as text, or "" when unset.
func (f Finding) ErrorString() string {
	if f.Err == nil {
		return ""
	}
	return f.Err.Error()
}

// =============================================================================
// ANALYZER
// =============================================================================

// Analyzer sends per-file prompts to a model.
//
// Thread Safety: Safe for concurrent use.
type Analyzer struct {
	client  llm.Client
	opts    Options
	limiter *rate.Limiter
	readFn  func(string) ([]byte, error)
}

// New creates an Analyzer. Zero-valued limits take their defaults.
func New(client llm.Client, opts Options) *Analyzer {
	opts = opts.withDefaults()

	var limiter *rate.Limiter
	if opts.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(opts.RequestsPerMinute)), 1)
	}

	return &Analyzer{
		client:  client,
		opts:    opts,
		limiter: limiter,
		readFn:  os.ReadFile,
	}
}

// Options returns the effective options.
func (a *Analyzer) Options() Options {
	return a.opts
}

// Analyze produces one Finding per analyzed file, in input order.
//
// Description:
//
//	Takes the first MaxFiles files, reads and truncates each, and sends
//	one prompt per file carrying the truncated lint text as context. A
//	failure on one file is recorded on its Finding and does not stop the
//	others. Up to Concurrency requests run at once.
//
// Inputs:
//
//	ctx - Context for cancellation.
//	files - Source files in scan order.
//	lintText - Lint output (or lint status message) used as context.
//
// Outputs:
//
//	[]Finding - len == min(len(files), MaxFiles).
func (a *Analyzer) Analyze(ctx context.Context, files []string, lintText string) []Finding {
	if len(files) > a.opts.MaxFiles {
		files = files[:a.opts.MaxFiles]
	}
	findings := make([]Finding, len(files))
	if len(files) == 0 {
		return findings
	}

	lintContext := TruncateRunes(lintText, a.opts.MaxLintChars)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.opts.Concurrency)
	for i, file := range files {
		g.Go(func() error {
			findings[i] = a.analyzeFile(gctx, file, lintContext)
			return nil
		})
	}
	_ = g.Wait()

	return findings
}

func (a *Analyzer) analyzeFile(ctx context.Context, file, lintContext string) Finding {
	ctx, span := tracer.Start(ctx, "analyzer.Analyzer.analyzeFile",
		trace.WithAttributes(attribute.String("analyzer.file", file)),
	)
	defer span.End()

	finding := Finding{File: file}
	fail := func(err error) Finding {
		finding.Err = err
		telemetry.RecordError(span, err)
		a.opts.Logger.Warn("AI analysis failed",
			slog.String("file", file),
			slog.String("error", err.Error()),
		)
		return finding
	}

	content, err := a.readFn(file)
	if err != nil {
		return fail(fmt.Errorf("read %s: %w", file, err))
	}
	code := TruncateCode(string(content), a.opts.MaxLines, a.opts.MaxChars)

	if a.limiter != nil {
		if err := a.limiter.Wait(ctx); err != nil {
			return fail(fmt.Errorf("rate limit wait: %w", err))
		}
	}

	reqCtx := ctx
	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	start := time.Now()
	narrative, err := a.client.Generate(reqCtx, BuildPrompt(code, lintContext), llm.GenerationParams{
		MaxTokens: llm.IntPtr(a.opts.MaxTokens),
	})
	if err != nil {
		return fail(fmt.Errorf("analyze %s: %w", file, err))
	}

	span.SetAttributes(attribute.Int("analyzer.response_chars", len(narrative)))
	a.opts.Logger.Debug("AI analysis completed",
		slog.String("file", file),
		slog.Duration("duration", time.Since(start)),
	)

	finding.Text = "### " + file + "\n" + narrative
	return finding
}

// =============================================================================
// PROMPT HELPERS
// =============================================================================

// BuildPrompt renders the request text for one file.
func BuildPrompt(code, lintContext string) string {
	return "Analyze the following code for tech debt. Static analysis: " + lintContext + ". Code: " + code
}

// TruncateCode keeps the first maxLines lines of content, then the first
// maxChars characters of that.
func TruncateCode(content string, maxLines, maxChars int) string {
	if maxLines > 0 {
		lines := strings.SplitN(content, "\n", maxLines+1)
		if len(lines) > maxLines {
			lines = lines[:maxLines]
		}
		content = strings.Join(lines, "\n")
	}
	return TruncateRunes(content, maxChars)
}

// TruncateRunes returns the first n characters of s. n <= 0 returns s.
func TruncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
