// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pipeline runs one tech-debt pass over a project:
// scan, lint, dependency check, AI analysis, report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/techdebt/services/analyzer"
	"github.com/AleutianAI/techdebt/services/deps"
	"github.com/AleutianAI/techdebt/services/lint"
	"github.com/AleutianAI/techdebt/services/report"
	"github.com/AleutianAI/techdebt/services/scan"
	"github.com/AleutianAI/techdebt/services/telemetry"
)

var tracer = otel.Tracer("techdebt.pipeline")

// ErrMissingCredential is returned when no API key is configured.
var ErrMissingCredential = errors.New("missing OPENAI_API_KEY environment variable")

// =============================================================================
// STAGE INTERFACES
// =============================================================================

// Scanner discovers project files.
type Scanner interface {
	Scan(ctx context.Context, root string) (scan.FileSet, error)
}

// Linter lints source files.
type Linter interface {
	Run(ctx context.Context, files []string, fallbackDir string) lint.Result
}

// DependencyChecker reports outdated dependencies.
type DependencyChecker interface {
	Check(ctx context.Context, manifest string) deps.Report
}

// Analyzer produces AI findings.
type Analyzer interface {
	Analyze(ctx context.Context, files []string, lintText string) []analyzer.Finding
}

// Reporter renders the final report.
type Reporter interface {
	Write(in report.Input) error
}

// Progress shows what the pipeline is doing. *ux.Spinner satisfies it.
type Progress interface {
	Start(message string)
	UpdateMessage(message string)
	Stop()
}

type noProgress struct{}

func (noProgress) Start(string)         {}
func (noProgress) UpdateMessage(string) {}
func (noProgress) Stop()                {}

// =============================================================================
// PIPELINE
// =============================================================================

// Config holds per-run settings.
type Config struct {
	// Root is the project directory.
	Root string

	// APIKey must be non-empty for the run to start.
	APIKey string
}

// Dependencies are the stage implementations.
type Dependencies struct {
	Scanner  Scanner
	Linter   Linter
	Deps     DependencyChecker
	Analyzer Analyzer
	Reporter Reporter
	Progress Progress
	Logger   *slog.Logger
}

// Outcome is everything a run produced.
type Outcome struct {
	RunID    string
	Files    scan.FileSet
	Lint     lint.Result
	Deps     *deps.Report
	Findings []analyzer.Finding
	Lines    []report.Line
	Duration time.Duration
}

// Pipeline runs the stages in order.
type Pipeline struct {
	cfg  Config
	deps Dependencies
}

// New creates a Pipeline.
func New(cfg Config, stages Dependencies) *Pipeline {
	if cfg.Root == "" {
		cfg.Root = "."
	}
	if stages.Progress == nil {
		stages.Progress = noProgress{}
	}
	if stages.Logger == nil {
		stages.Logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, deps: stages}
}

// CheckCredential returns ErrMissingCredential for a blank key.
func CheckCredential(apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return ErrMissingCredential
	}
	return nil
}

// Run executes one pass.
//
// Description:
//
//	Checks the credential before doing anything else. Then scans the
//	root, lints when there are sources, checks the first manifest when
//	there is one, analyzes the leading sources, and writes the report.
//	Stage failures are part of the Outcome; only a missing credential,
//	a scan error, a cancelled context or a report write error make Run
//	return an error.
//
// Inputs:
//
//	ctx - Context for cancellation.
//
// Outputs:
//
//	Outcome - Stage results and report lines.
//	error - ErrMissingCredential, a scan error, ctx.Err(), or a write error.
func (p *Pipeline) Run(ctx context.Context) (Outcome, error) {
	if err := CheckCredential(p.cfg.APIKey); err != nil {
		return Outcome{}, err
	}

	start := time.Now()
	out := Outcome{RunID: uuid.NewString()}
	logger := p.deps.Logger.With(slog.String("run_id", out.RunID))

	ctx, span := tracer.Start(ctx, "pipeline.Pipeline.Run",
		trace.WithAttributes(
			attribute.String("pipeline.run_id", out.RunID),
			attribute.String("pipeline.root", p.cfg.Root),
		),
	)
	defer span.End()
	logger = telemetry.LoggerWithTrace(ctx, logger)

	progress := p.deps.Progress
	progress.Start("Scanning " + p.cfg.Root)
	defer progress.Stop()

	files, err := p.deps.Scanner.Scan(ctx, p.cfg.Root)
	if err != nil {
		telemetry.RecordError(span, err)
		return out, fmt.Errorf("scan %s: %w", p.cfg.Root, err)
	}
	out.Files = files
	logger.Info("Scan completed",
		slog.Int("typescript", len(files.TypeScript)),
		slog.Int("javascript", len(files.JavaScript)),
		slog.Int("manifests", len(files.Manifests)),
	)

	sources := files.Sources()
	out.Lint = lint.Result{Status: lint.StatusSkipped}
	if len(sources) > 0 {
		progress.UpdateMessage("Running ESLint")
		out.Lint = p.deps.Linter.Run(ctx, sources, p.cfg.Root)
		logger.Info("Lint completed", slog.String("status", string(out.Lint.Status)))
		if out.Lint.Err != nil {
			logger.Warn("Lint failed", slog.String("error", out.Lint.Err.Error()))
		}
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	if manifest, ok := files.Manifest(); ok {
		progress.UpdateMessage("Checking outdated dependencies")
		depReport := p.deps.Deps.Check(ctx, manifest)
		out.Deps = &depReport
		logger.Info("Dependency check completed",
			slog.String("manifest", manifest),
			slog.Int("outdated", len(depReport.Packages)),
			slog.Bool("failed", depReport.Failed()),
		)
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	lintText := ""
	if out.Lint.Status != lint.StatusSkipped {
		lintText = out.Lint.Text()
	}
	if len(sources) > 0 {
		progress.UpdateMessage("Analyzing code with AI")
		out.Findings = p.deps.Analyzer.Analyze(ctx, sources, lintText)
		failed := 0
		for _, f := range out.Findings {
			if f.Failed() {
				failed++
			}
		}
		logger.Info("AI analysis completed",
			slog.Int("files", len(out.Findings)),
			slog.Int("failed", failed),
		)
	}
	if err := ctx.Err(); err != nil {
		return out, err
	}

	progress.Stop()

	in := report.Input{
		RunID:    out.RunID,
		Files:    out.Files,
		Lint:     out.Lint,
		Deps:     out.Deps,
		Findings: out.Findings,
	}
	out.Lines = report.Build(in)
	out.Duration = time.Since(start)

	if err := p.deps.Reporter.Write(in); err != nil {
		return out, fmt.Errorf("write report: %w", err)
	}

	span.SetAttributes(
		attribute.Int("pipeline.issues", report.Count(out.Lines, report.KindIssue)),
		attribute.Int("pipeline.fixes", report.Count(out.Lines, report.KindFix)),
	)
	logger.Info("Run completed", slog.Duration("duration", out.Duration))
	return out, nil
}
