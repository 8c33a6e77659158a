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
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/techdebt/services/telemetry"
)

// Package-level tracer and meter for lint operations.
var (
	tracer = otel.Tracer("techdebt.lint")
	meter  = otel.Meter("techdebt.lint")
)

// Metrics for lint operations.
var (
	lintLatency metric.Float64Histogram
	lintTotal   metric.Int64Counter
	outputLines metric.Int64Histogram

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		lintLatency, err = meter.Float64Histogram(
			"lint_duration_seconds",
			metric.WithDescription("Duration of lint runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		lintTotal, err = meter.Int64Counter(
			"lint_runs_total",
			metric.WithDescription("Total number of lint runs by status"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		outputLines, err = meter.Int64Histogram(
			"lint_output_lines",
			metric.WithDescription("Lines of linter output per successful run"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// startLintSpan creates a span for a lint run.
func startLintSpan(ctx context.Context, fileCount int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "lint.Runner.Run",
		trace.WithAttributes(
			attribute.Int("lint.file_count", fileCount),
		),
	)
}

// setLintSpanResult sets the result attributes on a lint span.
func setLintSpanResult(span trace.Span, res Result) {
	span.SetAttributes(
		attribute.String("lint.status", string(res.Status)),
		attribute.String("lint.work_dir", res.WorkDir),
		attribute.StringSlice("lint.patterns", res.Patterns),
	)
	telemetry.RecordError(span, res.Err)
}

// recordLintMetrics records metrics for a lint run.
func recordLintMetrics(ctx context.Context, res Result) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(attribute.String("status", string(res.Status)))

	lintTotal.Add(ctx, 1, attrs)
	if res.Duration > 0 {
		lintLatency.Record(ctx, res.Duration.Seconds(), attrs)
	}
	if res.Status == StatusOK {
		outputLines.Record(ctx, int64(countLines(res.Output)))
	}
}

func countLines(s string) int {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
