// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package report turns the results of a run into issue and fix lines.
//
// Build is pure: it maps the stage results to an ordered []Line. Write
// renders those lines to the generator's writer as styled text, JSON or
// Markdown.
package report

import (
	"fmt"

	"github.com/AleutianAI/techdebt/services/analyzer"
	"github.com/AleutianAI/techdebt/services/deps"
	"github.com/AleutianAI/techdebt/services/lint"
	"github.com/AleutianAI/techdebt/services/scan"
)

// Kind classifies a report line.
type Kind string

const (
	KindHeader Kind = "header"
	KindIssue  Kind = "issue"
	KindFix    Kind = "fix"
	KindNote   Kind = "note"
)

// Section names the stage a line came from.
type Section string

const (
	SectionSummary Section = "summary"
	SectionLint    Section = "lint"
	SectionDeps    Section = "deps"
	SectionAI      Section = "ai"
)

// Line is one printed report line.
type Line struct {
	Kind    Kind    `json:"kind"`
	Section Section `json:"section"`
	Text    string  `json:"text"`
}

// Label is the prefix printed before the line text.
func (l Line) Label() string {
	switch l.Kind {
	case KindIssue:
		return "Issue"
	case KindFix:
		return "Suggested fix"
	case KindNote:
		return "Note"
	default:
		return ""
	}
}

// Input gathers the results of every stage.
type Input struct {
	RunID string

	Files scan.FileSet

	// Lint is only reported when its Status is not StatusSkipped.
	Lint lint.Result

	// Deps is nil when no manifest was checked.
	Deps *deps.Report

	Findings []analyzer.Finding
}

// Build maps stage results to report lines.
//
// Order: the files-scanned header, lint lines, dependency lines in
// package-name order, then AI lines in file order.
func Build(in Input) []Line {
	lines := []Line{{
		Kind:    KindHeader,
		Section: SectionSummary,
		Text:    fmt.Sprintf("Files scanned: %d", in.Files.Total()),
	}}

	if in.Lint.Status != "" && in.Lint.Status != lint.StatusSkipped {
		lines = append(lines, LintClassifier.Classify(in.Lint.Text(), SectionLint)...)
	}

	if in.Deps != nil {
		lines = append(lines, depLines(*in.Deps)...)
	}

	for _, f := range in.Findings {
		if f.Failed() {
			lines = append(lines, Line{
				Kind:    KindNote,
				Section: SectionAI,
				Text:    fmt.Sprintf("AI analysis failed for %s: %v", f.File, f.Err),
			})
			continue
		}
		lines = append(lines, AIClassifier.Classify(f.Text, SectionAI)...)
	}

	return lines
}

func depLines(r deps.Report) []Line {
	if r.Failed() {
		return []Line{{
			Kind:    KindNote,
			Section: SectionDeps,
			Text:    fmt.Sprintf("Dependency check failed for %s: %v", r.Manifest, r.Err),
		}}
	}

	var lines []Line
	for _, name := range r.Names() {
		info := r.Packages[name]
		lines = append(lines,
			Line{
				Kind:    KindIssue,
				Section: SectionDeps,
				Text:    fmt.Sprintf(`"%s": "%s" (outdated, latest is "%s")`, name, info.Current, info.Latest),
			},
			Line{
				Kind:    KindFix,
				Section: SectionDeps,
				Text:    fmt.Sprintf("run `npm install %s@latest`", name),
			},
		)
	}
	return lines
}

// Count returns how many lines of kind k are in lines.
func Count(lines []Line, k Kind) int {
	n := 0
	for _, l := range lines {
		if l.Kind == k {
			n++
		}
	}
	return n
}
