// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/AleutianAI/techdebt/pkg/ux"
	"github.com/AleutianAI/techdebt/services/analyzer"
	"github.com/AleutianAI/techdebt/services/deps"
	"github.com/AleutianAI/techdebt/services/lint"
)

// Footer is printed after a text report.
const Footer = "Tech Debt Report logged above."

// Format selects the report encoding.
type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want text, json or markdown)", s)
	}
}

// Generator writes reports to one destination.
//
// Thread Safety: Not safe for concurrent use.
type Generator struct {
	w           io.Writer
	format      Format
	personality ux.PersonalityLevel
}

// Option configures a Generator.
type Option func(*Generator)

// WithFormat sets the output format.
func WithFormat(f Format) Option {
	return func(g *Generator) { g.format = f }
}

// WithPersonality sets the text styling level.
func WithPersonality(level ux.PersonalityLevel) Option {
	return func(g *Generator) { g.personality = level }
}

// NewGenerator creates a Generator writing to w. Text output styling
// follows ux.DetectPersonality(w) unless WithPersonality is given.
func NewGenerator(w io.Writer, opts ...Option) *Generator {
	g := &Generator{
		w:           w,
		format:      FormatText,
		personality: ux.DetectPersonality(w),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Build returns the report lines for in.
func (g *Generator) Build(in Input) []Line {
	return Build(in)
}

// Write renders the report for in.
func (g *Generator) Write(in Input) error {
	lines := Build(in)
	switch g.format {
	case FormatJSON:
		return g.writeJSON(in, lines)
	case FormatMarkdown:
		return g.writeMarkdown(lines)
	default:
		return g.writeText(lines)
	}
}

func (g *Generator) writeText(lines []Line) error {
	p := ux.NewPrinter(g.w, g.personality)
	styles := p.Styles()

	for _, l := range lines {
		switch l.Kind {
		case KindHeader:
			p.Bold(l.Text)
		case KindIssue:
			p.Item(ux.IconIssue, l.Label(), l.Text, styles.Error)
		case KindFix:
			p.Item(ux.IconFix, l.Label(), l.Text, styles.Success)
		case KindNote:
			p.Item(ux.IconNote, l.Label(), l.Text, styles.Warning)
		}
	}
	p.Success(Footer)
	return p.Err()
}

func (g *Generator) writeMarkdown(lines []Line) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Tech debt report\n\n")

	current := Section("")
	for _, l := range lines {
		if l.Kind == KindHeader {
			fmt.Fprintf(&b, "- %s\n", l.Text)
			continue
		}
		if l.Section != current {
			current = l.Section
			fmt.Fprintf(&b, "\n## %s\n\n", sectionTitle(current))
		}
		fmt.Fprintf(&b, "- **%s:** %s\n", l.Label(), l.Text)
	}

	_, err := io.WriteString(g.w, b.String())
	return err
}

func sectionTitle(s Section) string {
	switch s {
	case SectionLint:
		return "Lint"
	case SectionDeps:
		return "Dependencies"
	case SectionAI:
		return "AI analysis"
	default:
		return string(s)
	}
}

// =============================================================================
// JSON
// =============================================================================

type jsonReport struct {
	RunID        string        `json:"run_id,omitempty"`
	FilesScanned int           `json:"files_scanned"`
	Files        any           `json:"files"`
	Lint         *jsonLint     `json:"lint,omitempty"`
	Deps         *jsonDeps     `json:"deps,omitempty"`
	Findings     []jsonFinding `json:"findings"`
	Lines        []Line        `json:"lines"`
	Summary      jsonSummary   `json:"summary"`
}

type jsonLint struct {
	lint.Result
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

type jsonDeps struct {
	deps.Report
	Error string `json:"error,omitempty"`
}

type jsonFinding struct {
	analyzer.Finding
	Error string `json:"error,omitempty"`
}

type jsonSummary struct {
	Issues int `json:"issues"`
	Fixes  int `json:"fixes"`
	Notes  int `json:"notes"`
}

func (g *Generator) writeJSON(in Input, lines []Line) error {
	out := jsonReport{
		RunID:        in.RunID,
		FilesScanned: in.Files.Total(),
		Files:        in.Files,
		Findings:     make([]jsonFinding, 0, len(in.Findings)),
		Lines:        lines,
		Summary: jsonSummary{
			Issues: Count(lines, KindIssue),
			Fixes:  Count(lines, KindFix),
			Notes:  Count(lines, KindNote),
		},
	}
	if in.Lint.Status != "" && in.Lint.Status != lint.StatusSkipped {
		out.Lint = &jsonLint{Result: in.Lint, Text: in.Lint.Text(), Error: in.Lint.ErrorString()}
	}
	if in.Deps != nil {
		out.Deps = &jsonDeps{Report: *in.Deps, Error: in.Deps.ErrorString()}
	}
	for _, f := range in.Findings {
		out.Findings = append(out.Findings, jsonFinding{Finding: f, Error: f.ErrorString()})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	_, err = g.w.Write(data)
	return err
}
