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
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/techdebt/pkg/ux"
	"github.com/AleutianAI/techdebt/services/analyzer"
	"github.com/AleutianAI/techdebt/services/deps"
	"github.com/AleutianAI/techdebt/services/lint"
	"github.com/AleutianAI/techdebt/services/scan"
)

func linesOf(lines []Line, section Section) []Line {
	var out []Line
	for _, l := range lines {
		if l.Section == section {
			out = append(out, l)
		}
	}
	return out
}

// =============================================================================
// BUILD TESTS
// =============================================================================

func TestBuild_ZeroFiles(t *testing.T) {
	lines := Build(Input{})

	require.Len(t, lines, 1)
	assert.Equal(t, Line{Kind: KindHeader, Section: SectionSummary, Text: "Files scanned: 0"}, lines[0])
}

func TestBuild_HeaderCountsAllLists(t *testing.T) {
	lines := Build(Input{Files: scan.FileSet{
		TypeScript: []string{"src/a.ts"},
		JavaScript: []string{"src/b.js", "src/c.js"},
		Manifests:  []string{"package.json"},
	}})

	assert.Equal(t, "Files scanned: 4", lines[0].Text)
}

func TestBuild_LintDeprecatedAndFix(t *testing.T) {
	in := Input{Lint: lint.Result{
		Status: lint.StatusOK,
		Output: "  3:1  warning  'request' is deprecated\n" +
			"  7:5  'substr' is deprecated, fix by using slice\n" +
			"just a plain line\n",
	}}

	got := linesOf(Build(in), SectionLint)

	require.Len(t, got, 3)
	assert.Equal(t, Line{Kind: KindIssue, Section: SectionLint, Text: "3:1  warning  'request' is deprecated"}, got[0])
	assert.Equal(t, Line{Kind: KindIssue, Section: SectionLint, Text: "7:5  'substr' is deprecated, fix by using slice"}, got[1])
	assert.Equal(t, Line{Kind: KindFix, Section: SectionLint, Text: "7:5  'substr' is deprecated, fix by using slice"}, got[2])
}

func TestBuild_LintCaseInsensitive(t *testing.T) {
	got := linesOf(Build(Input{Lint: lint.Result{Status: lint.StatusOK, Output: "SECURITY hole"}}), SectionLint)

	require.Len(t, got, 1)
	assert.Equal(t, KindIssue, got[0].Kind)
}

func TestBuild_LintSkippedHasNoLines(t *testing.T) {
	lines := Build(Input{Lint: lint.Result{Status: lint.StatusSkipped}})
	assert.Empty(t, linesOf(lines, SectionLint))
}

func TestBuild_LintFailureSentinel(t *testing.T) {
	got := linesOf(Build(Input{Lint: lint.Result{Status: lint.StatusFailed, Err: errors.New("exit 1")}}), SectionLint)

	// "Error running ESLint." matches both keyword sets.
	require.Len(t, got, 2)
	assert.Equal(t, KindIssue, got[0].Kind)
	assert.Equal(t, KindFix, got[1].Kind)
	assert.Equal(t, "Error running ESLint.", got[0].Text)
}

func TestBuild_OneOutdatedDependency(t *testing.T) {
	in := Input{Deps: &deps.Report{
		Manifest: "package.json",
		Packages: map[string]deps.Outdated{
			"left-pad": {Current: "1.0.0", Wanted: "1.0.0", Latest: "2.0.0"},
		},
	}}

	got := linesOf(Build(in), SectionDeps)

	require.Len(t, got, 2)
	assert.Equal(t, KindIssue, got[0].Kind)
	assert.Equal(t, `"left-pad": "1.0.0" (outdated, latest is "2.0.0")`, got[0].Text)
	assert.Equal(t, KindFix, got[1].Kind)
	assert.Contains(t, got[1].Text, "npm install left-pad@latest")
}

func TestBuild_DependenciesInNameOrder(t *testing.T) {
	in := Input{Deps: &deps.Report{Packages: map[string]deps.Outdated{
		"zod":   {Current: "1.0.0", Latest: "3.0.0"},
		"axios": {Current: "0.1.0", Latest: "1.0.0"},
	}}}

	got := linesOf(Build(in), SectionDeps)

	require.Len(t, got, 4)
	assert.Contains(t, got[0].Text, `"axios"`)
	assert.Contains(t, got[2].Text, `"zod"`)
}

func TestBuild_DependencyFailureIsNote(t *testing.T) {
	in := Input{Deps: &deps.Report{Manifest: "package.json", Packages: map[string]deps.Outdated{}, Err: errors.New("npm missing")}}

	got := linesOf(Build(in), SectionDeps)

	require.Len(t, got, 1)
	assert.Equal(t, KindNote, got[0].Kind)
	assert.Contains(t, got[0].Text, "npm missing")
}

func TestBuild_NothingOutdated(t *testing.T) {
	in := Input{Deps: &deps.Report{Manifest: "package.json", Packages: map[string]deps.Outdated{}}}
	assert.Empty(t, linesOf(Build(in), SectionDeps))
}

func TestBuild_AIFindings(t *testing.T) {
	in := Input{Findings: []analyzer.Finding{
		{File: "src/a.js", Text: "### src/a.js\nThere is a hardcoded URL.\nRefactor into config.\nLooks fine."},
		{File: "src/b.js", Err: errors.New("timeout")},
	}}

	got := linesOf(Build(in), SectionAI)

	require.Len(t, got, 3)
	assert.Equal(t, Line{Kind: KindIssue, Section: SectionAI, Text: "There is a hardcoded URL."}, got[0])
	assert.Equal(t, Line{Kind: KindFix, Section: SectionAI, Text: "Refactor into config."}, got[1])
	assert.Equal(t, KindNote, got[2].Kind)
	assert.Contains(t, got[2].Text, "src/b.js")
}

func TestBuild_SectionOrder(t *testing.T) {
	in := Input{
		Files:    scan.FileSet{JavaScript: []string{"src/a.js"}, Manifests: []string{"package.json"}},
		Lint:     lint.Result{Status: lint.StatusOK, Output: "warning one"},
		Deps:     &deps.Report{Packages: map[string]deps.Outdated{"x": {Current: "1.0.0", Latest: "2.0.0"}}},
		Findings: []analyzer.Finding{{File: "src/a.js", Text: "### src/a.js\nmagic string found"}},
	}

	lines := Build(in)

	var sections []Section
	for _, l := range lines {
		if len(sections) == 0 || sections[len(sections)-1] != l.Section {
			sections = append(sections, l.Section)
		}
	}
	assert.Equal(t, []Section{SectionSummary, SectionLint, SectionDeps, SectionAI}, sections)
}

func TestClassifier_AIExtendsLint(t *testing.T) {
	assert.Empty(t, LintClassifier.Classify("there is tech debt here", SectionLint))
	assert.Len(t, AIClassifier.Classify("there is tech debt here", SectionAI), 1)

	assert.Empty(t, LintClassifier.Classify("improve naming", SectionLint))
	got := AIClassifier.Classify("improve naming", SectionAI)
	require.Len(t, got, 1)
	assert.Equal(t, KindFix, got[0].Kind)
}

func TestClassifier_SuggestVariants(t *testing.T) {
	for _, text := range []string{"suggested change", "a suggestion", "Suggestion: x"} {
		got := LintClassifier.Classify(text, SectionLint)
		require.Len(t, got, 1, text)
		assert.Equal(t, KindFix, got[0].Kind, text)
	}
	assert.Empty(t, LintClassifier.Classify("suggest", SectionLint))
}

// =============================================================================
// WRITE TESTS
// =============================================================================

func sampleInput() Input {
	return Input{
		RunID: "run-1",
		Files: scan.FileSet{JavaScript: []string{"src/a.js"}, Manifests: []string{"package.json"}},
		Lint:  lint.Result{Status: lint.StatusOK, Output: "1:1 warning no-var, replace with let"},
		Deps: &deps.Report{Manifest: "package.json", Packages: map[string]deps.Outdated{
			"left-pad": {Current: "1.0.0", Latest: "2.0.0", Bump: deps.BumpMajor},
		}},
		Findings: []analyzer.Finding{{File: "src/a.js", Text: "### src/a.js\nNo tests."}},
	}
}

func TestGenerator_WriteTextMachine(t *testing.T) {
	var buf bytes.Buffer
	g := NewGenerator(&buf, WithPersonality(ux.PersonalityMachine))

	require.NoError(t, g.Write(sampleInput()))

	want := strings.Join([]string{
		"Files scanned: 2",
		"- Issue: 1:1 warning no-var, replace with let",
		"- Suggested fix: 1:1 warning no-var, replace with let",
		`- Issue: "left-pad": "1.0.0" (outdated, latest is "2.0.0")`,
		"- Suggested fix: run `npm install left-pad@latest`",
		"- Issue: No tests.",
		"Tech Debt Report logged above.",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestGenerator_WriteTextIcons(t *testing.T) {
	var buf bytes.Buffer
	g := NewGenerator(&buf, WithPersonality(ux.PersonalityMinimal))

	require.NoError(t, g.Write(sampleInput()))

	out := buf.String()
	assert.Contains(t, out, "- ❌ Issue: 1:1 warning no-var, replace with let\n")
	assert.Contains(t, out, "- ✅ Suggested fix: run `npm install left-pad@latest`\n")
}

func TestGenerator_WriteJSON(t *testing.T) {
	var buf bytes.Buffer
	g := NewGenerator(&buf, WithFormat(FormatJSON))

	require.NoError(t, g.Write(sampleInput()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "run-1", decoded["run_id"])
	assert.EqualValues(t, 2, decoded["files_scanned"])

	summary := decoded["summary"].(map[string]any)
	assert.EqualValues(t, 3, summary["issues"])
	assert.EqualValues(t, 2, summary["fixes"])

	lintDoc := decoded["lint"].(map[string]any)
	assert.Equal(t, "ok", lintDoc["status"])

	depsDoc := decoded["deps"].(map[string]any)
	pkgs := depsDoc["packages"].(map[string]any)
	assert.Equal(t, "major", pkgs["left-pad"].(map[string]any)["bump"])

	assert.NotContains(t, buf.String(), Footer)
}

func TestGenerator_WriteMarkdown(t *testing.T) {
	var buf bytes.Buffer
	g := NewGenerator(&buf, WithFormat(FormatMarkdown))

	require.NoError(t, g.Write(sampleInput()))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# Tech debt report\n\n- Files scanned: 2\n"))
	assert.Contains(t, out, "## Lint\n\n- **Issue:** 1:1 warning no-var, replace with let\n")
	assert.Contains(t, out, "## Dependencies\n")
	assert.Contains(t, out, "## AI analysis\n\n- **Issue:** No tests.\n")
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"text", FormatText, false},
		{"JSON", FormatJSON, false},
		{"md", FormatMarkdown, false},
		{"", FormatText, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}
