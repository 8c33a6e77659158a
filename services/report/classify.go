// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package report

import (
	"regexp"
	"strings"
)

// Classifier sorts text lines into issues and suggested fixes.
type Classifier struct {
	issue *regexp.Regexp
	fix   *regexp.Regexp
}

// NewClassifier builds a case-insensitive classifier from keyword lists.
// Keywords are regular expression fragments.
func NewClassifier(issueWords, fixWords []string) *Classifier {
	return &Classifier{
		issue: regexp.MustCompile("(?i)" + strings.Join(issueWords, "|")),
		fix:   regexp.MustCompile("(?i)" + strings.Join(fixWords, "|")),
	}
}

var (
	lintIssueWords = []string{"warning", "error", "deprecated", "outdated", "callback", "untyped", "missing", "style", "security"}
	lintFixWords   = []string{"suggest(ed|ion)", "fix", "replace", "convert", "update", "run"}
)

// LintClassifier handles linter output.
var LintClassifier = NewClassifier(lintIssueWords, lintFixWords)

// AIClassifier handles model narratives. It extends the lint keywords.
var AIClassifier = NewClassifier(
	append(append([]string{}, lintIssueWords...), "issue", "debt", "problem", "hardcoded", "magic string", "lack", "no"),
	append(append([]string{}, lintFixWords...), "refactor", "add", "improve", "use"),
)

// Classify splits text into lines and returns the issue and fix lines.
//
// A line matching both sets yields an issue line followed by a fix line.
// Emitted text is trimmed.
func (c *Classifier) Classify(text string, section Section) []Line {
	var out []Line
	for _, raw := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(raw)
		if c.issue.MatchString(raw) {
			out = append(out, Line{Kind: KindIssue, Section: section, Text: trimmed})
		}
		if c.fix.MatchString(raw) {
			out = append(out, Line{Kind: KindFix, Section: section, Text: trimmed})
		}
	}
	return out
}
