// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/techdebt/services/llm"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// fakeClient records prompts and answers from a function.
type fakeClient struct {
	mu      sync.Mutex
	prompts []string
	params  []llm.GenerationParams
	reply   func(prompt string) (string, error)
}

func (f *fakeClient) Generate(ctx context.Context, prompt string, params llm.GenerationParams) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.params = append(f.params, params)
	f.mu.Unlock()
	if f.reply == nil {
		return "Consider refactoring.", nil
	}
	return f.reply(prompt)
}

func (f *fakeClient) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func writeFiles(t *testing.T, n int, content string) []string {
	t.Helper()
	dir := t.TempDir()
	files := make([]string, n)
	for i := range files {
		files[i] = filepath.Join(dir, fmt.Sprintf("f%02d.js", i))
		require.NoError(t, os.WriteFile(files[i], []byte(content), 0o644))
	}
	return files
}

// =============================================================================
// ANALYZE TESTS
// =============================================================================

func TestAnalyze_CapsAtMaxFiles(t *testing.T) {
	client := &fakeClient{}
	files := writeFiles(t, 10, "var a = 1;\n")

	findings := New(client, DefaultOptions()).Analyze(context.Background(), files, "lint")

	assert.Equal(t, 3, client.calls())
	require.Len(t, findings, 3)
	for i, f := range findings {
		assert.Equal(t, files[i], f.File)
		assert.Equal(t, "### "+files[i]+"\nConsider refactoring.", f.Text)
		assert.False(t, f.Failed())
	}
}

func TestAnalyze_NoFiles(t *testing.T) {
	client := &fakeClient{}

	findings := New(client, DefaultOptions()).Analyze(context.Background(), nil, "lint")

	assert.Empty(t, findings)
	assert.Equal(t, 0, client.calls())
}

func TestAnalyze_PromptAndParams(t *testing.T) {
	client := &fakeClient{}
	files := writeFiles(t, 1, "const x = 1;")

	New(client, DefaultOptions()).Analyze(context.Background(), files, "1:1 warning no-var")

	require.Equal(t, 1, client.calls())
	assert.Equal(t,
		"Analyze the following code for tech debt. Static analysis: 1:1 warning no-var. Code: const x = 1;",
		client.prompts[0])
	require.NotNil(t, client.params[0].MaxTokens)
	assert.Equal(t, 500, *client.params[0].MaxTokens)
}

func TestAnalyze_TruncatesContentDeterministically(t *testing.T) {
	// 300 lines of 50 characters: over both the line and character limits.
	line := strings.Repeat("x", 49)
	content := strings.Repeat(line+"\n", 300)
	files := writeFiles(t, 1, content)

	var prompts [2]string
	for i := range prompts {
		client := &fakeClient{}
		New(client, DefaultOptions()).Analyze(context.Background(), files, "")
		prompts[i] = client.prompts[0]
	}

	assert.Equal(t, prompts[0], prompts[1])
	code := strings.TrimPrefix(prompts[0], "Analyze the following code for tech debt. Static analysis: . Code: ")
	assert.Equal(t, 4000, utf8.RuneCountInString(code))
	assert.Equal(t, content[:4000], code)
}

func TestAnalyze_TruncatesLintContext(t *testing.T) {
	client := &fakeClient{}
	files := writeFiles(t, 2, "x")
	lint := strings.Repeat("w", 5000)

	New(client, DefaultOptions()).Analyze(context.Background(), files, lint)

	for _, p := range client.prompts {
		assert.Contains(t, p, "Static analysis: "+strings.Repeat("w", 2000)+". Code: ")
		assert.NotContains(t, p, strings.Repeat("w", 2001))
	}
}

func TestAnalyze_FailureDoesNotAbort(t *testing.T) {
	client := &fakeClient{reply: func(prompt string) (string, error) {
		if strings.HasSuffix(prompt, "second") {
			return "", errors.New("rate limited")
		}
		return "ok", nil
	}}
	dir := t.TempDir()
	var files []string
	for _, body := range []string{"first", "second", "third"} {
		p := filepath.Join(dir, body+".ts")
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		files = append(files, p)
	}

	findings := New(client, DefaultOptions()).Analyze(context.Background(), files, "")

	require.Len(t, findings, 3)
	assert.False(t, findings[0].Failed())
	assert.True(t, findings[1].Failed())
	assert.Contains(t, findings[1].ErrorString(), "rate limited")
	assert.Empty(t, findings[1].Text)
	assert.False(t, findings[2].Failed())
	assert.Equal(t, 3, client.calls())
}

func TestAnalyze_ReadFailureSendsNoRequest(t *testing.T) {
	client := &fakeClient{}
	missing := filepath.Join(t.TempDir(), "gone.js")

	findings := New(client, DefaultOptions()).Analyze(context.Background(), []string{missing}, "")

	require.Len(t, findings, 1)
	assert.True(t, findings[0].Failed())
	assert.ErrorIs(t, findings[0].Err, os.ErrNotExist)
	assert.Equal(t, 0, client.calls())
}

func TestAnalyze_ConcurrentKeepsOrder(t *testing.T) {
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0
	client := &fakeClient{reply: func(prompt string) (string, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		// Earlier files answer last.
		if strings.HasSuffix(prompt, "0") {
			time.Sleep(30 * time.Millisecond)
		}
		time.Sleep(10 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return "reply for " + prompt[len(prompt)-1:], nil
	}}
	dir := t.TempDir()
	var files []string
	for i := 0; i < 4; i++ {
		p := filepath.Join(dir, fmt.Sprintf("f%d.js", i))
		require.NoError(t, os.WriteFile(p, []byte(fmt.Sprint(i)), 0o644))
		files = append(files, p)
	}

	opts := DefaultOptions()
	opts.MaxFiles = 4
	opts.Concurrency = 2
	findings := New(client, opts).Analyze(context.Background(), files, "")

	require.Len(t, findings, 4)
	for i, f := range findings {
		assert.Equal(t, files[i], f.File)
		assert.True(t, strings.HasSuffix(f.Text, fmt.Sprintf("reply for %d", i)), f.Text)
	}
	assert.LessOrEqual(t, maxInFlight, 2)
}

func TestAnalyze_RateLimitCancelled(t *testing.T) {
	client := &fakeClient{}
	files := writeFiles(t, 2, "x")

	opts := DefaultOptions()
	opts.RequestsPerMinute = 1
	a := New(client, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	findings := a.Analyze(ctx, files, "")

	// The first request takes the only token; the second cannot wait a minute.
	require.Len(t, findings, 2)
	assert.False(t, findings[0].Failed())
	assert.True(t, findings[1].Failed())
	assert.Equal(t, 1, client.calls())
}

func TestNew_ZeroOptionsUseDefaults(t *testing.T) {
	a := New(&fakeClient{}, Options{})
	opts := a.Options()

	assert.Equal(t, 3, opts.MaxFiles)
	assert.Equal(t, 200, opts.MaxLines)
	assert.Equal(t, 4000, opts.MaxChars)
	assert.Equal(t, 2000, opts.MaxLintChars)
	assert.Equal(t, 500, opts.MaxTokens)
	assert.Equal(t, 1, opts.Concurrency)
}

// =============================================================================
// TRUNCATION TESTS
// =============================================================================

func TestTruncateCode(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		maxLines int
		maxChars int
		want     string
	}{
		{"under limits", "a\nb", 200, 4000, "a\nb"},
		{"line limit", "a\nb\nc\nd", 2, 4000, "a\nb"},
		{"char limit after lines", "abcdef\nghi", 1, 3, "abc"},
		{"exact line count keeps trailing text", "a\nb", 2, 100, "a\nb"},
		{"trailing newline at limit is dropped", "a\nb\n", 2, 100, "a\nb"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TruncateCode(tt.content, tt.maxLines, tt.maxChars))
		})
	}
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héé", TruncateRunes("hééllo", 3))
	assert.Equal(t, "abc", TruncateRunes("abc", 3))
	assert.Equal(t, "abc", TruncateRunes("abc", 10))
	assert.Equal(t, "abc", TruncateRunes("abc", 0))
	assert.Equal(t, "", TruncateRunes("", 5))
}
