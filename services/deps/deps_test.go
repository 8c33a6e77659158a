// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package deps

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/techdebt/pkg/execx"
)

const outdatedDoc = `{
  "left-pad": {"current": "1.0.0", "wanted": "1.0.0", "latest": "2.0.0", "location": "node_modules/left-pad"},
  "chalk": {"current": "5.3.0", "wanted": "5.3.0", "latest": "5.4.1"}
}`

func fakeExec(stdout string, err error, got *execx.Command) execx.Runner {
	return execx.RunnerFunc(func(ctx context.Context, cmd execx.Command) (execx.Result, error) {
		if got != nil {
			*got = cmd
		}
		return execx.Result{Stdout: []byte(stdout)}, err
	})
}

func TestCheck_OutdatedWithExitOne(t *testing.T) {
	var got execx.Command
	exitErr := &execx.ExitError{Command: "npm outdated --json", ExitCode: 1}
	c := NewChecker(WithExec(fakeExec(outdatedDoc, exitErr, &got)))

	manifest := filepath.Join("proj", "package.json")
	report := c.Check(context.Background(), manifest)

	require.False(t, report.Failed(), "exit 1 with a document is success: %v", report.Err)
	assert.Equal(t, manifest, report.Manifest)
	assert.Equal(t, []string{"chalk", "left-pad"}, report.Names())

	lp := report.Packages["left-pad"]
	assert.Equal(t, "1.0.0", lp.Current)
	assert.Equal(t, "2.0.0", lp.Latest)
	assert.Equal(t, "node_modules/left-pad", lp.Location)
	assert.Equal(t, BumpMajor, lp.Bump)
	assert.Equal(t, BumpMinor, report.Packages["chalk"].Bump)

	assert.Equal(t, "npm", got.Name)
	assert.Equal(t, []string{"outdated", "--json"}, got.Args)
	assert.Equal(t, "proj", got.Dir)
}

func TestCheck_NothingOutdated(t *testing.T) {
	c := NewChecker(WithExec(fakeExec("", nil, nil)))

	report := c.Check(context.Background(), "package.json")

	assert.False(t, report.Failed())
	assert.NotNil(t, report.Packages)
	assert.Empty(t, report.Names())
}

func TestCheck_EmptyObject(t *testing.T) {
	c := NewChecker(WithExec(fakeExec("{}\n", nil, nil)))

	report := c.Check(context.Background(), "package.json")

	assert.False(t, report.Failed())
	assert.Empty(t, report.Packages)
}

func TestCheck_Failures(t *testing.T) {
	exitErr := &execx.ExitError{Command: "npm outdated --json", ExitCode: 1}

	tests := []struct {
		name    string
		stdout  string
		err     error
		wantErr error
	}{
		{"non-zero without output", "", exitErr, ErrNoOutput},
		{"unparsable output", "npm WARN something", nil, ErrParseOutput},
		{"unparsable with exit error", "<html>", exitErr, ErrParseOutput},
		{"npm error document", `{"error": {"code": "ENOLOCK", "summary": "no lockfile"}}`, exitErr, ErrParseOutput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker(WithExec(fakeExec(tt.stdout, tt.err, nil)))
			report := c.Check(context.Background(), "package.json")

			assert.True(t, report.Failed())
			assert.ErrorIs(t, report.Err, tt.wantErr)
			assert.Empty(t, report.Packages)
			assert.NotEmpty(t, report.ErrorString())
		})
	}
}

func TestCheck_ToolMissing(t *testing.T) {
	startErr := errors.New(`exec: "npm": executable file not found in $PATH`)
	c := NewChecker(WithExec(fakeExec("", startErr, nil)))

	report := c.Check(context.Background(), "package.json")

	assert.True(t, report.Failed())
	assert.ErrorIs(t, report.Err, startErr)
}

func TestCheck_Timeout(t *testing.T) {
	blocking := execx.RunnerFunc(func(ctx context.Context, cmd execx.Command) (execx.Result, error) {
		<-ctx.Done()
		return execx.Result{}, ctx.Err()
	})
	c := NewChecker(WithExec(blocking), WithTimeout(20*time.Millisecond))

	report := c.Check(context.Background(), "package.json")

	assert.ErrorIs(t, report.Err, ErrCheckTimeout)
}

func TestCheck_CustomCommand(t *testing.T) {
	var got execx.Command
	c := NewChecker(WithExec(fakeExec("{}", nil, &got)), WithCommand("pnpm", "outdated", "--format", "json"))

	c.Check(context.Background(), "package.json")

	assert.Equal(t, "pnpm", got.Name)
	assert.Equal(t, []string{"outdated", "--format", "json"}, got.Args)
}

func TestParseOutdated_ArrayEntries(t *testing.T) {
	doc := `{"react": [{"current": "17.0.2", "wanted": "17.0.2", "latest": "18.3.1", "location": "a"}, {"current": "18.0.0", "latest": "18.3.1"}]}`

	pkgs, err := ParseOutdated([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "17.0.2", pkgs["react"].Current)
	assert.Equal(t, BumpMajor, pkgs["react"].Bump)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		current, latest string
		want            Bump
	}{
		{"1.0.0", "2.0.0", BumpMajor},
		{"1.2.0", "1.3.0", BumpMinor},
		{"1.2.3", "1.2.4", BumpPatch},
		{"1.2.3", "1.2.3", BumpNone},
		{"", "1.0.0", BumpUnknown},
		{"1.0.0", "latest", BumpUnknown},
		{"git", "1.0.0", BumpUnknown},
		{"1.0.0-beta.1", "1.0.0", BumpPatch},
	}

	for _, tt := range tests {
		t.Run(tt.current+"->"+tt.latest, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.current, tt.latest))
		})
	}
}
