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
	"strings"
	"time"
)

// DefaultConfigFile is the ESLint flat config file name.
const DefaultConfigFile = "eslint.config.js"

// LinterConfig describes how to invoke the linter.
type LinterConfig struct {
	// Command is the executable (e.g., "npx").
	Command string

	// Args come before the glob patterns (e.g., []string{"eslint"}).
	Args []string

	// ConfigFiles are the config file names accepted in the project dir.
	// The first is named in the missing-config warning.
	ConfigFiles []string

	// Subtree is the source directory name used for patterns and for
	// locating the project directory.
	Subtree string

	// Globs are the source globs, relative to the subtree, passed to the
	// linter in this order. A glob is used only when at least one file
	// matches its final element. They mirror the scanner's globs.
	Globs []string

	// Timeout is the maximum time to wait for the linter. Zero disables it.
	Timeout time.Duration
}

// DefaultLinterConfig returns the ESLint-via-npx configuration.
//
// Description:
//
//	ESLint is resolved through npx so the project's own ESLint version
//	is used. Only flat config (eslint.config.js) is accepted; legacy
//	.eslintrc projects get the migration warning.
func DefaultLinterConfig() LinterConfig {
	return LinterConfig{
		Command:     "npx",
		Args:        []string{"eslint"},
		ConfigFiles: []string{DefaultConfigFile},
		Subtree:     "src",
		Globs:       DefaultGlobs(),
		Timeout:     2 * time.Minute,
	}
}

// DefaultGlobs returns the JavaScript then TypeScript globs.
func DefaultGlobs() []string {
	return []string{"**/*.js", "**/*.ts"}
}

// Clone returns a deep copy of the config.
func (c LinterConfig) Clone() LinterConfig {
	clone := c
	clone.Args = append([]string(nil), c.Args...)
	clone.ConfigFiles = append([]string(nil), c.ConfigFiles...)
	clone.Globs = append([]string(nil), c.Globs...)
	return clone
}

// commandLine renders Command and Args for logs and errors.
func (c LinterConfig) commandLine() string {
	return strings.TrimSpace(c.Command + " " + strings.Join(c.Args, " "))
}

// primaryConfigFile returns the config file named in warnings.
func (c LinterConfig) primaryConfigFile() string {
	if len(c.ConfigFiles) == 0 {
		return DefaultConfigFile
	}
	return c.ConfigFiles[0]
}
