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
	"time"
)

// =============================================================================
// MESSAGES
// =============================================================================

const (
	// MessageNoFiles is the text reported when there is nothing to lint.
	MessageNoFiles = "No JS or TS files found to lint."

	// MessageFailed is the text reported when the linter does not succeed.
	MessageFailed = "Error running ESLint."

	// MigrationGuideURL points users at the flat-config migration guide.
	MigrationGuideURL = "https://eslint.org/docs/latest/use/configure/migration-guide"
)

// NoConfigMessage returns the warning reported when no config file exists.
func NoConfigMessage(configFile string) string {
	return "Warning: ESLint config file (" + configFile + ") not found in target project. Skipping linting.\n" +
		"See " + MigrationGuideURL + " for migration info."
}

// =============================================================================
// STATUS
// =============================================================================

// Status is the outcome of a lint run.
type Status string

const (
	// StatusOK means the linter ran and exited successfully.
	StatusOK Status = "ok"

	// StatusNoFiles means no .js or .ts file was supplied.
	StatusNoFiles Status = "no_files"

	// StatusNoConfig means the project has no ESLint config file.
	StatusNoConfig Status = "no_config"

	// StatusFailed means the linter exited non-zero, was missing, or timed out.
	StatusFailed Status = "failed"

	// StatusSkipped means the run was not attempted.
	StatusSkipped Status = "skipped"
)

// =============================================================================
// RESULT
// =============================================================================

// Result contains the outcome of one lint run.
//
// Thread Safety: Immutable after creation.
type Result struct {
	// Status classifies the run.
	Status Status `json:"status"`

	// Output is the linter's stdout. Only set for StatusOK.
	Output string `json:"output,omitempty"`

	// Err is the cause of a StatusFailed run.
	Err error `json:"-"`

	// Patterns are the glob patterns passed to the linter.
	Patterns []string `json:"patterns,omitempty"`

	// WorkDir is the directory the linter ran (or would have run) in.
	WorkDir string `json:"work_dir,omitempty"`

	// ConfigFile is the config file that was looked for when missing.
	ConfigFile string `json:"config_file,omitempty"`

	// Duration is how long the linter process took.
	Duration time.Duration `json:"duration_ns"`
}

// Text returns the lint text consumed by analysis and reporting.
//
// For StatusOK it is the raw linter output. Every other status maps to a
// fixed message.
func (r Result) Text() string {
	switch r.Status {
	case StatusOK:
		return r.Output
	case StatusNoFiles:
		return MessageNoFiles
	case StatusNoConfig:
		configFile := r.ConfigFile
		if configFile == "" {
			configFile = DefaultConfigFile
		}
		return NoConfigMessage(configFile)
	case StatusFailed:
		return MessageFailed
	default:
		return ""
	}
}

// Succeeded reports whether the linter ran and exited 0.
func (r Result) Succeeded() bool {
	return r.Status == StatusOK
}

// ErrorString returns Err as text, or "" when unset.
func (r Result) ErrorString() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}
