// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"time"

	"github.com/AleutianAI/techdebt/services/telemetry"
)

// TechDebtConfig is the root of .techdebt.yaml.
type TechDebtConfig struct {
	Scan      ScanConfig       `yaml:"scan"`
	Lint      LintConfig       `yaml:"lint"`
	Deps      DepsConfig       `yaml:"deps"`
	AI        AIConfig         `yaml:"ai"`
	Report    ReportConfig     `yaml:"report"`
	Logging   LoggingConfig    `yaml:"logging"`
	Telemetry telemetry.Config `yaml:"telemetry"`
}

type ScanConfig struct {
	Subtree          string   `yaml:"subtree"`         // e.g. src
	TypeScriptGlob   string   `yaml:"typescript_glob"` // e.g. **/*.ts
	JavaScriptGlob   string   `yaml:"javascript_glob"` // e.g. **/*.js
	ManifestGlob     string   `yaml:"manifest_glob"`   // e.g. **/package.json
	ExcludeDirs      []string `yaml:"exclude_dirs"`
	RespectGitignore bool     `yaml:"respect_gitignore"`
}

type LintConfig struct {
	Command     string        `yaml:"command" validate:"required"` // e.g. npx
	Args        []string      `yaml:"args"`                        // e.g. [eslint]
	ConfigFiles []string      `yaml:"config_files" validate:"required,min=1,dive,required"`
	Timeout     time.Duration `yaml:"timeout" validate:"gte=0"`
}

type DepsConfig struct {
	Command string        `yaml:"command" validate:"required"` // e.g. npm
	Args    []string      `yaml:"args"`                        // e.g. [outdated, --json]
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
}

// AIConfig bounds the per-file model requests.
type AIConfig struct {
	Model             string        `yaml:"model" validate:"required"`
	BaseURL           string        `yaml:"base_url,omitempty" validate:"omitempty,url"`
	SystemPrompt      string        `yaml:"system_prompt,omitempty"`
	MaxFiles          int           `yaml:"max_files" validate:"gte=1"`
	MaxLines          int           `yaml:"max_lines" validate:"gte=1"`
	MaxChars          int           `yaml:"max_chars" validate:"gte=1"`
	MaxLintChars      int           `yaml:"max_lint_chars" validate:"gte=1"`
	MaxTokens         int           `yaml:"max_tokens" validate:"gte=1,lte=32768"`
	Concurrency       int           `yaml:"concurrency" validate:"gte=1,lte=16"`
	RequestsPerMinute int           `yaml:"requests_per_minute" validate:"gte=0"`
	Timeout           time.Duration `yaml:"timeout" validate:"gte=0"`
}

type ReportConfig struct {
	Format      string `yaml:"format" validate:"omitempty,oneof=text json markdown md"`
	Personality string `yaml:"personality,omitempty" validate:"omitempty,oneof=full standard minimal machine plain"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Dir   string `yaml:"dir,omitempty"` // e.g. ~/.techdebt/logs
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns the settings used when no file is present.
func DefaultConfig() TechDebtConfig {
	return TechDebtConfig{
		Scan: ScanConfig{
			Subtree:          "src",
			TypeScriptGlob:   "**/*.ts",
			JavaScriptGlob:   "**/*.js",
			ManifestGlob:     "**/package.json",
			ExcludeDirs:      []string{"node_modules"},
			RespectGitignore: true,
		},
		Lint: LintConfig{
			Command:     "npx",
			Args:        []string{"eslint"},
			ConfigFiles: []string{"eslint.config.js"},
			Timeout:     2 * time.Minute,
		},
		Deps: DepsConfig{
			Command: "npm",
			Args:    []string{"outdated", "--json"},
			Timeout: 2 * time.Minute,
		},
		AI: AIConfig{
			Model:        "gpt-4",
			MaxFiles:     3,
			MaxLines:     200,
			MaxChars:     4000,
			MaxLintChars: 2000,
			MaxTokens:    500,
			Concurrency:  1,
			Timeout:      time.Minute,
		},
		Report: ReportConfig{
			Format: "text",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
		Telemetry: telemetry.DefaultConfig(),
	}
}
