// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/techdebt/cmd/techdebt/config"
	"github.com/AleutianAI/techdebt/pkg/logging"
	"github.com/AleutianAI/techdebt/pkg/ux"
	"github.com/AleutianAI/techdebt/services/analyzer"
	"github.com/AleutianAI/techdebt/services/deps"
	"github.com/AleutianAI/techdebt/services/lint"
	"github.com/AleutianAI/techdebt/services/llm"
	"github.com/AleutianAI/techdebt/services/pipeline"
	"github.com/AleutianAI/techdebt/services/report"
	"github.com/AleutianAI/techdebt/services/scan"
	"github.com/AleutianAI/techdebt/services/telemetry"
)

// missingCredentialMessage is printed, in red, when OPENAI_API_KEY is unset.
const missingCredentialMessage = "Missing OPENAI_API_KEY environment variable."

const telemetryShutdownTimeout = 5 * time.Second

// runReport is the root command: one scan, one report on stdout.
func runReport(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}

	// Nothing runs, not even config loading, without the key.
	apiKey := os.Getenv("OPENAI_API_KEY")
	if err := pipeline.CheckCredential(apiKey); err != nil {
		return err
	}

	cfg, cfgFile, err := config.Load(configPath, root)
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	level, err := logging.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return err
	}
	logger := logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Logging.Dir,
		Service: "techdebt",
		JSON:    cfg.Logging.JSON,
	})
	defer logger.Close()
	log := logger.Slog()
	if cfgFile != "" {
		log.Debug("Loaded config", slog.String("path", cfgFile))
	}

	ctx := cmd.Context()
	cfg.Telemetry.ServiceVersion = version
	shutdown, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), telemetryShutdownTimeout)
		defer cancel()
		if err := shutdown(sctx); err != nil {
			log.Warn("Telemetry shutdown failed", slog.String("error", err.Error()))
		}
	}()

	stages, err := buildDependencies(cfg, apiKey, cmd.OutOrStdout(), cmd.ErrOrStderr(), log)
	if err != nil {
		return err
	}

	_, err = pipeline.New(pipeline.Config{Root: root, APIKey: apiKey}, stages).Run(ctx)
	return err
}

// buildDependencies wires every stage from the merged config.
func buildDependencies(cfg config.TechDebtConfig, apiKey string, stdout, stderr io.Writer, log *slog.Logger) (pipeline.Dependencies, error) {
	format, err := report.ParseFormat(cfg.Report.Format)
	if err != nil {
		return pipeline.Dependencies{}, err
	}

	client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
		APIKey:       apiKey,
		Model:        cfg.AI.Model,
		BaseURL:      cfg.AI.BaseURL,
		SystemPrompt: cfg.AI.SystemPrompt,
		Logger:       log,
	})
	if err != nil {
		return pipeline.Dependencies{}, err
	}

	scanner := scan.New(scan.Options{
		TypeScriptGlob:   cfg.Scan.TypeScriptGlob,
		JavaScriptGlob:   cfg.Scan.JavaScriptGlob,
		ManifestGlob:     cfg.Scan.ManifestGlob,
		Subtree:          cfg.Scan.Subtree,
		ExcludeDirs:      cfg.Scan.ExcludeDirs,
		RespectGitignore: cfg.Scan.RespectGitignore,
	})

	linter := lint.NewRunner(
		lint.WithConfig(lint.LinterConfig{
			Command:     cfg.Lint.Command,
			Args:        cfg.Lint.Args,
			ConfigFiles: cfg.Lint.ConfigFiles,
			Subtree:     cfg.Scan.Subtree,
			Globs:       []string{cfg.Scan.JavaScriptGlob, cfg.Scan.TypeScriptGlob},
			Timeout:     cfg.Lint.Timeout,
		}),
		lint.WithLogger(log),
	)

	checker := deps.NewChecker(
		deps.WithCommand(cfg.Deps.Command, cfg.Deps.Args...),
		deps.WithTimeout(cfg.Deps.Timeout),
		deps.WithLogger(log),
	)

	ai := analyzer.New(client, analyzer.Options{
		MaxFiles:          cfg.AI.MaxFiles,
		MaxLines:          cfg.AI.MaxLines,
		MaxChars:          cfg.AI.MaxChars,
		MaxLintChars:      cfg.AI.MaxLintChars,
		MaxTokens:         cfg.AI.MaxTokens,
		Concurrency:       cfg.AI.Concurrency,
		RequestsPerMinute: cfg.AI.RequestsPerMinute,
		Timeout:           cfg.AI.Timeout,
		Logger:            log,
	})

	return pipeline.Dependencies{
		Scanner:  scanner,
		Linter:   linter,
		Deps:     checker,
		Analyzer: ai,
		Reporter: report.NewGenerator(stdout,
			report.WithFormat(format),
			report.WithPersonality(personalityFor(cfg, stdout)),
		),
		Progress: ux.NewSpinner(stderr, personalityFor(cfg, stderr)),
		Logger:   log,
	}, nil
}

// personalityFor resolves the output level for w: the configured level
// if any, otherwise detection on w.
func personalityFor(cfg config.TechDebtConfig, w io.Writer) ux.PersonalityLevel {
	if cfg.Report.Personality != "" {
		return ux.ParsePersonalityLevel(cfg.Report.Personality)
	}
	return ux.DetectPersonality(w)
}

// printError reports a fatal error on w.
func printError(w io.Writer, err error) {
	p := ux.NewPrinter(w, ux.DetectPersonality(w))
	if errors.Is(err, pipeline.ErrMissingCredential) {
		p.Println(p.Styles().Error.Render(missingCredentialMessage))
		return
	}
	p.Error(err.Error())
}
