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
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/techdebt/cmd/techdebt/config"
	"github.com/AleutianAI/techdebt/pkg/ux"
)

// --- Global Command Variables ---
var (
	configPath      string
	reportFormat    string
	plainOutput     bool
	maxFiles        int
	subtree         string
	modelName       string
	concurrency     int
	logLevel        string
	logDir          string
	traceExporter   string
	metricsTextfile string

	rootCmd = &cobra.Command{
		Use:   "techdebt [path]",
		Short: "Report tech debt in a JavaScript/TypeScript project",
		Long: `techdebt scans a project for JavaScript and TypeScript sources, runs
ESLint and npm outdated, asks an OpenAI model to review the leading
source files, and prints the findings as Issue and Suggested fix lines.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Existing environment always wins over .env.
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load .env: %w", err)
			}
			return nil
		},
		RunE: runReport, // Defined in run.go
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the techdebt version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "techdebt %s\n", version)
		},
	}

	initCmd = &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default " + config.FileName + " into a project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			path := filepath.Join(dir, config.FileName)
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			p := ux.NewPrinter(out, ux.DetectPersonality(out))
			p.Box("techdebt init", "Wrote "+path)
			return p.Err()
		},
	}
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configPath, "config", "", "config file (default <path>/"+config.FileName+")")
	flags.StringVar(&reportFormat, "format", "", "report format: text, json or markdown")
	flags.BoolVar(&plainOutput, "plain", false, "plain output without colors or icons")
	flags.IntVar(&maxFiles, "max-files", 0, "number of source files sent for AI analysis")
	flags.StringVar(&subtree, "subtree", "", "source directory under the project root")
	flags.StringVar(&modelName, "model", "", "OpenAI model name")
	flags.IntVar(&concurrency, "concurrency", 0, "concurrent AI requests")
	flags.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.StringVar(&logDir, "log-dir", "", "also write JSON logs to this directory")
	flags.StringVar(&traceExporter, "trace-exporter", "", "trace exporter: otlp, stdout or none")
	flags.StringVar(&metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file on exit")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(cmd *cobra.Command, cfg *config.TechDebtConfig) {
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Report.Format = reportFormat
	}
	if plainOutput {
		cfg.Report.Personality = "machine"
	}
	if flags.Changed("max-files") {
		cfg.AI.MaxFiles = maxFiles
	}
	if flags.Changed("subtree") {
		cfg.Scan.Subtree = subtree
	}
	if flags.Changed("model") {
		cfg.AI.Model = modelName
	}
	if flags.Changed("concurrency") {
		cfg.AI.Concurrency = concurrency
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("log-dir") {
		cfg.Logging.Dir = logDir
	}
	if flags.Changed("trace-exporter") {
		cfg.Telemetry.TraceExporter = traceExporter
	}
	if flags.Changed("metrics-textfile") {
		cfg.Telemetry.MetricsTextfile = metricsTextfile
		if cfg.Telemetry.MetricExporter == "" || cfg.Telemetry.MetricExporter == "none" {
			cfg.Telemetry.MetricExporter = "prometheus"
		}
	}
}
