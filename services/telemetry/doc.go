// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry sets up OpenTelemetry tracing and metrics for a CLI run.
//
// Stages use otel.Tracer and otel.Meter directly; this package only
// installs the providers and tears them down. Telemetry is off unless an
// exporter is selected.
//
// # Traces
//
//   - none: no provider is installed (default)
//   - stdout: spans are pretty-printed to the configured writer (stderr)
//   - otlp: spans are pushed over gRPC to OTLPEndpoint
//
// # Metrics
//
//   - none: no provider is installed (default)
//   - prometheus: instruments are collected in a private registry. When
//     MetricsTextfile is set, the registry is written there on shutdown in
//     the node_exporter textfile format.
//   - stdout: metrics are printed to the configured writer on shutdown
//
// # Usage
//
//	shutdown, err := telemetry.Init(ctx, cfg)
//	if err != nil {
//	    return fmt.Errorf("init telemetry: %w", err)
//	}
//	defer shutdown(context.Background())
//
// # Environment Variables
//
//   - OTEL_TRACES_EXPORTER: otlp, stdout, or none
//   - OTEL_METRICS_EXPORTER: prometheus, stdout, or none
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint (default: localhost:4317)
package telemetry
