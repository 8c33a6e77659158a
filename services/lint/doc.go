// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package lint runs ESLint over a scanned JavaScript/TypeScript project.
//
// The runner works out the project directory from the scanned sources,
// builds one glob pattern per language present, checks that the project
// carries an ESLint flat config, and runs the linter once. Its raw text
// output becomes context for the AI analyzer and input for the report.
//
// # Outcomes
//
//	| Status         | When                                   | Text()                         |
//	|----------------|----------------------------------------|--------------------------------|
//	| StatusOK       | eslint exited 0                        | eslint stdout, verbatim        |
//	| StatusNoFiles  | no .js or .ts file in the list         | "No JS or TS files found..."   |
//	| StatusNoConfig | no eslint.config.js in the project dir | config warning + guide URL     |
//	| StatusFailed   | non-zero exit, missing tool, timeout   | "Error running ESLint."        |
//	| StatusSkipped  | empty file list                        | ""                             |
//
// The linter is not invoked for NoFiles, NoConfig or Skipped.
//
// # Usage
//
//	runner := lint.NewRunner(lint.WithTimeout(time.Minute))
//	res := runner.Run(ctx, files.Sources(), root)
//	fmt.Println(res.Text())
//
// # Thread Safety
//
// A Runner is safe for concurrent use.
package lint
