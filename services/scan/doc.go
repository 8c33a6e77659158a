// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package scan discovers the files a tech-debt run works on.
//
// A scan produces three lists from a project root: TypeScript sources,
// JavaScript sources, and package.json manifests. Source lists are limited
// to a subtree of the root (src by default); manifests are collected from
// the whole tree and ordered so the project's own manifest comes first.
//
// # Usage
//
//	s := scan.New(scan.DefaultOptions())
//	files, err := s.Scan(ctx, "./my-app")
//	if err != nil {
//	    return err
//	}
//	fmt.Println("Files scanned:", files.Total())
//
// # Thread Safety
//
// A Scanner holds only configuration and is safe for concurrent use.
// A FileSet is not modified after Scan returns.
package scan
