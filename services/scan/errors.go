// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package scan

import "errors"

var (
	// ErrInvalidRoot indicates the scan root does not exist or is not a directory.
	ErrInvalidRoot = errors.New("invalid scan root")

	// ErrInvalidPattern indicates a configured glob pattern is malformed.
	ErrInvalidPattern = errors.New("invalid glob pattern")
)
