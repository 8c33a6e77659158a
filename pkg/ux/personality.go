// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// PersonalityEnv overrides terminal detection when set.
const PersonalityEnv = "TECHDEBT_PERSONALITY"

// PersonalityLevel defines the richness of CLI output
type PersonalityLevel string

const (
	// PersonalityFull enables colors, icons and boxes
	PersonalityFull PersonalityLevel = "full"

	// PersonalityStandard enables colors and icons
	PersonalityStandard PersonalityLevel = "standard"

	// PersonalityMinimal uses icons without colors
	PersonalityMinimal PersonalityLevel = "minimal"

	// PersonalityMachine outputs plain text suitable for scripting and parsing
	PersonalityMachine PersonalityLevel = "machine"
)

// ParsePersonalityLevel converts a string to PersonalityLevel
func ParsePersonalityLevel(s string) PersonalityLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full", "f":
		return PersonalityFull
	case "standard", "std", "s":
		return PersonalityStandard
	case "minimal", "min", "m":
		return PersonalityMinimal
	case "machine", "plain", "quiet", "q":
		return PersonalityMachine
	default:
		return PersonalityStandard
	}
}

// DetectPersonality picks a level for output written to w.
//
// The environment variable wins. Otherwise a terminal gets the standard
// level and anything else (pipes, files, buffers) gets machine output.
func DetectPersonality(w io.Writer) PersonalityLevel {
	if envLevel := os.Getenv(PersonalityEnv); envLevel != "" {
		return ParsePersonalityLevel(envLevel)
	}
	if IsTerminal(w) {
		return PersonalityStandard
	}
	return PersonalityMachine
}

// IsTerminal reports whether w is a terminal file descriptor.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// ShowsColors returns true if the level uses colors
func (l PersonalityLevel) ShowsColors() bool {
	return l == PersonalityFull || l == PersonalityStandard
}

// ShowsIcons returns true if the level decorates lines with icons
func (l PersonalityLevel) ShowsIcons() bool {
	return l != PersonalityMachine
}
