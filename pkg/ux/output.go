// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package ux provides terminal output styling for the techdebt CLI.
//
// All output goes through a Printer bound to an explicit io.Writer; nothing
// in this package writes to os.Stdout on its own.
package ux

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Color palette
var (
	ColorTealBright  = lipgloss.Color("#2CD7C7") // highlights, success
	ColorTealPrimary = lipgloss.Color("#20B9B4")
	ColorTealDeep    = lipgloss.Color("#16858E") // borders
	ColorSlate       = lipgloss.Color("#2C4A54") // muted text

	ColorSuccess = lipgloss.Color("#2CD7C7")
	ColorWarning = lipgloss.Color("#F4D03F")
	ColorError   = lipgloss.Color("#E74C3C")
	ColorMuted   = lipgloss.Color("#2C4A54")
)

// Icon provides themed status icons
type Icon string

const (
	IconIssue   Icon = "❌"
	IconFix     Icon = "✅"
	IconNote    Icon = "ℹ"
	IconError   Icon = "✗"
)

// Styles holds the lipgloss styles bound to one renderer.
type Styles struct {
	Title   lipgloss.Style
	Bold    lipgloss.Style
	Muted   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Box     lipgloss.Style
}

// newStyles builds the palette on r so color support follows r's writer.
func newStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Title:   r.NewStyle().Bold(true).Foreground(ColorTealBright),
		Bold:    r.NewStyle().Bold(true),
		Muted:   r.NewStyle().Foreground(ColorSlate),
		Success: r.NewStyle().Foreground(ColorSuccess),
		Warning: r.NewStyle().Foreground(ColorWarning),
		Error:   r.NewStyle().Foreground(ColorError),
		Box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorTealDeep).
			Padding(0, 1),
	}
}

// Printer writes styled lines to a single destination.
//
// Thread Safety: Not safe for concurrent use; callers serialize writes.
type Printer struct {
	w      io.Writer
	level  PersonalityLevel
	styles Styles
	err    error
}

// NewPrinter creates a printer for w at the given personality level.
func NewPrinter(w io.Writer, level PersonalityLevel) *Printer {
	r := lipgloss.NewRenderer(w)
	if !level.ShowsColors() {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{
		w:      w,
		level:  level,
		styles: newStyles(r),
	}
}

// Level returns the printer's personality level.
func (p *Printer) Level() PersonalityLevel {
	return p.level
}

// Styles returns the printer's styles.
func (p *Printer) Styles() Styles {
	return p.styles
}

// Err returns the first write error, if any.
func (p *Printer) Err() error {
	return p.err
}

// Println writes text followed by a newline.
func (p *Printer) Println(text string) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintln(p.w, text)
}

// Bold prints a bold line
func (p *Printer) Bold(text string) {
	p.Println(p.styles.Bold.Render(text))
}

// Success prints a success message
func (p *Printer) Success(text string) {
	switch p.level {
	case PersonalityMachine:
		p.Println(text)
	default:
		p.Println(p.styles.Success.Render(text))
	}
}

// Error prints an error message with an icon
func (p *Printer) Error(text string) {
	switch p.level {
	case PersonalityMachine:
		p.Println("ERROR: " + text)
	default:
		p.Println(fmt.Sprintf("%s %s", p.styles.Error.Render(string(IconError)), p.styles.Error.Render(text)))
	}
}

// Item prints a bulleted, labelled line: "- <icon> <label>: <text>".
//
// Machine output drops the icon but keeps the label so the line stays
// greppable.
func (p *Printer) Item(icon Icon, label, text string, style lipgloss.Style) {
	if !p.level.ShowsIcons() {
		p.Println(fmt.Sprintf("- %s: %s", label, text))
		return
	}
	p.Println(fmt.Sprintf("- %s %s %s", icon, style.Render(label+":"), text))
}

// Box prints text in a rounded box at full level, "title: content" otherwise.
func (p *Printer) Box(title, content string) {
	if p.level != PersonalityFull {
		p.Println(fmt.Sprintf("%s: %s", title, content))
		return
	}
	p.Println(p.styles.Box.Width(60).Render(p.styles.Title.Render(title) + "\n" + content))
}
