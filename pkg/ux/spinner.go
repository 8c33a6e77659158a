// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ux

import (
	"fmt"
	"io"
	"sync"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner provides an animated progress indicator on a terminal.
//
// On a non-terminal writer, or at machine level, the spinner is silent:
// progress lines would only pollute captured output.
type Spinner struct {
	w          io.Writer
	enabled    bool
	message    string
	stop       chan struct{}
	done       chan struct{}
	mu         sync.Mutex
	isRunning  bool
	frameIndex int
	interval   time.Duration
}

// NewSpinner creates a spinner that draws on w.
func NewSpinner(w io.Writer, level PersonalityLevel) *Spinner {
	return &Spinner{
		w:        w,
		enabled:  level != PersonalityMachine && IsTerminal(w),
		interval: 80 * time.Millisecond,
	}
}

// Start begins the animation with the given message.
func (s *Spinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.message = message
	if s.isRunning || !s.enabled {
		return
	}
	s.isRunning = true
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.loop(s.stop, s.done)
}

func (s *Spinner) loop(stop, done chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	defer close(done)

	for {
		select {
		case <-stop:
			fmt.Fprint(s.w, "\r\033[K")
			return
		case <-ticker.C:
			s.mu.Lock()
			frame := spinnerFrames[s.frameIndex]
			msg := s.message
			s.frameIndex = (s.frameIndex + 1) % len(spinnerFrames)
			s.mu.Unlock()
			fmt.Fprintf(s.w, "\r%s %s", frame, msg)
		}
	}
}

// UpdateMessage changes the message while running.
func (s *Spinner) UpdateMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// Stop halts the animation and clears the line. Safe to call twice.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	close(stop)
	<-done
}

// Message returns the current message.
func (s *Spinner) Message() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.message
}
