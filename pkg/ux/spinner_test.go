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
	"bytes"
	"sync"
	"testing"
	"time"
)

// syncBuffer guards a bytes.Buffer for the spinner goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner_SilentOnNonTerminal(t *testing.T) {
	var buf syncBuffer
	s := NewSpinner(&buf, PersonalityStandard)

	s.Start("linting")
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	if buf.String() != "" {
		t.Errorf("spinner wrote to a non-terminal: %q", buf.String())
	}
}

func TestSpinner_StartStopEnabled(t *testing.T) {
	var buf syncBuffer
	s := &Spinner{w: &buf, enabled: true, interval: time.Millisecond}

	s.Start("analyzing")
	time.Sleep(20 * time.Millisecond)
	s.UpdateMessage("analyzing 2/3")
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	out := buf.String()
	if !bytes.Contains([]byte(out), []byte("analyzing")) {
		t.Errorf("spinner output missing message: %q", out)
	}
	if !bytes.HasSuffix([]byte(out), []byte("\r\033[K")) {
		t.Errorf("spinner should clear its line on stop: %q", out)
	}
}

func TestSpinner_StopTwice(t *testing.T) {
	var buf syncBuffer
	s := &Spinner{w: &buf, enabled: true, interval: time.Millisecond}

	s.Start("x")
	s.Stop()
	s.Stop()
}

func TestSpinner_MessageWithoutStart(t *testing.T) {
	s := NewSpinner(&bytes.Buffer{}, PersonalityMachine)
	s.UpdateMessage("idle")
	if s.Message() != "idle" {
		t.Errorf("Message() = %q, want idle", s.Message())
	}
	s.Stop()
}
