// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// TTY writes results to stdout and warnings and debug output to stderr.
// It is safe for concurrent use; the language server logs from timers.
type TTY struct {
	debug  bool
	stdout io.Writer
	stderr io.Writer
	mu     *sync.Mutex
}

var _ UI = TTY{}

func NewTTY(debug bool) TTY {
	return NewCustomWriterTTY(debug, os.Stdout, os.Stderr)
}

// NewStderrTTY keeps stdout free, as required when stdout carries the
// language server protocol.
func NewStderrTTY(debug bool) TTY {
	return NewCustomWriterTTY(debug, os.Stderr, os.Stderr)
}

// Used for testing whether TTY writes correct output to stdout/stderr
func NewCustomWriterTTY(debug bool, stdout, stderr io.Writer) TTY {
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	return TTY{debug, stdout, stderr, &sync.Mutex{}}
}

func (t TTY) Printf(str string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.stdout, str, args...)
}

func (t TTY) Warnf(str string, args ...interface{}) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(t.stderr, str, args...)
}

func (t TTY) Debugf(str string, args ...interface{}) {
	if t.debug {
		t.Warnf(str, args...)
	}
}

func (t TTY) DebugWriter() io.Writer {
	if t.debug {
		return t.stderr
	}
	return noopWriter{}
}

type noopWriter struct{}

var _ io.Writer = noopWriter{}

func (w noopWriter) Write(data []byte) (int, error) { return len(data), nil }
