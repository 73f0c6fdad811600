// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package validations

import (
	"fmt"
	"sync"
)

type Severity int

const (
	SeverityError Severity = iota + 1
	SeverityWarning
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityHint:
		return "hint"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

type ErrorCode int

const (
	CodeUndefined ErrorCode = iota
	CodeEnumValueMismatch
)

// Problem is a schema violation found at [Start,End) of the document.
type Problem struct {
	Start    int
	End      int
	Severity Severity
	Code     ErrorCode
	// Depth is how many nodes deep the validation was when the problem was
	// found; the root node is at depth 0.
	Depth int

	message    *lazyMessage
	customized bool
}

// Message renders the problem text. Rendering happens at most once.
func (p Problem) Message() string {
	if p.message == nil {
		return ""
	}
	return p.message.get()
}

type lazyMessage struct {
	once sync.Once
	fn   func() string
	val  string
}

func newMessage(fn func() string) *lazyMessage { return &lazyMessage{fn: fn} }

func staticMessage(msg string) *lazyMessage {
	return newMessage(func() string { return msg })
}

func (m *lazyMessage) get() string {
	m.once.Do(func() {
		m.val = m.fn()
		m.fn = nil
	})
	return m.val
}

// NewProblem builds a problem with a fixed message; used for problems that
// do not come out of schema validation, such as syntax errors.
func NewProblem(start, end int, severity Severity, msg string) Problem {
	return Problem{Start: start, End: end, Severity: severity, message: staticMessage(msg)}
}
