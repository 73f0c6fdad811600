// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filepos

import (
	"fmt"
)

// Position is a human-facing location: a file, a 1-based line and a 1-based
// column, along with a cached copy of the source line.
type Position struct {
	lineNum int // 1 based
	column  int // 1 based, 0 when unknown
	file    string
	line    string
	known   bool
}

// NewPositionInFile returns the Position of line "lineNum" within the file "file"
func NewPositionInFile(lineNum int, file string) *Position {
	if lineNum <= 0 {
		panic("Lines are 1 based")
	}
	return &Position{lineNum: lineNum, file: file, known: true}
}

func (p *Position) SetLine(line string) { p.line = line }

// SetColumn records the 1-based column within the line.
func (p *Position) SetColumn(col int) {
	if col <= 0 {
		panic("Columns are 1 based")
	}
	p.column = col
}

func (p *Position) IsKnown() bool { return p != nil && p.known }

func (p *Position) GetLine() string {
	return p.line
}

// AsCompactString renders "file:line" or "file:line:col" when the column is known.
func (p *Position) AsCompactString() string {
	filePrefix := p.file
	if len(filePrefix) > 0 {
		filePrefix += ":"
	}
	if p.IsKnown() {
		if p.column > 0 {
			return fmt.Sprintf("%s%d:%d", filePrefix, p.lineNum, p.column)
		}
		return fmt.Sprintf("%s%d", filePrefix, p.lineNum)
	}
	return fmt.Sprintf("%s?", filePrefix)
}
