// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filepos

import (
	"sort"
	"unicode/utf8"

	"go.lsp.dev/protocol"
)

// TextDocument is an immutable snapshot of a document's text that maps between
// byte offsets and editor positions.
//
// Editor positions follow the Language Server Protocol: zero-based lines and
// characters counted in UTF-16 code units.
type TextDocument struct {
	uri         string
	text        string
	lineOffsets []int
}

func NewTextDocument(uri, text string) *TextDocument {
	return &TextDocument{uri: uri, text: text, lineOffsets: LineOffsets(text)}
}

func (d *TextDocument) URI() string  { return d.uri }
func (d *TextDocument) Text() string { return d.text }

func (d *TextDocument) LineCount() int { return len(d.lineOffsets) }

// LineOffsets returns the byte offset at which each line of text starts.
// "\n", "\r\n" and a lone "\r" all terminate a line.
func LineOffsets(text string) []int {
	offsets := []int{0}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			offsets = append(offsets, i+1)
		case '\n':
			offsets = append(offsets, i+1)
		}
	}
	return offsets
}

// LineBounds returns the start offset of line and the offset where its content
// ends (excluding the line terminator).
func (d *TextDocument) LineBounds(line int) (int, int) {
	if line < 0 {
		return 0, 0
	}
	if line >= len(d.lineOffsets) {
		return len(d.text), len(d.text)
	}
	start := d.lineOffsets[line]
	end := len(d.text)
	if line+1 < len(d.lineOffsets) {
		end = d.lineOffsets[line+1]
	}
	for end > start && (d.text[end-1] == '\n' || d.text[end-1] == '\r') {
		end--
	}
	return start, end
}

// Line returns the content of the zero-based line, without its terminator.
func (d *TextDocument) Line(line int) string {
	start, end := d.LineBounds(line)
	return d.text[start:end]
}

// LineOf returns the zero-based line containing offset.
func (d *TextDocument) LineOf(offset int) int {
	offset = d.clamp(offset)
	return sort.Search(len(d.lineOffsets), func(i int) bool { return d.lineOffsets[i] > offset }) - 1
}

// OffsetAt converts an editor position to a byte offset. Characters past the
// end of a line clamp to the end of that line's content.
func (d *TextDocument) OffsetAt(pos protocol.Position) int {
	line := int(pos.Line)
	if line >= len(d.lineOffsets) {
		return len(d.text)
	}
	start, end := d.LineBounds(line)
	units := int(pos.Character)
	offset := start
	for offset < end && units > 0 {
		r, size := utf8.DecodeRuneInString(d.text[offset:end])
		units -= utf16Len(r)
		if units < 0 {
			break
		}
		offset += size
	}
	return offset
}

// PositionAt converts a byte offset to an editor position.
func (d *TextDocument) PositionAt(offset int) protocol.Position {
	offset = d.clamp(offset)
	line := d.LineOf(offset)
	start := d.lineOffsets[line]
	units := 0
	for i := start; i < offset; {
		r, size := utf8.DecodeRuneInString(d.text[i:])
		if i+size > offset {
			break
		}
		units += utf16Len(r)
		i += size
	}
	return protocol.Position{Line: uint32(line), Character: uint32(units)}
}

// RangeAt converts a [start,end) byte span to an editor range.
func (d *TextDocument) RangeAt(start, end int) protocol.Range {
	return protocol.Range{Start: d.PositionAt(start), End: d.PositionAt(end)}
}

func (d *TextDocument) clamp(offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > len(d.text) {
		return len(d.text)
	}
	return offset
}

func utf16Len(r rune) int {
	if r >= 0x10000 {
		return 2
	}
	return 1
}
