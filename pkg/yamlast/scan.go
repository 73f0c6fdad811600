// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlast

import (
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// yaml.v3 reports 1-based lines and columns counted in characters; the AST
// needs byte offsets and ends, which are recovered by scanning the source.

func (c *converter) offsetOf(line, column int) int {
	if line <= 0 {
		return 0
	}
	if line > len(c.lines) {
		return len(c.text)
	}
	offset, end := c.lineBounds(line - 1)
	for col := 1; col < column && offset < end; col++ {
		_, size := utf8.DecodeRuneInString(c.text[offset:end])
		offset += size
	}
	return offset
}

func (c *converter) lineBounds(line int) (int, int) {
	start := c.lines[line]
	end := len(c.text)
	if line+1 < len(c.lines) {
		end = c.lines[line+1]
	}
	for end > start && (c.text[end-1] == '\n' || c.text[end-1] == '\r') {
		end--
	}
	return start, end
}

func (c *converter) lineOf(offset int) int {
	return sort.Search(len(c.lines), func(i int) bool { return c.lines[i] > offset }) - 1
}

func (c *converter) lineEnd(offset int) int {
	_, end := c.lineBounds(c.lineOf(offset))
	return end
}

// columnOf returns the 0-based character column of offset.
func (c *converter) columnOf(offset int) int {
	start, _ := c.lineBounds(c.lineOf(offset))
	return utf8.RuneCountInString(c.text[start:offset])
}

// lineIndent returns the number of leading blanks on the line holding offset.
func (c *converter) lineIndent(offset int) int {
	start, end := c.lineBounds(c.lineOf(offset))
	i := start
	for i < end && isBlank(c.text[i]) {
		i++
	}
	return i - start
}

// startOf returns where n's content begins, past any anchor or tag.
func (c *converter) startOf(n *yaml.Node) int {
	off := c.offsetOf(n.Line, n.Column)
	if off >= len(c.text) || (c.text[off] != '&' && c.text[off] != '!') {
		return off
	}

	i := off
	for i < len(c.text) && (c.text[i] == '&' || c.text[i] == '!') {
		for i < len(c.text) && !isWhitespace(c.text[i]) {
			i++
		}
		for i < len(c.text) && isBlank(c.text[i]) {
			i++
		}
	}

	if n.Kind == yaml.ScalarNode {
		if i >= len(c.text) || isLineBreak(c.text[i]) || c.text[i] == '#' {
			return off
		}
		return i
	}
	return c.skipSpaceAndComments(i)
}

func (c *converter) scalarEnd(n *yaml.Node, start int, flow bool, indent int) int {
	if start >= len(c.text) {
		return len(c.text)
	}
	switch {
	case n.Style&yaml.DoubleQuotedStyle != 0 && c.text[start] == '"':
		return c.quotedEnd(start)
	case n.Style&yaml.SingleQuotedStyle != 0 && c.text[start] == '\'':
		return c.quotedEnd(start)
	case n.Style&(yaml.LiteralStyle|yaml.FoldedStyle) != 0:
		return c.blockEnd(start, indent)
	default:
		return c.plainEnd(start, flow, indent, n.Value)
	}
}

func (c *converter) quotedEnd(start int) int {
	quote := c.text[start]
	for i := start + 1; i < len(c.text); i++ {
		switch c.text[i] {
		case '\\':
			if quote == '"' {
				i++
			}
		case quote:
			if quote == '\'' && i+1 < len(c.text) && c.text[i+1] == '\'' {
				i++
				continue
			}
			return i + 1
		}
	}
	return len(c.text)
}

// blockEnd covers a literal or folded scalar: the header and every following
// line indented deeper than indent.
func (c *converter) blockEnd(start, indent int) int {
	end := start
	for end < len(c.text) && strings.IndexByte("|>+-0123456789", c.text[end]) >= 0 {
		end++
	}
	for line := c.lineOf(start) + 1; line < len(c.lines); line++ {
		lineStart, lineEnd := c.lineBounds(line)
		content := lineStart
		for content < lineEnd && isBlank(c.text[content]) {
			content++
		}
		if content == lineEnd {
			continue
		}
		if content-lineStart <= indent {
			break
		}
		end = lineEnd
	}
	return end
}

// plainEnd covers a plain scalar, following continuation lines while the
// folded value is longer than what has been covered so far.
func (c *converter) plainEnd(start int, flow bool, indent int, value string) int {
	end := c.plainLineEnd(start, flow)
	covered := end - start
	blankRun := 0

	for line := c.lineOf(end) + 1; covered < len(value) && line < len(c.lines); line++ {
		lineStart, lineEnd := c.lineBounds(line)
		content := lineStart
		for content < lineEnd && isBlank(c.text[content]) {
			content++
		}
		if content == lineEnd {
			blankRun++
			continue
		}
		if !flow && content-lineStart <= indent {
			break
		}
		if c.text[content] == '#' {
			break
		}
		contentEnd := c.plainLineEnd(content, flow)
		if contentEnd == content {
			break
		}
		if blankRun == 0 {
			blankRun = 1
		}
		covered += blankRun + contentEnd - content
		blankRun = 0
		end = contentEnd
	}
	return end
}

func (c *converter) plainLineEnd(start int, flow bool) int {
	lineEnd := c.lineEnd(start)
	end := start
	for i := start; i < lineEnd; i++ {
		ch := c.text[i]
		if isBlank(ch) {
			if i+1 < lineEnd && c.text[i+1] == '#' {
				break
			}
			continue
		}
		if ch == ':' && (i+1 == lineEnd || isBlank(c.text[i+1]) || flow && isFlowIndicator(c.text[i+1])) {
			break
		}
		if flow && isFlowIndicator(ch) {
			break
		}
		end = i + 1
	}
	return end
}

// tokenEnd covers a single token such as an alias or a tag.
func (c *converter) tokenEnd(start int, flow bool) int {
	i := start
	for i < len(c.text) && !isWhitespace(c.text[i]) && !(flow && isFlowIndicator(c.text[i])) {
		i++
	}
	return i
}

func (c *converter) findColon(from int) int {
	i := from
	for i < len(c.text) && isBlank(c.text[i]) {
		i++
	}
	if i < len(c.text) && c.text[i] == ':' {
		return i
	}
	return -1
}

func (c *converter) findDash(from int) int {
	i := c.skipSpaceAndComments(from)
	if i < len(c.text) && c.text[i] == '-' {
		return i
	}
	return from
}

func (c *converter) closingEnd(from int, closer byte) int {
	i := from
	for i < len(c.text) {
		i = c.skipSpaceAndComments(i)
		if i < len(c.text) && c.text[i] == ',' {
			i++
			continue
		}
		break
	}
	if i < len(c.text) && c.text[i] == closer {
		return i + 1
	}
	return from
}

func (c *converter) skipSpaceAndComments(i int) int {
	for i < len(c.text) {
		switch {
		case isWhitespace(c.text[i]):
			i++
		case c.text[i] == '#':
			for i < len(c.text) && !isLineBreak(c.text[i]) {
				i++
			}
		default:
			return i
		}
	}
	return i
}

func isBlank(ch byte) bool      { return ch == ' ' || ch == '\t' }
func isLineBreak(ch byte) bool  { return ch == '\n' || ch == '\r' }
func isWhitespace(ch byte) bool { return isBlank(ch) || isLineBreak(ch) }

func isFlowIndicator(ch byte) bool {
	return ch == ',' || ch == '[' || ch == ']' || ch == '{' || ch == '}'
}

// documentStartsAfter counts the "---" markers on the lines after the one
// holding offset. A marker at column 0 always starts a document.
func (c *converter) documentStartsAfter(offset int) int {
	count := 0
	for line := c.lineOf(offset) + 1; line < len(c.lines); line++ {
		start, end := c.lineBounds(line)
		text := c.text[start:end]
		if strings.HasPrefix(text, "---") && (len(text) == 3 || isBlank(text[3])) {
			count++
		}
	}
	return count
}

// findAlias locates the first "*name" token outside comments.
func findAlias(text, name string) (int, int, bool) {
	token := "*" + name
	for from := 0; from < len(text); {
		idx := strings.Index(text[from:], token)
		if idx < 0 {
			break
		}
		start := from + idx
		end := start + len(token)
		from = start + 1

		if start > 0 && !isWhitespace(text[start-1]) && !isFlowIndicator(text[start-1]) {
			continue
		}
		if end < len(text) && !isWhitespace(text[end]) && !isFlowIndicator(text[end]) {
			continue
		}
		if inLineComment(text, start) {
			continue
		}
		return start, end, true
	}
	return 0, 0, false
}

func inLineComment(text string, offset int) bool {
	lineStart := strings.LastIndexAny(text[:offset], "\r\n") + 1
	for i := lineStart; i < offset; i++ {
		if text[i] == '#' && (i == lineStart || isBlank(text[i-1])) {
			return true
		}
	}
	return false
}
