// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package languageservice

import (
	"strings"

	"carvel.dev/yamlls/pkg/filepos"
	"go.lsp.dev/protocol"
)

// placeholderKey stands in for the key being typed on an otherwise empty line.
const placeholderKey = "holder:"

// PatchForCompletion prepares text so that parsing it yields a node at pos.
// A line without a colon becomes a key: blank lines and a lone "-" get a
// placeholder key, anything else gets a trailing ":". On a line that already
// has a colon the text is kept and the position moves one character left.
func PatchForCompletion(text string, pos protocol.Position) (string, protocol.Position) {
	doc := filepos.NewTextDocument("", text)
	if int(pos.Line) >= doc.LineCount() {
		return text, pos
	}

	lineStart, lineEnd := doc.LineBounds(int(pos.Line))
	line := text[lineStart:lineEnd]

	if strings.Contains(line, ":") {
		if pos.Character > 0 {
			pos.Character--
		}
		return text, pos
	}

	var suffix string
	switch trimmed := strings.TrimSpace(line); trimmed {
	case "":
		suffix = placeholderKey
	case "-":
		suffix = placeholderKey
		if !strings.HasSuffix(line, " ") {
			suffix = " " + suffix
		}
	default:
		suffix = ":"
	}
	return text[:lineEnd] + suffix + text[lineEnd:], pos
}
