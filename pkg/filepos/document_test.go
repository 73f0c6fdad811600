// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filepos_test

import (
	"testing"

	"carvel.dev/yamlls/pkg/filepos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
)

func TestLineOffsets(t *testing.T) {
	assert.Equal(t, []int{0}, filepos.LineOffsets(""))
	assert.Equal(t, []int{0, 2}, filepos.LineOffsets("a\n"))
	assert.Equal(t, []int{0, 3, 5, 7}, filepos.LineOffsets("a\r\nb\rc\nd"))
}

func TestTextDocumentRoundTripsOffsets(t *testing.T) {
	doc := filepos.NewTextDocument("file:///pipeline.yml", "steps:\n- script: echo\n  name: é😀x\n")

	for offset := 0; offset <= len(doc.Text()); offset++ {
		pos := doc.PositionAt(offset)
		back := doc.OffsetAt(pos)
		// offsets inside a multi-byte rune snap back to the rune's start
		assert.LessOrEqual(t, back, offset)
	}

	assert.Equal(t, protocol.Position{Line: 1, Character: 2}, doc.PositionAt(9))
	assert.Equal(t, 9, doc.OffsetAt(protocol.Position{Line: 1, Character: 2}))
}

func TestTextDocumentCountsUTF16Units(t *testing.T) {
	doc := filepos.NewTextDocument("", "é😀x")

	// é is one unit (2 bytes), 😀 is two units (4 bytes)
	assert.Equal(t, protocol.Position{Line: 0, Character: 1}, doc.PositionAt(2))
	assert.Equal(t, protocol.Position{Line: 0, Character: 3}, doc.PositionAt(6))
	assert.Equal(t, 6, doc.OffsetAt(protocol.Position{Line: 0, Character: 3}))
	assert.Equal(t, 7, doc.OffsetAt(protocol.Position{Line: 0, Character: 4}))
}

func TestTextDocumentClampsOutOfRange(t *testing.T) {
	doc := filepos.NewTextDocument("", "ab\ncd")

	assert.Equal(t, 2, doc.OffsetAt(protocol.Position{Line: 0, Character: 40}))
	assert.Equal(t, 5, doc.OffsetAt(protocol.Position{Line: 9, Character: 0}))
	assert.Equal(t, protocol.Position{Line: 1, Character: 2}, doc.PositionAt(100))
	assert.Equal(t, protocol.Position{Line: 0, Character: 0}, doc.PositionAt(-3))
}

func TestPositionAsCompactString(t *testing.T) {
	pos := filepos.NewPositionInFile(2, "pipeline.yml")
	require.True(t, pos.IsKnown())
	assert.Equal(t, "pipeline.yml:2", pos.AsCompactString())

	pos.SetColumn(3)
	pos.SetLine("- script: echo")
	assert.Equal(t, "pipeline.yml:2:3", pos.AsCompactString())
	assert.Equal(t, "- script: echo", pos.GetLine())

	noFile := filepos.NewPositionInFile(5, "")
	noFile.SetColumn(1)
	assert.Equal(t, "5:1", noFile.AsCompactString())

	var unknown *filepos.Position
	assert.False(t, unknown.IsKnown())
	assert.Panics(t, func() { filepos.NewPositionInFile(0, "pipeline.yml") })
}
