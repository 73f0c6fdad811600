// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package languageservice

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"carvel.dev/yamlls/pkg/filepos"
	"go.lsp.dev/protocol"
	"gopkg.in/yaml.v3"
)

const DefaultIndent = 2

type FormatOptions struct {
	Indent int
}

// DoFormat re-encodes every document of the stream, keeping comments. It
// returns a single edit covering the whole text, or no edits when the text
// does not parse or is already formatted.
func (s *LanguageService) DoFormat(doc *filepos.TextDocument, opts FormatOptions) ([]protocol.TextEdit, error) {
	formatted, ok, err := FormatYAML(doc.Text(), opts)
	if err != nil || !ok || formatted == doc.Text() {
		return nil, err
	}
	return []protocol.TextEdit{{
		Range:   doc.RangeAt(0, len(doc.Text())),
		NewText: formatted,
	}}, nil
}

// FormatYAML returns the formatted text; ok is false when text is not valid
// YAML.
func FormatYAML(text string, opts FormatOptions) (string, bool, error) {
	indent := opts.Indent
	if indent <= 0 {
		indent = DefaultIndent
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(indent)

	dec := yaml.NewDecoder(strings.NewReader(text))
	for {
		var node yaml.Node
		err := dec.Decode(&node)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", false, nil
		}
		if err := enc.Encode(&node); err != nil {
			return "", false, fmt.Errorf("Encoding YAML: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return "", false, fmt.Errorf("Encoding YAML: %w", err)
	}
	return buf.String(), true, nil
}
