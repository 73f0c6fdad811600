// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package languageservice

import (
	"context"
	"regexp"
	"strings"

	"carvel.dev/yamlls/pkg/filepos"
	"carvel.dev/yamlls/pkg/validations"
	"carvel.dev/yamlls/pkg/yamlast"
	"go.lsp.dev/protocol"
)

// DoHover describes the schema of the value at pos. Hovering a key describes
// its value. A nil hover means there is nothing to show.
func (s *LanguageService) DoHover(ctx context.Context, doc *filepos.TextDocument,
	pos protocol.Position, parsed *yamlast.ParseResult) (*protocol.Hover, error) {

	offset := doc.OffsetAt(pos)
	document := documentFor(parsed, offset)
	if document == nil || document.Root == nil {
		return nil, nil
	}

	node := yamlast.GetNodeFromOffset(document.Root, offset)
	if node == nil {
		return nil, nil
	}
	switch node.(type) {
	case *yamlast.Object, *yamlast.Array:
		if offset > node.Start()+1 && offset < node.End()-1 {
			return nil, nil
		}
	}
	rangeNode := node

	switch typed := node.(type) {
	case *yamlast.String:
		if typed.IsKey {
			node = typed.Parent().(*yamlast.Property).Value
		}
	case *yamlast.Property:
		rangeNode = typed.Key
		node = typed.Value
	}
	if node == nil {
		return nil, nil
	}

	schema, err := s.SchemaForResource(ctx, doc.URI())
	if err != nil || schema == nil {
		return nil, err
	}

	contents := hoverContents(node, validations.MatchingSchemas(document.Root, schema, s.validationContext(doc.URI()), -1, nil))
	if contents == "" {
		return nil, nil
	}

	hoverRange := doc.RangeAt(rangeNode.Start(), rangeNode.End())
	return &protocol.Hover{
		Contents: protocol.MarkupContent{Kind: protocol.Markdown, Value: contents},
		Range:    &hoverRange,
	}, nil
}

func hoverContents(node yamlast.Node, facts []validations.ApplicableSchema) string {
	var title, description, deprecation, enumValue, enumDoc string

	for _, fact := range facts {
		if fact.Node != node || fact.Inverted || fact.Schema == nil {
			continue
		}
		schema := fact.Schema
		if title == "" {
			title = schema.Title
		}
		if description == "" {
			description = schema.MarkdownDescription
			if description == "" {
				description = toMarkdown(schema.Description)
			}
		}
		if deprecation == "" {
			deprecation = schema.DeprecationMessage
		}
		if enumDoc == "" && len(schema.Enum) > 0 {
			if idx := validations.EnumIndex(node, schema); idx >= 0 {
				if idx < len(schema.MarkdownEnumDescriptions) && schema.MarkdownEnumDescriptions[idx] != "" {
					enumDoc = schema.MarkdownEnumDescriptions[idx]
				} else if idx < len(schema.EnumDescriptions) {
					enumDoc = toMarkdown(schema.EnumDescriptions[idx])
				}
				if enumDoc != "" {
					enumValue = valueText(schema.Enum[idx])
				}
			}
		}
	}

	var parts []string
	if deprecation != "" {
		parts = append(parts, toMarkdown(deprecation))
	}
	if title != "" {
		parts = append(parts, toMarkdown(title))
	}
	if description != "" {
		parts = append(parts, description)
	}
	if enumDoc != "" {
		parts = append(parts, "`"+toMarkdown(enumValue)+"`: "+enumDoc)
	}
	return strings.Join(parts, "\n\n")
}

var markdownSpecialChars = regexp.MustCompile("[\\\\`*_{}\\[\\]()#+\\-.!]")

// toMarkdown escapes plain text for use inside markdown.
func toMarkdown(plain string) string {
	return markdownSpecialChars.ReplaceAllString(plain, `\$0`)
}
