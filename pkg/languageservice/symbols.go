// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package languageservice

import (
	"carvel.dev/yamlls/pkg/filepos"
	"carvel.dev/yamlls/pkg/yamlast"
	"go.lsp.dev/protocol"
)

// FindDocumentSymbols lists every property that has a value, across all
// documents, with dotted container names.
func (s *LanguageService) FindDocumentSymbols(doc *filepos.TextDocument, parsed *yamlast.ParseResult) []protocol.SymbolInformation {
	if parsed == nil {
		return nil
	}

	var symbols []protocol.SymbolInformation
	var collect func(node yamlast.Node, containerName string)

	collect = func(node yamlast.Node, containerName string) {
		switch typed := node.(type) {
		case *yamlast.Array:
			for _, item := range typed.Items {
				collect(item, containerName)
			}
		case *yamlast.Object:
			for _, prop := range typed.Properties {
				if prop.Value == nil {
					continue
				}
				symbols = append(symbols, protocol.SymbolInformation{
					Name: prop.KeyValue(),
					Kind: symbolKind(prop.Value),
					Location: protocol.Location{
						URI:   protocol.DocumentURI(doc.URI()),
						Range: doc.RangeAt(prop.Start(), prop.End()),
					},
					ContainerName: containerName,
				})

				childName := prop.KeyValue()
				if containerName != "" {
					childName = containerName + "." + childName
				}
				collect(prop.Value, childName)
			}
		}
	}

	for _, document := range parsed.Documents {
		if document.Root != nil {
			collect(document.Root, "")
		}
	}
	return symbols
}

func symbolKind(node yamlast.Node) protocol.SymbolKind {
	switch node.Type() {
	case yamlast.TypeObject:
		return protocol.SymbolKindModule
	case yamlast.TypeArray:
		return protocol.SymbolKindArray
	case yamlast.TypeString:
		return protocol.SymbolKindString
	case yamlast.TypeNumber:
		return protocol.SymbolKindNumber
	case yamlast.TypeBoolean:
		return protocol.SymbolKindBoolean
	default:
		return protocol.SymbolKindVariable
	}
}
