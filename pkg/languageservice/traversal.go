// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package languageservice

import (
	"encoding/json"

	"carvel.dev/yamlls/pkg/filepos"
	"carvel.dev/yamlls/pkg/yamlast"
	"go.lsp.dev/protocol"
)

// NodeInfo describes one property found by FindNodes. The positions span the
// object holding the property.
type NodeInfo struct {
	StartPosition protocol.Position
	EndPosition   protocol.Position
	Key           string
	Value         string
}

// FindNodes returns every property of the first document whose key is key.
func (s *LanguageService) FindNodes(doc *filepos.TextDocument, parsed *yamlast.ParseResult, key string) []NodeInfo {
	if parsed == nil || len(parsed.Documents) == 0 || parsed.Documents[0].Root == nil {
		return nil
	}

	var nodes []NodeInfo
	_ = yamlast.Walk(parsed.Documents[0].Root, yamlast.VisitorFn(func(node yamlast.Node) error {
		prop, ok := node.(*yamlast.Property)
		if !ok || prop.Key == nil || prop.KeyValue() != key {
			return nil
		}
		parent := prop.Parent()
		nodes = append(nodes, NodeInfo{
			StartPosition: doc.PositionAt(parent.Start()),
			EndPosition:   doc.PositionAt(parent.End()),
			Key:           prop.KeyValue(),
			Value:         valueString(prop.Value),
		})
		return nil
	}))
	return nodes
}

// GetNodePropertyValues finds the object enclosing pos and returns the
// entries of its propertyName mapping as strings. It returns nil when the
// object has no such mapping, or more than one.
func (s *LanguageService) GetNodePropertyValues(doc *filepos.TextDocument, parsed *yamlast.ParseResult,
	pos protocol.Position, propertyName string) map[string]string {

	if parsed == nil || len(parsed.Documents) == 0 {
		return nil
	}

	node := yamlast.GetNodeFromOffset(parsed.Documents[0].Root, doc.OffsetAt(pos))
	for node != nil {
		if _, ok := node.(*yamlast.Object); ok {
			break
		}
		node = node.Parent()
	}
	if node == nil {
		return nil
	}

	var matches []*yamlast.Property
	for _, prop := range node.(*yamlast.Object).Properties {
		if prop.KeyValue() == propertyName {
			matches = append(matches, prop)
		}
	}
	if len(matches) != 1 {
		return nil
	}

	values := map[string]string{}
	if obj, ok := matches[0].Value.(*yamlast.Object); ok {
		for _, prop := range obj.Properties {
			values[prop.KeyValue()] = valueString(prop.Value)
		}
	}
	return values
}

// valueString renders scalars as their text and collections as JSON.
func valueString(node yamlast.Node) string {
	switch node.(type) {
	case nil, *yamlast.Null:
		return ""
	case *yamlast.Object, *yamlast.Array:
		bs, err := json.Marshal(yamlast.GetValue(node))
		if err != nil {
			return ""
		}
		return string(bs)
	default:
		return yamlast.ScalarText(node)
	}
}
