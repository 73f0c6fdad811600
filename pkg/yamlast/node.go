// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlast

import (
	"strings"
)

const compileTimeExpressionPrefix = "${{"

func IsCompileTimeExpressionKey(key string) bool {
	return strings.HasPrefix(key, compileTimeExpressionPrefix)
}

// Contains reports whether offset falls inside node; with includeRightBound
// the end offset itself counts as inside.
func Contains(node Node, offset int, includeRightBound bool) bool {
	return offset >= node.Start() && offset < node.End() || includeRightBound && offset == node.End()
}

func IsScalar(node Node) bool {
	switch node.(type) {
	case *String, *Number, *Boolean, *Null:
		return true
	default:
		return false
	}
}

// GetPath returns the keys and indexes leading from the root to node.
func GetPath(node Node) []interface{} {
	if node == nil {
		return nil
	}
	var path []interface{}
	if node.Parent() != nil {
		path = GetPath(node.Parent())
	}
	if loc := node.Location(); loc != nil {
		path = append(path, loc)
	}
	return path
}

// ParentProperty returns the property holding node as its value,
// or nil when node is not a property value.
func ParentProperty(node Node) *Property {
	if node == nil {
		return nil
	}
	if prop, ok := node.Parent().(*Property); ok && prop.Value == node {
		return prop
	}
	return nil
}

// OwningProperty walks up from node through null and array wrappers to the
// nearest property, which is where problems about the node are reported.
func OwningProperty(node Node) *Property {
	for curr := node; curr != nil; curr = curr.Parent() {
		switch typed := curr.(type) {
		case *Property:
			return typed
		case *Null, *Array:
			continue
		default:
			if curr != node {
				return nil
			}
		}
	}
	return nil
}

// ScalarText renders a scalar node's value as text; other nodes render as "".
func ScalarText(node Node) string {
	switch typed := node.(type) {
	case *String:
		return typed.Value
	case *Boolean:
		if typed.Value {
			return "true"
		}
		return "false"
	case *Number:
		return FormatNumber(typed.Value)
	case *Null:
		return "null"
	default:
		return ""
	}
}
