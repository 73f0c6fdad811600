// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlast

import (
	"math"
)

// GetNodeFromOffset returns the deepest node whose span contains offset
// (start inclusive, end exclusive), or nil.
func GetNodeFromOffset(root Node, offset int) Node {
	if root == nil || !Contains(root, offset, false) {
		return nil
	}
	for _, child := range root.Children() {
		if child.Start() > offset {
			break
		}
		if found := GetNodeFromOffset(child, offset); found != nil {
			return found
		}
	}
	return root
}

// GetNodeFromOffsetEndInclusive finds the node nearest to offset. Every
// descendant containing offset (end inclusive) is a candidate; the one
// minimizing (end-offset)+(offset-start) wins, the deepest one on ties.
// The root is returned when no descendant qualifies, nil when even the root
// does not contain offset.
func GetNodeFromOffsetEndInclusive(root Node, offset int) Node {
	if root == nil {
		return nil
	}

	var candidates []Node
	var find func(Node) bool
	find = func(node Node) bool {
		if offset < node.Start() || offset > node.End() {
			return false
		}
		for _, child := range node.Children() {
			if child.Start() > offset {
				break
			}
			if find(child) {
				candidates = append(candidates, child)
			}
		}
		return true
	}

	if !find(root) {
		return nil
	}

	var nearest Node
	minDist := math.MaxInt
	for _, candidate := range candidates {
		dist := (candidate.End() - offset) + (offset - candidate.Start())
		if dist < minDist {
			nearest = candidate
			minDist = dist
		}
	}
	if nearest == nil {
		return root
	}
	return nearest
}
