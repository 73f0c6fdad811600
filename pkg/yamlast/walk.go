// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlast

import (
	"errors"
)

// Visitor performs an operation on the given Node while traversing the AST.
// Typically defines the action taken during a Walk().
type Visitor interface {
	Visit(Node) error
}

// VisitorFn adapts a function to the Visitor interface.
type VisitorFn func(Node) error

func (f VisitorFn) Visit(n Node) error { return f(n) }

// ErrStopWalk ends a Walk early without reporting an error to the caller.
var ErrStopWalk = errors.New("stop walk")

// Walk traverses the tree starting at `n`, recursively, depth-first, invoking `v` on each node.
// if `v` returns non-nil error, the traversal is aborted.
func Walk(n Node, v Visitor) error {
	err := walk(n, v)
	if errors.Is(err, ErrStopWalk) {
		return nil
	}
	return err
}

func walk(n Node, v Visitor) error {
	if n == nil {
		return nil
	}
	err := v.Visit(n)
	if err != nil {
		return err
	}

	for _, c := range n.Children() {
		err := walk(c, v)
		if err != nil {
			return err
		}
	}
	return nil
}

// VisitorWithParent performs an operation on the given Node while traversing the AST, including a reference to "node"'s
// parent node.
//
// Typically defines the action taken during a WalkWithParent().
type VisitorWithParent interface {
	VisitWithParent(Node, Node) error
}

// WalkWithParent traverses the tree starting at `n`, recursively, depth-first, invoking `v` on each node and including
// a reference to "node"s parent node as well.
// if `v` returns non-nil error, the traversal is aborted.
func WalkWithParent(node Node, parent Node, v VisitorWithParent) error {
	if node == nil {
		return nil
	}
	err := v.VisitWithParent(node, parent)
	if err != nil {
		return err
	}

	for _, child := range node.Children() {
		err = WalkWithParent(child, node, v)
		if err != nil {
			return err
		}
	}
	return nil
}
