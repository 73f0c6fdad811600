// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package yamlast parses YAML streams into a tree of typed nodes (yamlast.Node)
whose spans are byte offsets into the source text.

Unlike a plain YAML decoder, the tree keeps enough shape to reason about an
editor buffer: keys are nodes of their own, empty values become Null nodes
placed right after their colon, "${{ ... }}" keys are marked as compile-time
expressions and aliases are expanded in place.
*/
package yamlast
