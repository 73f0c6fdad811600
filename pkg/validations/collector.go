// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package validations

import (
	"carvel.dev/yamlls/pkg/jsonschema"
	"carvel.dev/yamlls/pkg/yamlast"
)

// ApplicableSchema records that schema was applied to node during
// validation. Inverted facts come from inside a "not".
type ApplicableSchema struct {
	Node     yamlast.Node
	Schema   *jsonschema.Schema
	Inverted bool
}

// SchemaCollector receives the schema facts found while validating and
// decides which nodes are worth validating at all.
type SchemaCollector interface {
	Add(ApplicableSchema)
	Merge(other SchemaCollector)
	Include(node yamlast.Node) bool
	NewSub() SchemaCollector
	Schemas() []ApplicableSchema
}

// CapturingCollector keeps every fact for nodes containing focusOffset
// (end inclusive), or for every node when focusOffset is -1.
type CapturingCollector struct {
	focusOffset int
	exclude     yamlast.Node
	schemas     []ApplicableSchema
}

var _ SchemaCollector = &CapturingCollector{}

func NewCapturingCollector(focusOffset int, exclude yamlast.Node) *CapturingCollector {
	return &CapturingCollector{focusOffset: focusOffset, exclude: exclude}
}

func (c *CapturingCollector) Add(s ApplicableSchema) { c.schemas = append(c.schemas, s) }

func (c *CapturingCollector) Merge(other SchemaCollector) {
	c.schemas = append(c.schemas, other.Schemas()...)
}

func (c *CapturingCollector) Include(node yamlast.Node) bool {
	if c.exclude != nil && node == c.exclude {
		return false
	}
	return c.focusOffset == -1 || yamlast.Contains(node, c.focusOffset, true)
}

// NewSub returns an unfocused collector that shares the exclusion.
func (c *CapturingCollector) NewSub() SchemaCollector {
	return NewCapturingCollector(-1, c.exclude)
}

func (c *CapturingCollector) Schemas() []ApplicableSchema { return c.schemas }

// NoOpCollector discards facts; plain validation does not need them.
type NoOpCollector struct{}

var _ SchemaCollector = NoOpCollector{}

func (NoOpCollector) Add(ApplicableSchema)        {}
func (NoOpCollector) Merge(SchemaCollector)       {}
func (NoOpCollector) Include(yamlast.Node) bool   { return true }
func (n NoOpCollector) NewSub() SchemaCollector   { return n }
func (NoOpCollector) Schemas() []ApplicableSchema { return nil }
