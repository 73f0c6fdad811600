// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package jsonschema

import (
	"strings"

	"carvel.dev/yamlls/pkg/orderedmap"
)

const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeArray   = "array"
	TypeNull    = "null"
)

// Values of the "ignoreCase" extension.
const (
	IgnoreCaseKey   = "key"
	IgnoreCaseValue = "value"
	IgnoreCaseAll   = "all"
)

// Schema is one node of a decoded schema document. Schemas are shared between
// concurrent requests and are never modified after decoding.
type Schema struct {
	Ref string

	Type        SchemaType
	Title       string
	Description string
	Default     interface{}
	HasDefault  bool

	Properties           *orderedmap.Map // name -> *Schema
	PatternProperties    *orderedmap.Map // pattern -> *Schema
	AdditionalProperties *BoolOrSchema
	Required             []string
	Dependencies         []Dependency
	Definitions          *orderedmap.Map // name -> *Schema
	MinProperties        *int
	MaxProperties        *int

	Items           *Items
	AdditionalItems *BoolOrSchema
	MinItems        *int
	MaxItems        *int
	UniqueItems     bool

	Enum []interface{}

	AllOf []*Schema
	AnyOf []*Schema
	OneOf []*Schema
	Not   *Schema

	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum bool
	ExclusiveMaximum bool
	MultipleOf       *float64

	MinLength *int
	MaxLength *int
	Pattern   string

	// Extensions
	FirstProperty            []string
	Aliases                  []string
	IgnoreCase               string
	DeprecationMessage       string
	DoNotSuggest             bool
	ErrorMessage             string
	PatternErrorMessage      string
	MarkdownDescription      string
	EnumDescriptions         []string
	MarkdownEnumDescriptions []string

	resolved *Schema
}

// SchemaType is the "type" keyword, which may be written as a single name or
// as a list of names.
type SchemaType struct {
	Names []string
	List  bool
}

func (t SchemaType) IsEmpty() bool { return len(t.Names) == 0 }

func (t SchemaType) Has(name string) bool {
	for _, n := range t.Names {
		if n == name {
			return true
		}
	}
	return false
}

func (t SchemaType) String() string { return strings.Join(t.Names, ", ") }

// BoolOrSchema holds keywords such as "additionalProperties" that accept
// either a boolean or a schema.
type BoolOrSchema struct {
	Schema *Schema
	Value  bool
}

// IsFalse reports the literal "false" form.
func (b *BoolOrSchema) IsFalse() bool {
	return b != nil && b.Schema == nil && !b.Value
}

// Items holds either a single schema for every item or a tuple of schemas.
type Items struct {
	Schema *Schema
	Tuple  []*Schema
}

func (i *Items) IsTuple() bool { return i != nil && i.Tuple != nil }

// Dependency is one entry of "dependencies": either a list of required
// properties or a schema.
type Dependency struct {
	Property   string
	Properties []string
	Schema     *Schema
}

// Deref follows "$ref" to the referenced schema. Unresolved references and
// schemas without a reference return the schema itself.
func (s *Schema) Deref() *Schema {
	if s == nil {
		return nil
	}
	seen := 0
	for s.resolved != nil && seen < 32 {
		s = s.resolved
		seen++
	}
	return s
}

// Property returns the (dereferenced) schema declared for name.
func (s *Schema) Property(name string) *Schema {
	if s == nil {
		return nil
	}
	val, found := s.Properties.Get(name)
	if !found {
		return nil
	}
	return val.(*Schema).Deref()
}

// PropertyNames returns the declared property names in declaration order.
func (s *Schema) PropertyNames() []string {
	if s == nil {
		return nil
	}
	return s.Properties.Keys()
}

// EachPatternProperty calls fn for every patternProperties entry in order.
func (s *Schema) EachPatternProperty(fn func(pattern string, schema *Schema)) {
	if s == nil {
		return
	}
	s.PatternProperties.Iterate(func(k string, v interface{}) {
		fn(k, v.(*Schema).Deref())
	})
}

// ItemSchema returns the schema for the item at index, from either the single
// items schema or the tuple, or nil.
func (s *Schema) ItemSchema(index int) *Schema {
	if s == nil || s.Items == nil {
		return nil
	}
	if s.Items.IsTuple() {
		if index >= 0 && index < len(s.Items.Tuple) {
			return s.Items.Tuple[index].Deref()
		}
		if s.AdditionalItems != nil && s.AdditionalItems.Schema != nil {
			return s.AdditionalItems.Schema.Deref()
		}
		return nil
	}
	return s.Items.Schema.Deref()
}

func (s *Schema) IgnoresKeyCase() bool {
	return s != nil && (s.IgnoreCase == IgnoreCaseKey || s.IgnoreCase == IgnoreCaseAll)
}

func (s *Schema) IgnoresValueCase() bool {
	return s != nil && (s.IgnoreCase == IgnoreCaseValue || s.IgnoreCase == IgnoreCaseAll)
}

// Documentation prefers the markdown description.
func (s *Schema) Documentation() string {
	if s.MarkdownDescription != "" {
		return s.MarkdownDescription
	}
	return s.Description
}
