// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlast

type NodeType string

const (
	TypeNull     NodeType = "null"
	TypeBoolean  NodeType = "boolean"
	TypeNumber   NodeType = "number"
	TypeString   NodeType = "string"
	TypeProperty NodeType = "property"
	TypeObject   NodeType = "object"
	TypeArray    NodeType = "array"
)

// Node is one element of a parsed document. Offsets are byte offsets into the
// source text, half-open: [Start, End).
type Node interface {
	Start() int
	End() int
	Type() NodeType

	// Parent is a back reference only; a node is owned by exactly one parent.
	Parent() Node
	// Location is the path segment that leads from Parent to this node:
	// a property key (string), an array index (int) or nil.
	Location() interface{}

	Children() []Node

	setParent(Node)
	setLocation(interface{})

	sealed() // limit the concrete types of Node to the variants below
}

var _ = []Node{&Null{}, &Boolean{}, &Number{}, &String{}, &Property{}, &Object{}, &Array{}}

type nodeBase struct {
	start    int
	end      int
	parent   Node
	location interface{}
}

type Null struct {
	nodeBase
}

type Boolean struct {
	nodeBase
	Value bool
}

type Number struct {
	nodeBase
	Value float64
	// IsInteger reflects the lexical form: no fraction, no exponent.
	IsInteger bool
}

type String struct {
	nodeBase
	Value string
	IsKey bool
}

// Property is a key/value pair of an Object. A property whose key starts with
// "${{" is a compile-time expression; see IsCompileTimeExpression.
type Property struct {
	nodeBase
	Key         *String
	Value       Node
	ColonOffset int // -1 when there is no colon

	compileTime bool
}

type Object struct {
	nodeBase
	Properties []*Property
}

type Array struct {
	nodeBase
	Items []Node
}

func (n *nodeBase) Start() int                { return n.start }
func (n *nodeBase) End() int                  { return n.end }
func (n *nodeBase) Parent() Node              { return n.parent }
func (n *nodeBase) Location() interface{}     { return n.location }
func (n *nodeBase) setParent(p Node)          { n.parent = p }
func (n *nodeBase) setLocation(l interface{}) { n.location = l }
func (n *nodeBase) sealed()                   {}

func (*Null) Type() NodeType     { return TypeNull }
func (*Boolean) Type() NodeType  { return TypeBoolean }
func (*Number) Type() NodeType   { return TypeNumber }
func (*String) Type() NodeType   { return TypeString }
func (*Property) Type() NodeType { return TypeProperty }
func (*Object) Type() NodeType   { return TypeObject }
func (*Array) Type() NodeType    { return TypeArray }

func (*Null) Children() []Node    { return nil }
func (*Boolean) Children() []Node { return nil }
func (*Number) Children() []Node  { return nil }
func (*String) Children() []Node  { return nil }

func (n *Property) Children() []Node {
	var result []Node
	if n.Key != nil {
		result = append(result, n.Key)
	}
	if n.Value != nil {
		result = append(result, n.Value)
	}
	return result
}

func (n *Object) Children() []Node {
	result := make([]Node, 0, len(n.Properties))
	for _, prop := range n.Properties {
		result = append(result, prop)
	}
	return result
}

func (n *Array) Children() []Node {
	return append([]Node{}, n.Items...)
}

// IsCompileTimeExpression reports whether the key is a "${{ ... }}" expression.
func (n *Property) IsCompileTimeExpression() bool { return n.compileTime }

// KeyValue returns the key's text or "" when there is no key.
func (n *Property) KeyValue() string {
	if n.Key == nil {
		return ""
	}
	return n.Key.Value
}

// IsMergeKey reports whether the key is the YAML merge key "<<".
func (n *Property) IsMergeKey() bool { return n.KeyValue() == MergeKey }

const MergeKey = "<<"

// GetProperty returns the first property with the given key.
func (n *Object) GetProperty(key string) *Property {
	for _, prop := range n.Properties {
		if prop.KeyValue() == key {
			return prop
		}
	}
	return nil
}

// Node constructors used by the parser and by callers that need
// stand-in nodes (e.g. a virtual root for completion).

func NewNull(start, end int) *Null { return &Null{nodeBase{start: start, end: end}} }

func NewBoolean(start, end int, val bool) *Boolean {
	return &Boolean{nodeBase{start: start, end: end}, val}
}

func NewNumber(start, end int, val float64, isInteger bool) *Number {
	return &Number{nodeBase{start: start, end: end}, val, isInteger}
}

func NewString(start, end int, val string, isKey bool) *String {
	return &String{nodeBase{start: start, end: end}, val, isKey}
}

func NewObject(start, end int, props ...*Property) *Object {
	obj := &Object{nodeBase: nodeBase{start: start, end: end}}
	for _, prop := range props {
		obj.AddProperty(prop)
	}
	return obj
}

func NewArray(start, end int, items ...Node) *Array {
	arr := &Array{nodeBase: nodeBase{start: start, end: end}}
	for _, item := range items {
		arr.AddItem(item)
	}
	return arr
}

// NewProperty builds a property spanning from the key to the value.
// Keys starting with "${{" make the property a compile-time expression.
func NewProperty(key *String, colonOffset int, value Node) *Property {
	prop := &Property{Key: key, ColonOffset: colonOffset}
	prop.start = key.Start()
	prop.end = key.End()
	if colonOffset >= 0 && colonOffset+1 > prop.end {
		prop.end = colonOffset + 1
	}
	key.IsKey = true
	key.setParent(prop)
	key.setLocation(key.Value)
	prop.compileTime = IsCompileTimeExpressionKey(key.Value)
	if value != nil {
		prop.SetValue(value)
	}
	return prop
}

func (n *Property) SetValue(value Node) {
	n.Value = value
	value.setParent(n)
	value.setLocation(n.KeyValue())
	if value.End() > n.end {
		n.end = value.End()
	}
}

func (n *Object) AddProperty(prop *Property) {
	prop.setParent(n)
	n.Properties = append(n.Properties, prop)
	if prop.End() > n.end {
		n.end = prop.End()
	}
}

func (n *Array) AddItem(item Node) {
	item.setParent(n)
	item.setLocation(len(n.Items))
	n.Items = append(n.Items, item)
	if item.End() > n.end {
		n.end = item.End()
	}
}

func (n *nodeBase) extendTo(end int) {
	if end > n.end {
		n.end = end
	}
}
