// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package languageservice

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"carvel.dev/yamlls/pkg/filepos"
	"carvel.dev/yamlls/pkg/jsonschema"
	"carvel.dev/yamlls/pkg/validations"
	"carvel.dev/yamlls/pkg/yamlast"
	"go.lsp.dev/protocol"
)

const (
	maxLabelLength    = 57
	wordBoundaryChars = " \t\n\r\v\":{[,]}"
	maxSchemaDepth    = 32
)

// DoComplete suggests property names and values at pos. doc is the document
// as the editor has it, while parsed must come from text that was patched so
// that a node exists at the cursor; see PatchForCompletion.
func (s *LanguageService) DoComplete(ctx context.Context, doc *filepos.TextDocument,
	pos protocol.Position, parsed *yamlast.ParseResult) (*protocol.CompletionList, error) {

	result := &protocol.CompletionList{Items: []protocol.CompletionItem{}}

	text := doc.Text()
	offset := doc.OffsetAt(pos)
	if offset < len(text) && text[offset] == ':' || inComment(text, offset) {
		return result, nil
	}

	schema, err := s.SchemaForResource(ctx, doc.URI())
	if err != nil {
		return result, err
	}
	if schema == nil {
		return result, nil
	}

	var root yamlast.Node
	if document := documentFor(parsed, offset); document != nil {
		root = document.Root
	}

	node := yamlast.GetNodeFromOffsetEndInclusive(root, offset)
	if node == nil {
		if obj, ok := root.(*yamlast.Object); ok {
			node = obj
		} else {
			virtual := yamlast.NewObject(offset, offset)
			node, root = virtual, virtual
		}
	}
	if prop, ok := node.(*yamlast.Property); ok {
		if prop.Value != nil && prop.ColonOffset >= 0 && offset > prop.ColonOffset {
			node = prop.Value
		} else {
			node = prop.Key
		}
	}

	settings := s.Settings()
	c := &completer{
		doc:        doc,
		text:       text,
		offset:     offset,
		root:       root,
		schema:     schema,
		ctx:        s.validationContext(doc.URI()),
		customTags: settings.CustomTags,
		items:      &itemSet{index: map[string]int{}},
	}
	c.overwriteStart, c.overwrite = c.overwriteRange(node)

	switch typedNode := node.(type) {
	case *yamlast.String:
		if typedNode.IsKey {
			prop := typedNode.Parent().(*yamlast.Property)
			if obj, ok := prop.Parent().(*yamlast.Object); ok {
				c.propertyCompletions(obj, obj, prop, !c.hasColonAfter(typedNode.End()))
			}
		} else {
			c.valueCompletions(typedNode)
		}
	case *yamlast.Object:
		c.propertyCompletions(typedNode, typedNode, nil, true)
	case *yamlast.Null:
		if yamlast.ParentProperty(typedNode) != nil {
			c.valueCompletions(typedNode)
		} else {
			// array item or document root
			c.propertyCompletions(typedNode, nil, nil, true)
			if _, ok := typedNode.Parent().(*yamlast.Array); ok {
				c.valueCompletions(typedNode)
			}
		}
	case *yamlast.Array:
		c.itemCompletions(typedNode, len(typedNode.Items))
	default:
		c.valueCompletions(typedNode)
	}

	result.Items = c.items.items
	return result, nil
}

type completer struct {
	doc    *filepos.TextDocument
	text   string
	offset int

	root       yamlast.Node
	schema     *jsonschema.Schema
	ctx        validations.Context
	customTags []string

	overwriteStart int
	overwrite      protocol.Range
	items          *itemSet
}

// schemasFor returns the non-inverted schemas recorded against node.
func (c *completer) schemasFor(node yamlast.Node) []*jsonschema.Schema {
	var result []*jsonschema.Schema
	for _, fact := range validations.MatchingSchemas(c.root, c.schema, c.ctx, node.Start(), nil) {
		if fact.Node == node && !fact.Inverted {
			result = append(result, fact.Schema.Deref())
		}
	}
	return result
}

// propertyCompletions suggests the properties declared for contextNode that
// obj does not have yet. current is the property being typed, if any.
func (c *completer) propertyCompletions(contextNode yamlast.Node, obj *yamlast.Object, current *yamlast.Property, addValue bool) {
	for _, schema := range c.schemasFor(contextNode) {
		names := schema.PropertyNames()
		if len(schema.FirstProperty) > 0 && !hasOtherProperties(obj, current) {
			names = schema.FirstProperty
		}

		for _, name := range names {
			propSchema := schema.Property(name)
			if propSchema != nil && (propSchema.DeprecationMessage != "" || propSchema.DoNotSuggest) {
				continue
			}
			if isPresent(obj, current, name, propSchema) {
				continue
			}
			c.items.add(c.propertyItem(name, propSchema, addValue))
		}
	}
}

func (c *completer) propertyItem(name string, propSchema *jsonschema.Schema, addValue bool) protocol.CompletionItem {
	insertText := escapeSnippet(name)
	if addValue {
		insertText += ":" + valueSnippet(propSchema)
	}
	item := protocol.CompletionItem{
		Label:            name,
		Kind:             protocol.CompletionItemKindProperty,
		InsertTextFormat: protocol.InsertTextFormatSnippet,
		TextEdit:         &protocol.TextEdit{Range: c.overwrite, NewText: insertText},
	}
	if propSchema != nil && propSchema.Documentation() != "" {
		item.Documentation = markdownContent(propSchema.Documentation())
	}
	return item
}

// valueCompletions suggests values for a scalar or empty node that is a
// property value or an array item.
func (c *completer) valueCompletions(node yamlast.Node) {
	switch parent := node.Parent().(type) {
	case *yamlast.Property:
		obj, ok := parent.Parent().(*yamlast.Object)
		if !ok {
			return
		}
		var schemas []*jsonschema.Schema
		for _, schema := range c.schemasFor(obj) {
			if propSchema := propertySchema(schema, parent.KeyValue()); propSchema != nil {
				schemas = append(schemas, propSchema)
			}
		}
		c.addValues(schemas)
	case *yamlast.Array:
		index, _ := node.Location().(int)
		c.itemCompletions(parent, index)
	}
}

func (c *completer) itemCompletions(arr *yamlast.Array, index int) {
	var schemas []*jsonschema.Schema
	for _, schema := range c.schemasFor(arr) {
		if itemSchema := schema.ItemSchema(index); itemSchema != nil {
			schemas = append(schemas, itemSchema)
		}
	}
	c.addValues(schemas)
}

func (c *completer) addValues(schemas []*jsonschema.Schema) {
	types := map[string]bool{}
	for _, schema := range schemas {
		c.collectValues(schema, types, 0)
	}

	if types[jsonschema.TypeBoolean] {
		c.addValue(true, "")
		c.addValue(false, "")
	}
	if types[jsonschema.TypeNull] {
		c.addValue(nil, "")
	}

	for _, decl := range c.customTags {
		if pieces := strings.Fields(decl); len(pieces) > 0 {
			c.addValueText(pieces[0], "")
		}
	}
}

// collectValues gathers defaults, enum entries and types reachable through
// allOf, anyOf and oneOf.
func (c *completer) collectValues(schema *jsonschema.Schema, types map[string]bool, depth int) {
	schema = schema.Deref()
	if schema == nil || depth > maxSchemaDepth {
		return
	}

	if schema.HasDefault {
		c.addValue(schema.Default, "Default value")
	}
	for i, entry := range schema.Enum {
		c.addValue(entry, enumDescription(schema, i))
	}
	for _, name := range schema.Type.Names {
		types[name] = true
	}

	for _, group := range [][]*jsonschema.Schema{schema.AllOf, schema.AnyOf, schema.OneOf} {
		for _, sub := range group {
			c.collectValues(sub, types, depth+1)
		}
	}
}

func (c *completer) addValue(val interface{}, documentation string) {
	c.addValueText(valueText(val), documentation)
}

func (c *completer) addValueText(text, documentation string) {
	insertText := text
	if c.overwriteStart > 0 && c.text[c.overwriteStart-1] == ':' {
		insertText = " " + insertText
	}
	item := protocol.CompletionItem{
		Label:            truncateLabel(text),
		Kind:             protocol.CompletionItemKindValue,
		InsertTextFormat: protocol.InsertTextFormatPlainText,
		TextEdit:         &protocol.TextEdit{Range: c.overwrite, NewText: insertText},
	}
	if documentation != "" {
		item.Documentation = markdownContent(documentation)
	}
	c.items.add(item)
}

// overwriteRange returns the span the completion replaces, along with its
// start offset.
func (c *completer) overwriteRange(node yamlast.Node) (int, protocol.Range) {
	switch node.(type) {
	case *yamlast.Null:
		start := c.shiftRight(node.Start())
		end := c.shiftRight(node.End())
		return c.doc.OffsetAt(start), protocol.Range{Start: start, End: end}
	case *yamlast.String, *yamlast.Number, *yamlast.Boolean:
		start := min(node.Start(), len(c.text))
		return start, c.doc.RangeAt(start, node.End())
	}

	start := c.offset
	for start > 0 && !strings.ContainsRune(wordBoundaryChars, rune(c.text[start-1])) {
		start--
	}
	if start > 0 && c.text[start-1] == '"' {
		start--
	}
	return start, c.doc.RangeAt(start, c.offset)
}

// shiftRight moves one character right without leaving the line.
func (c *completer) shiftRight(offset int) protocol.Position {
	pos := c.doc.PositionAt(offset)
	_, lineEnd := c.doc.LineBounds(int(pos.Line))
	if pos.Character < c.doc.PositionAt(lineEnd).Character {
		pos.Character++
	}
	return pos
}

// hasColonAfter looks at the unpatched text, so offsets taken from the
// patched parse may point past its end.
func (c *completer) hasColonAfter(offset int) bool {
	if offset >= len(c.text) {
		return false
	}
	rest := c.text[offset:]
	if idx := strings.IndexAny(rest, "\r\n"); idx >= 0 {
		rest = rest[:idx]
	}
	return strings.Contains(rest, ":")
}

type itemSet struct {
	items []protocol.CompletionItem
	index map[string]int
}

// add keeps the first item per label; later duplicates only fill in
// missing documentation.
func (s *itemSet) add(item protocol.CompletionItem) {
	if i, found := s.index[item.Label]; found {
		if s.items[i].Documentation == nil && item.Documentation != nil {
			s.items[i].Documentation = item.Documentation
		}
		return
	}
	s.index[item.Label] = len(s.items)
	s.items = append(s.items, item)
}

func hasOtherProperties(obj *yamlast.Object, current *yamlast.Property) bool {
	if obj == nil {
		return false
	}
	for _, prop := range obj.Properties {
		if prop != current {
			return true
		}
	}
	return false
}

// isPresent reports whether obj already has a key satisfying the schema
// property name, by alias or ignoring case where the schema allows it.
func isPresent(obj *yamlast.Object, current *yamlast.Property, name string, propSchema *jsonschema.Schema) bool {
	if obj == nil {
		return false
	}
	names := []string{name}
	if propSchema != nil {
		names = append(names, propSchema.Aliases...)
	}
	for _, prop := range obj.Properties {
		if prop == current || prop.IsCompileTimeExpression() || prop.IsMergeKey() {
			continue
		}
		for _, candidate := range names {
			if keysMatch(prop.KeyValue(), candidate, propSchema.IgnoresKeyCase()) {
				return true
			}
		}
	}
	return false
}

// propertySchema finds the schema that applies to the value of key.
func propertySchema(schema *jsonschema.Schema, key string) *jsonschema.Schema {
	if propSchema := schema.Property(key); propSchema != nil {
		return propSchema
	}
	for _, name := range schema.PropertyNames() {
		propSchema := schema.Property(name)
		if propSchema == nil {
			continue
		}
		for _, candidate := range append([]string{name}, propSchema.Aliases...) {
			if keysMatch(key, candidate, propSchema.IgnoresKeyCase()) {
				return propSchema
			}
		}
	}

	var result *jsonschema.Schema
	schema.EachPatternProperty(func(pattern string, patternSchema *jsonschema.Schema) {
		if matched, _ := jsonschema.MatchPattern(pattern, false, key); matched && result == nil {
			result = patternSchema
		}
	})
	if result != nil {
		return result
	}
	if schema.AdditionalProperties != nil && schema.AdditionalProperties.Schema != nil {
		return schema.AdditionalProperties.Schema.Deref()
	}
	return nil
}

func keysMatch(a, b string, ignoreCase bool) bool {
	if ignoreCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func valueSnippet(schema *jsonschema.Schema) string {
	switch propertyType(schema) {
	case jsonschema.TypeObject:
		return "\n\t"
	case jsonschema.TypeArray:
		return "\n\t- "
	case jsonschema.TypeNumber, jsonschema.TypeInteger:
		return " ${1:0}"
	case jsonschema.TypeNull:
		return " ${1:null}"
	default:
		return " $1"
	}
}

// propertyType infers the primary type of a property schema.
func propertyType(schema *jsonschema.Schema) string {
	schema = schema.Deref()
	switch {
	case schema == nil:
		return ""
	case !schema.Type.IsEmpty():
		return schema.Type.Names[0]
	case schema.Properties != nil:
		return jsonschema.TypeObject
	case schema.Items != nil:
		return jsonschema.TypeArray
	default:
		return ""
	}
}

func enumDescription(schema *jsonschema.Schema, i int) string {
	if i < len(schema.MarkdownEnumDescriptions) && schema.MarkdownEnumDescriptions[i] != "" {
		return schema.MarkdownEnumDescriptions[i]
	}
	if i < len(schema.EnumDescriptions) {
		return schema.EnumDescriptions[i]
	}
	return ""
}

// valueText renders a schema value the way it is typed in YAML.
func valueText(val interface{}) string {
	if str, ok := val.(string); ok {
		return str
	}
	bs, err := json.Marshal(val)
	if err != nil {
		return fmt.Sprintf("%v", val)
	}
	return string(bs)
}

func truncateLabel(label string) string {
	if utf8.RuneCountInString(label) <= maxLabelLength {
		return label
	}
	return string([]rune(label)[:maxLabelLength]) + "..."
}

func escapeSnippet(text string) string {
	return strings.NewReplacer(`\`, `\\`, `$`, `\$`, `}`, `\}`).Replace(text)
}

func markdownContent(value string) *protocol.MarkupContent {
	return &protocol.MarkupContent{Kind: protocol.Markdown, Value: value}
}

// inComment reports whether offset sits after a "#" that starts a comment
// on its line.
func inComment(text string, offset int) bool {
	lineStart := strings.LastIndexAny(text[:offset], "\r\n") + 1

	var quote byte
	for i := lineStart; i < offset; i++ {
		ch := text[i]
		switch {
		case quote != 0:
			if ch == quote {
				quote = 0
			}
		case ch == '"' || ch == '\'':
			if i == lineStart || strings.ContainsRune(" \t:[{,-", rune(text[i-1])) {
				quote = ch
			}
		case ch == '#':
			if i == lineStart || text[i-1] == ' ' || text[i-1] == '\t' {
				return true
			}
		}
	}
	return false
}
