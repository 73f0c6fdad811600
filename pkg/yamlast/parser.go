// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlast

import (
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"carvel.dev/yamlls/pkg/filepos"
	"gopkg.in/yaml.v3"
)

type TagKind string

const (
	TagKindScalar   TagKind = "scalar"
	TagKindMapping  TagKind = "mapping"
	TagKindSequence TagKind = "sequence"
)

type ParserOpts struct {
	// CustomTags are declarations of the form "<tag> [scalar|mapping|sequence]".
	CustomTags []string
}

type Parser struct {
	opts ParserOpts
	tags map[string]TagKind
}

type ParseResult struct {
	Documents []*Document
}

// Document is one document of a YAML stream. Root is nil when the document
// has no content or could not be parsed.
type Document struct {
	Root     Node
	Errors   []SyntaxProblem
	Warnings []SyntaxProblem
}

type SyntaxProblem struct {
	Start   int
	End     int
	Message string
}

func NewParser(opts ParserOpts) *Parser {
	return &Parser{opts, ParseCustomTags(opts.CustomTags)}
}

// ParseCustomTags turns tag declarations into a tag to kind lookup.
func ParseCustomTags(decls []string) map[string]TagKind {
	tags := map[string]TagKind{}
	for _, decl := range decls {
		pieces := strings.Fields(decl)
		if len(pieces) == 0 {
			continue
		}
		kind := TagKindScalar
		if len(pieces) > 1 {
			kind = TagKind(pieces[1])
		}
		tags[pieces[0]] = kind
	}
	return tags
}

// Parse converts every document of the stream. Parsing stops at the first
// syntax error; the failing document is reported with a nil root and the
// documents after it are kept with no content. Aliases to anchors that are
// never defined become Null nodes.
func (p *Parser) Parse(text string) *ParseResult {
	nulls := map[int]int{}
	for {
		result, unknownAnchor := p.parse(text, nulls)
		if unknownAnchor == "" {
			return result
		}
		start, end, found := findAlias(text, unknownAnchor)
		if !found {
			return result
		}
		// same length keeps every offset in place
		nulls[start] = end
		text = text[:start] + "~" + strings.Repeat(" ", end-start-1) + text[end:]
	}
}

var unknownAnchorErr = regexp.MustCompile(`unknown anchor '(.+)' referenced`)

// parse also returns the anchor name when decoding failed on an unknown anchor.
func (p *Parser) parse(text string, nulls map[int]int) (result *ParseResult, unknownAnchor string) {
	result = &ParseResult{}
	conv := &converter{
		text:      text,
		lines:     filepos.LineOffsets(text),
		tags:      p.tags,
		nulls:     nulls,
		expanding: map[*yaml.Node]bool{},
		anchors:   map[*yaml.Node]anchorCtx{},
	}

	dec := yaml.NewDecoder(strings.NewReader(text))
	for {
		var doc yaml.Node
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			if match := unknownAnchorErr.FindStringSubmatch(err.Error()); match != nil {
				unknownAnchor = match[1]
			}
			problem := conv.syntaxProblem(err)
			result.Documents = append(result.Documents, &Document{Errors: []SyntaxProblem{problem}})
			// the decoder cannot resume past an error
			for i := conv.documentStartsAfter(problem.Start); i > 0; i-- {
				result.Documents = append(result.Documents, &Document{})
			}
			break
		}
		result.Documents = append(result.Documents, conv.document(&doc))
	}
	return result, unknownAnchor
}

type anchorCtx struct {
	flow   bool
	indent int
}

type converter struct {
	text  string
	lines []int
	tags  map[string]TagKind
	// start -> end of aliases replaced by a null
	nulls map[int]int

	// alias expansion state; anchors record how their node was first converted
	expanding map[*yaml.Node]bool
	anchors   map[*yaml.Node]anchorCtx

	doc *Document
}

func (c *converter) document(n *yaml.Node) *Document {
	c.doc = &Document{}
	if len(n.Content) > 0 && !isEmptyNull(n.Content[0]) {
		c.doc.Root, _ = c.convert(n.Content[0], false, -1)
	}
	return c.doc
}

// convert returns the AST for n along with the offset where n's own text
// ends. The two differ for aliases, whose subtree keeps the anchor's offsets.
func (c *converter) convert(n *yaml.Node, flow bool, indent int) (Node, int) {
	if n.Anchor != "" {
		if _, found := c.anchors[n]; !found {
			c.anchors[n] = anchorCtx{flow, indent}
		}
	}

	switch n.Kind {
	case yaml.MappingNode:
		c.checkTag(n, TagKindMapping)
		obj := c.mapping(n, flow || n.Style&yaml.FlowStyle != 0)
		return obj, obj.End()

	case yaml.SequenceNode:
		c.checkTag(n, TagKindSequence)
		arr := c.sequence(n, flow || n.Style&yaml.FlowStyle != 0)
		return arr, arr.End()

	case yaml.AliasNode:
		start := c.offsetOf(n.Line, n.Column)
		end := c.tokenEnd(start, flow)
		if n.Alias == nil || c.expanding[n.Alias] {
			return NewNull(start, end), end
		}
		ctx, found := c.anchors[n.Alias]
		if !found {
			ctx = anchorCtx{flow, c.lineIndent(c.startOf(n.Alias)) - 1}
		}
		c.expanding[n.Alias] = true
		node, _ := c.convert(n.Alias, ctx.flow, ctx.indent)
		delete(c.expanding, n.Alias)
		return node, end

	case yaml.ScalarNode:
		node := c.scalar(n, flow, indent)
		return node, node.End()

	default:
		start := c.offsetOf(n.Line, n.Column)
		return NewNull(start, start), start
	}
}

func (c *converter) mapping(n *yaml.Node, flow bool) *Object {
	start := c.startOf(n)
	obj := NewObject(start, start)
	if flow {
		obj.extendTo(start + 1)
	}

	seenKeys := map[string]bool{}

	for i := 0; i+1 < len(n.Content); i += 2 {
		keyYAML, valYAML := n.Content[i], n.Content[i+1]

		key := c.key(keyYAML, flow)
		colon := c.findColon(key.End())
		keyIndent := c.columnOf(key.Start())

		var value Node
		var valueEnd int
		if isEmptyNull(valYAML) {
			pos := key.End()
			if colon >= 0 {
				pos = colon + 1
			}
			value, valueEnd = NewNull(pos, pos), pos
		} else {
			value, valueEnd = c.convert(valYAML, flow, keyIndent)
		}

		prop := NewProperty(key, colon, value)
		prop.extendTo(valueEnd)

		if seenKeys[key.Value] && key.Value != MergeKey {
			c.doc.Warnings = append(c.doc.Warnings, SyntaxProblem{
				Start:   key.Start(),
				End:     key.End(),
				Message: fmt.Sprintf("Duplicate key \"%s\"", key.Value),
			})
		}
		seenKeys[key.Value] = true

		obj.AddProperty(prop)
	}

	if flow && n.Style&yaml.FlowStyle != 0 {
		obj.extendTo(c.closingEnd(obj.End(), '}'))
	}
	return obj
}

func (c *converter) key(n *yaml.Node, flow bool) *String {
	if n.Kind == yaml.ScalarNode {
		start := c.startOf(n)
		return NewString(start, c.scalarEnd(n, start, flow, -1), n.Value, true)
	}

	node, end := c.convert(n, flow, -1)
	start, value := node.Start(), n.Value
	if n.Kind == yaml.AliasNode {
		start = c.offsetOf(n.Line, n.Column)
		if n.Alias != nil {
			value = n.Alias.Value
		}
	}
	return NewString(start, end, value, true)
}

func (c *converter) sequence(n *yaml.Node, flow bool) *Array {
	start := c.startOf(n)
	arr := NewArray(start, start)
	if flow {
		arr.extendTo(start + 1)
	}
	seqIndent := c.columnOf(start)
	cursor := start

	for i, itemYAML := range n.Content {
		if flow {
			item, itemEnd := c.convert(itemYAML, true, seqIndent)
			arr.AddItem(item)
			arr.extendTo(itemEnd)
			continue
		}

		dash := c.findDash(cursor)
		if isEmptyNull(itemYAML) {
			if i == len(n.Content)-1 {
				// a trailing "-" with nothing after it is not an item
				arr.extendTo(dash + 1)
				break
			}
			arr.AddItem(NewNull(dash+1, dash+1))
			cursor = dash + 1
			continue
		}

		item, itemEnd := c.convert(itemYAML, false, seqIndent)
		arr.AddItem(item)
		arr.extendTo(itemEnd)
		cursor = itemEnd
		if cursor < dash+1 {
			cursor = dash + 1
		}
	}

	if flow && n.Style&yaml.FlowStyle != 0 {
		arr.extendTo(c.closingEnd(arr.End(), ']'))
	}
	return arr
}

var forcedBooleans = map[string]bool{
	"y": true, "Y": true, "yes": true, "Yes": true, "YES": true,
	"n": false, "N": false, "no": false, "No": false, "NO": false,
	"on": true, "On": true, "ON": true,
	"off": false, "Off": false, "OFF": false,
}

func (c *converter) scalar(n *yaml.Node, flow bool, indent int) Node {
	start := c.startOf(n)
	if end, found := c.nulls[start]; found {
		return NewNull(start, end)
	}
	end := c.scalarEnd(n, start, flow, indent)

	if isCustomTag(n.Tag) {
		c.checkTag(n, TagKindScalar)
		return NewString(start, end, n.Value, false)
	}

	plain := n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle|yaml.LiteralStyle|yaml.FoldedStyle) == 0
	explicitTag := n.Style&yaml.TaggedStyle != 0

	if plain && !explicitTag {
		if val, found := forcedBooleans[n.Value]; found {
			return NewBoolean(start, end, val)
		}
	}
	if !plain && !explicitTag {
		return NewString(start, end, n.Value, false)
	}

	switch n.ShortTag() {
	case "!!null":
		return NewNull(start, end)

	case "!!bool":
		var val bool
		if err := n.Decode(&val); err == nil {
			return NewBoolean(start, end, val)
		}

	case "!!int":
		if val, ok := decodeNumber(n); ok {
			return NewNumber(start, end, val, true)
		}

	case "!!float":
		if val, ok := decodeNumber(n); ok {
			return NewNumber(start, end, val, false)
		}
	}
	return NewString(start, end, n.Value, false)
}

func decodeNumber(n *yaml.Node) (float64, bool) {
	var val interface{}
	if err := n.Decode(&val); err == nil {
		switch typedVal := val.(type) {
		case int:
			return float64(typedVal), true
		case int64:
			return float64(typedVal), true
		case uint64:
			return float64(typedVal), true
		case float64:
			return typedVal, true
		}
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(n.Value, "_", ""), 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return math.NaN(), false
	}
	return f, true
}

func (c *converter) checkTag(n *yaml.Node, kind TagKind) {
	if !isCustomTag(n.Tag) {
		return
	}
	if declared, found := c.tags[n.Tag]; found && declared == kind {
		return
	}
	start := c.offsetOf(n.Line, n.Column)
	c.doc.Warnings = append(c.doc.Warnings, SyntaxProblem{
		Start:   start,
		End:     c.tokenEnd(start, false),
		Message: fmt.Sprintf("Unknown tag %s", n.Tag),
	})
}

func isCustomTag(tag string) bool {
	return strings.HasPrefix(tag, "!") && !strings.HasPrefix(tag, "!!")
}

// isEmptyNull reports a value that was left out entirely, as in "key:" or "-".
func isEmptyNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Value == "" && n.ShortTag() == "!!null" &&
		n.Anchor == "" && n.Style == 0
}

var syntaxErrorLine = regexp.MustCompile(`^yaml: line (\d+): (.*)$`)

func (c *converter) syntaxProblem(err error) SyntaxProblem {
	msg := strings.TrimPrefix(err.Error(), "yaml: ")

	match := syntaxErrorLine.FindStringSubmatch(err.Error())
	if match == nil {
		end := len(c.text)
		return SyntaxProblem{Start: end, End: end, Message: msg}
	}

	line, _ := strconv.Atoi(match[1])
	line--
	if line >= len(c.lines) {
		line = len(c.lines) - 1
	}
	if line < 0 {
		line = 0
	}
	start, end := c.lineBounds(line)
	for start < end && isBlank(c.text[start]) {
		start++
	}
	return SyntaxProblem{Start: start, End: end, Message: match[2]}
}
