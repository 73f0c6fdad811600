// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package validations

import (
	"encoding/json"
	"fmt"
	"strings"

	"carvel.dev/yamlls/pkg/jsonschema"
	"carvel.dev/yamlls/pkg/yamlast"
)

// Context carries the settings of one validation run.
type Context struct {
	// IsKubernetes selects the property-count-first ranking of anyOf/oneOf
	// alternatives.
	IsKubernetes bool
}

// Validate checks node against schema, adding problems to result and the
// schema facts it finds to collector.
func Validate(node yamlast.Node, schema *jsonschema.Schema, ctx Context, result *ValidationResult, collector SchemaCollector) {
	validator{ctx: ctx}.validate(node, schema, result, collector)
}

// Problems validates a document root and returns every problem found.
func Problems(root yamlast.Node, schema *jsonschema.Schema, ctx Context) []Problem {
	if root == nil || schema == nil {
		return nil
	}
	result := NewValidationResult()
	Validate(root, schema, ctx, result, NoOpCollector{})
	return result.Problems
}

// MatchingSchemas returns the schema facts recorded for nodes containing
// focusOffset (or all nodes when focusOffset is -1), skipping exclude.
func MatchingSchemas(root yamlast.Node, schema *jsonschema.Schema, ctx Context, focusOffset int, exclude yamlast.Node) []ApplicableSchema {
	if root == nil || schema == nil {
		return nil
	}
	collector := NewCapturingCollector(focusOffset, exclude)
	Validate(root, schema, ctx, NewValidationResult(), collector)
	return collector.Schemas()
}

type validator struct {
	ctx   Context
	depth int
}

func (v validator) child() validator {
	return validator{v.ctx, v.depth + 1}
}

func (v validator) problem(start, end int, severity Severity, msg string) Problem {
	return Problem{Start: start, End: end, Severity: severity, Depth: v.depth, message: staticMessage(msg)}
}

func (v validator) nodeProblem(node yamlast.Node, severity Severity, msg string) Problem {
	return v.problem(node.Start(), node.End(), severity, msg)
}

func (v validator) validate(node yamlast.Node, schema *jsonschema.Schema, result *ValidationResult, collector SchemaCollector) {
	schema = schema.Deref()
	if node == nil || schema == nil || !collector.Include(node) {
		return
	}

	switch typedNode := node.(type) {
	case *yamlast.Property:
		if typedNode.Value != nil {
			v.validate(typedNode.Value, schema, result, collector)
		}
	case *yamlast.Object:
		v.common(node, schema, result, collector)
		v.object(typedNode, schema, result, collector)
	case *yamlast.Array:
		v.common(node, schema, result, collector)
		v.array(typedNode, schema, result, collector)
	case *yamlast.Number:
		v.common(node, schema, result, collector)
		v.number(typedNode, schema, result)
	case *yamlast.String:
		v.common(node, schema, result, collector)
		v.str(node, typedNode.Value, schema, result)
	default:
		v.common(node, schema, result, collector)
	}
}

// common runs the checks shared by every node type and records the fact.
func (v validator) common(node yamlast.Node, schema *jsonschema.Schema, result *ValidationResult, collector SchemaCollector) {
	v.checkType(node, schema, result)

	for _, sub := range schema.AllOf {
		v.validate(node, sub, result, collector)
	}

	if schema.Not != nil {
		subResult := NewValidationResult()
		subCollector := collector.NewSub()
		v.validate(node, schema.Not, subResult, subCollector)
		if !subResult.HasProblems() {
			result.add(v.nodeProblem(node, SeverityWarning, "Matches a schema that is not allowed."))
		}
		for _, fact := range subCollector.Schemas() {
			fact.Inverted = !fact.Inverted
			collector.Add(fact)
		}
	}

	if len(schema.AnyOf) > 0 {
		v.alternatives(node, schema.AnyOf, false, result, collector)
	}
	if len(schema.OneOf) > 0 {
		v.alternatives(node, schema.OneOf, true, result, collector)
	}

	if schema.Enum != nil {
		v.enum(node, schema, result)
	}

	if schema.DeprecationMessage != "" && node.Parent() != nil {
		parent := node.Parent()
		result.add(v.nodeProblem(parent, SeverityWarning, schema.DeprecationMessage))
	}

	collector.Add(ApplicableSchema{Node: node, Schema: schema})
}

func nodeTypeName(node yamlast.Node, schema *jsonschema.Schema) string {
	if num, ok := node.(*yamlast.Number); ok && num.IsInteger && schema.Type.Has(jsonschema.TypeInteger) {
		return jsonschema.TypeInteger
	}
	return string(node.Type())
}

func (v validator) checkType(node yamlast.Node, schema *jsonschema.Schema, result *ValidationResult) {
	if schema.Type.IsEmpty() {
		return
	}
	typeName := nodeTypeName(node, schema)
	if schema.Type.Has(typeName) {
		return
	}
	// YAML cannot tell 123 the number from 123 the string
	if node.Type() == yamlast.TypeNumber && schema.Type.Has(jsonschema.TypeString) {
		return
	}

	msg := schema.ErrorMessage
	if msg == "" {
		if schema.Type.List {
			msg = fmt.Sprintf("Incorrect type. Expected one of %s.", schema.Type)
		} else {
			msg = fmt.Sprintf("Incorrect type. Expected \"%s\".", schema.Type)
		}
	}
	result.add(v.nodeProblem(node, SeverityWarning, msg))
}

type bestMatch struct {
	result    *ValidationResult
	collector SchemaCollector
}

func (v validator) alternatives(node yamlast.Node, alternatives []*jsonschema.Schema, maxOneMatch bool,
	result *ValidationResult, collector SchemaCollector) {

	var best *bestMatch
	matches := 0

	for _, alternative := range candidateAlternatives(node, alternatives) {
		subResult := NewValidationResult()
		subCollector := collector.NewSub()
		v.validate(node, alternative, subResult, subCollector)
		if !subResult.HasProblems() {
			matches++
		}

		switch {
		case best == nil:
			best = &bestMatch{subResult, subCollector}
		case v.ctx.IsKubernetes:
			best = v.rankKubernetes(best, subResult, subCollector)
		default:
			best = v.rankGeneric(best, maxOneMatch, subResult, subCollector)
		}
	}

	if matches > 1 && maxOneMatch && !v.ctx.IsKubernetes {
		result.add(v.problem(node.Start(), node.Start()+1, SeverityWarning, "Matches multiple schemas when only one must validate."))
	}

	if best != nil {
		result.Merge(best.result)
		result.PropertiesMatches += best.result.PropertiesMatches
		result.PropertiesValueMatches += best.result.PropertiesValueMatches
		collector.Merge(best.collector)
	}
}

func (v validator) rankGeneric(best *bestMatch, maxOneMatch bool, subResult *ValidationResult, subCollector SchemaCollector) *bestMatch {
	if !maxOneMatch && !subResult.HasProblems() && !best.result.HasProblems() {
		// equally good matches
		best.collector.Merge(subCollector)
		best.result.PropertiesMatches += subResult.PropertiesMatches
		best.result.PropertiesValueMatches += subResult.PropertiesValueMatches
		return best
	}
	return rank(best, subResult.CompareGeneric(best.result), subResult, subCollector)
}

func (v validator) rankKubernetes(best *bestMatch, subResult *ValidationResult, subCollector SchemaCollector) *bestMatch {
	return rank(best, subResult.CompareKubernetes(best.result), subResult, subCollector)
}

func rank(best *bestMatch, cmp int, subResult *ValidationResult, subCollector SchemaCollector) *bestMatch {
	switch {
	case cmp > 0:
		return &bestMatch{subResult, subCollector}
	case cmp == 0:
		best.collector.Merge(subCollector)
		best.result.MergeEnumValues(subResult)
	}
	return best
}

// candidateAlternatives narrows alternatives to those whose firstProperty
// accepts the object's first property, when any does.
func candidateAlternatives(node yamlast.Node, alternatives []*jsonschema.Schema) []*jsonschema.Schema {
	obj, ok := node.(*yamlast.Object)
	if !ok {
		return alternatives
	}
	first := effectiveFirstProperty(obj)
	if first == nil {
		return alternatives
	}

	var filtered []*jsonschema.Schema
	for _, alternative := range alternatives {
		if acceptsFirstProperty(alternative.Deref(), first.KeyValue()) {
			filtered = append(filtered, alternative)
		}
	}
	if len(filtered) == 0 {
		return alternatives
	}
	return filtered
}

func (v validator) enum(node yamlast.Node, schema *jsonschema.Schema, result *ValidationResult) {
	val := yamlast.GetValue(node)
	ignoreCase := schema.IgnoresValueCase()

	match := false
	for _, e := range schema.Enum {
		if enumEntryMatches(node, val, e, ignoreCase) {
			match = true
			break
		}
	}
	result.EnumValues = schema.Enum
	result.EnumValueMatch = match
	if match {
		return
	}

	p := Problem{
		Start:    node.Start(),
		End:      node.End(),
		Severity: SeverityWarning,
		Code:     CodeEnumValueMismatch,
		Depth:    v.depth,
	}
	if schema.ErrorMessage != "" {
		p.message = staticMessage(schema.ErrorMessage)
		p.customized = true
	} else {
		values := schema.Enum
		p.message = newMessage(func() string { return enumMismatchMessage(values) })
	}
	result.add(p)
}

// EnumIndex returns the index of the first entry of schema's enum that node
// matches, or -1. It compares the way enum validation does.
func EnumIndex(node yamlast.Node, schema *jsonschema.Schema) int {
	val := yamlast.GetValue(node)
	ignoreCase := schema.IgnoresValueCase()
	for i, e := range schema.Enum {
		if enumEntryMatches(node, val, e, ignoreCase) {
			return i
		}
	}
	return -1
}

// enumEntryMatches compares a node value with one enum entry. Numbers are
// compared by their text against string entries and by value otherwise.
func enumEntryMatches(node yamlast.Node, val, entry interface{}, ignoreCase bool) bool {
	if num, ok := node.(*yamlast.Number); ok {
		if str, isStr := entry.(string); isStr {
			return stringsMatch(yamlast.FormatNumber(num.Value), str, ignoreCase)
		}
	}
	if str, ok := val.(string); ok {
		if entryStr, isStr := entry.(string); isStr {
			return stringsMatch(str, entryStr, ignoreCase)
		}
	}
	return valuesEqual(val, entry)
}

func stringsMatch(a, b string, ignoreCase bool) bool {
	if ignoreCase {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func enumMismatchMessage(values []interface{}) string {
	var rendered []string
	for _, val := range values {
		bs, err := json.Marshal(val)
		if err != nil {
			rendered = append(rendered, fmt.Sprintf("%v", val))
			continue
		}
		rendered = append(rendered, string(bs))
	}
	return fmt.Sprintf("Value is not accepted. Valid values: %s.", strings.Join(rendered, ", "))
}
