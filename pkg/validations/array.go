// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package validations

import (
	"fmt"

	"carvel.dev/yamlls/pkg/jsonschema"
	"carvel.dev/yamlls/pkg/yamlast"
)

func (v validator) array(arr *yamlast.Array, schema *jsonschema.Schema, result *ValidationResult, collector SchemaCollector) {
	items := v.effectiveItems(arr, result)
	child := v.child()

	switch {
	case schema.Items.IsTuple():
		tuple := schema.Items.Tuple
		for i, itemSchema := range tuple {
			if i < len(items) {
				itemResult := NewValidationResult()
				child.validate(items[i], itemSchema, itemResult, collector)
				result.MergePropertyMatch(itemResult)
			} else if len(items) >= len(tuple) {
				result.PropertiesValueMatches++
			}
		}
		if len(items) > len(tuple) {
			switch additional := schema.AdditionalItems; {
			case additional != nil && additional.Schema != nil:
				for _, item := range items[len(tuple):] {
					itemResult := NewValidationResult()
					child.validate(item, additional.Schema, itemResult, collector)
					result.MergePropertyMatch(itemResult)
				}
			case additional.IsFalse():
				result.add(v.nodeProblem(arr, SeverityWarning,
					fmt.Sprintf("Array has too many items according to schema. Expected %d or fewer.", len(tuple))))
			}
		}

	case schema.Items != nil && schema.Items.Schema != nil:
		for _, item := range items {
			itemResult := NewValidationResult()
			child.validate(item, schema.Items.Schema, itemResult, collector)
			result.MergePropertyMatch(itemResult)
		}
	}

	if schema.MinItems != nil && len(items) < *schema.MinItems {
		result.add(v.nodeProblem(arr, SeverityWarning, fmt.Sprintf("Array has too few items. Expected %d or more.", *schema.MinItems)))
	}
	if schema.MaxItems != nil && len(items) > *schema.MaxItems {
		result.add(v.nodeProblem(arr, SeverityWarning, fmt.Sprintf("Array has too many items. Expected %d or fewer.", *schema.MaxItems)))
	}

	if schema.UniqueItems && hasDuplicates(items) {
		result.add(v.nodeProblem(arr, SeverityWarning, "Array has duplicate items."))
	}
}

// effectiveItems returns the array's items with sequence-valued compile-time
// expressions replaced by their own items, recursively. The holder mapping's
// expression checks run here since the holder itself is not validated.
func (v validator) effectiveItems(arr *yamlast.Array, result *ValidationResult) []yamlast.Node {
	var items []yamlast.Node
	for _, item := range arr.Items {
		exprs := sequenceExpressions(item)
		if len(exprs) == 0 {
			items = append(items, item)
			continue
		}

		holder := item.(*yamlast.Object)
		for _, prop := range holder.Properties {
			if !prop.IsCompileTimeExpression() {
				continue
			}
			if msg, failed := checkCompileTimeExpression(prop.KeyValue()); failed {
				result.add(v.nodeProblem(prop.Key, SeverityError, msg))
			}
		}
		if len(holder.Properties) > 1 {
			for _, expr := range exprs {
				result.add(v.nodeProblem(expr.Key, SeverityError,
					"A compile-time expression producing a sequence must be the only key in its mapping"))
			}
		}
		for _, expr := range exprs {
			items = append(items, v.effectiveItems(expr.Value.(*yamlast.Array), result)...)
		}
	}
	return items
}

func sequenceExpressions(node yamlast.Node) []*yamlast.Property {
	obj, ok := node.(*yamlast.Object)
	if !ok {
		return nil
	}
	var exprs []*yamlast.Property
	for _, prop := range obj.Properties {
		if _, isArray := prop.Value.(*yamlast.Array); isArray && prop.IsCompileTimeExpression() {
			exprs = append(exprs, prop)
		}
	}
	return exprs
}

func hasDuplicates(items []yamlast.Node) bool {
	values := make([]interface{}, 0, len(items))
	for _, item := range items {
		values = append(values, yamlast.GetValue(item))
	}
	for i := range values {
		for j := i + 1; j < len(values); j++ {
			if valuesEqual(values[i], values[j]) {
				return true
			}
		}
	}
	return false
}
