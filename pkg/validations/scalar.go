// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package validations

import (
	"fmt"
	"math"
	"unicode/utf8"

	"carvel.dev/yamlls/pkg/jsonschema"
	"carvel.dev/yamlls/pkg/orderedmap"
	"carvel.dev/yamlls/pkg/yamlast"
)

func (v validator) number(num *yamlast.Number, schema *jsonschema.Schema, result *ValidationResult) {
	if schema.Type.Has(jsonschema.TypeString) && !schema.Type.Has(jsonschema.TypeNumber) && !schema.Type.Has(jsonschema.TypeInteger) {
		v.str(num, yamlast.FormatNumber(num.Value), schema, result)
		return
	}

	val := num.Value
	format := yamlast.FormatNumber

	if schema.MultipleOf != nil && *schema.MultipleOf != 0 && math.Mod(val, *schema.MultipleOf) != 0 {
		result.add(v.nodeProblem(num, SeverityWarning, fmt.Sprintf("Value is not divisible by %s.", format(*schema.MultipleOf))))
	}

	if minimum := schema.Minimum; minimum != nil {
		switch {
		case schema.ExclusiveMinimum && val <= *minimum:
			result.add(v.nodeProblem(num, SeverityWarning, fmt.Sprintf("Value is below the exclusive minimum of %s.", format(*minimum))))
		case !schema.ExclusiveMinimum && val < *minimum:
			result.add(v.nodeProblem(num, SeverityWarning, fmt.Sprintf("Value is below the minimum of %s.", format(*minimum))))
		}
	}

	if maximum := schema.Maximum; maximum != nil {
		switch {
		case schema.ExclusiveMaximum && val >= *maximum:
			result.add(v.nodeProblem(num, SeverityWarning, fmt.Sprintf("Value is above the exclusive maximum of %s.", format(*maximum))))
		case !schema.ExclusiveMaximum && val > *maximum:
			result.add(v.nodeProblem(num, SeverityWarning, fmt.Sprintf("Value is above the maximum of %s.", format(*maximum))))
		}
	}
}

// str checks string constraints; node is either a String or a Number that
// stands in for one.
func (v validator) str(node yamlast.Node, val string, schema *jsonschema.Schema, result *ValidationResult) {
	length := utf8.RuneCountInString(val)

	if schema.MinLength != nil && length < *schema.MinLength {
		result.add(v.nodeProblem(node, SeverityWarning, fmt.Sprintf("String is shorter than the minimum length of %d.", *schema.MinLength)))
	}
	if schema.MaxLength != nil && length > *schema.MaxLength {
		result.add(v.nodeProblem(node, SeverityWarning, fmt.Sprintf("String is longer than the maximum length of %d.", *schema.MaxLength)))
	}

	if schema.Pattern != "" {
		matched, ok := jsonschema.MatchPattern(schema.Pattern, schema.IgnoresValueCase(), val)
		if ok && !matched {
			msg := schema.PatternErrorMessage
			if msg == "" {
				msg = schema.ErrorMessage
			}
			if msg == "" {
				msg = fmt.Sprintf("String does not match the pattern of \"%s\".", schema.Pattern)
			}
			result.add(v.nodeProblem(node, SeverityWarning, msg))
		}
	}
}

// valuesEqual is structural equality over decoded values; numbers compare
// by value regardless of their Go type and mappings regardless of key order.
func valuesEqual(a, b interface{}) bool {
	if fa, ok := jsonschema.ToFloat(a); ok {
		fb, ok := jsonschema.ToFloat(b)
		return ok && fa == fb
	}

	switch typedA := a.(type) {
	case nil:
		return b == nil
	case bool:
		typedB, ok := b.(bool)
		return ok && typedA == typedB
	case string:
		typedB, ok := b.(string)
		return ok && typedA == typedB
	case []interface{}:
		typedB, ok := b.([]interface{})
		if !ok || len(typedA) != len(typedB) {
			return false
		}
		for i := range typedA {
			if !valuesEqual(typedA[i], typedB[i]) {
				return false
			}
		}
		return true
	case *orderedmap.Map:
		typedB, ok := b.(*orderedmap.Map)
		if !ok || typedA.Len() != typedB.Len() {
			return false
		}
		equal := true
		typedA.Iterate(func(k string, va interface{}) {
			vb, found := typedB.Get(k)
			if !found || !valuesEqual(va, vb) {
				equal = false
			}
		})
		return equal
	default:
		return false
	}
}
