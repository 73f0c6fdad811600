// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlast

import (
	"math"
	"strconv"

	"carvel.dev/yamlls/pkg/orderedmap"
)

// GetValue converts node into plain data: objects become *orderedmap.Map,
// arrays []interface{}, and scalars nil, bool, int64, float64 or string.
// Merge keys are applied the way YAML loaders apply them: merged keys never
// override keys the mapping declares itself.
func GetValue(node Node) interface{} {
	switch typed := node.(type) {
	case nil:
		return nil
	case *Null:
		return nil
	case *Boolean:
		return typed.Value
	case *Number:
		if typed.IsInteger && typed.Value == math.Trunc(typed.Value) &&
			typed.Value >= math.MinInt64 && typed.Value <= math.MaxInt64 {
			return int64(typed.Value)
		}
		return typed.Value
	case *String:
		return typed.Value
	case *Property:
		return GetValue(typed.Value)
	case *Array:
		result := make([]interface{}, 0, len(typed.Items))
		for _, item := range typed.Items {
			result = append(result, GetValue(item))
		}
		return result
	case *Object:
		return objectValue(typed)
	default:
		panic("Unknown node type")
	}
}

func objectValue(obj *Object) *orderedmap.Map {
	result := orderedmap.NewMap()
	var merged []*orderedmap.Map

	for _, prop := range obj.Properties {
		if prop.IsMergeKey() {
			switch typedVal := prop.Value.(type) {
			case *Object:
				merged = append(merged, objectValue(typedVal))
				continue
			case *Array:
				for _, item := range typedVal.Items {
					if itemObj, ok := item.(*Object); ok {
						merged = append(merged, objectValue(itemObj))
					}
				}
				continue
			}
		}
		result.Set(prop.KeyValue(), GetValue(prop.Value))
	}

	for _, m := range merged {
		m.Iterate(func(k string, v interface{}) {
			if _, found := result.Get(k); !found {
				result.Set(k, v)
			}
		})
	}
	return result
}

// FormatNumber renders a number the way it is compared against enum values
// and string constraints: integers without a fraction, others in shortest form.
func FormatNumber(val float64) string {
	return strconv.FormatFloat(val, 'f', -1, 64)
}
