// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package jsonschema

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"carvel.dev/yamlls/pkg/orderedmap"
)

// FromJSON decodes a schema document, keeping property declaration order.
func FromJSON(data []byte) (*Schema, error) {
	val, err := orderedmap.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("Parsing schema JSON: %w", err)
	}
	return FromValue(val)
}

// FromYAML decodes a schema document written in YAML.
func FromYAML(data []byte) (*Schema, error) {
	val, err := orderedmap.FromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("Parsing schema YAML: %w", err)
	}
	return FromValue(val)
}

// FromValue reads a schema out of generic data. Plain Go maps are accepted
// but their keys are sorted, so property order is only meaningful for
// *orderedmap.Map input.
func FromValue(val interface{}) (*Schema, error) {
	switch val.(type) {
	case map[string]interface{}, map[interface{}]interface{}:
		val = orderedmap.Conversion{Object: val}.FromUnorderedMaps()
	}

	d := &decoder{byPointer: map[string]*Schema{}}
	root, err := d.schema(val, "#")
	if err != nil {
		return nil, err
	}
	d.resolveRefs()
	return root, nil
}

type decodeError struct {
	Pointer string
	Message string
}

func (e decodeError) Error() string {
	return fmt.Sprintf("Invalid schema at '%s': %s", e.Pointer, e.Message)
}

type decoder struct {
	byPointer map[string]*Schema
	withRefs  []*Schema
}

func (d *decoder) resolveRefs() {
	for _, s := range d.withRefs {
		ref := s.Ref
		if !strings.HasPrefix(ref, "#") {
			continue
		}
		if unescaped, err := url.PathUnescape(ref); err == nil {
			ref = unescaped
		}
		ref = strings.TrimSuffix(ref, "/")
		if target, found := d.byPointer[ref]; found && target != s {
			s.resolved = target
		}
	}
}

func (d *decoder) schema(val interface{}, pointer string) (*Schema, error) {
	s := &Schema{}
	d.byPointer[pointer] = s

	switch typedVal := val.(type) {
	case bool:
		// true accepts everything, false nothing
		if !typedVal {
			s.Not = &Schema{}
		}
		return s, nil
	case *orderedmap.Map:
		return s, d.fill(s, typedVal, pointer)
	default:
		return nil, decodeError{pointer, fmt.Sprintf("Expected an object or a boolean, but was %s", describe(val))}
	}
}

func (d *decoder) fill(s *Schema, obj *orderedmap.Map, pointer string) error {
	return obj.IterateErr(func(key string, val interface{}) error {
		at := pointer + "/" + escapePointer(key)
		var err error

		switch key {
		case "$ref":
			s.Ref, err = asString(val, at)
			d.withRefs = append(d.withRefs, s)
		case "type":
			s.Type, err = asType(val, at)
		case "title":
			s.Title, err = asString(val, at)
		case "description":
			s.Description, err = asString(val, at)
		case "markdownDescription":
			s.MarkdownDescription, err = asString(val, at)
		case "default":
			s.Default = NormalizeValue(val)
			s.HasDefault = true

		case "properties":
			s.Properties, err = d.schemaMap(val, at)
		case "patternProperties":
			s.PatternProperties, err = d.schemaMap(val, at)
		case "definitions":
			s.Definitions, err = d.schemaMap(val, at)
		case "additionalProperties":
			s.AdditionalProperties, err = d.boolOrSchema(val, at)
		case "required":
			s.Required, err = asStrings(val, at)
		case "dependencies":
			s.Dependencies, err = d.dependencies(val, at)
		case "minProperties":
			s.MinProperties, err = asInt(val, at)
		case "maxProperties":
			s.MaxProperties, err = asInt(val, at)

		case "items":
			s.Items, err = d.items(val, at)
		case "additionalItems":
			s.AdditionalItems, err = d.boolOrSchema(val, at)
		case "minItems":
			s.MinItems, err = asInt(val, at)
		case "maxItems":
			s.MaxItems, err = asInt(val, at)
		case "uniqueItems":
			s.UniqueItems, err = asBool(val, at)

		case "enum":
			list, ok := val.([]interface{})
			if !ok {
				return decodeError{at, fmt.Sprintf("Expected an array, but was %s", describe(val))}
			}
			for _, item := range list {
				s.Enum = append(s.Enum, NormalizeValue(item))
			}
		case "const":
			s.Enum = []interface{}{NormalizeValue(val)}

		case "allOf":
			s.AllOf, err = d.schemaList(val, at)
		case "anyOf":
			s.AnyOf, err = d.schemaList(val, at)
		case "oneOf":
			s.OneOf, err = d.schemaList(val, at)
		case "not":
			s.Not, err = d.schema(val, at)

		case "minimum":
			s.Minimum, err = asFloat(val, at)
		case "maximum":
			s.Maximum, err = asFloat(val, at)
		case "multipleOf":
			s.MultipleOf, err = asFloat(val, at)
		case "exclusiveMinimum":
			err = exclusiveBound(val, at, &s.ExclusiveMinimum, &s.Minimum)
		case "exclusiveMaximum":
			err = exclusiveBound(val, at, &s.ExclusiveMaximum, &s.Maximum)

		case "minLength":
			s.MinLength, err = asInt(val, at)
		case "maxLength":
			s.MaxLength, err = asInt(val, at)
		case "pattern":
			s.Pattern, err = asString(val, at)

		case "firstProperty":
			s.FirstProperty, err = asStrings(val, at)
		case "aliases":
			s.Aliases, err = asStrings(val, at)
		case "ignoreCase":
			s.IgnoreCase, err = asString(val, at)
			if err == nil {
				switch s.IgnoreCase {
				case IgnoreCaseKey, IgnoreCaseValue, IgnoreCaseAll:
				default:
					err = decodeError{at, fmt.Sprintf("Expected one of 'key', 'value' or 'all', but was '%s'", s.IgnoreCase)}
				}
			}
		case "deprecationMessage":
			s.DeprecationMessage, err = asString(val, at)
		case "doNotSuggest":
			s.DoNotSuggest, err = asBool(val, at)
		case "errorMessage":
			s.ErrorMessage, err = asString(val, at)
		case "patternErrorMessage":
			s.PatternErrorMessage, err = asString(val, at)
		case "enumDescriptions":
			s.EnumDescriptions, err = asStrings(val, at)
		case "markdownEnumDescriptions":
			s.MarkdownEnumDescriptions, err = asStrings(val, at)
		}
		return err
	})
}

func (d *decoder) schemaMap(val interface{}, pointer string) (*orderedmap.Map, error) {
	obj, ok := val.(*orderedmap.Map)
	if !ok {
		return nil, decodeError{pointer, fmt.Sprintf("Expected an object, but was %s", describe(val))}
	}
	result := orderedmap.NewMap()
	err := obj.IterateErr(func(key string, item interface{}) error {
		s, err := d.schema(item, pointer+"/"+escapePointer(key))
		if err != nil {
			return err
		}
		result.Set(key, s)
		return nil
	})
	return result, err
}

func (d *decoder) schemaList(val interface{}, pointer string) ([]*Schema, error) {
	list, ok := val.([]interface{})
	if !ok {
		return nil, decodeError{pointer, fmt.Sprintf("Expected an array, but was %s", describe(val))}
	}
	var result []*Schema
	for i, item := range list {
		s, err := d.schema(item, pointer+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, nil
}

func (d *decoder) boolOrSchema(val interface{}, pointer string) (*BoolOrSchema, error) {
	if typedVal, ok := val.(bool); ok {
		return &BoolOrSchema{Value: typedVal}, nil
	}
	s, err := d.schema(val, pointer)
	if err != nil {
		return nil, err
	}
	return &BoolOrSchema{Schema: s}, nil
}

func (d *decoder) items(val interface{}, pointer string) (*Items, error) {
	if _, ok := val.([]interface{}); ok {
		tuple, err := d.schemaList(val, pointer)
		if err != nil {
			return nil, err
		}
		if tuple == nil {
			tuple = []*Schema{}
		}
		return &Items{Tuple: tuple}, nil
	}
	s, err := d.schema(val, pointer)
	if err != nil {
		return nil, err
	}
	return &Items{Schema: s}, nil
}

func (d *decoder) dependencies(val interface{}, pointer string) ([]Dependency, error) {
	obj, ok := val.(*orderedmap.Map)
	if !ok {
		return nil, decodeError{pointer, fmt.Sprintf("Expected an object, but was %s", describe(val))}
	}
	var result []Dependency
	err := obj.IterateErr(func(key string, item interface{}) error {
		at := pointer + "/" + escapePointer(key)
		if _, isList := item.([]interface{}); isList {
			props, err := asStrings(item, at)
			if err != nil {
				return err
			}
			result = append(result, Dependency{Property: key, Properties: props})
			return nil
		}
		s, err := d.schema(item, at)
		if err != nil {
			return err
		}
		result = append(result, Dependency{Property: key, Schema: s})
		return nil
	})
	return result, err
}

func asType(val interface{}, pointer string) (SchemaType, error) {
	if name, ok := val.(string); ok {
		return SchemaType{Names: []string{name}}, nil
	}
	names, err := asStrings(val, pointer)
	if err != nil {
		return SchemaType{}, err
	}
	return SchemaType{Names: names, List: true}, nil
}

// exclusiveBound accepts both the draft-4 boolean and the numeric form; the
// latter also sets the bound itself.
func exclusiveBound(val interface{}, pointer string, exclusive *bool, bound **float64) error {
	if typedVal, ok := val.(bool); ok {
		*exclusive = typedVal
		return nil
	}
	num, err := asFloat(val, pointer)
	if err != nil {
		return decodeError{pointer, fmt.Sprintf("Expected a boolean or a number, but was %s", describe(val))}
	}
	*exclusive = true
	*bound = num
	return nil
}

func asString(val interface{}, pointer string) (string, error) {
	str, ok := val.(string)
	if !ok {
		return "", decodeError{pointer, fmt.Sprintf("Expected a string, but was %s", describe(val))}
	}
	return str, nil
}

func asStrings(val interface{}, pointer string) ([]string, error) {
	list, ok := val.([]interface{})
	if !ok {
		return nil, decodeError{pointer, fmt.Sprintf("Expected an array of strings, but was %s", describe(val))}
	}
	result := []string{}
	for i, item := range list {
		str, err := asString(item, pointer+"/"+strconv.Itoa(i))
		if err != nil {
			return nil, err
		}
		result = append(result, str)
	}
	return result, nil
}

func asBool(val interface{}, pointer string) (bool, error) {
	b, ok := val.(bool)
	if !ok {
		return false, decodeError{pointer, fmt.Sprintf("Expected a boolean, but was %s", describe(val))}
	}
	return b, nil
}

func asFloat(val interface{}, pointer string) (*float64, error) {
	f, ok := ToFloat(val)
	if !ok {
		return nil, decodeError{pointer, fmt.Sprintf("Expected a number, but was %s", describe(val))}
	}
	return &f, nil
}

func asInt(val interface{}, pointer string) (*int, error) {
	f, ok := ToFloat(val)
	if !ok || f != math.Trunc(f) || f < 0 {
		return nil, decodeError{pointer, fmt.Sprintf("Expected a non-negative integer, but was %s", describe(val))}
	}
	i := int(f)
	return &i, nil
}

// ToFloat converts any of the numeric representations produced by the
// decoders to float64.
func ToFloat(val interface{}) (float64, bool) {
	switch typedVal := val.(type) {
	case json.Number:
		f, err := typedVal.Float64()
		return f, err == nil
	case float64:
		return typedVal, true
	case float32:
		return float64(typedVal), true
	case int:
		return float64(typedVal), true
	case int64:
		return float64(typedVal), true
	case uint64:
		return float64(typedVal), true
	default:
		return 0, false
	}
}

// NormalizeValue converts decoded numbers to int64 (whole values) or float64
// so that enum and default values compare equal to document values.
func NormalizeValue(val interface{}) interface{} {
	switch typedVal := val.(type) {
	case json.Number:
		if i, err := typedVal.Int64(); err == nil {
			return i
		}
		f, _ := typedVal.Float64()
		return f
	case int:
		return int64(typedVal)
	case *orderedmap.Map:
		result := orderedmap.NewMap()
		typedVal.Iterate(func(k string, v interface{}) {
			result.Set(k, NormalizeValue(v))
		})
		return result
	case []interface{}:
		result := make([]interface{}, 0, len(typedVal))
		for _, item := range typedVal {
			result = append(result, NormalizeValue(item))
		}
		return result
	default:
		return val
	}
}

func escapePointer(key string) string {
	return strings.ReplaceAll(strings.ReplaceAll(key, "~", "~0"), "/", "~1")
}

func describe(val interface{}) string {
	switch val.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case []interface{}:
		return "an array"
	case *orderedmap.Map:
		return "an object"
	default:
		if _, ok := ToFloat(val); ok {
			return "a number"
		}
		return fmt.Sprintf("%T", val)
	}
}
