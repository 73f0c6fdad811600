// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package orderedmap

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

type Conversion struct {
	Object interface{}
}

func (c Conversion) AsUnorderedStringMaps() interface{} {
	return c.asUnorderedStringMaps(c.Object)
}

func (c Conversion) asUnorderedStringMaps(object interface{}) interface{} {
	switch typedObj := object.(type) {
	case map[string]interface{}:
		panic("Expected *orderedmap.Map instead of map[string]interface{} in asUnorderedStringMaps")

	case *Map:
		result := map[string]interface{}{}
		typedObj.Iterate(func(k string, v interface{}) {
			result[k] = c.asUnorderedStringMaps(v)
		})
		return result

	case []interface{}:
		result := make([]interface{}, len(typedObj))
		for i, item := range typedObj {
			result[i] = c.asUnorderedStringMaps(item)
		}
		return result

	default:
		return typedObj
	}
}

// FromUnorderedMaps converts native maps into *Map with keys sorted
// alphabetically, since the native map has no order to preserve.
func (c Conversion) FromUnorderedMaps() interface{} {
	return c.fromUnorderedMaps(c.Object)
}

func (c Conversion) fromUnorderedMaps(object interface{}) interface{} {
	switch typedObj := object.(type) {
	case map[interface{}]interface{}:
		result := NewMap()
		keys := make([]string, 0, len(typedObj))
		byKey := map[string]interface{}{}
		for k, v := range typedObj {
			strK := fmt.Sprintf("%v", k)
			keys = append(keys, strK)
			byKey[strK] = v
		}
		sort.Strings(keys)
		for _, key := range keys {
			result.Set(key, c.fromUnorderedMaps(byKey[key]))
		}
		return result

	case map[string]interface{}:
		result := NewMap()
		keys := make([]string, 0, len(typedObj))
		for k := range typedObj {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, key := range keys {
			result.Set(key, c.fromUnorderedMaps(typedObj[key]))
		}
		return result

	case *Map:
		panic("Expected map[string]interface{} instead of *orderedmap.Map in fromUnorderedMaps")

	case []interface{}:
		result := make([]interface{}, len(typedObj))
		for i, item := range typedObj {
			result[i] = c.fromUnorderedMaps(item)
		}
		return result

	// TOML arrays of tables
	case []map[string]interface{}:
		result := make([]interface{}, len(typedObj))
		for i, item := range typedObj {
			result[i] = c.fromUnorderedMaps(item)
		}
		return result

	default:
		return typedObj
	}
}

// FromJSON decodes a JSON document keeping object keys in document order.
// Objects become *Map, arrays []interface{} and numbers json.Number.
func FromJSON(data []byte) (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	val, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("Expected a single JSON value")
	}
	return val, nil
}

func decodeJSONValue(dec *json.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch typedTok := tok.(type) {
	case json.Delim:
		switch typedTok {
		case '{':
			result := NewMap()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("Expected object key to be a string, but was %T", keyTok)
				}
				val, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				result.Set(key, val)
			}
			_, err = dec.Token() // '}'
			return result, err

		case '[':
			result := []interface{}{}
			for dec.More() {
				val, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				result = append(result, val)
			}
			_, err = dec.Token() // ']'
			return result, err

		default:
			return nil, fmt.Errorf("Unexpected delimiter '%s'", typedTok)
		}
	default:
		return typedTok, nil
	}
}

// FromYAML decodes the first YAML document keeping mapping keys in document
// order. Integers become int64 and floats float64.
func FromYAML(data []byte) (interface{}, error) {
	var doc yaml.Node
	err := yaml.Unmarshal(data, &doc)
	if err != nil {
		return nil, err
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	return fromYAMLNode(&doc)
}

func fromYAMLNode(node *yaml.Node) (interface{}, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return fromYAMLNode(node.Content[0])

	case yaml.MappingNode:
		result := NewMap()
		for i := 0; i+1 < len(node.Content); i += 2 {
			val, err := fromYAMLNode(node.Content[i+1])
			if err != nil {
				return nil, err
			}
			result.Set(node.Content[i].Value, val)
		}
		return result, nil

	case yaml.SequenceNode:
		result := []interface{}{}
		for _, item := range node.Content {
			val, err := fromYAMLNode(item)
			if err != nil {
				return nil, err
			}
			result = append(result, val)
		}
		return result, nil

	case yaml.AliasNode:
		return fromYAMLNode(node.Alias)

	default:
		var val interface{}
		err := node.Decode(&val)
		if err != nil {
			return nil, err
		}
		if intVal, ok := val.(int); ok {
			return int64(intVal), nil
		}
		return val, nil
	}
}
