// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package orderedmap_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"carvel.dev/yamlls/pkg/orderedmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFromUnorderedMaps(t *testing.T) {
	inputA := map[string]interface{}{
		"key": []interface{}{map[string]interface{}{"nestedKey": "nestedValue"}},
	}
	inputB := map[string]interface{}{
		"key": []interface{}{map[string]interface{}{"nestedKey": "nestedValue"}},
	}

	result := orderedmap.Conversion{Object: inputA}.FromUnorderedMaps()

	if !reflect.DeepEqual(inputA, inputB) {
		t.Errorf("Nested object was modified. Got: %v, Expected: %v", inputA, inputB)
	}
	assert.Equal(t, inputA, orderedmap.Conversion{Object: result}.AsUnorderedStringMaps())
}

func TestFromJSONKeepsKeyOrder(t *testing.T) {
	result, err := orderedmap.FromJSON([]byte(`{"z": 1, "a": {"y": [true, null, "s"], "b": 2.5}}`))
	require.NoError(t, err)

	m, ok := result.(*orderedmap.Map)
	require.True(t, ok)
	assert.Equal(t, []string{"z", "a"}, m.Keys())

	nested, _ := m.Get("a")
	assert.Equal(t, []string{"y", "b"}, nested.(*orderedmap.Map).Keys())

	z, _ := m.Get("z")
	assert.Equal(t, json.Number("1"), z)

	bs, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":{"y":[true,null,"s"],"b":2.5}}`, string(bs))
}

func TestFromJSONRejectsTrailingValues(t *testing.T) {
	_, err := orderedmap.FromJSON([]byte(`{} {}`))
	require.Error(t, err)
}

func TestFromYAMLKeepsKeyOrder(t *testing.T) {
	result, err := orderedmap.FromYAML([]byte("z: 1\na:\n  y: [1, 2]\n  b: text\n"))
	require.NoError(t, err)

	m := result.(*orderedmap.Map)
	assert.Equal(t, []string{"z", "a"}, m.Keys())

	z, _ := m.Get("z")
	assert.Equal(t, int64(1), z)

	bs, err := yaml.Marshal(m)
	require.NoError(t, err)
	assert.Regexp(t, `(?s)^z: 1\na:\n.*y.*b: text\n$`, string(bs))

	again, err := orderedmap.FromYAML(bs)
	require.NoError(t, err)
	assert.Equal(t, m.Keys(), again.(*orderedmap.Map).Keys())
}

func TestMapDeleteKeepsOrder(t *testing.T) {
	m := orderedmap.NewMapWithItems([]orderedmap.MapItem{{"a", 1}, {"b", 2}, {"c", 3}})

	assert.True(t, m.Delete("b"))
	assert.False(t, m.Delete("b"))
	m.Set("b", 4)
	m.Set("a", 5)

	assert.Equal(t, []string{"a", "c", "b"}, m.Keys())
	a, found := m.Get("a")
	assert.True(t, found)
	assert.Equal(t, 5, a)
	assert.Equal(t, 3, m.Len())
}
