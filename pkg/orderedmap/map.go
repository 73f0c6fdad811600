// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package orderedmap

import (
	"bytes"
	"encoding/json"

	"gopkg.in/yaml.v3"
)

type Map struct {
	items []MapItem
	index map[string]int
}

type MapItem struct {
	Key   string
	Value interface{}
}

func NewMap() *Map {
	return &Map{index: map[string]int{}}
}

func NewMapWithItems(items []MapItem) *Map {
	m := NewMap()
	for _, item := range items {
		m.Set(item.Key, item.Value)
	}
	return m
}

// Set assigns value to key; a new key is appended, an existing key keeps its place.
func (m *Map) Set(key string, value interface{}) {
	if m.index == nil {
		m.index = map[string]int{}
	}
	if i, found := m.index[key]; found {
		m.items[i].Value = value
		return
	}
	m.index[key] = len(m.items)
	m.items = append(m.items, MapItem{key, value})
}

func (m *Map) Get(key string) (interface{}, bool) {
	if m == nil {
		return nil, false
	}
	if i, found := m.index[key]; found {
		return m.items[i].Value, true
	}
	return nil, false
}

func (m *Map) Delete(key string) bool {
	i, found := m.index[key]
	if !found {
		return false
	}
	m.items = append(m.items[:i], m.items[i+1:]...)
	delete(m.index, key)
	for j := i; j < len(m.items); j++ {
		m.index[m.items[j].Key] = j
	}
	return true
}

func (m *Map) Keys() (keys []string) {
	m.Iterate(func(k string, _ interface{}) {
		keys = append(keys, k)
	})
	return
}

func (m *Map) Iterate(iterFunc func(k string, v interface{})) {
	if m == nil {
		return
	}
	for _, item := range m.items {
		iterFunc(item.Key, item.Value)
	}
}

func (m *Map) IterateErr(iterFunc func(k string, v interface{}) error) error {
	if m == nil {
		return nil
	}
	for _, item := range m.items {
		err := iterFunc(item.Key, item.Value)
		if err != nil {
			return err
		}
	}
	return nil
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.items)
}

var _ json.Marshaler = &Map{}
var _ yaml.Marshaler = &Map{}

// MarshalJSON emits the keys in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range m.items {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBs, err := json.Marshal(item.Key)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBs)
		buf.WriteByte(':')
		valBs, err := json.Marshal(item.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(valBs)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML emits a mapping node with the keys in insertion order.
func (m *Map) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, item := range m.items {
		keyNode := &yaml.Node{}
		if err := keyNode.Encode(item.Key); err != nil {
			return nil, err
		}
		valNode := &yaml.Node{}
		if err := valNode.Encode(item.Value); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, keyNode, valNode)
	}
	return node, nil
}
