// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package schemastore

import (
	"context"
	"fmt"
	"sync"

	"carvel.dev/yamlls/pkg/files"
	"carvel.dev/yamlls/pkg/jsonschema"
	"golang.org/x/sync/singleflight"
)

// RequestService hands out schemas by URI.
type RequestService interface {
	Get(ctx context.Context, uri string) (*jsonschema.Schema, error)
}

// LoadError is returned when a schema could not be fetched or decoded.
type LoadError struct {
	URI string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("Unable to load schema from '%s': %s", e.URI, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// FetchFunc returns the raw bytes behind a schema URI.
type FetchFunc func(ctx context.Context, uri string) ([]byte, error)

// Store fetches schemas through files.Source and keeps the decoded result.
// Concurrent requests for one URI share a single fetch.
type Store struct {
	fetch FetchFunc

	group singleflight.Group

	mu    sync.RWMutex
	cache map[string]*jsonschema.Schema
}

var _ RequestService = &Store{}

func NewStore() *Store {
	return NewStoreWithFetch(FetchSource)
}

func NewStoreWithFetch(fetch FetchFunc) *Store {
	return &Store{fetch: fetch, cache: map[string]*jsonschema.Schema{}}
}

// FetchSource reads uri from disk, a file URI or HTTP.
func FetchSource(ctx context.Context, uri string) ([]byte, error) {
	return files.NewSource(uri).Bytes(ctx)
}

func (s *Store) Get(ctx context.Context, uri string) (*jsonschema.Schema, error) {
	if schema, found := s.cached(uri); found {
		return schema, nil
	}

	result, err, _ := s.group.Do(uri, func() (interface{}, error) {
		if schema, found := s.cached(uri); found {
			return schema, nil
		}

		data, err := s.fetch(ctx, uri)
		if err != nil {
			return nil, &LoadError{URI: uri, Err: err}
		}

		schema, err := Decode(uri, data)
		if err != nil {
			return nil, &LoadError{URI: uri, Err: err}
		}

		s.mu.Lock()
		s.cache[uri] = schema
		s.mu.Unlock()

		return schema, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*jsonschema.Schema), nil
}

// Invalidate drops the cached schema for uri so the next Get refetches it.
func (s *Store) Invalidate(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, uri)
}

// InvalidateAll empties the cache.
func (s *Store) InvalidateAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = map[string]*jsonschema.Schema{}
}

func (s *Store) cached(uri string) (*jsonschema.Schema, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schema, found := s.cache[uri]
	return schema, found
}

// Decode picks the schema format from the URI's extension. Anything not
// named .json is read as YAML, which also accepts JSON.
func Decode(uri string, data []byte) (*jsonschema.Schema, error) {
	if files.TypeOf(uri) == files.TypeJSON {
		return jsonschema.FromJSON(data)
	}
	return jsonschema.FromYAML(data)
}
