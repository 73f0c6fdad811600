// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package languageservice_test

import (
	"context"
	"errors"
	"testing"

	"carvel.dev/yamlls/pkg/filepos"
	"carvel.dev/yamlls/pkg/jsonschema"
	"carvel.dev/yamlls/pkg/languageservice"
	"carvel.dev/yamlls/pkg/schemastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docURI = "file:///work/pipelines/azure-pipelines.yml"

func mustSchema(t *testing.T, data string) *jsonschema.Schema {
	t.Helper()
	s, err := jsonschema.FromJSON([]byte(data))
	require.NoError(t, err)
	return s
}

// newService returns a service applying schema to every .yml document.
func newService(t *testing.T, schema string) *languageservice.LanguageService {
	t.Helper()
	svc := languageservice.NewLanguageService(nil, nil)
	settings := languageservice.NewSettings()
	settings.Schemas = []languageservice.SchemaAssociation{{
		FileMatch: []string{"*.yml"},
		Schema:    mustSchema(t, schema),
	}}
	svc.Configure(settings)
	return svc
}

func TestCompileFileMatch(t *testing.T) {
	cases := []struct {
		glob    string
		uri     string
		matches bool
	}{
		{"**/azure-pipelines.yml", "file:///repo/azure-pipelines.yml", true},
		{"**/azure-pipelines.yml", "file:///repo/ci/nested/azure-pipelines.yml", true},
		{"**/azure-pipelines.yml", "file:///repo/my-azure-pipelines.yml", false},
		{"*.yml", "file:///repo/ci/build.yml", true},
		{"*.yml", "file:///repo/ci/build.yaml", false},
		{"pipelines/*.yaml", "file:///repo/pipelines/build.yaml", true},
		{"pipelines/*.yaml", "file:///repo/pipelines/nested/build.yaml", false},
		{"/pipelines/**", "file:///repo/pipelines/nested/build.yaml", true},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.matches, languageservice.CompileFileMatch(tc.glob).MatchString(tc.uri), "%s ~ %s", tc.glob, tc.uri)
	}
}

func TestSchemaForResourceFirstAssociationWins(t *testing.T) {
	first := mustSchema(t, `{"title": "first"}`)
	second := mustSchema(t, `{"title": "second"}`)

	svc := languageservice.NewLanguageService(nil, nil)
	settings := languageservice.NewSettings()
	settings.Schemas = []languageservice.SchemaAssociation{
		{FileMatch: []string{"templates/*.yml"}, Schema: first},
		{FileMatch: []string{"*.yml"}, Schema: second},
	}
	svc.Configure(settings)

	schema, err := svc.SchemaForResource(context.Background(), "file:///repo/templates/build.yml")
	require.NoError(t, err)
	assert.Same(t, first, schema)

	schema, err = svc.SchemaForResource(context.Background(), "file:///repo/azure-pipelines.yml")
	require.NoError(t, err)
	assert.Same(t, second, schema)

	schema, err = svc.SchemaForResource(context.Background(), "file:///repo/notes.txt")
	require.NoError(t, err)
	assert.Nil(t, schema)
}

type workspaceFunc func(relative, baseURI string) string

func (f workspaceFunc) ResolveRelativePath(relative, baseURI string) string { return f(relative, baseURI) }

func TestSchemaForResourceResolvesRelativeURIs(t *testing.T) {
	var requested []string
	store := schemastore.NewStoreWithFetch(func(_ context.Context, uri string) ([]byte, error) {
		requested = append(requested, uri)
		return []byte(`{"type": "object"}`), nil
	})
	workspace := workspaceFunc(func(relative, baseURI string) string {
		return "file:///work/" + relative
	})

	svc := languageservice.NewLanguageService(store, workspace)
	settings := languageservice.NewSettings()
	settings.Schemas = []languageservice.SchemaAssociation{
		{URI: "schemas/pipeline.json", FileMatch: []string{"*.yml"}},
		{URI: "https://example.com/schema.json", FileMatch: []string{"*.yaml"}},
	}
	svc.Configure(settings)

	_, err := svc.SchemaForResource(context.Background(), docURI)
	require.NoError(t, err)
	_, err = svc.SchemaForResource(context.Background(), "file:///work/other.yaml")
	require.NoError(t, err)

	assert.Equal(t, []string{"file:///work/schemas/pipeline.json", "https://example.com/schema.json"}, requested)
}

func TestSchemaForResourceWithoutRequestService(t *testing.T) {
	svc := languageservice.NewLanguageService(nil, nil)
	settings := languageservice.NewSettings()
	settings.Schemas = []languageservice.SchemaAssociation{{URI: "schema.json", FileMatch: []string{"*.yml"}}}
	svc.Configure(settings)

	_, err := svc.SchemaForResource(context.Background(), docURI)
	var loadErr *schemastore.LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "schema.json", loadErr.URI)
}

func TestParseUsesCustomTags(t *testing.T) {
	svc := languageservice.NewLanguageService(nil, nil)
	settings := languageservice.NewSettings()
	settings.CustomTags = []string{"!Ref scalar"}
	svc.Configure(settings)

	doc := filepos.NewTextDocument(docURI, "a: !Ref b\n")
	parsed := svc.Parse(doc.Text())
	require.Len(t, parsed.Documents, 1)
	assert.Empty(t, parsed.Documents[0].Errors)
	assert.Empty(t, parsed.Documents[0].Warnings)
}
