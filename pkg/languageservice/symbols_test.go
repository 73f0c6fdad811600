// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package languageservice_test

import (
	"testing"

	"carvel.dev/yamlls/pkg/filepos"
	"carvel.dev/yamlls/pkg/languageservice"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

func TestFindDocumentSymbols(t *testing.T) {
	svc := languageservice.NewLanguageService(nil, nil)
	text := `name: build
jobs:
- job: a
  steps:
  - script: make
    retries: 2
    enabled: true
pool:
`
	doc := filepos.NewTextDocument(docURI, text)
	symbols := svc.FindDocumentSymbols(doc, svc.Parse(text))

	type symbol struct {
		Name      string
		Kind      protocol.SymbolKind
		Container string
	}
	var actual []symbol
	for _, s := range symbols {
		actual = append(actual, symbol{s.Name, s.Kind, s.ContainerName})
		assert.Equal(t, protocol.DocumentURI(docURI), s.Location.URI)
	}

	assert.Equal(t, []symbol{
		{"name", protocol.SymbolKindString, ""},
		{"jobs", protocol.SymbolKindArray, ""},
		{"job", protocol.SymbolKindString, "jobs"},
		{"steps", protocol.SymbolKindArray, "jobs"},
		{"script", protocol.SymbolKindString, "jobs.steps"},
		{"retries", protocol.SymbolKindNumber, "jobs.steps"},
		{"enabled", protocol.SymbolKindBoolean, "jobs.steps"},
		{"pool", protocol.SymbolKindVariable, ""},
	}, actual)

	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 11},
	}, symbols[0].Location.Range)
}

func TestDoDefinition(t *testing.T) {
	svc := languageservice.NewLanguageService(nil, nil)
	docURI := "file:///work/pipelines/azure.yml"
	workspaceRoot := uri.File("/work")

	definition := func(text string, pos protocol.Position) *protocol.Location {
		doc := filepos.NewTextDocument(docURI, text)
		return svc.DoDefinition(doc, pos, svc.Parse(text), workspaceRoot)
	}

	location := definition("steps:\n- template: templates/build.yml\n", protocol.Position{Line: 1, Character: 15})
	require.NotNil(t, location)
	assert.Equal(t, protocol.DocumentURI("file:///work/pipelines/templates/build.yml"), location.URI)
	assert.Equal(t, protocol.Range{}, location.Range)

	location = definition("steps:\n- template: /templates/build.yml@self\n", protocol.Position{Line: 1, Character: 15})
	require.NotNil(t, location)
	assert.Equal(t, protocol.DocumentURI("file:///work/templates/build.yml"), location.URI)

	location = definition("steps:\n- template: ..\\shared\\build.yml\n", protocol.Position{Line: 1, Character: 15})
	require.NotNil(t, location)
	assert.Equal(t, protocol.DocumentURI("file:///work/shared/build.yml"), location.URI)

	assert.Nil(t, definition("steps:\n- template: build.yml@tools\n", protocol.Position{Line: 1, Character: 15}))
	assert.Nil(t, definition("steps:\n- script: build.yml\n", protocol.Position{Line: 1, Character: 13}))
	assert.Nil(t, definition("steps:\n- template: build.yml\n", protocol.Position{Line: 1, Character: 4}))
}
