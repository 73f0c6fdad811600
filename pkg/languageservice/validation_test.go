// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package languageservice_test

import (
	"context"
	"errors"
	"testing"

	"carvel.dev/yamlls/pkg/filepos"
	"carvel.dev/yamlls/pkg/languageservice"
	"carvel.dev/yamlls/pkg/schemastore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.lsp.dev/protocol"
)

const apiVersionSchema = `{
	"properties": {"apiVersion": {"type": "string"}},
	"required": ["apiVersion"],
	"additionalProperties": false
}`

func validateText(t *testing.T, svc *languageservice.LanguageService, text string) []protocol.Diagnostic {
	t.Helper()
	doc := filepos.NewTextDocument(docURI, text)
	diagnostics, err := svc.DoValidation(context.Background(), doc, svc.Parse(text))
	require.NoError(t, err)
	return diagnostics
}

func diagnosticMessages(diagnostics []protocol.Diagnostic) []string {
	var result []string
	for _, d := range diagnostics {
		result = append(result, d.Message)
	}
	return result
}

func TestDoValidation(t *testing.T) {
	svc := newService(t, apiVersionSchema)

	t.Run("valid document", func(t *testing.T) {
		assert.Empty(t, validateText(t, svc, "apiVersion: v1"))
	})

	t.Run("empty value", func(t *testing.T) {
		diagnostics := validateText(t, svc, "apiVersion:")
		require.NotEmpty(t, diagnostics)
		assert.Equal(t, `Incorrect type. Expected "string".`, diagnostics[0].Message)
	})

	t.Run("unexpected property", func(t *testing.T) {
		diagnostics := validateText(t, svc, "apiVersion: v1\nunknown_node: test")
		require.Len(t, diagnostics, 1)
		assert.Equal(t, "Unexpected property unknown_node", diagnostics[0].Message)
		assert.Equal(t, protocol.DiagnosticSeverityWarning, diagnostics[0].Severity)
		assert.Equal(t, protocol.Range{
			Start: protocol.Position{Line: 1, Character: 0},
			End:   protocol.Position{Line: 1, Character: 12},
		}, diagnostics[0].Range)
	})

	t.Run("missing required property", func(t *testing.T) {
		assert.Equal(t, []string{`Missing property "apiVersion".`, "Unexpected property kind"},
			diagnosticMessages(validateText(t, svc, "kind: Pod\n")))
	})
}

func TestDoValidationCaseInsensitiveKeys(t *testing.T) {
	svc := newService(t, `{"properties": {"script": {"type": "string", "ignoreCase": "key"}}}`)

	diagnostics := validateText(t, svc, "Script: a\nscript: b\n")
	require.Len(t, diagnostics, 2)
	for i, d := range diagnostics {
		assert.Equal(t, "Multiple properties found matching script", d.Message)
		assert.Equal(t, protocol.DiagnosticSeverityError, d.Severity)
		assert.Equal(t, uint32(i), d.Range.Start.Line)
	}
}

func TestDoValidationFirstProperty(t *testing.T) {
	svc := newService(t, `{"firstProperty": ["task"], "properties": {"task": {}, "inputs": {}}}`)

	diagnostics := validateText(t, svc, "inputs: {}\ntask: x\n")
	require.Len(t, diagnostics, 1)
	assert.Equal(t, "The first property must be task", diagnostics[0].Message)
	assert.Equal(t, protocol.DiagnosticSeverityError, diagnostics[0].Severity)
}

func TestDoValidationCompileTimeExpressions(t *testing.T) {
	svc := newService(t, `{"properties": {"steps": {"type": "array", "items": {
		"properties": {"script": {"type": "string"}},
		"additionalProperties": false
	}}}}`)

	assert.Empty(t, validateText(t, svc, "steps:\n- ${{ each s in parameters.steps }}:\n  - script: a\n"))

	diagnostics := validateText(t, svc, "steps:\n- ${{ each x }}:\n  - script: a\n")
	require.Len(t, diagnostics, 1)
	assert.Equal(t, `Compile-time "each" expression is missing "in"`, diagnostics[0].Message)
	assert.Equal(t, protocol.DiagnosticSeverityError, diagnostics[0].Severity)
}

func TestDoValidationMultipleDocuments(t *testing.T) {
	svc := newService(t, apiVersionSchema)

	diagnostics := validateText(t, svc, "apiVersion: v1\n---\napiVersion: v2\n")
	require.Len(t, diagnostics, 1)
	assert.Equal(t, languageservice.MultipleDocumentsMessage, diagnostics[0].Message)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 3, Character: 0},
	}, diagnostics[0].Range)

	diagnostics = validateText(t, svc, "apiVersion: v1\n--- |\n  x\n- y\n")
	require.Len(t, diagnostics, 1)
	assert.Equal(t, languageservice.InvalidStructureMessage, diagnostics[0].Message)
	assert.Equal(t, protocol.DiagnosticSeverityError, diagnostics[0].Severity)
	assert.Equal(t, diagnostics[0].Range.Start.Line, diagnostics[0].Range.End.Line)
	assert.Equal(t, uint32(0), diagnostics[0].Range.Start.Character)
}

func TestDoValidationMultipleDocumentsAfterSyntaxError(t *testing.T) {
	svc := newService(t, apiVersionSchema)

	text := `
---
jobs:
- job: some_job
  invalid_parameter: bad value
  invalid_parameter: duplicate key
  another_invalid_parameter: whatever
===
---
jobs:
- job: some_job
  invalid_parameter: bad value
  invalid_parameter: duplicate key
  another_invalid_parameter: whatever
===
`
	diagnostics := validateText(t, svc, text)
	require.Len(t, diagnostics, 1)
	assert.Contains(t, diagnostics[0].Message, "single-document")
}

func TestDoValidationSyntaxProblems(t *testing.T) {
	svc := newService(t, apiVersionSchema)

	diagnostics := validateText(t, svc, "apiVersion: [v1\n")
	require.Len(t, diagnostics, 1)
	assert.Equal(t, protocol.DiagnosticSeverityError, diagnostics[0].Severity)

	diagnostics = validateText(t, svc, "apiVersion: !Ref v1\n")
	require.Len(t, diagnostics, 1)
	assert.Equal(t, "Unknown tag !Ref", diagnostics[0].Message)
	assert.Equal(t, protocol.DiagnosticSeverityWarning, diagnostics[0].Severity)
}

func TestDoValidationSchemaLoadError(t *testing.T) {
	store := schemastore.NewStoreWithFetch(func(context.Context, string) ([]byte, error) {
		return nil, errors.New("connection refused")
	})
	svc := languageservice.NewLanguageService(store, nil)
	settings := languageservice.NewSettings()
	settings.Schemas = []languageservice.SchemaAssociation{{
		URI:       "https://example.com/schema.json",
		FileMatch: []string{"*.yml"},
	}}
	svc.Configure(settings)

	diagnostics := validateText(t, svc, "apiVersion: v1\n")
	require.Len(t, diagnostics, 1)
	assert.Equal(t, "Unable to load schema from 'https://example.com/schema.json': connection refused", diagnostics[0].Message)
	assert.Equal(t, protocol.DiagnosticSeverityError, diagnostics[0].Severity)
	assert.Equal(t, protocol.Range{
		Start: protocol.Position{Line: 0, Character: 0},
		End:   protocol.Position{Line: 0, Character: 1},
	}, diagnostics[0].Range)
}

func TestDoValidationDisabled(t *testing.T) {
	svc := newService(t, apiVersionSchema)
	settings := svc.Settings()
	settings.Validate = false
	svc.Configure(settings)

	assert.Empty(t, validateText(t, svc, "unknown_node: test\n---\nb: 1\n"))
}

func TestDoValidationIsIdempotent(t *testing.T) {
	svc := newService(t, apiVersionSchema)
	text := "kind: Pod\napiVersion: 1\n"

	first := validateText(t, svc, text)
	second := validateText(t, svc, text)
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestDoValidationKubernetesFileMatch(t *testing.T) {
	svc := languageservice.NewLanguageService(nil, nil)
	settings := languageservice.NewSettings()
	settings.Schemas = []languageservice.SchemaAssociation{{
		FileMatch: []string{"*.yml"},
		Schema:    mustSchema(t, `{"oneOf": [{"type": "object"}, {"type": "object"}]}`),
	}}
	settings.KubernetesFileMatch = []string{"deploy/*.yml"}
	svc.Configure(settings)

	validate := func(documentURI string) []string {
		doc := filepos.NewTextDocument(documentURI, "a: 1\n")
		diagnostics, err := svc.DoValidation(context.Background(), doc, svc.Parse(doc.Text()))
		require.NoError(t, err)
		return diagnosticMessages(diagnostics)
	}

	assert.Equal(t, []string{"Matches multiple schemas when only one must validate."}, validate("file:///repo/ci/build.yml"))
	assert.Empty(t, validate("file:///repo/deploy/app.yml"))

	settings.KubernetesFileMatch = nil
	settings.IsKubernetes = true
	svc.Configure(settings)
	assert.Empty(t, validate("file:///repo/ci/build.yml"))
}
