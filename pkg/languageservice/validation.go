// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package languageservice

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"carvel.dev/yamlls/pkg/filepos"
	"carvel.dev/yamlls/pkg/schemastore"
	"carvel.dev/yamlls/pkg/validations"
	"carvel.dev/yamlls/pkg/yamlast"
	"go.lsp.dev/protocol"
)

const (
	MultipleDocumentsMessage = "Multiple documents found; only single-document files are supported"
	InvalidStructureMessage  = "Invalid YAML structure"

	// yaml.v3 reports this when it splits what the author meant as one
	// document into two
	documentStartMarker = "did not find expected <document start>"
)

// DoValidation returns the diagnostics of a parsed document: syntax errors
// and warnings plus the problems found against the associated schema.
func (s *LanguageService) DoValidation(ctx context.Context, doc *filepos.TextDocument,
	parsed *yamlast.ParseResult) ([]protocol.Diagnostic, error) {

	diagnostics := []protocol.Diagnostic{}
	if !s.Settings().Validate || parsed == nil {
		return diagnostics, nil
	}

	if len(parsed.Documents) > 1 {
		return append(diagnostics, multipleDocumentsDiagnostic(doc, parsed)), nil
	}

	schema, err := s.SchemaForResource(ctx, doc.URI())
	if err != nil {
		var loadErr *schemastore.LoadError
		if !errors.As(err, &loadErr) {
			return nil, fmt.Errorf("Resolving schema for '%s': %w", doc.URI(), err)
		}
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range: protocol.Range{
				Start: protocol.Position{Line: 0, Character: 0},
				End:   protocol.Position{Line: 0, Character: 1},
			},
			Severity: protocol.DiagnosticSeverityError,
			Message:  loadErr.Error(),
		})
	}

	added := map[string]bool{}
	add := func(start, end int, severity protocol.DiagnosticSeverity, msg string) {
		signature := fmt.Sprintf("%d %d %s", start, end, msg)
		if added[signature] {
			return
		}
		added[signature] = true
		diagnostics = append(diagnostics, protocol.Diagnostic{
			Range:    doc.RangeAt(start, end),
			Severity: severity,
			Message:  msg,
		})
	}

	vctx := s.validationContext(doc.URI())
	for _, document := range parsed.Documents {
		for _, syntaxErr := range document.Errors {
			add(syntaxErr.Start, syntaxErr.End, protocol.DiagnosticSeverityError, syntaxErr.Message)
		}
		if schema != nil {
			for _, problem := range validations.Problems(document.Root, schema, vctx) {
				add(problem.Start, problem.End, diagnosticSeverity(problem.Severity), problem.Message())
			}
		}
		for _, warning := range document.Warnings {
			add(warning.Start, warning.End, protocol.DiagnosticSeverityWarning, warning.Message)
		}
	}
	return diagnostics, nil
}

func multipleDocumentsDiagnostic(doc *filepos.TextDocument, parsed *yamlast.ParseResult) protocol.Diagnostic {
	for _, document := range parsed.Documents {
		for _, syntaxErr := range document.Errors {
			if strings.Contains(syntaxErr.Message, documentStartMarker) {
				line := doc.LineOf(syntaxErr.Start)
				start, end := doc.LineBounds(line)
				return protocol.Diagnostic{
					Range:    doc.RangeAt(start, end),
					Severity: protocol.DiagnosticSeverityError,
					Message:  InvalidStructureMessage,
				}
			}
		}
	}
	return protocol.Diagnostic{
		Range:    doc.RangeAt(0, len(doc.Text())),
		Severity: protocol.DiagnosticSeverityError,
		Message:  MultipleDocumentsMessage,
	}
}

func diagnosticSeverity(severity validations.Severity) protocol.DiagnosticSeverity {
	switch severity {
	case validations.SeverityError:
		return protocol.DiagnosticSeverityError
	case validations.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	default:
		return protocol.DiagnosticSeverityHint
	}
}
