// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package filetests houses a test harness for validating YAML documents and
asserting the expected diagnostics.
*/
package filetests

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"carvel.dev/yamlls/pkg/filepos"
	"carvel.dev/yamlls/pkg/jsonschema"
	"carvel.dev/yamlls/pkg/languageservice"
	"go.lsp.dev/protocol"
)

const docURI = "file:///filetests/pipeline.yml"

var severityNames = map[protocol.DiagnosticSeverity]string{
	protocol.DiagnosticSeverityError:       "error",
	protocol.DiagnosticSeverityWarning:     "warning",
	protocol.DiagnosticSeverityInformation: "info",
	protocol.DiagnosticSeverityHint:        "hint",
}

// FileTests contain a suite of test cases, each described in a separate file, verifying the diagnostics of
// YAML documents validated against a schema.
//
// Test cases:
// - are found within the directory at "PathToTests"
// - conventionally have a .yamltest extension
// - top-half is the document; bottom-half is the expected diagnostics; divided by `+++` and a blank line.
//
// Each expected diagnostic is one line, "<start>-<end> <severity> <message>", with 1 based line:column positions.
// An empty bottom-half expects no diagnostics.
//
// For example:
//
//	name: build
//	other: 1
//	+++
//
//	2:1-2:6 warning Unexpected property other
type FileTests struct {
	PathToTests string
	Schema      *jsonschema.Schema
	CustomTags  []string
}

// Run runs each test: enumerates each file within FileTests.PathToTests, splits it and validates the top-half
// against FileTests.Schema.
func (f FileTests) Run(t *testing.T) {
	var files []string

	err := filepath.Walk(f.PathToTests, func(walkedPath string, fi os.FileInfo, err error) error {
		if err != nil || fi.IsDir() {
			return err
		}
		files = append(files, walkedPath)
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to enumerate filetests: %s", err)
	}

	for _, filePath := range files {
		t.Run(filePath, func(t *testing.T) {
			contents, err := os.ReadFile(filePath)
			if err != nil {
				t.Fatal(err)
			}

			pieces := strings.SplitN(string(contents), "\n+++\n\n", 2)
			if len(pieces) != 2 {
				// a case expecting no diagnostics may end right after the separator
				pieces = strings.SplitN(string(contents), "\n+++\n", 2)
			}
			if len(pieces) != 2 {
				t.Fatalf("expected file %s to include +++ separator", filePath)
			}

			resultStr, err := f.validate(pieces[0] + "\n")
			if err == nil {
				err = f.expectEquals(TrimTrailingMultilineWhitespace(resultStr), TrimTrailingMultilineWhitespace(pieces[1]))
			}
			if err != nil {
				t.Fatalf("%s", err)
			}
		})
	}
}

func (f FileTests) validate(src string) (string, error) {
	service := languageservice.NewLanguageService(nil, nil)
	service.Configure(languageservice.Settings{
		Validate:   true,
		CustomTags: f.CustomTags,
		Schemas: []languageservice.SchemaAssociation{
			{FileMatch: []string{"**"}, Schema: f.Schema},
		},
	})

	doc := filepos.NewTextDocument(docURI, src)
	diagnostics, err := service.DoValidation(context.Background(), doc, service.Parse(src))
	if err != nil {
		return "", fmt.Errorf("validation error: %v", err)
	}

	var lines []string
	for _, diag := range diagnostics {
		lines = append(lines, fmt.Sprintf("%d:%d-%d:%d %s %s",
			diag.Range.Start.Line+1, diag.Range.Start.Character+1,
			diag.Range.End.Line+1, diag.Range.End.Character+1,
			severityNames[diag.Severity], diag.Message))
	}
	return strings.Join(lines, "\n"), nil
}

func (f FileTests) expectEquals(resultStr, expectedStr string) error {
	if resultStr != expectedStr {
		return fmt.Errorf("not equal\n\n### result %d chars:\n>>>%s<<<\n###expected %d chars:\n>>>%s<<<", len(resultStr), resultStr, len(expectedStr), expectedStr)
	}
	return nil
}

// TrimTrailingMultilineWhitespace returns a string with trailing whitespace trimmed from every line as well
// as trimmed trailing empty lines
func TrimTrailingMultilineWhitespace(s string) string {
	var trimmedLines []string
	for _, line := range strings.Split(s, "\n") {
		trimmedLine := strings.TrimRight(line, "\t ")
		trimmedLines = append(trimmedLines, trimmedLine)
	}
	multiline := strings.Join(trimmedLines, "\n")
	return strings.TrimRight(multiline, "\n")
}
