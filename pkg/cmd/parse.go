// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"carvel.dev/yamlls/pkg/cmd/ui"
	"carvel.dev/yamlls/pkg/filepos"
	"carvel.dev/yamlls/pkg/orderedmap"
	"carvel.dev/yamlls/pkg/yamlast"
	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"
	"gopkg.in/yaml.v3"
)

type ParseOptions struct {
	File       string
	CustomTags []string
	Output     string
	Debug      bool
}

func NewParseOptions() *ParseOptions {
	return &ParseOptions{}
}

func NewParseCmd(o *ParseOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Print the value of each document of a YAML file",
		RunE:  func(cmd *cobra.Command, _ []string) error { return o.Run(cmd.Context()) },
	}
	cmd.Flags().StringVarP(&o.File, "file", "f", "", "File (ie local path, HTTP URL, -)")
	cmd.Flags().StringArrayVar(&o.CustomTags, "custom-tag", nil,
		"Custom YAML tag with an optional kind, eg '!Ref scalar' (can be specified multiple times)")
	cmd.Flags().StringVarP(&o.Output, "output", "o", outputYAML, "Output format (yaml, json, toml)")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	return cmd
}

func (o *ParseOptions) Run(ctx context.Context) error {
	ui := ui.NewTTY(o.Debug)

	file, doc, err := readDocument(ctx, o.File)
	if err != nil {
		return err
	}
	return o.RunWithDocument(file.RelativePath(), doc, ui)
}

// RunWithDocument prints the documents of doc in the output format and
// reports syntax problems as warnings.
func (o *ParseOptions) RunWithDocument(name string, doc *filepos.TextDocument, ui ui.UI) error {
	parsed := yamlast.NewParser(yamlast.ParserOpts{CustomTags: o.CustomTags}).Parse(doc.Text())

	var problems int
	for _, document := range parsed.Documents {
		for _, problem := range document.Errors {
			ui.Warnf("%s", FormatDiagnostic(name, doc, syntaxDiagnostic(doc, problem, protocol.DiagnosticSeverityError)))
			problems++
		}
		for _, problem := range document.Warnings {
			ui.Warnf("%s", FormatDiagnostic(name, doc, syntaxDiagnostic(doc, problem, protocol.DiagnosticSeverityWarning)))
		}
	}

	for i, document := range parsed.Documents {
		data, err := o.encode(yamlast.GetValue(document.Root))
		if err != nil {
			return fmt.Errorf("Encoding document %d: %w", i+1, err)
		}
		if i > 0 && o.Output == outputYAML {
			ui.Printf("---\n")
		}
		ui.Printf("%s", data)
	}

	if problems > 0 {
		return fmt.Errorf("Expected no syntax errors, but found %d", problems)
	}
	return nil
}

func (o *ParseOptions) encode(val interface{}) ([]byte, error) {
	switch o.Output {
	case outputYAML:
		return yaml.Marshal(val)

	case outputJSON:
		data, err := json.MarshalIndent(val, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil

	case outputTOML:
		if _, ok := val.(*orderedmap.Map); !ok {
			return nil, fmt.Errorf("Expected document to be a mapping to print it as TOML, but was %T", val)
		}
		var buf bytes.Buffer
		err := toml.NewEncoder(&buf).Encode(orderedmap.Conversion{Object: val}.AsUnorderedStringMaps())
		return buf.Bytes(), err

	default:
		return nil, fmt.Errorf("Expected output format to be one of '%s', '%s' or '%s', but was '%s'",
			outputYAML, outputJSON, outputTOML, o.Output)
	}
}

func syntaxDiagnostic(doc *filepos.TextDocument, problem yamlast.SyntaxProblem,
	severity protocol.DiagnosticSeverity) protocol.Diagnostic {

	return protocol.Diagnostic{
		Range:    doc.RangeAt(problem.Start, problem.End),
		Severity: severity,
		Message:  problem.Message,
	}
}
