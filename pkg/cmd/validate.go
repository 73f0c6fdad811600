// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carvel.dev/yamlls/pkg/cmd/ui"
	"carvel.dev/yamlls/pkg/filepos"
	"carvel.dev/yamlls/pkg/files"
	"carvel.dev/yamlls/pkg/languageservice"
	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
	outputTOML = "toml"
)

type ValidateOptions struct {
	Files     []string
	Recursive bool
	Output    string
	Debug     bool

	LanguageFlags LanguageFlags
}

type FileDiagnostics struct {
	File        string                `json:"file"`
	Diagnostics []protocol.Diagnostic `json:"diagnostics"`

	doc *filepos.TextDocument
}

type ValidateOutput struct {
	Files  []FileDiagnostics
	Errors int
}

func NewValidateOptions() *ValidateOptions {
	return &ValidateOptions{}
}

func NewValidateCmd(o *ValidateOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate YAML files against their schema",
		RunE:  func(cmd *cobra.Command, _ []string) error { return o.Run(cmd.Context()) },
	}
	cmd.Flags().StringArrayVarP(&o.Files, "file", "f", nil, "File (ie local path, HTTP URL, -) (can be specified multiple times)")
	cmd.Flags().BoolVarP(&o.Recursive, "recursive", "R", true, "Include YAML files of subdirectories (true by default)")
	cmd.Flags().StringVarP(&o.Output, "output", "o", outputText, "Output format (text, json)")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	o.LanguageFlags.Set(cmd)
	return cmd
}

func (o *ValidateOptions) Run(ctx context.Context) error {
	ui := ui.NewTTY(o.Debug)
	t1 := time.Now()

	defer func() {
		ui.Debugf("total: %s\n", time.Now().Sub(t1))
	}()

	if o.Output != outputText && o.Output != outputJSON {
		return fmt.Errorf("Expected output format to be one of '%s' or '%s', but was '%s'", outputText, outputJSON, o.Output)
	}

	filesToProcess, err := files.NewFiles(o.Files, o.Recursive)
	if err != nil {
		return err
	}

	service, err := o.LanguageFlags.NewLanguageService(ui)
	if err != nil {
		return err
	}

	out, err := o.RunWithFiles(ctx, filesToProcess, service)
	if err != nil {
		return err
	}

	if err := o.print(out, ui); err != nil {
		return err
	}
	if out.Errors > 0 {
		return fmt.Errorf("Expected no error diagnostics, but found %d", out.Errors)
	}
	return nil
}

// RunWithFiles validates each file with service.
func (o *ValidateOptions) RunWithFiles(ctx context.Context, filesToProcess []*files.File,
	service *languageservice.LanguageService) (ValidateOutput, error) {

	out := ValidateOutput{Files: []FileDiagnostics{}}

	for _, file := range filesToProcess {
		data, err := file.Bytes(ctx)
		if err != nil {
			return ValidateOutput{}, fmt.Errorf("Reading %s: %w", file.Description(), err)
		}

		doc := filepos.NewTextDocument(file.URI(), string(data))
		diagnostics, err := service.DoValidation(ctx, doc, service.Parse(doc.Text()))
		if err != nil {
			return ValidateOutput{}, err
		}

		out.Files = append(out.Files, FileDiagnostics{File: file.RelativePath(), Diagnostics: diagnostics, doc: doc})
		out.Errors += countErrors(diagnostics)
	}
	return out, nil
}

func (o *ValidateOptions) print(out ValidateOutput, ui ui.UI) error {
	if o.Output == outputJSON {
		data, err := json.MarshalIndent(out.Files, "", "  ")
		if err != nil {
			return fmt.Errorf("Encoding diagnostics: %w", err)
		}
		ui.Printf("%s\n", data)
		return nil
	}

	var total int
	for _, file := range out.Files {
		for _, diag := range file.Diagnostics {
			ui.Printf("%s", FormatDiagnostic(file.File, file.doc, diag))
			total++
		}
	}
	ui.Printf("\n%d file(s) validated, %d diagnostic(s)\n", len(out.Files), total)
	return nil
}
