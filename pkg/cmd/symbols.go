// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"carvel.dev/yamlls/pkg/cmd/ui"
	"carvel.dev/yamlls/pkg/filepos"
	"carvel.dev/yamlls/pkg/languageservice"
	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"
)

var symbolKindNames = map[protocol.SymbolKind]string{
	protocol.SymbolKindModule:   "object",
	protocol.SymbolKindArray:    "array",
	protocol.SymbolKindString:   "string",
	protocol.SymbolKindNumber:   "number",
	protocol.SymbolKindBoolean:  "boolean",
	protocol.SymbolKindVariable: "null",
}

type SymbolsOptions struct {
	File       string
	CustomTags []string
	Debug      bool
}

func NewSymbolsOptions() *SymbolsOptions {
	return &SymbolsOptions{}
}

func NewSymbolsCmd(o *SymbolsOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "symbols",
		Short: "Print the outline of a YAML file",
		RunE:  func(cmd *cobra.Command, _ []string) error { return o.Run(cmd.Context()) },
	}
	cmd.Flags().StringVarP(&o.File, "file", "f", "", "File (ie local path, HTTP URL, -)")
	cmd.Flags().StringArrayVar(&o.CustomTags, "custom-tag", nil,
		"Custom YAML tag with an optional kind, eg '!Ref scalar' (can be specified multiple times)")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	return cmd
}

func (o *SymbolsOptions) Run(ctx context.Context) error {
	ui := ui.NewTTY(o.Debug)

	_, doc, err := readDocument(ctx, o.File)
	if err != nil {
		return err
	}

	o.RunWithDocument(doc, ui)
	return nil
}

// RunWithDocument prints one line per symbol: its dotted path, kind and
// 1 based position.
func (o *SymbolsOptions) RunWithDocument(doc *filepos.TextDocument, ui ui.UI) {
	settings := languageservice.NewSettings()
	settings.CustomTags = o.CustomTags

	service := languageservice.NewLanguageService(nil, nil)
	service.Configure(settings)

	for _, symbol := range service.FindDocumentSymbols(doc, service.Parse(doc.Text())) {
		name := symbol.Name
		if symbol.ContainerName != "" {
			name = symbol.ContainerName + "." + name
		}
		start := symbol.Location.Range.Start
		ui.Printf("%s\t%s\t%d:%d\n", name, symbolKindNames[symbol.Kind], start.Line+1, start.Character+1)
	}
}
