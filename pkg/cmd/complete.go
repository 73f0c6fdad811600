// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"carvel.dev/yamlls/pkg/cmd/ui"
	"carvel.dev/yamlls/pkg/filepos"
	"carvel.dev/yamlls/pkg/languageservice"
	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"
)

type CompleteOptions struct {
	Output string
	Debug  bool

	PositionFlags PositionFlags
	LanguageFlags LanguageFlags
}

func NewCompleteOptions() *CompleteOptions {
	return &CompleteOptions{}
}

func NewCompleteCmd(o *CompleteOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Print completions at a position",
		RunE:  func(cmd *cobra.Command, _ []string) error { return o.Run(cmd.Context()) },
	}
	cmd.Flags().StringVarP(&o.Output, "output", "o", outputText, "Output format (text, json)")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	o.PositionFlags.Set(cmd)
	o.LanguageFlags.Set(cmd)
	return cmd
}

func (o *CompleteOptions) Run(ctx context.Context) error {
	ui := ui.NewTTY(o.Debug)

	pos, err := o.PositionFlags.Position()
	if err != nil {
		return err
	}

	_, doc, err := readDocument(ctx, o.PositionFlags.File)
	if err != nil {
		return err
	}

	service, err := o.LanguageFlags.NewLanguageService(ui)
	if err != nil {
		return err
	}

	list, err := o.RunWithDocument(ctx, doc, pos, service)
	if err != nil {
		return err
	}
	return o.print(list, ui)
}

// RunWithDocument completes at pos after patching the cursor line so that a
// node exists there.
func (o *CompleteOptions) RunWithDocument(ctx context.Context, doc *filepos.TextDocument,
	pos protocol.Position, service *languageservice.LanguageService) (*protocol.CompletionList, error) {

	text, patchedPos := languageservice.PatchForCompletion(doc.Text(), pos)
	return service.DoComplete(ctx, doc, patchedPos, service.Parse(text))
}

func (o *CompleteOptions) print(list *protocol.CompletionList, ui ui.UI) error {
	switch o.Output {
	case outputJSON:
		data, err := json.MarshalIndent(list, "", "  ")
		if err != nil {
			return fmt.Errorf("Encoding completions: %w", err)
		}
		ui.Printf("%s\n", data)

	case outputText:
		for _, item := range list.Items {
			if item.Detail != "" {
				ui.Printf("%s\t%s\n", item.Label, item.Detail)
			} else {
				ui.Printf("%s\n", item.Label)
			}
		}

	default:
		return fmt.Errorf("Expected output format to be one of '%s' or '%s', but was '%s'", outputText, outputJSON, o.Output)
	}
	return nil
}
