// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"carvel.dev/yamlls/pkg/cmd/ui"
	"carvel.dev/yamlls/pkg/files"
	"carvel.dev/yamlls/pkg/languageservice"
	"github.com/spf13/cobra"
)

type FormatOptions struct {
	Files     []string
	Recursive bool
	Indent    int
	Write     bool
	Debug     bool
}

func NewFormatOptions() *FormatOptions {
	return &FormatOptions{}
}

func NewFormatCmd(o *FormatOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "format",
		Aliases: []string{"fmt"},
		Short:   "Format YAML files",
		RunE:    func(cmd *cobra.Command, _ []string) error { return o.Run(cmd.Context()) },
	}
	cmd.Flags().StringArrayVarP(&o.Files, "file", "f", nil, "File (ie local path, HTTP URL, -) (can be specified multiple times)")
	cmd.Flags().BoolVarP(&o.Recursive, "recursive", "R", true, "Include YAML files of subdirectories (true by default)")
	cmd.Flags().IntVar(&o.Indent, "indent", languageservice.DefaultIndent, "Number of spaces per indentation level")
	cmd.Flags().BoolVarP(&o.Write, "write", "w", false, "Write the result back to local files instead of printing it")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	return cmd
}

func (o *FormatOptions) Run(ctx context.Context) error {
	ui := ui.NewTTY(o.Debug)
	t1 := time.Now()

	defer func() {
		ui.Debugf("total: %s\n", time.Now().Sub(t1))
	}()

	filesToProcess, err := files.NewFiles(o.Files, o.Recursive)
	if err != nil {
		return err
	}
	return o.RunWithFiles(ctx, filesToProcess, ui)
}

func (o *FormatOptions) RunWithFiles(ctx context.Context, filesToProcess []*files.File, ui ui.UI) error {
	if o.Indent < 0 {
		return fmt.Errorf("Expected indent to be non-negative, but was %d", o.Indent)
	}

	for _, file := range filesToProcess {
		if file.Type() != files.TypeYAML && file.Type() != files.TypeUnknown {
			ui.Debugf("Skipping %s\n", file.Description())
			continue
		}

		data, err := file.Bytes(ctx)
		if err != nil {
			return fmt.Errorf("Reading %s: %w", file.Description(), err)
		}

		formatted, ok, err := languageservice.FormatYAML(string(data), languageservice.FormatOptions{Indent: o.Indent})
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("Expected %s to be valid YAML", file.Description())
		}

		if !o.Write {
			ui.Printf("%s", formatted)
			continue
		}

		path, isLocal := file.LocalPath()
		if !isLocal {
			return fmt.Errorf("Expected %s to be a local file to write it", file.Description())
		}
		if formatted == string(data) {
			continue
		}
		if err := os.WriteFile(path, []byte(formatted), 0600); err != nil {
			return fmt.Errorf("Writing %s: %w", file.Description(), err)
		}
		ui.Debugf("Formatted %s\n", file.Description())
	}
	return nil
}
