// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"

	"carvel.dev/yamlls/pkg/cmd/ui"
	"github.com/spf13/cobra"
)

type HoverOptions struct {
	Debug bool

	PositionFlags PositionFlags
	LanguageFlags LanguageFlags
}

func NewHoverOptions() *HoverOptions {
	return &HoverOptions{}
}

func NewHoverCmd(o *HoverOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hover",
		Short: "Print schema documentation at a position",
		RunE:  func(cmd *cobra.Command, _ []string) error { return o.Run(cmd.Context()) },
	}
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output")
	o.PositionFlags.Set(cmd)
	o.LanguageFlags.Set(cmd)
	return cmd
}

func (o *HoverOptions) Run(ctx context.Context) error {
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

	hover, err := service.DoHover(ctx, doc, pos, service.Parse(doc.Text()))
	if err != nil {
		return err
	}
	if hover == nil {
		ui.Debugf("Nothing to show at %d:%d\n", o.PositionFlags.Line, o.PositionFlags.Character)
		return nil
	}

	ui.Printf("%s\n", hover.Contents.Value)
	return nil
}
