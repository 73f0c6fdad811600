// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"carvel.dev/yamlls/pkg/cmd/ui"
	"carvel.dev/yamlls/pkg/version"
	"github.com/spf13/cobra"
)

type VersionOptions struct{}

func NewVersionOptions() *VersionOptions {
	return &VersionOptions{}
}

func NewVersionCmd(o *VersionOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		RunE:  func(_ *cobra.Command, _ []string) error { return o.Run(ui.NewTTY(false)) },
	}
	return cmd
}

func (o *VersionOptions) Run(ui ui.UI) error {
	ui.Printf("yamlls version %s\n", version.Version)

	return nil
}
