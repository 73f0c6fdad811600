// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"carvel.dev/yamlls/pkg/version"
	"github.com/cppforlife/cobrautil"
	"github.com/spf13/cobra"
)

type YamllsOptions struct{}

func NewDefaultYamllsOptions() *YamllsOptions {
	return &YamllsOptions{}
}

func NewDefaultYamllsCmd() *cobra.Command {
	return NewYamllsCmd(NewDefaultYamllsOptions())
}

func NewYamllsCmd(o *YamllsOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "yamlls",
		Version: version.Version,
		Short:   "yamlls validates, completes and documents pipeline YAML against JSON schemas",
		Long: `yamlls validates, completes and documents pipeline YAML against JSON schemas.

Run 'yamlls serve' to start the language server for an editor.`,
	}

	// Affects children as well
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	// Disable docs header
	cmd.DisableAutoGenTag = true

	cmd.AddCommand(NewVersionCmd(NewVersionOptions()))
	cmd.AddCommand(NewValidateCmd(NewValidateOptions()))
	cmd.AddCommand(NewCompleteCmd(NewCompleteOptions()))
	cmd.AddCommand(NewHoverCmd(NewHoverOptions()))
	cmd.AddCommand(NewParseCmd(NewParseOptions()))
	cmd.AddCommand(NewSymbolsCmd(NewSymbolsOptions()))
	cmd.AddCommand(NewFormatCmd(NewFormatOptions()))
	cmd.AddCommand(NewServeCmd(NewServeOptions()))

	// Reconfigure Commands
	cobrautil.VisitCommands(cmd, cobrautil.ReconfigureCmdWithSubcmd,
		cobrautil.DisallowExtraArgs, cobrautil.WrapRunEForCmd(cobrautil.ResolveFlagsForCmd))

	return cmd
}
