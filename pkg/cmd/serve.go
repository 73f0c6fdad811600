// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"carvel.dev/yamlls/pkg/cmd/ui"
	"carvel.dev/yamlls/pkg/config"
	"carvel.dev/yamlls/pkg/schemastore"
	"carvel.dev/yamlls/pkg/server"
	"github.com/spf13/cobra"
)

type ServeOptions struct {
	Settings string
	Debug    bool
}

func NewServeOptions() *ServeOptions {
	return &ServeOptions{}
}

func NewServeCmd(o *ServeOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the language server over stdin and stdout",
		RunE:  func(cmd *cobra.Command, _ []string) error { return o.Run(cmd.Context()) },
	}
	cmd.Flags().StringVar(&o.Settings, "settings", "", "Settings file (yaml, json or toml), reloaded when it changes")
	cmd.Flags().BoolVar(&o.Debug, "debug", false, "Enable debug output (on stderr)")
	return cmd
}

func (o *ServeOptions) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// stdout carries the protocol
	ui := ui.NewStderrTTY(o.Debug)

	srv, err := o.NewServer(ctx, ui)
	if err != nil {
		return err
	}

	ui.Debugf("Serving on stdio\n")
	return srv.Run(ctx, stdio{os.Stdin, os.Stdout})
}

// NewServer configures a server from the settings file, if any, and keeps it
// reconfigured while ctx is alive.
func (o *ServeOptions) NewServer(ctx context.Context, ui ui.UI) (*server.Server, error) {
	srv := server.NewServer(ui, schemastore.NewStore())

	settings, err := config.Load(o.Settings)
	if err != nil {
		return nil, err
	}
	warnSettings(settings, ui)
	if err := srv.Reconfigure(settings); err != nil {
		return nil, err
	}
	if o.Settings == "" {
		return srv, nil
	}

	watcher, err := config.NewWatcher(settings, func(settings *config.Settings, changed string, err error) {
		if err != nil {
			ui.Warnf("Reloading settings after change to '%s': %s\n", changed, err)
			return
		}
		ui.Debugf("Reloading settings after change to '%s'\n", changed)
		warnSettings(settings, ui)
		if err := srv.Reconfigure(settings); err != nil {
			ui.Warnf("Applying settings: %s\n", err)
		}
	})
	if err != nil {
		return nil, err
	}

	go func() {
		if err := watcher.Run(ctx); err != nil {
			ui.Warnf("Watching settings: %s\n", err)
		}
	}()
	return srv, nil
}

func warnSettings(settings *config.Settings, ui ui.UI) {
	for _, warning := range settings.Warnings {
		ui.Warnf("Warning: %s\n", warning)
	}
}

type stdio struct {
	io.Reader
	io.Writer
}

var _ io.ReadWriteCloser = stdio{}

func (stdio) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
