// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"carvel.dev/yamlls/pkg/cmd/ui"
	"carvel.dev/yamlls/pkg/config"
	"carvel.dev/yamlls/pkg/languageservice"
	"carvel.dev/yamlls/pkg/schemastore"
	"github.com/spf13/cobra"
)

// anyFile matches every document URI.
const anyFile = "**"

// LanguageFlags configure the language service behind one-shot commands.
type LanguageFlags struct {
	Schema     string
	Settings   string
	Kubernetes bool
	CustomTags []string
}

func (s *LanguageFlags) Set(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.Schema, "schema", "", "Schema applied to every file (ie local path, file:// or HTTP URL, kubernetes, kedge)")
	cmd.Flags().StringVar(&s.Settings, "settings", "", "Settings file (yaml, json or toml)")
	cmd.Flags().BoolVar(&s.Kubernetes, "kubernetes", false, "Treat documents as Kubernetes manifests")
	cmd.Flags().StringArrayVar(&s.CustomTags, "custom-tag", nil,
		"Custom YAML tag with an optional kind, eg '!Ref scalar' (can be specified multiple times)")
}

// NewLanguageService loads settings and configures a service with them.
// The --schema association precedes those from the settings file.
func (s *LanguageFlags) NewLanguageService(ui ui.UI) (*languageservice.LanguageService, error) {
	settings, err := config.Load(s.Settings)
	if err != nil {
		return nil, err
	}
	for _, warning := range settings.Warnings {
		ui.Warnf("Warning: %s\n", warning)
	}

	lsSettings, err := settings.LanguageServiceSettings()
	if err != nil {
		return nil, fmt.Errorf("Invalid settings: %w", err)
	}

	if s.Schema != "" {
		schemaURI, err := absSchemaURI(s.Schema)
		if err != nil {
			return nil, err
		}
		if schemaURI == config.KubernetesSchemaURL {
			lsSettings.IsKubernetes = true
		}
		lsSettings.Schemas = append([]languageservice.SchemaAssociation{{
			URI:       schemaURI,
			FileMatch: []string{anyFile},
		}}, lsSettings.Schemas...)
	}
	if s.Kubernetes {
		lsSettings.IsKubernetes = true
	}
	lsSettings.CustomTags = append(lsSettings.CustomTags, s.CustomTags...)

	var workspace settingsDir
	if settings.Path != "" {
		workspace = settingsDir(filepath.Dir(settings.Path))
	}

	service := languageservice.NewLanguageService(schemastore.NewStore(), workspace)
	service.Configure(lsSettings)
	return service, nil
}

func absSchemaURI(schema string) (string, error) {
	if resolved := config.ResolveSchemaAlias(schema); resolved != schema {
		return resolved, nil
	}
	if strings.Contains(schema, "://") || filepath.IsAbs(schema) {
		return schema, nil
	}
	abs, err := filepath.Abs(schema)
	if err != nil {
		return "", fmt.Errorf("Resolving schema path '%s': %w", schema, err)
	}
	return abs, nil
}

// settingsDir resolves schema paths from a settings file against the
// directory holding it.
type settingsDir string

var _ languageservice.WorkspaceContext = settingsDir("")

func (d settingsDir) ResolveRelativePath(relative, _ string) string {
	return filepath.Join(string(d), filepath.FromSlash(relative))
}
