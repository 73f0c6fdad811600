// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"carvel.dev/yamlls/pkg/jsonschema"
	"carvel.dev/yamlls/pkg/languageservice"
	"carvel.dev/yamlls/pkg/orderedmap"
	"carvel.dev/yamlls/pkg/spell"
	"carvel.dev/yamlls/pkg/version"
	"github.com/BurntSushi/toml"
	goversion "github.com/hashicorp/go-version"
	"github.com/spf13/viper"
)

const (
	EnvPrefix              = "YAMLLS"
	DefaultValidationDelay = 200 * time.Millisecond
)

// Schema URIs can name these well known schemas instead of a location.
// Documents associated with the kubernetes schema are validated with the
// Kubernetes ranking of alternatives.
const (
	KubernetesSchemaAlias = "kubernetes"
	KedgeSchemaAlias      = "kedge"

	KubernetesSchemaURL = "https://gist.githubusercontent.com/JPinkney/ccaf3909ef811e5657ca2e2e1fa05d76/raw/f85e51bfb67fdb99ab7653c2953b60087cc871ea/openshift_schema_all.json"
	KedgeSchemaURL      = "https://raw.githubusercontent.com/kedgeproject/json-schema/master/master/kedge-json-schema.json"
)

// ResolveSchemaAlias returns the URL behind a schema alias, or uri itself.
func ResolveSchemaAlias(uri string) string {
	switch strings.ToLower(strings.TrimSpace(uri)) {
	case KubernetesSchemaAlias:
		return KubernetesSchemaURL
	case KedgeSchemaAlias:
		return KedgeSchemaURL
	}
	return uri
}

type SchemaSettings struct {
	URI       string   `mapstructure:"uri"`
	FileMatch []string `mapstructure:"fileMatch"`

	// Schema is an inline schema. It is read from the settings file
	// directly since viper folds the case of nested keys.
	Schema interface{} `mapstructure:"-"`
}

type FormatSettings struct {
	Indent int `mapstructure:"indent"`
}

type Settings struct {
	Validate        bool             `mapstructure:"validate"`
	Kubernetes      bool             `mapstructure:"kubernetes"`
	CustomTags      []string         `mapstructure:"customTags"`
	Schemas         []SchemaSettings `mapstructure:"schemas"`
	ValidationDelay time.Duration    `mapstructure:"validationDelay"`
	Format          FormatSettings   `mapstructure:"format"`
	RequireVersion  string           `mapstructure:"requireVersion"`

	// Path is the settings file the values were read from, if any.
	Path string `mapstructure:"-"`

	// Warnings describe keys that were given but are not settings.
	Warnings []string `mapstructure:"-"`
}

// knownKeys are the setting keys as viper reports them, lower cased and
// flattened, mapped to their documented spelling.
var knownKeys = map[string]string{
	"validate":        "validate",
	"kubernetes":      "kubernetes",
	"customtags":      "customTags",
	"schemas":         "schemas",
	"validationdelay": "validationDelay",
	"format.indent":   "format.indent",
	"requireversion":  "requireVersion",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("validate", true)
	v.SetDefault("kubernetes", false)
	v.SetDefault("validationDelay", DefaultValidationDelay.String())
	v.SetDefault("format.indent", languageservice.DefaultIndent)
	v.SetDefault("requireVersion", "")
}

// Load reads settings from path (yaml, json or toml by extension) with
// YAMLLS_ environment overrides. An empty path gives the defaults plus
// environment.
func Load(path string) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("Reading settings file '%s': %w", path, err)
		}
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("Decoding settings: %w", err)
	}
	settings.Path = path
	settings.Warnings = unknownKeyWarnings(v.AllKeys())

	if path != "" {
		if err := settings.readInlineSchemas(path); err != nil {
			return nil, err
		}
	}

	if err := settings.Check(); err != nil {
		return nil, fmt.Errorf("Invalid settings: %w", err)
	}
	return &settings, nil
}

// FromJSON decodes settings sent by a client, such as the settings of
// workspace/didChangeConfiguration, with the same defaults as Load.
func FromJSON(data []byte) (*Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("json")
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("Reading settings: %w", err)
	}

	var settings Settings
	if err := v.Unmarshal(&settings); err != nil {
		return nil, fmt.Errorf("Decoding settings: %w", err)
	}
	settings.Warnings = unknownKeyWarnings(v.AllKeys())

	raw, err := orderedmap.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("Parsing settings: %w", err)
	}
	settings.setInlineSchemas(raw)

	if err := settings.Check(); err != nil {
		return nil, fmt.Errorf("Invalid settings: %w", err)
	}
	return &settings, nil
}

func (s *Settings) readInlineSchemas(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("Reading settings file '%s': %w", path, err)
	}

	var raw interface{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		var tomlVal map[string]interface{}
		if _, err := toml.Decode(string(data), &tomlVal); err != nil {
			return fmt.Errorf("Parsing settings file '%s': %w", path, err)
		}
		raw = orderedmap.Conversion{Object: tomlVal}.FromUnorderedMaps()
	default:
		raw, err = orderedmap.FromYAML(data)
		if err != nil {
			return fmt.Errorf("Parsing settings file '%s': %w", path, err)
		}
	}

	s.setInlineSchemas(raw)
	return nil
}

func unknownKeyWarnings(keys []string) []string {
	candidates := make([]string, 0, len(knownKeys))
	for _, name := range knownKeys {
		candidates = append(candidates, name)
	}
	sort.Strings(candidates)

	var warnings []string
	for _, key := range keys {
		if _, found := knownKeys[key]; found {
			continue
		}
		warning := fmt.Sprintf("Unknown setting '%s'", key)
		if suggestion := spell.Suggest(key, candidates); suggestion != "" {
			warning += fmt.Sprintf(" (did you mean '%s'?)", suggestion)
		}
		warnings = append(warnings, warning)
	}
	sort.Strings(warnings)
	return warnings
}

// setInlineSchemas copies schemas[*].schema out of the undecoded settings,
// keeping key case and order.
func (s *Settings) setInlineSchemas(raw interface{}) {
	rawMap, ok := raw.(*orderedmap.Map)
	if !ok {
		return
	}
	rawSchemas, _ := rawMap.Get("schemas")
	items, _ := rawSchemas.([]interface{})

	for i := range s.Schemas {
		if i >= len(items) {
			break
		}
		if item, ok := items[i].(*orderedmap.Map); ok {
			if inline, found := item.Get("schema"); found {
				s.Schemas[i].Schema = inline
			}
		}
	}
}

// Check checks schema associations and the required version.
func (s *Settings) Check() error {
	for i, schema := range s.Schemas {
		if schema.URI == "" && schema.Schema == nil {
			return fmt.Errorf("schemas[%d]: Expected either uri or schema to be set", i)
		}
		if len(schema.FileMatch) == 0 {
			return fmt.Errorf("schemas[%d]: Expected at least one fileMatch pattern", i)
		}
		for _, glob := range schema.FileMatch {
			if err := checkFileMatch(glob); err != nil {
				return fmt.Errorf("schemas[%d]: %w", i, err)
			}
		}
	}

	if s.Format.Indent < 0 {
		return fmt.Errorf("format.indent: Expected non-negative value, but was %d", s.Format.Indent)
	}
	if s.ValidationDelay < 0 {
		return fmt.Errorf("validationDelay: Expected non-negative duration, but was %s", s.ValidationDelay)
	}

	return RequireVersion(s.RequireVersion)
}

func checkFileMatch(glob string) error {
	switch {
	case strings.TrimSpace(glob) == "":
		return fmt.Errorf("Expected fileMatch pattern to be non-empty")
	case strings.Contains(glob, "***"):
		return fmt.Errorf("Expected fileMatch pattern '%s' to use at most two consecutive '*'", glob)
	case strings.Contains(glob, `\`):
		return fmt.Errorf("Expected fileMatch pattern '%s' to use '/' as separator", glob)
	}
	return nil
}

// RequireVersion checks the running version against a go-version
// constraint such as ">= 0.3.0". Development builds satisfy any constraint.
func RequireVersion(constraint string) error {
	if constraint == "" {
		return nil
	}

	constraints, err := goversion.NewConstraint(constraint)
	if err != nil {
		return fmt.Errorf("requireVersion: %w", err)
	}

	current, err := goversion.NewVersion(version.Version)
	if err != nil {
		return nil
	}

	if !constraints.Check(current) {
		return fmt.Errorf("yamlls version %s does not meet the required version %s", version.Version, constraint)
	}
	return nil
}

// WithAssociations returns a copy of the settings with schemas for the
// client's glob pattern -> schema URIs associations placed before the
// configured ones.
func (s *Settings) WithAssociations(associations map[string][]string) *Settings {
	patterns := make([]string, 0, len(associations))
	for pattern := range associations {
		patterns = append(patterns, pattern)
	}
	sort.Strings(patterns)

	var schemas []SchemaSettings
	for _, pattern := range patterns {
		for _, uri := range associations[pattern] {
			schemas = append(schemas, SchemaSettings{URI: uri, FileMatch: []string{pattern}})
		}
	}

	result := *s
	result.Schemas = append(schemas, s.Schemas...)
	return &result
}

// LanguageServiceSettings converts the settings for
// languageservice.LanguageService.Configure. Inline schemas are decoded here.
func (s *Settings) LanguageServiceSettings() (languageservice.Settings, error) {
	result := languageservice.NewSettings()
	result.Validate = s.Validate
	result.IsKubernetes = s.Kubernetes
	result.CustomTags = s.CustomTags

	for i, schema := range s.Schemas {
		assoc := languageservice.SchemaAssociation{URI: ResolveSchemaAlias(schema.URI), FileMatch: schema.FileMatch}
		if assoc.URI == KubernetesSchemaURL {
			result.KubernetesFileMatch = append(result.KubernetesFileMatch, schema.FileMatch...)
		}
		if schema.Schema != nil {
			decoded, err := jsonschema.FromValue(schema.Schema)
			if err != nil {
				return languageservice.Settings{}, fmt.Errorf("schemas[%d]: %w", i, err)
			}
			assoc.Schema = decoded
		}
		result.Schemas = append(result.Schemas, assoc)
	}
	return result, nil
}

// SchemaFiles lists the local files behind file:// or plain path schema
// URIs, resolved against the settings file directory.
func (s *Settings) SchemaFiles() []string {
	var paths []string
	for _, schema := range s.Schemas {
		uri := ResolveSchemaAlias(schema.URI)
		switch {
		case uri == "" || strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://"):
			continue
		case strings.HasPrefix(uri, "file://"):
			uri = strings.TrimPrefix(uri, "file://")
		}
		if !filepath.IsAbs(uri) && s.Path != "" {
			uri = filepath.Join(filepath.Dir(s.Path), uri)
		}
		paths = append(paths, uri)
	}
	return paths
}
