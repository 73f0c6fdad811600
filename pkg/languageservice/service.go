// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package languageservice

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"carvel.dev/yamlls/pkg/jsonschema"
	"carvel.dev/yamlls/pkg/schemastore"
	"carvel.dev/yamlls/pkg/validations"
	"carvel.dev/yamlls/pkg/yamlast"
)

// SchemaAssociation binds a schema to the documents whose URI matches one of
// the FileMatch globs. Schema, when set, is used instead of fetching URI.
type SchemaAssociation struct {
	URI       string
	FileMatch []string
	Schema    *jsonschema.Schema
}

type Settings struct {
	Validate   bool
	CustomTags []string
	Schemas    []SchemaAssociation

	// IsKubernetes ranks alternatives the Kubernetes way for every document,
	// KubernetesFileMatch for matching documents only.
	IsKubernetes        bool
	KubernetesFileMatch []string
}

func NewSettings() Settings {
	return Settings{Validate: true}
}

// WorkspaceContext resolves schema URIs that are relative to a document.
type WorkspaceContext interface {
	ResolveRelativePath(relative, baseURI string) string
}

type LanguageService struct {
	requests  schemastore.RequestService
	workspace WorkspaceContext

	mu           sync.RWMutex
	settings     Settings
	associations []association
	kubernetes   []*regexp.Regexp
	parser       *yamlast.Parser
}

type association struct {
	SchemaAssociation
	matchers []*regexp.Regexp
}

// NewLanguageService returns a service with default settings: validation
// enabled and no schemas. workspace may be nil.
func NewLanguageService(requests schemastore.RequestService, workspace WorkspaceContext) *LanguageService {
	s := &LanguageService{requests: requests, workspace: workspace}
	s.Configure(NewSettings())
	return s
}

// Configure replaces the settings. Requests already running keep the
// settings they started with.
func (s *LanguageService) Configure(settings Settings) {
	var associations []association
	for _, assoc := range settings.Schemas {
		compiled := association{SchemaAssociation: assoc}
		for _, glob := range assoc.FileMatch {
			compiled.matchers = append(compiled.matchers, CompileFileMatch(glob))
		}
		associations = append(associations, compiled)
	}

	var kubernetes []*regexp.Regexp
	for _, glob := range settings.KubernetesFileMatch {
		kubernetes = append(kubernetes, CompileFileMatch(glob))
	}

	parser := yamlast.NewParser(yamlast.ParserOpts{CustomTags: settings.CustomTags})

	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = settings
	s.associations = associations
	s.kubernetes = kubernetes
	s.parser = parser
}

func (s *LanguageService) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// Parse parses text with the configured custom tags.
func (s *LanguageService) Parse(text string) *yamlast.ParseResult {
	s.mu.RLock()
	parser := s.parser
	s.mu.RUnlock()
	return parser.Parse(text)
}

func (s *LanguageService) validationContext(documentURI string) validations.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.settings.IsKubernetes {
		return validations.Context{IsKubernetes: true}
	}
	for _, matcher := range s.kubernetes {
		if matcher.MatchString(documentURI) {
			return validations.Context{IsKubernetes: true}
		}
	}
	return validations.Context{}
}

// SchemaForResource returns the schema associated with documentURI, or nil
// when no association matches. Fetch failures come back as
// *schemastore.LoadError.
func (s *LanguageService) SchemaForResource(ctx context.Context, documentURI string) (*jsonschema.Schema, error) {
	assoc, found := s.associationFor(documentURI)
	if !found {
		return nil, nil
	}
	if assoc.Schema != nil {
		return assoc.Schema, nil
	}
	if s.requests == nil {
		return nil, &schemastore.LoadError{URI: assoc.URI, Err: fmt.Errorf("No schema request service configured")}
	}

	schemaURI := assoc.URI
	if s.workspace != nil && !hasScheme(schemaURI) && !strings.HasPrefix(schemaURI, "/") {
		schemaURI = s.workspace.ResolveRelativePath(schemaURI, documentURI)
	}
	return s.requests.Get(ctx, schemaURI)
}

func (s *LanguageService) associationFor(documentURI string) (association, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, assoc := range s.associations {
		for _, matcher := range assoc.matchers {
			if matcher.MatchString(documentURI) {
				return assoc, true
			}
		}
	}
	return association{}, false
}

var (
	quotedMultiLevelDir = regexp.QuoteMeta("**/")
	quotedMultiLevel    = regexp.QuoteMeta("**")
	quotedSingleLevel   = regexp.QuoteMeta("*")
)

// CompileFileMatch turns a fileMatch glob into a matcher for document URIs.
// "**" spans path segments and "*" stays within one. The glob is matched
// against the trailing segments of the URI.
func CompileFileMatch(glob string) *regexp.Regexp {
	pattern := regexp.QuoteMeta(strings.TrimPrefix(glob, "/"))
	pattern = strings.ReplaceAll(pattern, quotedMultiLevelDir, "(.*/)?")
	pattern = strings.ReplaceAll(pattern, quotedMultiLevel, ".*")
	pattern = strings.ReplaceAll(pattern, quotedSingleLevel, "[^/]*")
	return regexp.MustCompile("(^|/)" + pattern + "$")
}

func hasScheme(uri string) bool {
	idx := strings.Index(uri, "://")
	return idx > 0 && !strings.ContainsAny(uri[:idx], "/\\")
}

// documentFor picks the document of the stream that holds offset: the last
// one whose root starts at or before it.
func documentFor(parsed *yamlast.ParseResult, offset int) *yamlast.Document {
	if parsed == nil || len(parsed.Documents) == 0 {
		return nil
	}
	result := parsed.Documents[0]
	for _, doc := range parsed.Documents[1:] {
		if doc.Root != nil && doc.Root.Start() <= offset {
			result = doc
		}
	}
	return result
}
