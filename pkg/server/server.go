// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"carvel.dev/yamlls/pkg/cmd/ui"
	"carvel.dev/yamlls/pkg/config"
	"carvel.dev/yamlls/pkg/filepos"
	"carvel.dev/yamlls/pkg/languageservice"
	"carvel.dev/yamlls/pkg/schemastore"
	"carvel.dev/yamlls/pkg/version"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

const serverName = "yamlls"

// Server speaks LSP over a jsonrpc2 stream. Documents are synced in full;
// diagnostics are published after a quiet period per document.
type Server struct {
	ui      ui.UI
	service *languageservice.LanguageService
	store   *schemastore.Store

	conn jsonrpc2.Conn
	ctx  context.Context

	mu            sync.Mutex
	documents     map[protocol.DocumentURI]*filepos.TextDocument
	pending       map[protocol.DocumentURI]*time.Timer
	delay         time.Duration
	formatIndent  int
	workspaceRoot uri.URI

	// settings are the last applied settings; associations come from
	// json/schemaAssociations and are kept across reconfigurations
	settings     *config.Settings
	associations map[string][]string
}

var _ languageservice.WorkspaceContext = &Server{}

func NewServer(ui ui.UI, store *schemastore.Store) *Server {
	s := &Server{
		ui:           ui,
		store:        store,
		documents:    map[protocol.DocumentURI]*filepos.TextDocument{},
		pending:      map[protocol.DocumentURI]*time.Timer{},
		delay:        config.DefaultValidationDelay,
		formatIndent: languageservice.DefaultIndent,
	}
	s.service = languageservice.NewLanguageService(store, s)
	return s
}

// Reconfigure applies settings and revalidates every open document.
// Cached schemas are dropped so changed schema files are picked up.
func (s *Server) Reconfigure(settings *config.Settings) error {
	s.mu.Lock()
	s.settings = settings
	associations := s.associations
	s.mu.Unlock()

	return s.configure(settings.WithAssociations(associations))
}

// SetSchemaAssociations replaces the client supplied glob pattern -> schema
// URIs associations and reapplies the last settings.
func (s *Server) SetSchemaAssociations(associations map[string][]string) error {
	s.mu.Lock()
	s.associations = associations
	settings := s.settings
	s.mu.Unlock()

	if settings == nil {
		var err error
		settings, err = config.FromJSON([]byte("{}"))
		if err != nil {
			return err
		}
	}
	return s.configure(settings.WithAssociations(associations))
}

func (s *Server) configure(settings *config.Settings) error {
	lsSettings, err := settings.LanguageServiceSettings()
	if err != nil {
		return err
	}

	s.service.Configure(lsSettings)
	s.store.InvalidateAll()

	s.mu.Lock()
	s.delay = settings.ValidationDelay
	if settings.Format.Indent > 0 {
		s.formatIndent = settings.Format.Indent
	}
	uris := make([]protocol.DocumentURI, 0, len(s.documents))
	for docURI := range s.documents {
		uris = append(uris, docURI)
	}
	s.mu.Unlock()

	s.ui.Debugf("Reconfigured with %d schema associations\n", len(lsSettings.Schemas))

	for _, docURI := range uris {
		s.triggerValidation(docURI)
	}
	return nil
}

// Run serves rwc until the client disconnects, sends exit, or ctx is done.
func (s *Server) Run(ctx context.Context, rwc io.ReadWriteCloser) error {
	s.conn = jsonrpc2.NewConn(jsonrpc2.NewStream(rwc))
	s.ctx = ctx
	s.conn.Go(ctx, s.Handler())

	select {
	case <-ctx.Done():
		s.conn.Close()
		<-s.conn.Done()
		return nil
	case <-s.conn.Done():
		s.cancelPending()
		err := s.conn.Err()
		if err == io.EOF || err == io.ErrClosedPipe {
			return nil
		}
		return err
	}
}

func (s *Server) initialize(_ context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.mu.Lock()
	switch {
	case len(params.WorkspaceFolders) > 0:
		s.workspaceRoot = uri.URI(params.WorkspaceFolders[0].URI)
	case params.RootURI != "":
		s.workspaceRoot = uri.URI(params.RootURI)
	}
	s.mu.Unlock()

	s.ui.Debugf("Initializing with workspace root '%s'\n", s.workspaceRoot)

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
			},
			CompletionProvider: &protocol.CompletionOptions{
				TriggerCharacters: []string{" ", ":", "-"},
			},
			HoverProvider:              true,
			DocumentSymbolProvider:     true,
			DocumentFormattingProvider: true,
			DefinitionProvider:         true,
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    serverName,
			Version: version.Version,
		},
	}, nil
}

func (s *Server) didOpen(params *protocol.DidOpenTextDocumentParams) {
	s.setDocument(params.TextDocument.URI, params.TextDocument.Text)
	s.triggerValidation(params.TextDocument.URI)
}

func (s *Server) didChange(params *protocol.DidChangeTextDocumentParams) {
	if len(params.ContentChanges) == 0 {
		return
	}
	// full sync: the last change holds the whole text
	s.setDocument(params.TextDocument.URI, params.ContentChanges[len(params.ContentChanges)-1].Text)
	s.triggerValidation(params.TextDocument.URI)
}

func (s *Server) didClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) {
	s.mu.Lock()
	delete(s.documents, params.TextDocument.URI)
	if timer, found := s.pending[params.TextDocument.URI]; found {
		timer.Stop()
		delete(s.pending, params.TextDocument.URI)
	}
	s.mu.Unlock()

	s.publish(ctx, params.TextDocument.URI, []protocol.Diagnostic{})
}

func (s *Server) didChangeWatchedFiles(params *protocol.DidChangeWatchedFilesParams) {
	for _, change := range params.Changes {
		s.store.Invalidate(string(change.URI))
	}

	s.mu.Lock()
	uris := make([]protocol.DocumentURI, 0, len(s.documents))
	for docURI := range s.documents {
		uris = append(uris, docURI)
	}
	s.mu.Unlock()

	for _, docURI := range uris {
		s.triggerValidation(docURI)
	}
}

func (s *Server) completion(ctx context.Context, params *protocol.CompletionParams) (*protocol.CompletionList, error) {
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return &protocol.CompletionList{Items: []protocol.CompletionItem{}}, nil
	}

	text, pos := languageservice.PatchForCompletion(doc.Text(), params.Position)
	list, err := s.service.DoComplete(ctx, doc, pos, s.service.Parse(text))
	if err != nil {
		// schema failures are reported as diagnostics
		s.ui.Warnf("Completing '%s': %s\n", doc.URI(), err)
	}
	return list, nil
}

func (s *Server) hover(ctx context.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	return s.service.DoHover(ctx, doc, params.Position, s.service.Parse(doc.Text()))
}

func (s *Server) documentSymbol(params *protocol.DocumentSymbolParams) []protocol.SymbolInformation {
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return nil
	}
	return s.service.FindDocumentSymbols(doc, s.service.Parse(doc.Text()))
}

func (s *Server) formatting(params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	s.mu.Lock()
	indent := s.formatIndent
	s.mu.Unlock()
	if params.Options.TabSize > 0 {
		indent = int(params.Options.TabSize)
	}
	return s.service.DoFormat(doc, languageservice.FormatOptions{Indent: indent})
}

func (s *Server) definition(params *protocol.DefinitionParams) []protocol.Location {
	doc := s.document(params.TextDocument.URI)
	if doc == nil {
		return nil
	}

	s.mu.Lock()
	root := s.workspaceRoot
	s.mu.Unlock()

	location := s.service.DoDefinition(doc, params.Position, s.service.Parse(doc.Text()), root)
	if location == nil {
		return nil
	}
	return []protocol.Location{*location}
}

// ResolveRelativePath resolves a schema path against the workspace root, or
// against the document's directory when there is no workspace.
func (s *Server) ResolveRelativePath(relative, baseURI string) string {
	s.mu.Lock()
	root := s.workspaceRoot
	s.mu.Unlock()

	relative = strings.TrimPrefix(relative, "./")
	if root != "" {
		return strings.TrimSuffix(string(root), "/") + "/" + relative
	}
	return baseURI[:strings.LastIndex(baseURI, "/")+1] + relative
}

func (s *Server) setDocument(docURI protocol.DocumentURI, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[docURI] = filepos.NewTextDocument(string(docURI), text)
}

func (s *Server) document(docURI protocol.DocumentURI) *filepos.TextDocument {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.documents[docURI]
}
