// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"encoding/json"
	"fmt"

	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
)

// Handler dispatches LSP methods. Requests are handled in arrival order so
// document changes are seen before the requests that follow them.
func (s *Server) Handler() jsonrpc2.Handler {
	return func(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
		s.ui.Debugf("Received method: %s\n", req.Method())

		switch req.Method() {
		case "initialize":
			var params protocol.InitializeParams
			if err := unmarshalParams(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			result, err := s.initialize(ctx, &params)
			return reply(ctx, result, err)

		case "initialized":
			return reply(ctx, nil, nil)

		case "shutdown":
			s.cancelPending()
			return reply(ctx, nil, nil)

		case "exit":
			s.cancelPending()
			return s.conn.Close()

		case "textDocument/didOpen":
			var params protocol.DidOpenTextDocumentParams
			if err := unmarshalParams(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			s.didOpen(&params)
			return reply(ctx, nil, nil)

		case "textDocument/didChange":
			var params protocol.DidChangeTextDocumentParams
			if err := unmarshalParams(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			s.didChange(&params)
			return reply(ctx, nil, nil)

		case "textDocument/didClose":
			var params protocol.DidCloseTextDocumentParams
			if err := unmarshalParams(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			s.didClose(ctx, &params)
			return reply(ctx, nil, nil)

		case "textDocument/completion":
			var params protocol.CompletionParams
			if err := unmarshalParams(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			result, err := s.completion(ctx, &params)
			return reply(ctx, result, err)

		case "textDocument/hover":
			var params protocol.HoverParams
			if err := unmarshalParams(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			result, err := s.hover(ctx, &params)
			return reply(ctx, result, err)

		case "textDocument/documentSymbol":
			var params protocol.DocumentSymbolParams
			if err := unmarshalParams(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, s.documentSymbol(&params), nil)

		case "textDocument/formatting":
			var params protocol.DocumentFormattingParams
			if err := unmarshalParams(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			result, err := s.formatting(&params)
			return reply(ctx, result, err)

		case "textDocument/definition":
			var params protocol.DefinitionParams
			if err := unmarshalParams(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			return reply(ctx, s.definition(&params), nil)

		case "workspace/didChangeConfiguration":
			var params protocol.DidChangeConfigurationParams
			if err := unmarshalParams(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			if err := s.didChangeConfiguration(&params); err != nil {
				s.ui.Warnf("Applying configuration: %s\n", err)
			}
			return reply(ctx, nil, nil)

		case "json/schemaAssociations":
			var associations map[string][]string
			if err := unmarshalParams(req, &associations); err != nil {
				return reply(ctx, nil, err)
			}
			if err := s.SetSchemaAssociations(associations); err != nil {
				s.ui.Warnf("Applying schema associations: %s\n", err)
			}
			return reply(ctx, nil, nil)

		case "workspace/didChangeWatchedFiles":
			var params protocol.DidChangeWatchedFilesParams
			if err := unmarshalParams(req, &params); err != nil {
				return reply(ctx, nil, err)
			}
			s.didChangeWatchedFiles(&params)
			return reply(ctx, nil, nil)

		default:
			return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
		}
	}
}

func unmarshalParams(req jsonrpc2.Request, params interface{}) error {
	if err := json.Unmarshal(req.Params(), params); err != nil {
		return fmt.Errorf("%w: Decoding %s params: %s", jsonrpc2.ErrInvalidParams, req.Method(), err)
	}
	return nil
}
