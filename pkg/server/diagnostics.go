// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"carvel.dev/yamlls/pkg/config"
	"carvel.dev/yamlls/pkg/orderedmap"
	"go.lsp.dev/protocol"
)

// configurationSection is the key clients nest settings under.
const configurationSection = "yamlls"

// triggerValidation schedules validation of docURI after the validation
// delay, replacing any validation still waiting. A validation that has
// already started is left to finish.
func (s *Server) triggerValidation(docURI protocol.DocumentURI) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if timer, found := s.pending[docURI]; found {
		timer.Stop()
	}

	var timer *time.Timer
	timer = time.AfterFunc(s.delay, func() {
		s.mu.Lock()
		if s.pending[docURI] != timer {
			s.mu.Unlock()
			return
		}
		delete(s.pending, docURI)
		s.mu.Unlock()

		s.validate(docURI)
	})
	s.pending[docURI] = timer
}

func (s *Server) cancelPending() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for docURI, timer := range s.pending {
		timer.Stop()
		delete(s.pending, docURI)
	}
}

func (s *Server) validate(docURI protocol.DocumentURI) {
	doc := s.document(docURI)
	if doc == nil {
		return
	}

	ctx := s.ctx
	if ctx == nil {
		ctx = context.Background()
	}

	diagnostics := []protocol.Diagnostic{}
	if len(doc.Text()) > 0 {
		var err error
		diagnostics, err = s.service.DoValidation(ctx, doc, s.service.Parse(doc.Text()))
		if err != nil {
			s.ui.Warnf("Validating '%s': %s\n", docURI, err)
			return
		}
	}
	s.publish(ctx, docURI, diagnostics)
}

func (s *Server) publish(ctx context.Context, docURI protocol.DocumentURI, diagnostics []protocol.Diagnostic) {
	if s.conn == nil {
		return
	}

	s.ui.Debugf("Publishing %d diagnostics for '%s'\n", len(diagnostics), docURI)

	err := s.conn.Notify(ctx, "textDocument/publishDiagnostics", &protocol.PublishDiagnosticsParams{
		URI:         docURI,
		Diagnostics: diagnostics,
	})
	if err != nil {
		s.ui.Warnf("Publishing diagnostics for '%s': %s\n", docURI, err)
	}
}

func (s *Server) didChangeConfiguration(params *protocol.DidChangeConfigurationParams) error {
	data, err := json.Marshal(params.Settings)
	if err != nil {
		return fmt.Errorf("Encoding settings: %w", err)
	}

	// accept settings nested under the section name or given bare
	if raw, err := orderedmap.FromJSON(data); err == nil {
		if rawMap, ok := raw.(*orderedmap.Map); ok {
			if section, found := rawMap.Get(configurationSection); found {
				if data, err = json.Marshal(section); err != nil {
					return fmt.Errorf("Encoding settings: %w", err)
				}
			}
		}
	}

	settings, err := config.FromJSON(data)
	if err != nil {
		return err
	}
	for _, warning := range settings.Warnings {
		s.ui.Warnf("Warning: %s\n", warning)
	}
	return s.Reconfigure(settings)
}
