// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"carvel.dev/yamlls/pkg/filepos"
	"carvel.dev/yamlls/pkg/files"
	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"
)

// PositionFlags select a cursor within a single file. Lines and characters
// are 1 based, as printed in diagnostics.
type PositionFlags struct {
	File      string
	Line      int
	Character int
}

func (s *PositionFlags) Set(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.File, "file", "f", "", "File (ie local path, HTTP URL, -)")
	cmd.Flags().IntVar(&s.Line, "line", 1, "Line of the cursor (1 based)")
	cmd.Flags().IntVar(&s.Character, "character", 1, "Character of the cursor within the line (1 based)")
}

func (s *PositionFlags) Position() (protocol.Position, error) {
	if s.Line < 1 || s.Character < 1 {
		return protocol.Position{}, fmt.Errorf("Expected line and character to be at least 1, but were %d and %d", s.Line, s.Character)
	}
	return protocol.Position{Line: uint32(s.Line - 1), Character: uint32(s.Character - 1)}, nil
}

// readDocument loads a single file as a text document identified by its URI.
func readDocument(ctx context.Context, path string) (*files.File, *filepos.TextDocument, error) {
	if path == "" {
		return nil, nil, fmt.Errorf("Expected a file to be given with --file")
	}

	result, err := files.NewFiles([]string{path}, false)
	if err != nil {
		return nil, nil, err
	}
	if len(result) != 1 {
		return nil, nil, fmt.Errorf("Expected exactly one file, but was %d", len(result))
	}

	data, err := result[0].Bytes(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("Reading %s: %w", result[0].Description(), err)
	}
	return result[0], filepos.NewTextDocument(result[0].URI(), string(data)), nil
}
