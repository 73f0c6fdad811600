// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package languageservice

import (
	"path"
	"strings"

	"carvel.dev/yamlls/pkg/filepos"
	"carvel.dev/yamlls/pkg/yamlast"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

const (
	templateKey      = "template"
	selfRepository   = "self"
	templateRepoSign = "@"
)

// DoDefinition resolves the value of a "template" property to the file it
// names. "path@self" is local; any other repository gives no result.
// Paths starting with a separator are relative to workspaceRoot, others to
// the document's directory.
func (s *LanguageService) DoDefinition(doc *filepos.TextDocument, pos protocol.Position,
	parsed *yamlast.ParseResult, workspaceRoot uri.URI) *protocol.Location {

	offset := doc.OffsetAt(pos)
	document := documentFor(parsed, offset)
	if document == nil {
		return nil
	}

	str, ok := yamlast.GetNodeFromOffset(document.Root, offset).(*yamlast.String)
	if !ok || str.IsKey || str.Location() != templateKey {
		return nil
	}

	location, resource, _ := strings.Cut(str.Value, templateRepoSign)
	if resource != "" && resource != selfRepository {
		return nil
	}
	location = strings.ReplaceAll(location, `\`, "/")

	var target string
	if strings.HasPrefix(location, "/") {
		target = path.Join(filenameOf(string(workspaceRoot)), location[1:])
	} else {
		target = path.Join(path.Dir(filenameOf(doc.URI())), location)
	}

	return &protocol.Location{URI: protocol.DocumentURI(uri.File(target))}
}

// filenameOf returns the path of a file URI; anything else is taken as a
// path already.
func filenameOf(u string) string {
	if strings.HasPrefix(u, uri.FileScheme+"://") {
		return uri.URI(u).Filename()
	}
	return u
}
