// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package languageservice answers editor requests for YAML pipeline documents:
completion, hover, diagnostics, document symbols, go to definition of
templates and formatting.

A LanguageService is configured with schema associations. Each request
takes a filepos.TextDocument and the yamlast.ParseResult of its text, so a
caller parsing once can serve several requests. Completion expects text
prepared by PatchForCompletion.
*/
package languageservice
