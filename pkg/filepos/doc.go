// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package filepos maps between the two ways a location in a document is
described: byte offsets (used by the parser and validator) and editor positions
(zero-based line and UTF-16 character, as spoken by language clients).

TextDocument holds a snapshot of the text plus its line index. Position is the
human-facing form (file, 1-based line and column, and a cached copy of the
source line) used when reporting problems on a terminal.
*/
package filepos
