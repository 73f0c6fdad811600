// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package files loads the bytes of documents and schemas from local paths,
file URIs, HTTP URLs or standard input, each behind the Source interface.

The CLI uses NewFiles to expand its arguments; the schema store uses
NewSource to fetch schemas named in settings.
*/
package files
