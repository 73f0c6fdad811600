// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package pkg is the collection of packages that make up the implementation of yamlls.

The codebase is organized into layers. Each package has a concise
responsibility and depends on the others only as far as it must.

In the inventory, below, individual packages are named alongside their coupling
with the other packages in the codebase.

	(# of dependents) => <package name> => (# of dependencies)

Where "# of dependents" is the count of packages that import the named package
and "# of dependencies" is the count of packages that this named package
imports.

From top-down, yamlls code is layered in this way:

# Entry Point

yamlls is built into a single executable:

	./cmd/yamlls               // a command-line tool and language server

# Commands

One-shot commands run the language service over files; "serve" runs it behind
the Language Server Protocol.

	(1) => pkg/cmd => (10)
	(1) => pkg/server => (7)

# Configuration

Settings come from a file, the environment, or the editor, and are reloaded
when the files behind them change.

	(2) => pkg/config => (5)

# Language Service

The language service answers the editor's questions about one document:
diagnostics, completion, hover, symbols, definition and formatting. Schemas
are fetched once and cached.

	(3) => pkg/languageservice => (5)
	(3) => pkg/schemastore => (2)
	(2) => pkg/files => (0)

# Validation

A document is validated against a JSON schema extended with the keywords
pipeline schemas use (aliases, ignoreCase, firstProperty). Validation also
records which schemas applied to which node; completion and hover rely on it.

	(1) => pkg/validations => (3)
	(4) => pkg/jsonschema => (1)

# YAML Structures

yamlls delegates tokenizing YAML to gopkg.in/yaml.v3 and converts its nodes
into a tree of yamlast.Node that keeps byte offsets, parents, and the
documents of a stream, and that tolerates the incomplete text of a document
being edited.

	(3) => pkg/yamlast => (2)

# Utilities

The remainder are domain-agnostic utilities.

	(4) => pkg/filepos => (0)
	(6) => pkg/orderedmap => (0)
	(2) => pkg/cmd/ui => (0)
	(3) => pkg/version => (0)
	(1) => pkg/spell => (0)

# Dependencies

Each package's dependencies on other packages within this module are as follows
(if a package is not listed, it has no dependencies on other packages within
this module):

	pkg/cmd:
	- pkg/server
	- pkg/config
	- pkg/languageservice
	- pkg/schemastore
	- pkg/yamlast
	- pkg/files
	- pkg/cmd/ui
	- pkg/filepos
	- pkg/orderedmap
	- pkg/version
	pkg/server:
	- pkg/config
	- pkg/languageservice
	- pkg/schemastore
	- pkg/cmd/ui
	- pkg/filepos
	- pkg/orderedmap
	- pkg/version
	pkg/config:
	- pkg/languageservice
	- pkg/jsonschema
	- pkg/orderedmap
	- pkg/spell
	- pkg/version
	pkg/languageservice:
	- pkg/validations
	- pkg/schemastore
	- pkg/jsonschema
	- pkg/yamlast
	- pkg/filepos
	pkg/schemastore:
	- pkg/jsonschema
	- pkg/files
	pkg/validations:
	- pkg/jsonschema
	- pkg/yamlast
	- pkg/orderedmap
	pkg/jsonschema:
	- pkg/orderedmap
	pkg/yamlast:
	- pkg/filepos
	- pkg/orderedmap
*/
package pkg
