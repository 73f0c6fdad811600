// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package cmd is home to yamlls's "commands": instances of cobra.Command
(not to be confused with ./cmd which holds the main package).

The one-shot commands (validate, complete, hover, parse, symbols, format)
run a language service over files given with --file. The serve command
runs the language server over stdio.

For a list of commands run:

	$ yamlls help
*/
package cmd
