// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package validations checks a parsed document (yamlast.Node) against a
jsonschema.Schema.

Validation never fails with a Go error: every violation becomes a Problem
in the ValidationResult. Along the way each schema applied to a node is
reported to a SchemaCollector; completion and hover use a
CapturingCollector to learn which schemas apply at the cursor, while plain
validation uses the NoOpCollector.

# Alternatives

anyOf and oneOf branches are each validated into a fresh result, then
ranked. The default ranking prefers clean results, then results whose
problems sit deeper in the tree, then enum and property value matches.
Context.IsKubernetes switches to ranking by the number of matched
properties first.

# Compile-time expressions

Keys of the form "${{ if <condition> }}" and "${{ each <x> in <expr> }}"
are checked for shape. A mapping under such a key is merged into the
enclosing mapping; a sequence under it is spliced into the enclosing
sequence.
*/
package validations
