// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package jsonschema holds the schema model used to validate and complete
pipeline documents: a draft-4 flavoured subset of JSON Schema plus the
pipeline extensions (aliases, ignoreCase, firstProperty, deprecation and
suggestion hints).

Schemas decode from JSON or YAML. Property declaration order is kept, since
completion offers properties in that order.
*/
package jsonschema
