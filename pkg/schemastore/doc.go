// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

// Package schemastore fetches and caches JSON schemas for the language service.
package schemastore
