// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the language service over the Language Server
// Protocol on a jsonrpc2 stream, typically stdio.
package server
