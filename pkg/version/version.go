// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package version

// Version is set at build time with
// -ldflags "-X carvel.dev/yamlls/pkg/version.Version=v1.2.3"
var Version = "develop"
