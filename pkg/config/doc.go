// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

/*
Package config loads language server settings from a yaml, json or toml file
with YAMLLS_ environment overrides, and watches that file along with any local
schema files it references.

	validate: true
	kubernetes: false
	customTags: ["!reference sequence"]
	validationDelay: 200ms
	format:
	  indent: 2
	requireVersion: ">= 0.1.0"
	schemas:
	- uri: schemas/pipeline.json
	  fileMatch: ["azure-pipelines.yml", "pipelines/*.yml"]
*/
package config
