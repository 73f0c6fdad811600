// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"

	"carvel.dev/yamlls/pkg/cmd"
	uierrs "github.com/cppforlife/go-cli-ui/errors"
)

func main() {
	command := cmd.NewDefaultYamllsCmd()

	err := command.ExecuteContext(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "yamlls: Error: %s\n", uierrs.NewMultiLineError(err))
		os.Exit(1)
	}
}
