// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package filetests

import (
	"os"
	"testing"

	"carvel.dev/yamlls/pkg/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTests(t *testing.T) {
	data, err := os.ReadFile("testdata/schema.json")
	require.NoError(t, err)

	schema, err := jsonschema.FromJSON(data)
	require.NoError(t, err)

	FileTests{PathToTests: "testdata/cases", Schema: schema}.Run(t)
}

func TestTrimTrailingMultilineWhitespace(t *testing.T) {
	for _, testcase := range []struct {
		give, want string
	}{
		{
			give: `we want yaml`,
			want: `we want yaml`,
		},
		{
			give: `we want yaml `,
			want: `we want yaml`,
		},
		{
			give: `we want yaml	`,
			want: `we want yaml`,
		},
		{
			give: `we want yaml
`,
			want: `we want yaml`,
		},
		{
			give: `
we 
want	
yaml  `,
			want: `
we
want
yaml`,
		},
		{
			give: `
we

  want	
	yaml

`,
			want: `
we

  want
	yaml`,
		},
	} {
		assert.Equal(t, testcase.want, TrimTrailingMultilineWhitespace(testcase.give))
	}
}
