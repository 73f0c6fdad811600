// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlast_test

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"carvel.dev/yamlls/pkg/yamlast"
	fuzz "github.com/google/gofuzz"
	"github.com/k14s/difflib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseSingle(t *testing.T, data string, customTags ...string) *yamlast.Document {
	t.Helper()
	result := yamlast.NewParser(yamlast.ParserOpts{CustomTags: customTags}).Parse(data)
	require.Len(t, result.Documents, 1)
	return result.Documents[0]
}

func printed(node yamlast.Node) string {
	return yamlast.NewPrinter(nil).PrintStr(node)
}

func TestParserEmpty(t *testing.T) {
	result := yamlast.NewParser(yamlast.ParserOpts{}).Parse("")
	assert.Len(t, result.Documents, 0)
}

func TestParserSingleProperty(t *testing.T) {
	doc := parseSingle(t, "apiVersion: v1")

	expected := `[0,14): object
  [0,14): property key=apiVersion [0,10)
    [12,14): string "v1"
`
	assertEqual(t, printed(doc.Root), expected)
	assert.Empty(t, doc.Errors)
	assert.Empty(t, doc.Warnings)
}

func TestParserSequenceDropsTrailingPlaceholder(t *testing.T) {
	doc := parseSingle(t, "steps:\n- script: echo hi\n  name: x\n-\n")

	expected := `[0,36): object
  [0,36): property key=steps [0,5)
    [7,36): array
      [9,34): object
        [9,24): property key=script [9,15)
          [17,24): string "echo hi"
        [27,34): property key=name [27,31)
          [33,34): string "x"
`
	assertEqual(t, printed(doc.Root), expected)
}

func TestParserScalarInference(t *testing.T) {
	doc := parseSingle(t, "a: yes\nb: 'yes'\nc: 1.5\nd: 10\ne: ~\nf:\ng: true\n")

	expected := `[0,44): object
  [0,6): property key=a [0,1)
    [3,6): boolean true
  [7,15): property key=b [7,8)
    [10,15): string "yes"
  [16,22): property key=c [16,17)
    [19,22): float 1.5
  [23,28): property key=d [23,24)
    [26,28): int 10
  [29,33): property key=e [29,30)
    [32,33): null
  [34,36): property key=f [34,35)
    [36,36): null
  [37,44): property key=g [37,38)
    [40,44): boolean true
`
	assertEqual(t, printed(doc.Root), expected)
}

func TestParserForcedBooleans(t *testing.T) {
	for literal, expected := range map[string]bool{"y": true, "NO": false, "On": true, "off": false} {
		doc := parseSingle(t, "key: "+literal)
		val := doc.Root.(*yamlast.Object).Properties[0].Value
		boolean, ok := val.(*yamlast.Boolean)
		require.True(t, ok, "expected %s to be a boolean, got %T", literal, val)
		assert.Equal(t, expected, boolean.Value)
	}
}

func TestParserCompileTimeExpressionKey(t *testing.T) {
	doc := parseSingle(t, "${{ if true }}:\n  x: 1\n")

	expected := `[0,22): object
  [0,22): expression key=${{ if true }} [0,14)
    [18,22): object
      [18,22): property key=x [18,19)
        [21,22): int 1
`
	assertEqual(t, printed(doc.Root), expected)

	prop := doc.Root.(*yamlast.Object).Properties[0]
	assert.True(t, prop.IsCompileTimeExpression())
	assert.Equal(t, yamlast.TypeProperty, prop.Type())
	assert.Equal(t, 14, prop.ColonOffset)
}

func TestParserAliasesResolveByValue(t *testing.T) {
	doc := parseSingle(t, "base: &b\n  x: 1\nuse:\n  <<: *b\n  y: 2\n")

	expected := `[0,36): object
  [0,15): property key=base [0,4)
    [11,15): object
      [11,15): property key=x [11,12)
        [14,15): int 1
  [16,36): property key=use [16,19)
    [23,36): object
      [23,29): property key=<< [23,25)
        [11,15): object
          [11,15): property key=x [11,12)
            [14,15): int 1
      [32,36): property key=y [32,33)
        [35,36): int 2
`
	assertEqual(t, printed(doc.Root), expected)

	root := doc.Root.(*yamlast.Object)
	original := root.Properties[0].Value
	aliased := root.Properties[1].Value.(*yamlast.Object).Properties[0].Value
	assert.NotSame(t, original, aliased)
	assert.Same(t, root.Properties[1].Value.(*yamlast.Object).Properties[0], aliased.Parent())

	bs, err := json.Marshal(yamlast.GetValue(doc.Root))
	require.NoError(t, err)
	assert.Equal(t, `{"base":{"x":1},"use":{"y":2,"x":1}}`, string(bs))
}

func TestParserDuplicateKeysAreWarnings(t *testing.T) {
	doc := parseSingle(t, "a: 1\na: 2\n<<: {}\n<<: {}\n")

	require.Len(t, doc.Warnings, 1)
	assert.Equal(t, yamlast.SyntaxProblem{Start: 5, End: 6, Message: `Duplicate key "a"`}, doc.Warnings[0])
	assert.Empty(t, doc.Errors)
}

func TestParserCustomTags(t *testing.T) {
	doc := parseSingle(t, "a: !Ref foo\nb: !Seq [1]\nc: !Other x\n", "!Ref", "!Seq sequence")

	root := doc.Root.(*yamlast.Object)
	ref := root.Properties[0].Value.(*yamlast.String)
	assert.Equal(t, "foo", ref.Value)
	assert.Equal(t, 8, ref.Start())
	assert.Equal(t, 11, ref.End())

	seq := root.Properties[1].Value.(*yamlast.Array)
	assert.Equal(t, 20, seq.Start())
	assert.Equal(t, 23, seq.End())
	require.Len(t, seq.Items, 1)

	require.Len(t, doc.Warnings, 1)
	assert.Equal(t, "Unknown tag !Other", doc.Warnings[0].Message)
}

func TestParserMultipleDocuments(t *testing.T) {
	result := yamlast.NewParser(yamlast.ParserOpts{}).Parse("a: 1\n---\nb: 2\n")

	require.Len(t, result.Documents, 2)
	assert.Equal(t, 0, result.Documents[0].Root.Start())
	assert.Equal(t, 9, result.Documents[1].Root.Start())
}

func TestParserSyntaxErrorEndsStream(t *testing.T) {
	result := yamlast.NewParser(yamlast.ParserOpts{}).Parse("a: [1, 2\nb: 3\n")

	require.Len(t, result.Documents, 1)
	doc := result.Documents[0]
	assert.Nil(t, doc.Root)
	require.Len(t, doc.Errors, 1)
	assert.NotEmpty(t, doc.Errors[0].Message)
	assert.False(t, strings.HasPrefix(doc.Errors[0].Message, "yaml:"))
	assert.LessOrEqual(t, doc.Errors[0].Start, doc.Errors[0].End)
}

func TestParserSyntaxErrorKeepsLaterDocuments(t *testing.T) {
	result := yamlast.NewParser(yamlast.ParserOpts{}).Parse("a: 1\n===\n---\nb: 2\n---\nc: 3\n")

	require.Len(t, result.Documents, 3)
	require.Len(t, result.Documents[0].Errors, 1)
	assert.Equal(t, 5, result.Documents[0].Errors[0].Start)
	for _, doc := range result.Documents[1:] {
		assert.Nil(t, doc.Root)
		assert.Empty(t, doc.Errors)
	}
}

func TestParserUnresolvedAliasBecomesNull(t *testing.T) {
	doc := parseSingle(t, "a: &x\n  b: 1\nc: *x\nd: *missing\n")

	assert.Empty(t, doc.Errors)
	root := doc.Root.(*yamlast.Object)
	require.Len(t, root.Properties, 3)

	missing := root.Properties[2].Value
	require.IsType(t, &yamlast.Null{}, missing)
	assert.Equal(t, 22, missing.Start())
	assert.Equal(t, 30, missing.End())

	bs, err := json.Marshal(yamlast.GetValue(doc.Root))
	require.NoError(t, err)
	assert.Equal(t, `{"a":{"b":1},"c":{"b":1},"d":null}`, string(bs))

	doc = parseSingle(t, "a: [*nope, 1] # *nope\n")
	items := doc.Root.(*yamlast.Object).Properties[0].Value.(*yamlast.Array).Items
	require.Len(t, items, 2)
	require.IsType(t, &yamlast.Null{}, items[0])
	assert.Equal(t, 4, items[0].Start())
	assert.Equal(t, 9, items[0].End())
}

func TestParserFlowCollections(t *testing.T) {
	doc := parseSingle(t, "a: {b: 1, c: [x, 'y']}\n")

	expected := `[0,22): object
  [0,22): property key=a [0,1)
    [3,22): object
      [4,8): property key=b [4,5)
        [7,8): int 1
      [10,21): property key=c [10,11)
        [13,21): array
          [14,15): string "x"
          [17,20): string "y"
`
	assertEqual(t, printed(doc.Root), expected)
}

func TestParserBlockScalar(t *testing.T) {
	doc := parseSingle(t, "- run: |\n    echo a\n\n    echo b\n  name: x\n")

	item := doc.Root.(*yamlast.Array).Items[0].(*yamlast.Object)
	run := item.Properties[0].Value.(*yamlast.String)
	assert.Equal(t, "echo a\n\necho b\n", run.Value)
	assert.Equal(t, 7, run.Start())
	assert.Equal(t, 31, run.End())
	assert.Equal(t, "name", item.Properties[1].KeyValue())
}

func TestParserFuzzedScalars(t *testing.T) {
	validIntegerRange := fuzz.UnicodeRange{First: '0', Last: '9'}
	randSource := getRandSource(t)

	fuzzLargeNumber := fuzz.New().RandSource(randSource).Funcs(func(s *string, c fuzz.Continue) {
		validIntegerRange.CustomStringFuzzFunc()(s, c)
		// leading zeros would select a different base
		*s = strings.TrimLeft(*s, "0")
		if *s == "" {
			*s = strconv.Itoa(c.Int())
		}
	})

	fuzzFloat := fuzz.New().RandSource(randSource).Funcs(func(s *string, c fuzz.Continue) {
		*s = strconv.FormatFloat(c.Float64(), 'f', -1, 64)
	})

	fuzzStrings := fuzz.New().RandSource(randSource).Funcs(func(s *string, c fuzz.Continue) {
		*s += c.RandString()
		*s = strings.ReplaceAll(*s, "'", `"`)
	})

	for i := 0; i < 100; i++ {
		var expectedInt, expectedString, expectedFloat string
		fuzzLargeNumber.Fuzz(&expectedInt)
		fuzzStrings.Fuzz(&expectedString)
		fuzzFloat.Fuzz(&expectedFloat)

		t.Run(fmt.Sprintf("int: [%v], string: [%v], float64: [%v]", expectedInt, expectedString, expectedFloat), func(t *testing.T) {
			data := "someInt: " + expectedInt + "\nsomeString: '" + expectedString + "'\nsomeFloat: " + expectedFloat + "\n"
			doc := parseSingle(t, data)
			require.Empty(t, doc.Errors)

			props := doc.Root.(*yamlast.Object).Properties
			require.Len(t, props, 3)

			intNode, ok := props[0].Value.(*yamlast.Number)
			require.True(t, ok, "someInt: %T", props[0].Value)
			expectedIntVal, err := strconv.ParseFloat(expectedInt, 64)
			require.NoError(t, err)
			assert.Equal(t, expectedIntVal, intNode.Value)
			assert.Equal(t, expectedInt, data[intNode.Start():intNode.End()])

			strNode, ok := props[1].Value.(*yamlast.String)
			require.True(t, ok, "someString: %T", props[1].Value)
			assert.Equal(t, expectedString, strNode.Value)
			assert.Equal(t, "'"+expectedString+"'", data[strNode.Start():strNode.End()])

			floatNode, ok := props[2].Value.(*yamlast.Number)
			require.True(t, ok, "someFloat: %T", props[2].Value)
			expectedFloatVal, err := strconv.ParseFloat(expectedFloat, 64)
			require.NoError(t, err)
			assert.InDelta(t, expectedFloatVal, floatNode.Value, 1e-12)
		})
	}
}

func getRandSource(t *testing.T) rand.Source {
	var seed int64
	if os.Getenv("YAMLLS_SEED") == "" {
		seed = time.Now().UnixNano()
	} else {
		envSeed, err := strconv.Atoi(os.Getenv("YAMLLS_SEED"))
		require.NoError(t, err)
		seed = int64(envSeed)
	}

	t.Logf("Seed used was: [%v]. To reproduce this test failure, re-run the test with `export YAMLLS_SEED=%v`", seed, seed)

	return rand.NewSource(seed)
}

func assertEqual(t *testing.T, parsedValStr string, expectedValStr string) {
	t.Helper()
	if parsedValStr != expectedValStr {
		t.Fatalf("Not equal; diff expected...actual:\n%v\n", difflib.PPDiff(strings.Split(expectedValStr, "\n"), strings.Split(parsedValStr, "\n")))
	}
}
