// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package validations_test

import (
	"testing"

	"carvel.dev/yamlls/pkg/jsonschema"
	"carvel.dev/yamlls/pkg/validations"
	"carvel.dev/yamlls/pkg/yamlast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseRoot(t *testing.T, data string) yamlast.Node {
	t.Helper()
	result := yamlast.NewParser(yamlast.ParserOpts{}).Parse(data)
	require.Len(t, result.Documents, 1)
	require.Empty(t, result.Documents[0].Errors)
	return result.Documents[0].Root
}

func mustSchema(t *testing.T, data string) *jsonschema.Schema {
	t.Helper()
	s, err := jsonschema.FromJSON([]byte(data))
	require.NoError(t, err)
	return s
}

func validate(t *testing.T, schema, data string) []validations.Problem {
	t.Helper()
	return validations.Problems(parseRoot(t, data), mustSchema(t, schema), validations.Context{})
}

func messages(problems []validations.Problem) []string {
	var result []string
	for _, p := range problems {
		result = append(result, p.Message())
	}
	return result
}

func TestTypeChecks(t *testing.T) {
	schema := `{"properties": {
		"a": {"type": "string"},
		"b": {"type": ["boolean", "null"]},
		"c": {"type": "integer"},
		"d": {"type": "number"}
	}}`
	problems := validate(t, schema, "a: 1\nb: x\nc: 1.5\nd: 2\n")

	require.Len(t, problems, 2)
	assert.Equal(t, "Incorrect type. Expected one of boolean, null.", problems[0].Message())
	assert.Equal(t, 8, problems[0].Start)
	assert.Equal(t, 9, problems[0].End)
	assert.Equal(t, validations.SeverityWarning, problems[0].Severity)
	assert.Equal(t, `Incorrect type. Expected "integer".`, problems[1].Message())
	assert.Equal(t, 13, problems[1].Start)
	assert.Equal(t, 16, problems[1].End)
}

func TestTypeErrorMessageOverride(t *testing.T) {
	problems := validate(t, `{"properties": {"a": {"type": "array", "errorMessage": "a must be a list"}}}`, "a: x\n")
	assert.Equal(t, []string{"a must be a list"}, messages(problems))
}

func TestUnexpectedProperty(t *testing.T) {
	problems := validate(t, `{"properties": {"name": {}}, "additionalProperties": false}`, "name: x\nunknown_node: 1\n")

	require.Len(t, problems, 1)
	assert.Equal(t, "Unexpected property unknown_node", problems[0].Message())
	assert.Equal(t, 8, problems[0].Start)
	assert.Equal(t, 20, problems[0].End)
}

func TestMissingRequiredProperty(t *testing.T) {
	t.Run("anchored at the owning key", func(t *testing.T) {
		problems := validate(t, `{"properties": {"job": {"required": ["steps"]}}}`, "job:\n  name: x\n")
		require.Len(t, problems, 1)
		assert.Equal(t, `Missing property "steps".`, problems[0].Message())
		assert.Equal(t, 0, problems[0].Start)
		assert.Equal(t, 3, problems[0].End)
	})

	t.Run("anchored at the object start", func(t *testing.T) {
		problems := validate(t, `{"required": ["a"]}`, "b: 1\n")
		require.Len(t, problems, 1)
		assert.Equal(t, 0, problems[0].Start)
		assert.Equal(t, 1, problems[0].End)
	})

	t.Run("satisfied by an alias", func(t *testing.T) {
		schema := `{"required": ["bash"], "properties": {"bash": {"type": "string", "aliases": ["sh"]}}, "additionalProperties": false}`
		assert.Empty(t, validate(t, schema, "sh: x\n"))
	})

	t.Run("satisfied ignoring case", func(t *testing.T) {
		schema := `{"required": ["bash"], "properties": {"bash": {"ignoreCase": "key"}}}`
		assert.Empty(t, validate(t, schema, "BASH: x\n"))
	})
}

func TestCaseInsensitiveKeyCollision(t *testing.T) {
	schema := `{"properties": {"script": {"type": "string", "ignoreCase": "key"}}}`
	problems := validate(t, schema, "Script: a\nscript: b\n")

	require.Len(t, problems, 2)
	for i, start := range []int{0, 10} {
		assert.Equal(t, "Multiple properties found matching script", problems[i].Message())
		assert.Equal(t, validations.SeverityError, problems[i].Severity)
		assert.Equal(t, start, problems[i].Start)
		assert.Equal(t, start+6, problems[i].End)
	}
}

func TestFirstProperty(t *testing.T) {
	problems := validate(t, `{"firstProperty": ["task"], "properties": {"task": {}, "inputs": {}}}`, "inputs: {}\ntask: x\n")
	require.Len(t, problems, 1)
	assert.Equal(t, "The first property must be task", problems[0].Message())
	assert.Equal(t, validations.SeverityError, problems[0].Severity)
	assert.Equal(t, 0, problems[0].Start)
	assert.Equal(t, 10, problems[0].End)

	problems = validate(t, `{"firstProperty": ["task", "script"]}`, "inputs: {}\n")
	assert.Equal(t, []string{"The first property must be one of: task, script"}, messages(problems))

	assert.Empty(t, validate(t, `{"firstProperty": ["task"]}`, "task: x\ninputs: {}\n"))
}

const stepAlternatives = `{"oneOf": [
	{"firstProperty": ["script"], "properties": {"script": {"type": "string"}, "name": {}}, "additionalProperties": false},
	{"firstProperty": ["bash"], "properties": {"bash": {"type": "string"}, "name": {}}, "additionalProperties": false}
]}`

func TestAlternativesNarrowedByFirstProperty(t *testing.T) {
	assert.Empty(t, validate(t, stepAlternatives, "script: x\nname: y\n"))

	problems := validate(t, stepAlternatives, "bash: x\nfoo: 1\n")
	require.Len(t, problems, 1)
	assert.Equal(t, "Unexpected property foo", problems[0].Message())
	assert.Equal(t, 8, problems[0].Start)
	assert.Equal(t, 11, problems[0].End)
}

func TestOneOfMultipleMatches(t *testing.T) {
	schema := `{"oneOf": [{"type": "object"}, {"properties": {"a": {}}}]}`

	problems := validate(t, schema, "a: 1\n")
	require.Len(t, problems, 1)
	assert.Equal(t, "Matches multiple schemas when only one must validate.", problems[0].Message())
	assert.Equal(t, 0, problems[0].Start)
	assert.Equal(t, 1, problems[0].End)

	kubernetes := validations.Problems(parseRoot(t, "a: 1\n"), mustSchema(t, schema), validations.Context{IsKubernetes: true})
	assert.Empty(t, kubernetes)
}

func TestEnum(t *testing.T) {
	schema := `{"properties": {
		"pool": {"enum": ["ubuntu", "windows"]},
		"image": {"enum": ["ubuntu"], "ignoreCase": "value"},
		"text": {"enum": ["1", "2"]},
		"count": {"enum": [1, 2]},
		"flag": {"enum": [false]}
	}}`

	assert.Empty(t, validate(t, schema, "pool: ubuntu\nimage: UBUNTU\ntext: 1\ncount: 2\nflag: false\n"))

	problems := validate(t, schema, "pool: mac\ncount: 3\n")
	require.Len(t, problems, 2)
	assert.Equal(t, `Value is not accepted. Valid values: "ubuntu", "windows".`, problems[0].Message())
	assert.Equal(t, validations.CodeEnumValueMismatch, problems[0].Code)
	assert.Equal(t, `Value is not accepted. Valid values: 1, 2.`, problems[1].Message())
}

func TestEnumValuesMergedAcrossAlternatives(t *testing.T) {
	problems := validate(t, `{"properties": {"x": {"anyOf": [{"enum": ["a"]}, {"enum": ["b"]}]}}}`, "x: c\n")
	assert.Equal(t, []string{`Value is not accepted. Valid values: "a", "b".`}, messages(problems))

	problems = validate(t, `{"properties": {"trigger": {"oneOf": [{"enum": ["none"]}, {"enum": ["main", "develop"]}]}}}`, "trigger: other\n")
	require.Len(t, problems, 1)
	assert.Equal(t, `Value is not accepted. Valid values: "none", "main", "develop".`, problems[0].Message())
	assert.Equal(t, 9, problems[0].Start)
	assert.Equal(t, 14, problems[0].End)
}

func TestDeprecationMessageOnProperty(t *testing.T) {
	problems := validate(t, `{"properties": {"old": {"deprecationMessage": "Use name"}}}`, "name: x\nold: 1\n")

	require.Len(t, problems, 1)
	assert.Equal(t, "Use name", problems[0].Message())
	assert.Equal(t, validations.SeverityWarning, problems[0].Severity)
	assert.Equal(t, 8, problems[0].Start)
	assert.Equal(t, 14, problems[0].End)
}

func TestNotInvertsFacts(t *testing.T) {
	root := parseRoot(t, "x: s\n")
	schema := mustSchema(t, `{"properties": {"x": {"not": {"type": "string"}}}}`)

	problems := validations.Problems(root, schema, validations.Context{})
	assert.Equal(t, []string{"Matches a schema that is not allowed."}, messages(problems))

	value := root.(*yamlast.Object).Properties[0].Value
	var inverted []validations.ApplicableSchema
	for _, fact := range validations.MatchingSchemas(root, schema, validations.Context{}, -1, nil) {
		if fact.Node == value && fact.Inverted {
			inverted = append(inverted, fact)
		}
	}
	require.Len(t, inverted, 1)
	assert.True(t, inverted[0].Schema.Type.Has(jsonschema.TypeString))
}

func TestNumberConstraints(t *testing.T) {
	schema := `{"properties": {"n": {"minimum": 5, "exclusiveMaximum": 10, "multipleOf": 2}}}`

	assert.Equal(t, []string{"Value is not divisible by 2.", "Value is below the minimum of 5."}, messages(validate(t, schema, "n: 3\n")))
	assert.Equal(t, []string{"Value is above the exclusive maximum of 10."}, messages(validate(t, schema, "n: 10\n")))
	assert.Empty(t, validate(t, schema, "n: 8\n"))
}

func TestStringConstraints(t *testing.T) {
	schema := `{"properties": {"s": {"minLength": 3, "pattern": "^[a-z]+$", "patternErrorMessage": "lowercase only"}}}`

	assert.Equal(t, []string{"String is shorter than the minimum length of 3.", "lowercase only"}, messages(validate(t, schema, "s: AB\n")))
	assert.Empty(t, validate(t, schema, "s: abc\n"))

	// a number stands in for a string
	numeric := `{"properties": {"s": {"type": "string", "maxLength": 2}}}`
	assert.Equal(t, []string{"String is longer than the maximum length of 2."}, messages(validate(t, numeric, "s: 1234\n")))
}

func TestArrayConstraints(t *testing.T) {
	schema := `{"properties": {"a": {"items": [{"type": "string"}], "additionalItems": false, "maxItems": 1, "uniqueItems": true}}}`

	assert.Equal(t, []string{
		"Array has too many items according to schema. Expected 1 or fewer.",
		"Array has too many items. Expected 1 or fewer.",
		"Array has duplicate items.",
	}, messages(validate(t, schema, "a: [x, x]\n")))

	assert.Equal(t, []string{"Array has too few items. Expected 2 or more."},
		messages(validate(t, `{"properties": {"a": {"minItems": 2}}}`, "a: [1]\n")))
}

func TestObjectConstraints(t *testing.T) {
	schema := `{"maxProperties": 1, "dependencies": {"a": ["b"]}}`
	assert.Equal(t, []string{
		"Object has more properties than limit of 1.",
		"Object is missing property b required by property a.",
	}, messages(validate(t, schema, "a: 1\nc: 2\n")))

	assert.Equal(t, []string{"Object has fewer properties than the required number of 2"},
		messages(validate(t, `{"minProperties": 2}`, "a: 1\n")))
}

func TestMergeKeys(t *testing.T) {
	schema := `{"properties": {
		"base": {},
		"use": {"required": ["x"], "properties": {"x": {"type": "integer"}, "y": {}}, "additionalProperties": false}
	}}`
	assert.Empty(t, validate(t, schema, "base: &b\n  x: 1\nuse:\n  <<: *b\n  y: 2\n"))

	problems := validate(t, `{"properties": {"a": {}, "use": {"properties": {"x": {}}}}}`, "a: &a {x: 1}\nuse:\n  <<: *a\n  <<: *a\n")
	require.Len(t, problems, 1)
	assert.Equal(t, "Multiple merge keys are not allowed at the same level", problems[0].Message())
	assert.Equal(t, validations.SeverityError, problems[0].Severity)
}

func TestMergeKeyWithSiblingExpressions(t *testing.T) {
	schema := `{"properties": {
		"base": {},
		"use": {"properties": {"x": {}, "y": {}}, "additionalProperties": false}
	}}`
	data := `base: &b
  x: 1
use:
  <<: *b
  ${{ if eq(variables.a, 1) }}:
    y: 2
  ${{ if eq(variables.a, 2) }}:
    <<: *b
    y: 3
`
	assert.Empty(t, validate(t, schema, data))
}

const stepsSchema = `{"properties": {"steps": {"type": "array", "items": {
	"required": ["script"],
	"properties": {"script": {"type": "string"}, "displayName": {"type": "string"}},
	"additionalProperties": false
}}}}`

func TestCompileTimeEachSplicesItems(t *testing.T) {
	data := `steps:
- ${{ each s in parameters.steps }}:
  - script: a
  - script: b
- script: c
`
	assert.Empty(t, validate(t, stepsSchema, data))
}

func TestCompileTimeEachMissingIn(t *testing.T) {
	data := `steps:
- ${{ each s parameters.steps }}:
  - script: a
`
	problems := validate(t, stepsSchema, data)
	require.Len(t, problems, 1)
	assert.Equal(t, `Compile-time "each" expression is missing "in"`, problems[0].Message())
	assert.Equal(t, validations.SeverityError, problems[0].Severity)
	assert.Equal(t, 9, problems[0].Start)
	assert.Equal(t, 39, problems[0].End)
}

func TestCompileTimeIfMergesMapping(t *testing.T) {
	data := `steps:
- script: a
  ${{ if eq(1, 1) }}:
    displayName: x
`
	assert.Empty(t, validate(t, stepsSchema, data))

	unknown := `steps:
- script: a
  ${{ if eq(1, 1) }}:
    other: x
`
	assert.Equal(t, []string{"Unexpected property other"}, messages(validate(t, stepsSchema, unknown)))
}

func TestCompileTimeSequenceMustBeOnlyKey(t *testing.T) {
	data := `steps:
- script: a
  ${{ each s in p }}:
  - script: b
`
	assert.Equal(t, []string{"A compile-time expression producing a sequence must be the only key in its mapping"},
		messages(validate(t, stepsSchema, data)))
}

func TestValidationIsIdempotent(t *testing.T) {
	root := parseRoot(t, "steps:\n- ${{ each s in p }}:\n  - script: 1\n  - bash: x\n- script: c\n")
	schema := mustSchema(t, stepsSchema)

	first := messages(validations.Problems(root, schema, validations.Context{}))
	second := messages(validations.Problems(root, schema, validations.Context{}))
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

func TestCollectorFocus(t *testing.T) {
	root := parseRoot(t, "name: x\nsteps: \n")
	schema := mustSchema(t, `{"properties": {"name": {"type": "string"}, "steps": {"type": "array"}}}`)

	stepsValue := root.(*yamlast.Object).Properties[1].Value
	facts := validations.MatchingSchemas(root, schema, validations.Context{}, stepsValue.Start(), nil)

	var nodes []yamlast.Node
	for _, fact := range facts {
		nodes = append(nodes, fact.Node)
	}
	assert.Contains(t, nodes, stepsValue)
	assert.Contains(t, nodes, root)
	assert.NotContains(t, nodes, root.(*yamlast.Object).Properties[0].Value)
}
