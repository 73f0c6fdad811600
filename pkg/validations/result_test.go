// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package validations

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func resultWithDepths(depths ...int) *ValidationResult {
	r := NewValidationResult()
	for _, d := range depths {
		r.add(Problem{Depth: d, Severity: SeverityWarning, message: staticMessage("x")})
	}
	return r
}

func TestProblemDepths(t *testing.T) {
	assert.Nil(t, resultWithDepths().ProblemDepths())
	assert.Equal(t, []int{0, 2, 0, 1}, resultWithDepths(1, 3, 1).ProblemDepths())
}

func TestCompareGenericPrefersDeeperProblems(t *testing.T) {
	deep := resultWithDepths(3)
	shallow := resultWithDepths(1)

	assert.Greater(t, deep.CompareGeneric(shallow), 0)
	assert.Less(t, shallow.CompareGeneric(deep), 0)
	assert.Greater(t, resultWithDepths().CompareGeneric(deep), 0)
}

func TestCompareGenericOrder(t *testing.T) {
	a, b := NewValidationResult(), NewValidationResult()
	a.EnumValueMatch = true
	b.PropertiesValueMatches = 5
	assert.Greater(t, a.CompareGeneric(b), 0)

	a, b = NewValidationResult(), NewValidationResult()
	a.PropertiesValueMatches = 1
	b.PrimaryValueMatches = 3
	b.PropertiesMatches = 3
	assert.Greater(t, a.CompareGeneric(b), 0)

	a, b = NewValidationResult(), NewValidationResult()
	a.PropertiesMatches = 2
	b.PropertiesMatches = 1
	assert.Greater(t, a.CompareGeneric(b), 0)
	assert.Equal(t, 0, a.CompareGeneric(a))
}

func TestCompareKubernetesOrder(t *testing.T) {
	withProblems := resultWithDepths(0)
	withProblems.PropertiesMatches = 3
	clean := NewValidationResult()
	clean.PropertiesMatches = 2

	assert.Greater(t, withProblems.CompareKubernetes(clean), 0)

	clean.PropertiesMatches = 3
	assert.Less(t, withProblems.CompareKubernetes(clean), 0)
}

func TestMergePropertyMatch(t *testing.T) {
	parent := NewValidationResult()

	enumMatch := NewValidationResult()
	enumMatch.EnumValueMatch = true
	enumMatch.EnumValues = []interface{}{"a"}
	parent.MergePropertyMatch(enumMatch)

	assert.Equal(t, 1, parent.PropertiesMatches)
	assert.Equal(t, 1, parent.PropertiesValueMatches)
	assert.Equal(t, 1, parent.PrimaryValueMatches)

	nested := NewValidationResult()
	nested.PropertiesMatches = 2
	parent.MergePropertyMatch(nested)
	assert.Equal(t, 2, parent.PropertiesMatches)
	assert.Equal(t, 2, parent.PropertiesValueMatches)

	failing := resultWithDepths(1)
	failing.PropertiesMatches = 1
	parent.MergePropertyMatch(failing)
	assert.Equal(t, 3, parent.PropertiesMatches)
	assert.Equal(t, 2, parent.PropertiesValueMatches)
	assert.Len(t, parent.Problems, 1)
}

func TestMergeEnumValuesRerendersMessage(t *testing.T) {
	a := NewValidationResult()
	a.EnumValues = []interface{}{"x"}
	a.add(Problem{Code: CodeEnumValueMismatch, message: newMessage(func() string { return enumMismatchMessage(a.EnumValues) })})

	b := NewValidationResult()
	b.EnumValues = []interface{}{int64(1)}

	a.MergeEnumValues(b)
	assert.Equal(t, []interface{}{"x", int64(1)}, a.EnumValues)
	assert.Equal(t, `Value is not accepted. Valid values: "x", 1.`, a.Problems[0].Message())
}
