// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package validations

// ValidationResult accumulates the problems and match statistics of one
// validate call. Alternatives are ranked by comparing their results.
type ValidationResult struct {
	Problems []Problem

	PropertiesMatches      int
	PropertiesValueMatches int
	PrimaryValueMatches    int

	EnumValueMatch bool
	EnumValues     []interface{}
}

func NewValidationResult() *ValidationResult {
	return &ValidationResult{}
}

func (r *ValidationResult) HasProblems() bool {
	return len(r.Problems) > 0
}

func (r *ValidationResult) add(p Problem) {
	r.Problems = append(r.Problems, p)
}

// Merge takes over the problems of other.
func (r *ValidationResult) Merge(other *ValidationResult) {
	r.Problems = append(r.Problems, other.Problems...)
}

// MergeEnumValues unions the enum values of two failing enum checks and
// re-renders this result's enum mismatch messages over the union.
func (r *ValidationResult) MergeEnumValues(other *ValidationResult) {
	if r.EnumValueMatch || other.EnumValueMatch || r.EnumValues == nil || other.EnumValues == nil {
		return
	}
	values := make([]interface{}, 0, len(r.EnumValues)+len(other.EnumValues))
	values = append(values, r.EnumValues...)
	values = append(values, other.EnumValues...)
	r.EnumValues = values

	for i, p := range r.Problems {
		if p.Code == CodeEnumValueMismatch && !p.customized {
			r.Problems[i].message = newMessage(func() string { return enumMismatchMessage(values) })
		}
	}
}

// MergePropertyMatch merges the result of validating one property value (or
// array item) and updates the match statistics.
func (r *ValidationResult) MergePropertyMatch(prop *ValidationResult) {
	r.Merge(prop)
	r.PropertiesMatches++
	if prop.EnumValueMatch || !r.HasProblems() && prop.PropertiesMatches > 0 {
		r.PropertiesValueMatches++
	}
	if prop.EnumValueMatch && len(prop.EnumValues) == 1 {
		r.PrimaryValueMatches++
	}
}

// ProblemDepths counts problems per depth; index 0 holds the count of
// problems found at the root node.
func (r *ValidationResult) ProblemDepths() []int {
	var depths []int
	for _, p := range r.Problems {
		for len(depths) <= p.Depth {
			depths = append(depths, 0)
		}
		depths[p.Depth]++
	}
	return depths
}

// CompareGeneric ranks r against other; positive means r is the better match.
func (r *ValidationResult) CompareGeneric(other *ValidationResult) int {
	if r.HasProblems() != other.HasProblems() {
		if r.HasProblems() {
			return -1
		}
		return 1
	}
	if cmp := compareDepths(r.ProblemDepths(), other.ProblemDepths()); cmp != 0 {
		return cmp
	}
	if r.EnumValueMatch != other.EnumValueMatch {
		if other.EnumValueMatch {
			return -1
		}
		return 1
	}
	if r.PropertiesValueMatches != other.PropertiesValueMatches {
		return r.PropertiesValueMatches - other.PropertiesValueMatches
	}
	if r.PrimaryValueMatches != other.PrimaryValueMatches {
		return r.PrimaryValueMatches - other.PrimaryValueMatches
	}
	return r.PropertiesMatches - other.PropertiesMatches
}

// CompareKubernetes ranks by property matches first, which suits schemas
// whose alternatives differ mostly by the set of properties they declare.
func (r *ValidationResult) CompareKubernetes(other *ValidationResult) int {
	if r.PropertiesMatches != other.PropertiesMatches {
		return r.PropertiesMatches - other.PropertiesMatches
	}
	if r.EnumValueMatch != other.EnumValueMatch {
		if other.EnumValueMatch {
			return -1
		}
		return 1
	}
	if r.PrimaryValueMatches != other.PrimaryValueMatches {
		return r.PrimaryValueMatches - other.PrimaryValueMatches
	}
	if r.PropertiesValueMatches != other.PropertiesValueMatches {
		return r.PropertiesValueMatches - other.PropertiesValueMatches
	}
	if r.HasProblems() != other.HasProblems() {
		if r.HasProblems() {
			return -1
		}
		return 1
	}
	return 0
}

// compareDepths prefers fewer problems at the shallowest depth where the two
// counts differ.
func compareDepths(a, b []int) int {
	for i := 0; i < len(a) || i < len(b); i++ {
		var countA, countB int
		if i < len(a) {
			countA = a[i]
		}
		if i < len(b) {
			countB = b[i]
		}
		if countA != countB {
			return countB - countA
		}
	}
	return 0
}
