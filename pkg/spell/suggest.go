// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package spell

import (
	"strings"
)

// Suggest returns the candidate closest to word, or "" when none is close
// enough to be a likely misspelling. Comparison ignores case.
func Suggest(word string, candidates []string) string {
	word = strings.ToLower(word)

	best, bestDistance := "", -1
	for _, candidate := range candidates {
		distance := Distance(word, strings.ToLower(candidate))
		if bestDistance == -1 || distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}

	// allow roughly one edit per three characters
	if bestDistance == -1 || bestDistance > 1+len(word)/3 {
		return ""
	}
	return best
}

// Distance is the Levenshtein edit distance between a and b, counted in
// runes.
func Distance(a, b string) int {
	ra, rb := []rune(a), []rune(b)

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}
