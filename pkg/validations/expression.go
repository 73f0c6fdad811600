// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package validations

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	expressionStart = "${{"
	expressionEnd   = "}}"
)

var identifierRegexp = regexp.MustCompile(`^[A-Za-z_]\w*$`)

// checkCompileTimeExpression verifies the shape of a "${{ if ... }}" or
// "${{ each x in ... }}" key and returns the first failure.
func checkCompileTimeExpression(key string) (string, bool) {
	if !strings.HasSuffix(key, expressionEnd) {
		return fmt.Sprintf("Compile-time expression key \"%s\" must end with \"}}\"", key), true
	}

	inner := strings.TrimSpace(key[len(expressionStart) : len(key)-len(expressionEnd)])
	if inner == "" {
		return "Compile-time expression must not be empty", true
	}

	keyword := expressionKeyword(inner)
	if keyword != "if" && keyword != "each" {
		return "Compile-time expression must start with \"if\" or \"each\"", true
	}

	condition := strings.TrimSpace(inner[len(keyword):])
	if condition == "" {
		return fmt.Sprintf("Compile-time expression \"%s\" requires a condition", keyword), true
	}

	if keyword == "each" {
		tokens := strings.Fields(condition)
		if !containsString(tokens, "in") {
			return "Compile-time \"each\" expression is missing \"in\"", true
		}
		if len(tokens) != 3 || tokens[1] != "in" || !identifierRegexp.MatchString(tokens[0]) {
			return "Compile-time \"each\" expression must have the form \"<identifier> in <expression>\"", true
		}
	}
	return "", false
}

// expressionKeyword returns the leading run of letters.
func expressionKeyword(expr string) string {
	i := 0
	for i < len(expr) && (expr[i] >= 'a' && expr[i] <= 'z' || expr[i] >= 'A' && expr[i] <= 'Z') {
		i++
	}
	return expr[:i]
}

func containsString(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
