// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"strings"

	"carvel.dev/yamlls/pkg/filepos"
	"go.lsp.dev/protocol"
)

var severityNames = map[protocol.DiagnosticSeverity]string{
	protocol.DiagnosticSeverityError:       "ERROR",
	protocol.DiagnosticSeverityWarning:     "WARNING",
	protocol.DiagnosticSeverityInformation: "INFO",
	protocol.DiagnosticSeverityHint:        "HINT",
}

// FormatDiagnostic renders a diagnostic under the source line it points at,
// naming the file by name:
//
//	file.yml:3:5 | kind: Pod
//	             |
//	             | WARNING - Unexpected property kind
func FormatDiagnostic(name string, doc *filepos.TextDocument, diag protocol.Diagnostic) string {
	pos := filepos.NewPositionInFile(int(diag.Range.Start.Line)+1, name)
	pos.SetColumn(int(diag.Range.Start.Character) + 1)
	pos.SetLine(doc.Line(int(diag.Range.Start.Line)))
	position := pos.AsCompactString()
	leftColumnSize := len(position) + 1

	severity, found := severityNames[diag.Severity]
	if !found {
		severity = severityNames[protocol.DiagnosticSeverityError]
	}

	msg := "\n"
	msg += formatLine(leftColumnSize, position, pos.GetLine())
	msg += formatLine(leftColumnSize, "", "")
	for i, line := range strings.Split(diag.Message, "\n") {
		if i == 0 {
			line = severity + " - " + line
		}
		msg += formatLine(leftColumnSize, "", line)
	}
	return msg
}

func formatLine(leftColumnSize int, left, right string) string {
	if len(right) > 0 {
		right = " " + right
	}
	return fmt.Sprintf("%s%s|%s\n", left, strings.Repeat(" ", leftColumnSize-len(left)), right)
}

func countErrors(diagnostics []protocol.Diagnostic) int {
	var count int
	for _, diag := range diagnostics {
		if diag.Severity == protocol.DiagnosticSeverityError {
			count++
		}
	}
	return count
}
