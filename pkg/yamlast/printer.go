// Copyright 2024 The Carvel Authors.
// SPDX-License-Identifier: Apache-2.0

package yamlast

import (
	"bytes"
	"fmt"
	"io"
)

// Printer renders a node tree as indented text, one node per line with its
// offset span. Used for debugging output and tree comparisons in tests.
type Printer struct {
	writer io.Writer
}

func NewPrinter(writer io.Writer) Printer {
	return Printer{writer}
}

func (p Printer) Print(node Node) {
	fmt.Fprintf(p.writer, "%s", p.PrintStr(node))
}

func (p Printer) PrintStr(node Node) string {
	buf := new(bytes.Buffer)
	p.print(node, "", buf)
	return buf.String()
}

func (p Printer) print(node Node, indent string, writer io.Writer) {
	const indentLvl = "  "

	switch typed := node.(type) {
	case nil:
		fmt.Fprintf(writer, "%s<none>\n", indent)

	case *Object:
		fmt.Fprintf(writer, "%s%s: object\n", indent, p.spanStr(typed))
		for _, prop := range typed.Properties {
			p.print(prop, indent+indentLvl, writer)
		}

	case *Property:
		kind := "property"
		if typed.IsCompileTimeExpression() {
			kind = "expression"
		}
		fmt.Fprintf(writer, "%s%s: %s key=%s %s\n", indent, p.spanStr(typed), kind, typed.KeyValue(), p.spanStr(typed.Key))
		p.print(typed.Value, indent+indentLvl, writer)

	case *Array:
		fmt.Fprintf(writer, "%s%s: array\n", indent, p.spanStr(typed))
		for _, item := range typed.Items {
			p.print(item, indent+indentLvl, writer)
		}

	case *String:
		fmt.Fprintf(writer, "%s%s: string %q\n", indent, p.spanStr(typed), typed.Value)

	case *Number:
		kind := "float"
		if typed.IsInteger {
			kind = "int"
		}
		fmt.Fprintf(writer, "%s%s: %s %s\n", indent, p.spanStr(typed), kind, FormatNumber(typed.Value))

	case *Boolean:
		fmt.Fprintf(writer, "%s%s: boolean %t\n", indent, p.spanStr(typed), typed.Value)

	case *Null:
		fmt.Fprintf(writer, "%s%s: null\n", indent, p.spanStr(typed))

	default:
		panic(fmt.Sprintf("Unexpected node type %T", node))
	}
}

func (p Printer) spanStr(node Node) string {
	if node == nil {
		return "[?]"
	}
	return fmt.Sprintf("[%d,%d)", node.Start(), node.End())
}
