package parser

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes an indented textual rendering of program to w: one line per
// expression, nested scopes indented under their ScopeExpr line. This is the
// hand-off format for whatever consumes a Program next; there is no
// structured/binary encoding because code generation itself is out of
// scope.
func Dump(w io.Writer, program *Program) error {
	return dumpProgram(w, program, 0)
}

func dumpProgram(w io.Writer, program *Program, depth int) error {
	for _, stmt := range program.Statements {
		if err := dumpStatement(w, stmt, depth); err != nil {
			return err
		}
	}
	return nil
}

func dumpStatement(w io.Writer, stmt Statement, depth int) error {
	indent := strings.Repeat("  ", depth)
	for _, expr := range stmt.Expressions {
		switch e := expr.(type) {
		case ScopeExpr:
			if _, err := fmt.Fprintf(w, "%sScope(%s)\n", indent, e.Scope.Kind); err != nil {
				return err
			}
			if e.Scope.Signature != nil {
				if _, err := fmt.Fprintf(w, "%s  signature:\n", indent); err != nil {
					return err
				}
				if err := dumpStatement(w, *e.Scope.Signature, depth+2); err != nil {
					return err
				}
			}
			if err := dumpProgram(w, &e.Scope.Body, depth+1); err != nil {
				return err
			}
		default:
			if _, err := fmt.Fprintf(w, "%s%s\n", indent, dumpExpression(expr)); err != nil {
				return err
			}
		}
	}
	return nil
}

func dumpExpression(expr Expression) string {
	switch e := expr.(type) {
	case IntLit:
		return fmt.Sprintf("IntLit(%d)", int(e))
	case StringLit:
		return fmt.Sprintf("StringLit(%q)", string(e))
	case VariableRef:
		return fmt.Sprintf("Variable(id=%d, kind=%s)", e.ID, e.Kind)
	case ScopeExpr:
		return fmt.Sprintf("Scope(%s)", e.Scope.Kind)
	default:
		return fmt.Sprintf("%v", expr)
	}
}
