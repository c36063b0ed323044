package runner

import (
	"regexp"
	"strings"
)

type stmtKind int

const (
	stmtNone stmtKind = iota
	stmtAssign
	stmtPrint
)

// statement is one recognized line: either name = expr or print(arg).
type statement struct {
	kind stmtKind
	name string
	expr string
}

var printCall = regexp.MustCompile(`print\(([^)]+)\)`)

// parseStatement classifies a trimmed line. Lines matching neither shape
// yield stmtNone.
func parseStatement(line string) statement {
	if strings.Contains(line, "=") && !strings.Contains(line, "==") && !strings.Contains(line, "print") {
		name, expr, _ := strings.Cut(line, "=")
		return statement{
			kind: stmtAssign,
			name: strings.TrimSpace(name),
			expr: strings.TrimSpace(expr),
		}
	}

	if strings.Contains(line, "print(") {
		m := printCall.FindStringSubmatch(line)
		if m == nil {
			return statement{}
		}
		return statement{kind: stmtPrint, expr: strings.TrimSpace(m[1])}
	}

	return statement{}
}

// evalExpr interprets the right-hand side of an assignment. An empty
// right-hand side assigns 0. The second return is false when the
// expression is not a recognized shape.
func evalExpr(expr string, vars scope) (Value, bool) {
	if expr == "" {
		return NumberValue(0), true
	}
	if s, ok := unquote(expr); ok {
		return StringValue(s), true
	}
	if f, ok := parseNumber(expr); ok {
		return NumberValue(f), true
	}
	if strings.Contains(expr, "*") {
		operands := strings.Split(expr, "*")
		if len(operands) != 2 {
			return Value{}, false
		}
		a := vars.operand(strings.TrimSpace(operands[0]))
		b := vars.operand(strings.TrimSpace(operands[1]))
		return NumberValue(a * b), true
	}
	return Value{}, false
}

// renderArg resolves a print argument to its output text.
func renderArg(arg string, vars scope) string {
	if v, ok := vars[arg]; ok {
		return v.String()
	}
	if s, ok := unquote(arg); ok {
		return s
	}
	return arg
}

func unquote(s string) (string, bool) {
	if len(s) < 2 {
		return "", false
	}
	q := s[0]
	if (q != '"' && q != '\'') || s[len(s)-1] != q {
		return "", false
	}
	return s[1 : len(s)-1], true
}
