// Package runner produces simulated program output for submitted Python
// text. It is not an interpreter: it recognizes assignments of string,
// number and two-operand product values, and single-argument print calls.
// Anything else is skipped without error.
package runner

import (
	"fmt"
	"strings"

	"golang.org/x/text/message"

	"github.com/felixgeelhaar/pymastery/internal/domain"
	"github.com/felixgeelhaar/pymastery/internal/i18n"
)

// Engine simulates execution. It keeps no state between calls.
type Engine struct {
	printer *message.Printer
}

// NewEngine creates an engine whose placeholder and error texts use locale.
func NewEngine(locale string) *Engine {
	return &Engine{printer: i18n.Printer(locale)}
}

// Simulate runs code through the engine. Internal faults are reported in
// the result's Error field with empty output.
func (e *Engine) Simulate(code string) (result domain.ExecutionResult) {
	defer func() {
		if r := recover(); r != nil {
			result = domain.ExecutionResult{
				Output: "",
				Error:  e.printer.Sprintf(i18n.MsgExecutionError, e.faultText(r)),
			}
		}
	}()

	output := e.simulate(code)
	if output == "" {
		output = e.printer.Sprintf(i18n.MsgExecuted)
	}
	return domain.ExecutionResult{Output: output}
}

func (e *Engine) simulate(code string) string {
	vars := make(scope)
	var out []string

	for _, raw := range strings.Split(code, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		stmt := parseStatement(line)
		switch stmt.kind {
		case stmtAssign:
			if v, ok := evalExpr(stmt.expr, vars); ok {
				vars[stmt.name] = v
			}
		case stmtPrint:
			out = append(out, renderArg(stmt.expr, vars))
		}
	}

	return strings.Join(out, "\n")
}

func (e *Engine) faultText(r any) string {
	switch v := r.(type) {
	case error:
		return v.Error()
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	default:
		return e.printer.Sprintf(i18n.MsgUnknownError)
	}
}

var defaultEngine = NewEngine(i18n.LocaleEnglish)

// Simulate runs code through an English engine.
func Simulate(code string) domain.ExecutionResult {
	return defaultEngine.Simulate(code)
}
