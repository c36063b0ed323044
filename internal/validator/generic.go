package validator

import (
	"strings"

	"golang.org/x/text/message"

	"github.com/felixgeelhaar/pymastery/internal/domain"
	"github.com/felixgeelhaar/pymastery/internal/i18n"
)

// genericCheck runs exercise-independent sanity checks. Unlike exercise
// routines, every finding is collected and reported together.
func genericCheck(code string, exercise domain.Exercise, p *message.Printer) domain.ValidationResult {
	var errs, suggestions []string

	switch parenBalance(code) {
	case parensUnbalanced:
		errs = append(errs, p.Sprintf(i18n.MsgUnbalancedParens))
		suggestions = append(suggestions, p.Sprintf(i18n.MsgUnbalancedParensSuggestion))
	case parensUnclosed:
		errs = append(errs, p.Sprintf(i18n.MsgUnclosedParens))
		suggestions = append(suggestions, p.Sprintf(i18n.MsgUnclosedParensSuggestion))
	}

	if line := firstMisindentedLine(code); line > 0 {
		errs = append(errs, p.Sprintf(i18n.MsgIndentation, line))
		suggestions = append(suggestions, p.Sprintf(i18n.MsgIndentationSuggestion))
	}

	if exercise.HasExpectedCode() {
		if !strings.Contains(strings.ToLower(code), strings.ToLower(exercise.ExpectedCode)) {
			errs = append(errs, p.Sprintf(i18n.MsgExpectedCode))
			suggestions = append(suggestions, p.Sprintf(i18n.MsgExpectedCodeSuggestion, exercise.ExpectedCode))
		}
	}

	if len(errs) > 0 {
		return domain.ValidationResult{
			IsCorrect:   false,
			Message:     p.Sprintf(i18n.MsgGenericProblems),
			Errors:      errs,
			Suggestions: suggestions,
		}
	}

	return domain.ValidationResult{
		IsCorrect: true,
		Message:   p.Sprintf(i18n.MsgGenericSuccess),
	}
}

type parenState int

const (
	parensBalanced parenState = iota
	parensUnbalanced
	parensUnclosed
)

// parenBalance scans the whole text with a running counter. A closing
// parenthesis without an opener stops the scan immediately.
func parenBalance(code string) parenState {
	depth := 0
	for _, r := range code {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		}
		if depth < 0 {
			return parensUnbalanced
		}
	}
	if depth > 0 {
		return parensUnclosed
	}
	return parensBalanced
}

// firstMisindentedLine returns the 1-based number of the first non-blank line
// indented with one to three spaces, or 0 when there is none. Tabs and
// nesting depth are not considered.
func firstMisindentedLine(code string) int {
	for i, line := range strings.Split(code, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, " ") && !strings.HasPrefix(line, "    ") {
			return i + 1
		}
	}
	return 0
}
