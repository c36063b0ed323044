package validator

import (
	"strings"

	"golang.org/x/text/message"

	"github.com/felixgeelhaar/pymastery/internal/domain"
)

// Requirement is one lexical predicate of an exercise routine. Message,
// Error and Suggestion are message keys, localized when reported.
type Requirement struct {
	Name       string
	Met        func(lines []string) bool
	Message    string
	Error      string
	Suggestion string
}

// Routine is an ordered list of requirements. Only the first unmet
// requirement is reported, so order encodes priority.
type Routine struct {
	Requirements []Requirement
	Success      string
}

func (r Routine) run(lines []string, p *message.Printer) domain.ValidationResult {
	for _, req := range r.Requirements {
		if req.Met(lines) {
			continue
		}
		return domain.ValidationResult{
			IsCorrect:   false,
			Message:     p.Sprintf(req.Message),
			Errors:      []string{p.Sprintf(req.Error)},
			Suggestions: []string{p.Sprintf(req.Suggestion)},
		}
	}

	return domain.ValidationResult{
		IsCorrect: true,
		Message:   p.Sprintf(r.Success),
	}
}

// codeLines returns the trimmed, non-empty lines that are not comments.
func codeLines(code string) []string {
	var lines []string
	for _, line := range strings.Split(code, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// AnyLineContains returns a predicate satisfied when a single line contains
// every token.
func AnyLineContains(tokens ...string) func([]string) bool {
	return func(lines []string) bool {
		for _, line := range lines {
			if containsAll(line, tokens) {
				return true
			}
		}
		return false
	}
}

// AnyLineContainsAny returns a predicate satisfied when some line contains
// at least one of the tokens.
func AnyLineContainsAny(tokens ...string) func([]string) bool {
	return func(lines []string) bool {
		for _, line := range lines {
			for _, tok := range tokens {
				if strings.Contains(line, tok) {
					return true
				}
			}
		}
		return false
	}
}

// All combines predicates with logical AND.
func All(preds ...func([]string) bool) func([]string) bool {
	return func(lines []string) bool {
		for _, p := range preds {
			if !p(lines) {
				return false
			}
		}
		return true
	}
}

func containsAll(line string, tokens []string) bool {
	for _, tok := range tokens {
		if !strings.Contains(line, tok) {
			return false
		}
	}
	return true
}
