// Package validator decides whether a learner's submission satisfies an
// exercise, using lexical checks over the submitted text.
//
// The checks are deliberately shallow: they look for required tokens with
// substring tests and never parse Python. False positives across line
// boundaries or inside strings and comments are accepted.
package validator

import (
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/message"

	"github.com/felixgeelhaar/pymastery/internal/domain"
	"github.com/felixgeelhaar/pymastery/internal/i18n"
)

// Validator dispatches submissions to exercise-specific routines, falling
// back to the generic syntax checks for exercises without one.
// It holds no per-call state and is safe for concurrent use.
type Validator struct {
	printer  *message.Printer
	mu       sync.RWMutex
	routines map[string]Routine
}

// Option configures a Validator.
type Option func(*Validator)

// WithLocale selects the language of result messages.
func WithLocale(locale string) Option {
	return func(v *Validator) {
		v.printer = i18n.Printer(locale)
	}
}

// WithRoutine registers an additional exercise routine.
func WithRoutine(exerciseID string, r Routine) Option {
	return func(v *Validator) {
		v.routines[exerciseID] = r
	}
}

// New creates a validator with the built-in exercise routines registered.
func New(opts ...Option) *Validator {
	v := &Validator{
		printer:  i18n.Printer(i18n.LocaleEnglish),
		routines: builtinRoutines(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Register adds or replaces the routine for an exercise id.
func (v *Validator) Register(exerciseID string, r Routine) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.routines[exerciseID] = r
}

// Routines returns the exercise ids with a dedicated routine, sorted.
func (v *Validator) Routines() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	ids := make([]string, 0, len(v.routines))
	for id := range v.routines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks code against the exercise. It always returns a result;
// unmet requirements are reported in the result, never as an error.
func (v *Validator) Validate(code string, exercise domain.Exercise) domain.ValidationResult {
	trimmed := strings.TrimSpace(code)
	if trimmed == "" {
		return domain.ValidationResult{
			IsCorrect:   false,
			Message:     v.printer.Sprintf(i18n.MsgEmptyCode),
			Errors:      []string{v.printer.Sprintf(i18n.MsgEmptyCodeError)},
			Suggestions: []string{v.printer.Sprintf(i18n.MsgEmptyCodeSuggestion)},
		}
	}

	v.mu.RLock()
	routine, ok := v.routines[exercise.ID]
	v.mu.RUnlock()

	if ok {
		return routine.run(codeLines(trimmed), v.printer)
	}
	return genericCheck(trimmed, exercise, v.printer)
}

// Validate checks code with a default English validator.
func Validate(code string, exercise domain.Exercise) domain.ValidationResult {
	return defaultValidator.Validate(code, exercise)
}

var defaultValidator = New()
