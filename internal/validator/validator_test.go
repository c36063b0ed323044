package validator

import (
	"reflect"
	"sync"
	"testing"

	"github.com/felixgeelhaar/pymastery/internal/domain"
	"github.com/felixgeelhaar/pymastery/internal/i18n"
)

func TestValidate_EmptyCode(t *testing.T) {
	v := New()

	for _, code := range []string{"", "   ", "\n\t\n"} {
		result := v.Validate(code, domain.Exercise{ID: ExerciseFirstVariable})
		if result.IsCorrect {
			t.Errorf("Validate(%q).IsCorrect = true; want false", code)
		}
		if result.Message != i18n.MsgEmptyCode {
			t.Errorf("Validate(%q).Message = %q; want %q", code, result.Message, i18n.MsgEmptyCode)
		}
		if len(result.Errors) != 1 || result.Errors[0] != i18n.MsgEmptyCodeError {
			t.Errorf("Validate(%q).Errors = %v; want [%q]", code, result.Errors, i18n.MsgEmptyCodeError)
		}
		if len(result.Suggestions) != 1 {
			t.Errorf("Validate(%q).Suggestions = %v; want one suggestion", code, result.Suggestions)
		}
	}
}

func TestValidate_FirstVariable(t *testing.T) {
	v := New()
	ex := domain.Exercise{ID: ExerciseFirstVariable}

	tests := []struct {
		name    string
		code    string
		correct bool
		message string
		err     string
	}{
		{
			name:    "complete",
			code:    "meu_nome = \"Ana\"\nprint(meu_nome)",
			correct: true,
			message: i18n.MsgVar01Success,
		},
		{
			name:    "single quotes",
			code:    "meu_nome = 'Ana'\nprint(meu_nome)",
			correct: true,
			message: i18n.MsgVar01Success,
		},
		{
			name:    "missing print",
			code:    `meu_nome = "Ana"`,
			message: i18n.MsgVar01Print,
			err:     i18n.MsgVar01PrintError,
		},
		{
			name:    "missing quotes",
			code:    "meu_nome = Ana\nprint(meu_nome)",
			message: i18n.MsgVar01Quotes,
			err:     i18n.MsgVar01QuotesError,
		},
		{
			name:    "wrong variable",
			code:    "nome = \"Ana\"\nprint(nome)",
			message: i18n.MsgVar01Missing,
			err:     i18n.MsgVar01MissingError,
		},
		{
			name:    "commented assignment ignored",
			code:    "# meu_nome = \"Ana\"\nprint(meu_nome)",
			message: i18n.MsgVar01Missing,
			err:     i18n.MsgVar01MissingError,
		},
		{
			// Only the first unmet requirement is reported.
			name:    "nothing right reports variable first",
			code:    "x = 1",
			message: i18n.MsgVar01Missing,
			err:     i18n.MsgVar01MissingError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.code, ex)
			if result.IsCorrect != tt.correct {
				t.Fatalf("IsCorrect = %v; want %v (message %q)", result.IsCorrect, tt.correct, result.Message)
			}
			if result.Message != tt.message {
				t.Errorf("Message = %q; want %q", result.Message, tt.message)
			}
			if tt.correct {
				if len(result.Errors) != 0 || len(result.Suggestions) != 0 {
					t.Errorf("correct result carries errors %v / suggestions %v", result.Errors, result.Suggestions)
				}
				return
			}
			if len(result.Errors) != 1 || result.Errors[0] != tt.err {
				t.Errorf("Errors = %v; want [%q]", result.Errors, tt.err)
			}
			if len(result.Suggestions) != 1 {
				t.Errorf("Suggestions = %v; want exactly one", result.Suggestions)
			}
		})
	}
}

func TestValidate_AreaCalc(t *testing.T) {
	v := New()
	ex := domain.Exercise{ID: ExerciseAreaCalc}

	tests := []struct {
		name    string
		code    string
		correct bool
		message string
	}{
		{
			name:    "complete",
			code:    "largura = 10\naltura = 5\narea = largura * altura\nprint(area)",
			correct: true,
			message: i18n.MsgVar02Success,
		},
		{
			name:    "missing altura",
			code:    "largura = 10\narea = largura * 5\nprint(area)",
			message: i18n.MsgVar02Dimensions,
		},
		{
			name:    "area without multiplication",
			code:    "largura = 10\naltura = 5\narea = largura + altura\nprint(area)",
			message: i18n.MsgVar02Area,
		},
		{
			name:    "missing print",
			code:    "largura = 10\naltura = 5\narea = largura * altura",
			message: i18n.MsgVar02Print,
		},
		{
			name:    "dimensions reported before print",
			code:    "area = 50",
			message: i18n.MsgVar02Dimensions,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.Validate(tt.code, ex)
			if result.IsCorrect != tt.correct {
				t.Fatalf("IsCorrect = %v; want %v (message %q)", result.IsCorrect, tt.correct, result.Message)
			}
			if result.Message != tt.message {
				t.Errorf("Message = %q; want %q", result.Message, tt.message)
			}
			if !tt.correct && len(result.Errors) != 1 {
				t.Errorf("Errors = %v; want exactly one", result.Errors)
			}
		})
	}
}

func TestValidate_Generic(t *testing.T) {
	v := New()

	tests := []struct {
		name     string
		code     string
		expected string
		correct  bool
		errors   []string
	}{
		{
			name:     "balanced with expected token",
			code:     "x = 5\nprint(x)",
			expected: "print",
			correct:  true,
		},
		{
			name:    "no expected code",
			code:    "print((1 + 2))",
			correct: true,
		},
		{
			name:     "expected code is case insensitive",
			code:     "PRINT(1)",
			expected: "print",
			correct:  true,
		},
		{
			name:   "unmatched closing paren",
			code:   "print(1))(",
			errors: []string{i18n.MsgUnbalancedParens},
		},
		{
			name:   "unclosed paren",
			code:   "print((1)",
			errors: []string{i18n.MsgUnclosedParens},
		},
		{
			name:   "two space indent",
			code:   "if x:\n  print(x)",
			errors: []string{"Line 2: incorrect indentation"},
		},
		{
			name:    "four space indent",
			code:    "if x:\n    print(x)",
			correct: true,
		},
		{
			name:     "all findings reported",
			code:     "x = (1\n y = 2",
			expected: "for",
			errors: []string{
				i18n.MsgUnclosedParens,
				"Line 2: incorrect indentation",
				i18n.MsgExpectedCode,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ex := domain.Exercise{ID: "custom-exercise", ExpectedCode: tt.expected}
			result := v.Validate(tt.code, ex)
			if result.IsCorrect != tt.correct {
				t.Fatalf("IsCorrect = %v; want %v (errors %v)", result.IsCorrect, tt.correct, result.Errors)
			}
			if tt.correct {
				if result.Message != i18n.MsgGenericSuccess {
					t.Errorf("Message = %q; want %q", result.Message, i18n.MsgGenericSuccess)
				}
				if len(result.Errors) != 0 {
					t.Errorf("Errors = %v; want none", result.Errors)
				}
				return
			}
			if result.Message != i18n.MsgGenericProblems {
				t.Errorf("Message = %q; want %q", result.Message, i18n.MsgGenericProblems)
			}
			if !reflect.DeepEqual(result.Errors, tt.errors) {
				t.Errorf("Errors = %v; want %v", result.Errors, tt.errors)
			}
			if len(result.Suggestions) != len(result.Errors) {
				t.Errorf("len(Suggestions) = %d; want %d", len(result.Suggestions), len(result.Errors))
			}
		})
	}
}

func TestValidate_ExpectedCodeSuggestion(t *testing.T) {
	result := New().Validate("x = 1", domain.Exercise{ID: "other", ExpectedCode: "area ="})
	want := "Try including: area ="
	if len(result.Suggestions) != 1 || result.Suggestions[0] != want {
		t.Errorf("Suggestions = %v; want [%q]", result.Suggestions, want)
	}
}

func TestValidate_Portuguese(t *testing.T) {
	v := New(WithLocale(i18n.LocalePortuguese))

	result := v.Validate("", domain.Exercise{})
	if result.Message != "Escreva algum código para continuar!" {
		t.Errorf("Message = %q; want Portuguese empty-code message", result.Message)
	}

	result = v.Validate("if x:\n  pass", domain.Exercise{ID: "other"})
	if len(result.Errors) != 1 || result.Errors[0] != "Linha 2: Indentação incorreta" {
		t.Errorf("Errors = %v; want Portuguese indentation error", result.Errors)
	}
}

func TestValidate_Idempotent(t *testing.T) {
	v := New()
	inputs := []struct {
		code string
		ex   domain.Exercise
	}{
		{"meu_nome = \"Ana\"\nprint(meu_nome)", domain.Exercise{ID: ExerciseFirstVariable}},
		{"largura = 1", domain.Exercise{ID: ExerciseAreaCalc}},
		{"print((1)", domain.Exercise{ID: "x", ExpectedCode: "y"}},
	}

	for _, in := range inputs {
		first := v.Validate(in.code, in.ex)
		second := v.Validate(in.code, in.ex)
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Validate(%q) not idempotent: %+v vs %+v", in.code, first, second)
		}
	}
}

func TestValidator_Register(t *testing.T) {
	v := New()
	v.Register("loops-exercise-01", Routine{
		Requirements: []Requirement{{
			Name:       "for",
			Met:        AnyLineContains("for", "in"),
			Message:    "need a loop",
			Error:      "no loop",
			Suggestion: "use for",
		}},
		Success: "looped",
	})

	ex := domain.Exercise{ID: "loops-exercise-01"}
	if got := v.Validate("x = 1", ex); got.IsCorrect || got.Message != "need a loop" {
		t.Errorf("Validate(no loop) = %+v; want failing routine result", got)
	}
	if got := v.Validate("for i in range(3):\n    print(i)", ex); !got.IsCorrect || got.Message != "looped" {
		t.Errorf("Validate(loop) = %+v; want success", got)
	}

	ids := v.Routines()
	want := []string{"loops-exercise-01", ExerciseFirstVariable, ExerciseAreaCalc}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("Routines() = %v; want %v", ids, want)
	}
}

func TestValidator_ConcurrentUse(t *testing.T) {
	v := New()
	ex := domain.Exercise{ID: ExerciseFirstVariable}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !v.Validate("meu_nome = 'a'\nprint(meu_nome)", ex).IsCorrect {
				t.Error("concurrent Validate returned incorrect result")
			}
		}()
	}
	wg.Wait()
}

func TestCodeLines(t *testing.T) {
	got := codeLines("  a = 1  \n\n# comment\n   # indented comment\nprint(a)")
	want := []string{"a = 1", "print(a)"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("codeLines() = %v; want %v", got, want)
	}
}
