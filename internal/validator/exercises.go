package validator

import (
	"strings"

	"github.com/felixgeelhaar/pymastery/internal/i18n"
)

// Exercise ids with dedicated routines.
const (
	ExerciseFirstVariable = "variables-exercise-01"
	ExerciseAreaCalc      = "variables-exercise-02"
)

func builtinRoutines() map[string]Routine {
	return map[string]Routine{
		ExerciseFirstVariable: firstVariableRoutine(),
		ExerciseAreaCalc:      areaRoutine(),
	}
}

// firstVariableRoutine: assign a string to meu_nome and print it.
func firstVariableRoutine() Routine {
	return Routine{
		Requirements: []Requirement{
			{
				Name:       "variable",
				Met:        AnyLineContains("meu_nome", "="),
				Message:    i18n.MsgVar01Missing,
				Error:      i18n.MsgVar01MissingError,
				Suggestion: i18n.MsgVar01MissingSuggestion,
			},
			{
				Name:       "print",
				Met:        AnyLineContains("print", "meu_nome"),
				Message:    i18n.MsgVar01Print,
				Error:      i18n.MsgVar01PrintError,
				Suggestion: i18n.MsgVar01PrintSuggestion,
			},
			{
				Name:       "quotes",
				Met:        AnyLineContainsAny(`"`, "'"),
				Message:    i18n.MsgVar01Quotes,
				Error:      i18n.MsgVar01QuotesError,
				Suggestion: i18n.MsgVar01QuotesSuggestion,
			},
		},
		Success: i18n.MsgVar01Success,
	}
}

// areaRoutine: declare largura and altura, multiply them into area, print area.
func areaRoutine() Routine {
	return Routine{
		Requirements: []Requirement{
			{
				Name: "dimensions",
				Met: All(
					AnyLineContains("largura", "="),
					AnyLineContains("altura", "="),
				),
				Message:    i18n.MsgVar02Dimensions,
				Error:      i18n.MsgVar02DimensionsError,
				Suggestion: i18n.MsgVar02DimensionsSuggestion,
			},
			{
				Name:       "area",
				Met:        hasAreaProduct,
				Message:    i18n.MsgVar02Area,
				Error:      i18n.MsgVar02AreaError,
				Suggestion: i18n.MsgVar02AreaSuggestion,
			},
			{
				Name:       "print",
				Met:        AnyLineContains("print", "area"),
				Message:    i18n.MsgVar02Print,
				Error:      i18n.MsgVar02PrintError,
				Suggestion: i18n.MsgVar02PrintSuggestion,
			},
		},
		Success: i18n.MsgVar02Success,
	}
}

func hasAreaProduct(lines []string) bool {
	for _, line := range lines {
		if !containsAll(line, []string{"area", "=", "*"}) {
			continue
		}
		if strings.Contains(line, "largura") || strings.Contains(line, "altura") {
			return true
		}
	}
	return false
}
