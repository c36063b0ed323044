// Package i18n localizes learner-facing messages.
//
// Message keys are the English texts themselves; translations live in the
// golang.org/x/text default catalog and are registered at init time.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Supported locales.
const (
	LocaleEnglish    = "en"
	LocalePortuguese = "pt-BR"
)

// Tag resolves a locale string to a supported language tag.
// Anything that is not Portuguese falls back to English.
func Tag(locale string) language.Tag {
	l := strings.ToLower(strings.TrimSpace(locale))
	if strings.HasPrefix(l, "pt") {
		return language.BrazilianPortuguese
	}
	return language.English
}

// Printer returns a message printer for the locale.
func Printer(locale string) *message.Printer {
	return message.NewPrinter(Tag(locale))
}

// Supported reports whether the locale has its own translation table.
func Supported(locale string) bool {
	l := strings.ToLower(strings.TrimSpace(locale))
	return l == "en" || strings.HasPrefix(l, "en-") || strings.HasPrefix(l, "pt")
}
