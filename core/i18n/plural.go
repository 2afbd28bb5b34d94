package i18n

import (
	"golang.org/x/text/feature/plural"
	"golang.org/x/text/language"
)

// CLDR plural categories used as translation sub-keys.
const (
	PluralZero  = "zero"
	PluralOne   = "one"
	PluralTwo   = "two"
	PluralFew   = "few"
	PluralMany  = "many"
	PluralOther = "other"
)

// pluralForm returns the CLDR cardinal category of the integer n in lang.
func (i *I18n) pluralForm(lang string, n int) string {
	tag, ok := i.tags[lang]
	if !ok {
		tag = language.Make(lang)
	}
	if n < 0 {
		n = -n
	}

	switch plural.Cardinal.MatchPlural(tag, n, 0, 0, 0, 0) {
	case plural.Zero:
		return PluralZero
	case plural.One:
		return PluralOne
	case plural.Two:
		return PluralTwo
	case plural.Few:
		return PluralFew
	case plural.Many:
		return PluralMany
	default:
		return PluralOther
	}
}
