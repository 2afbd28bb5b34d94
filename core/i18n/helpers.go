package i18n

import (
	"fmt"
	"maps"
	"strings"

	"golang.org/x/text/language"
)

// Headers longer than this are truncated before parsing.
const maxHeaderLen = 4096

// Negotiate picks the best entry of available for an Accept-Language style
// header such as "de-CH,de;q=0.9,en;q=0.8". It falls back to the first
// available language and returns "" only when available is empty.
func Negotiate(header string, available []string) string {
	if len(available) == 0 {
		return ""
	}
	if len(header) > maxHeaderLen {
		header = header[:maxHeaderLen]
	}

	desired, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(desired) == 0 {
		return available[0]
	}

	tags := make([]language.Tag, 0, len(available))
	for _, lang := range available {
		tags = append(tags, language.Make(lang))
	}
	if _, idx, conf := language.NewMatcher(tags).Match(desired...); conf != language.No {
		return available[idx]
	}
	return available[0]
}

// ReplacePlaceholders substitutes %{name} with the matching value formatted
// with %v. Unknown placeholders are left untouched.
func ReplacePlaceholders(template string, placeholders M) string {
	if len(placeholders) == 0 || !strings.Contains(template, "%{") {
		return template
	}
	pairs := make([]string, 0, 2*len(placeholders))
	for key, value := range placeholders {
		pairs = append(pairs, "%{"+key+"}", fmt.Sprint(value))
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func replacePlaceholdersWithMerge(template string, placeholders ...M) string {
	switch len(placeholders) {
	case 0:
		return template
	case 1:
		return ReplacePlaceholders(template, placeholders[0])
	}
	merged := make(M)
	for _, p := range placeholders {
		maps.Copy(merged, p)
	}
	return ReplacePlaceholders(template, merged)
}
